// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// testCommitment returns a well formed 33-byte commitment with the given
// prefix.
func testCommitment(prefix byte) []byte {
	c := bytes.Repeat([]byte{0xab}, CommitmentSize)
	c[0] = prefix
	return c
}

// TestValueEncoding ensures each value variant encodes to the Elements
// layout and decodes back to an equal value.
func TestValueEncoding(t *testing.T) {
	t.Parallel()

	conf, err := ConfidentialValue(testCommitment(0x09))
	require.NoError(t, err)

	tests := []struct {
		name  string
		value Value
		want  []byte
	}{
		{
			name:  "null",
			value: NullValue(),
			want:  []byte{0x00},
		},
		{
			name:  "explicit zero",
			value: ExplicitValue(0),
			want:  []byte{0x01, 0, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:  "explicit is big endian",
			value: ExplicitValue(0x0102030405),
			want: []byte{0x01, 0, 0, 0, 0x01, 0x02, 0x03,
				0x04, 0x05},
		},
		{
			name:  "confidential",
			value: conf,
			want:  testCommitment(0x09),
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got, err := test.value.Bytes()
			require.NoError(t, err)
			require.Equal(t, test.want, got)
			require.Equal(t, len(test.want), test.value.SerializeSize())

			decoded, err := ValueFromBytes(got)
			require.NoError(t, err)
			require.True(t, decoded.Equal(test.value))
		})
	}
}

// TestValueErrors ensures malformed values are rejected.
func TestValueErrors(t *testing.T) {
	t.Parallel()

	_, err := ExplicitValue(-1).Bytes()
	require.True(t, errors.Is(err, ErrNegativeValue))

	_, err = ConfidentialValue(testCommitment(0x0a))
	require.True(t, errors.Is(err, ErrInvalidCommitment))

	_, err = ConfidentialValue(testCommitment(0x08)[:32])
	require.True(t, errors.Is(err, ErrInvalidCommitment))

	_, err = ValueFromBytes([]byte{0x05})
	require.True(t, errors.Is(err, ErrInvalidValuePrefix))

	_, err = ValueFromBytes([]byte{0x01, 0x00})
	require.Error(t, err)

	_, err = ValueFromBytes([]byte{0x00, 0x00})
	require.Error(t, err)
}

// TestValueAccessors exercises the variant accessors.
func TestValueAccessors(t *testing.T) {
	t.Parallel()

	var zero Value
	require.True(t, zero.IsNull())
	_, ok := zero.Amount()
	require.False(t, ok)
	require.Nil(t, zero.Commitment())

	v := ExplicitValue(5000)
	amt, ok := v.Amount()
	require.True(t, ok)
	require.True(t, v.IsExplicit())
	require.EqualValues(t, 5000, amt)
	require.Equal(t, ValueExplicit, v.Type())
	require.Equal(t, "0.00005 BTC", v.String())

	conf, err := ConfidentialValue(testCommitment(0x08))
	require.NoError(t, err)
	require.True(t, conf.IsConfidential())
	_, ok = conf.Amount()
	require.False(t, ok)

	// The returned commitment must not alias the value.
	c := conf.Commitment()
	c[1] = 0
	require.Equal(t, byte(0xab), conf.Commitment()[1])
}
