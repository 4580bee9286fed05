// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/vulpemventures/go-elements/elementsutil"
)

const (
	// valuePrefixNull is the single byte encoding of a null value.
	valuePrefixNull = 0x00

	// valuePrefixExplicit prefixes an explicit 8-byte big-endian amount.
	valuePrefixExplicit = 0x01

	// ExplicitValueSize is the serialized size of an explicit value.
	ExplicitValueSize = 9

	// CommitmentSize is the serialized size of a confidential value
	// commitment, prefix included.
	CommitmentSize = 33
)

var (
	// ErrNegativeValue is returned when a negative explicit amount is
	// serialized.
	ErrNegativeValue = errors.New("explicit value is negative")

	// ErrInvalidValuePrefix is returned when decoding a value whose first
	// byte is none of the known prefixes.
	ErrInvalidValuePrefix = errors.New("invalid value prefix")

	// ErrInvalidCommitment is returned for a malformed confidential
	// commitment.
	ErrInvalidCommitment = errors.New("invalid value commitment")
)

// ValueType identifies which variant a Value holds.
type ValueType uint8

const (
	ValueNull ValueType = iota
	ValueExplicit
	ValueConfidential
)

// String returns the ValueType in human-readable form.
func (t ValueType) String() string {
	switch t {
	case ValueNull:
		return "null"
	case ValueExplicit:
		return "explicit"
	case ValueConfidential:
		return "confidential"
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// Value is the amount carried by a sidechain output.  It is either null, an
// explicit amount, or a Pedersen commitment that hides the amount.  Only
// explicit values take part in fee arithmetic; commitments are carried
// opaquely.
//
// The zero Value is the null value.
type Value struct {
	kind       ValueType
	amount     int64
	commitment [CommitmentSize]byte
}

// NullValue returns the null value.
func NullValue() Value {
	return Value{}
}

// ExplicitValue returns a value carrying the given amount in the clear.
func ExplicitValue(amount int64) Value {
	return Value{kind: ValueExplicit, amount: amount}
}

// ConfidentialValue returns a value holding the passed 33-byte commitment.
// The commitment must use prefix 0x08 or 0x09.
func ConfidentialValue(commitment []byte) (Value, error) {
	if len(commitment) != CommitmentSize {
		return Value{}, fmt.Errorf("%w: length %d", ErrInvalidCommitment,
			len(commitment))
	}
	if commitment[0] != 0x08 && commitment[0] != 0x09 {
		return Value{}, fmt.Errorf("%w: prefix 0x%02x",
			ErrInvalidCommitment, commitment[0])
	}

	v := Value{kind: ValueConfidential}
	copy(v.commitment[:], commitment)
	return v, nil
}

// Type returns the variant held by the value.
func (v Value) Type() ValueType { return v.kind }

func (v Value) IsNull() bool         { return v.kind == ValueNull }
func (v Value) IsExplicit() bool     { return v.kind == ValueExplicit }
func (v Value) IsConfidential() bool { return v.kind == ValueConfidential }

// Amount returns the explicit amount.  The second return is false for null
// and confidential values.
func (v Value) Amount() (int64, bool) {
	if v.kind != ValueExplicit {
		return 0, false
	}
	return v.amount, true
}

// Commitment returns a copy of the commitment of a confidential value, or
// nil for any other variant.
func (v Value) Commitment() []byte {
	if v.kind != ValueConfidential {
		return nil
	}
	c := make([]byte, CommitmentSize)
	copy(c, v.commitment[:])
	return c
}

// Equal reports whether both values hold the same variant and content.
func (v Value) Equal(o Value) bool {
	return v == o
}

// SerializeSize returns the number of bytes the value occupies on the wire.
func (v Value) SerializeSize() int {
	switch v.kind {
	case ValueExplicit:
		return ExplicitValueSize
	case ValueConfidential:
		return CommitmentSize
	}
	return 1
}

// Bytes returns the wire encoding of the value.
func (v Value) Bytes() ([]byte, error) {
	if v.kind == ValueExplicit && v.amount < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeValue, v.amount)
	}
	return v.rawBytes()
}

// rawBytes encodes the value without range checks.  A negative explicit
// amount is written as its two's complement bits, so every value has exactly
// one encoding.
func (v Value) rawBytes() ([]byte, error) {
	switch v.kind {
	case ValueExplicit:
		return elementsutil.ValueToBytes(uint64(v.amount))

	case ValueConfidential:
		return v.Commitment(), nil
	}
	return []byte{valuePrefixNull}, nil
}

// Serialize writes the wire encoding of the value to w.
func (v Value) Serialize(w io.Writer) error {
	b, err := v.Bytes()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// ReadValue decodes a value from r.  The first byte selects the variant.
func ReadValue(r io.Reader) (Value, error) {
	var prefix [1]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return Value{}, err
	}

	switch prefix[0] {
	case valuePrefixNull:
		return NullValue(), nil

	case valuePrefixExplicit:
		buf := make([]byte, ExplicitValueSize)
		buf[0] = prefix[0]
		if _, err := io.ReadFull(r, buf[1:]); err != nil {
			return Value{}, err
		}
		amount, err := elementsutil.ValueFromBytes(buf)
		if err != nil {
			return Value{}, err
		}
		if int64(amount) < 0 {
			return Value{}, fmt.Errorf("%w: %d", ErrNegativeValue,
				amount)
		}
		return ExplicitValue(int64(amount)), nil

	case 0x08, 0x09:
		buf := make([]byte, CommitmentSize)
		buf[0] = prefix[0]
		if _, err := io.ReadFull(r, buf[1:]); err != nil {
			return Value{}, err
		}
		return ConfidentialValue(buf)
	}

	return Value{}, fmt.Errorf("%w: 0x%02x", ErrInvalidValuePrefix,
		prefix[0])
}

// ValueFromBytes decodes a value that occupies all of b.
func ValueFromBytes(b []byte) (Value, error) {
	r := bytes.NewReader(b)
	v, err := ReadValue(r)
	if err != nil {
		return Value{}, err
	}
	if r.Len() != 0 {
		return Value{}, fmt.Errorf("%d trailing bytes after value",
			r.Len())
	}
	return v, nil
}

// String returns the value in human-readable form.  Explicit amounts are
// formatted as coins.
func (v Value) String() string {
	switch v.kind {
	case ValueExplicit:
		return btcutil.Amount(v.amount).String()
	case ValueConfidential:
		return fmt.Sprintf("confidential(%x)", v.commitment[:])
	}
	return "null"
}
