// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestStack tests that all of the stack operations work as expected.
func TestStack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		before    [][]byte
		operation func(*stack) error
		err       error
		after     [][]byte
	}{
		{
			name:      "noop",
			before:    [][]byte{{1}, {2}, {3}, {4}, {5}},
			operation: func(s *stack) error { return nil },
			after:     [][]byte{{1}, {2}, {3}, {4}, {5}},
		},
		{
			name:   "peek underflow (byte)",
			before: [][]byte{{1}, {2}, {3}, {4}, {5}},
			operation: func(s *stack) error {
				_, err := s.PeekByteArray(5)
				return err
			},
			err: ErrInvalidStackOperation,
		},
		{
			name:   "peek underflow (int)",
			before: [][]byte{{1}, {2}, {3}, {4}, {5}},
			operation: func(s *stack) error {
				_, err := s.PeekInt(5, maxScriptNumLen)
				return err
			},
			err: ErrInvalidStackOperation,
		},
		{
			name:   "pop everything",
			before: [][]byte{{1}, {2}, {3}, {4}, {5}},
			operation: func(s *stack) error {
				for i := 0; i < 5; i++ {
					if _, err := s.PopByteArray(); err != nil {
						return err
					}
				}
				return nil
			},
			after: nil,
		},
		{
			name:   "pop underflow",
			before: [][]byte{{1}, {2}, {3}, {4}, {5}},
			operation: func(s *stack) error {
				for i := 0; i < 6; i++ {
					if _, err := s.PopByteArray(); err != nil {
						return err
					}
				}
				return nil
			},
			err: ErrInvalidStackOperation,
		},
		{
			name:   "pop bool negative zero",
			before: [][]byte{{0x00, 0x80}},
			operation: func(s *stack) error {
				v, err := s.PopBool()
				if err != nil {
					return err
				}
				if v {
					return scriptError(ErrInternal, "negative zero is true")
				}
				return nil
			},
			after: nil,
		},
		{
			name:   "pop int too big",
			before: [][]byte{{1, 2, 3, 4, 5}},
			operation: func(s *stack) error {
				_, err := s.PopInt()
				return err
			},
			err: ErrNumberTooBig,
		},
		{
			name:   "peek int with locktime width",
			before: [][]byte{{1, 2, 3, 4, 5}},
			operation: func(s *stack) error {
				n, err := s.PeekInt(0, cltvMaxScriptNumLen)
				if err != nil {
					return err
				}
				if n != 0x0504030201 {
					return scriptError(ErrInternal, "wrong value")
				}
				return nil
			},
			after: [][]byte{{1, 2, 3, 4, 5}},
		},
		{
			name:      "nip middle",
			before:    [][]byte{{1}, {2}, {3}},
			operation: func(s *stack) error { return s.NipN(1) },
			after:     [][]byte{{1}, {3}},
		},
		{
			name:      "nip bottom",
			before:    [][]byte{{1}, {2}, {3}},
			operation: func(s *stack) error { return s.NipN(2) },
			after:     [][]byte{{2}, {3}},
		},
		{
			name:      "tuck",
			before:    [][]byte{{1}, {2}},
			operation: func(s *stack) error { return s.Tuck() },
			after:     [][]byte{{2}, {1}, {2}},
		},
		{
			name:      "drop 0",
			before:    [][]byte{{1}, {2}},
			operation: func(s *stack) error { return s.DropN(0) },
			err:       ErrInvalidStackOperation,
		},
		{
			name:      "dup 2",
			before:    [][]byte{{1}, {2}},
			operation: func(s *stack) error { return s.DupN(2) },
			after:     [][]byte{{1}, {2}, {1}, {2}},
		},
		{
			name:      "rot",
			before:    [][]byte{{1}, {2}, {3}},
			operation: func(s *stack) error { return s.RotN(1) },
			after:     [][]byte{{2}, {3}, {1}},
		},
		{
			name:      "swap 2",
			before:    [][]byte{{1}, {2}, {3}, {4}},
			operation: func(s *stack) error { return s.SwapN(2) },
			after:     [][]byte{{3}, {4}, {1}, {2}},
		},
		{
			name:      "over",
			before:    [][]byte{{1}, {2}},
			operation: func(s *stack) error { return s.OverN(1) },
			after:     [][]byte{{1}, {2}, {1}},
		},
		{
			name:      "pick",
			before:    [][]byte{{1}, {2}, {3}},
			operation: func(s *stack) error { return s.PickN(2) },
			after:     [][]byte{{1}, {2}, {3}, {1}},
		},
		{
			name:      "pick underflow",
			before:    [][]byte{{1}, {2}, {3}},
			operation: func(s *stack) error { return s.PickN(3) },
			err:       ErrInvalidStackOperation,
		},
		{
			name:      "roll",
			before:    [][]byte{{1}, {2}, {3}},
			operation: func(s *stack) error { return s.RollN(2) },
			after:     [][]byte{{2}, {3}, {1}},
		},
		{
			name:   "minimal data enforced on pop",
			before: [][]byte{{1, 0}},
			operation: func(s *stack) error {
				s.verifyMinimalData = true
				_, err := s.PopInt()
				return err
			},
			err: ErrMinimalData,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			var s stack
			s.stk = append(s.stk, test.before...)
			err := test.operation(&s)
			if test.err != nil {
				require.ErrorIs(t, err, test.err)
				return
			}
			require.NoError(t, err)
			if len(test.after) == 0 {
				require.Zero(t, s.Depth())
				return
			}
			require.Equal(t, test.after, s.stk)
		})
	}
}

func TestAsBool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   []byte
		want bool
	}{
		{nil, false},
		{[]byte{0}, false},
		{[]byte{0, 0, 0}, false},
		{[]byte{0x80}, false},
		{[]byte{0, 0, 0x80}, false},
		{[]byte{0x80, 0}, true},
		{[]byte{1}, true},
		{[]byte{0, 1}, true},
	}
	for _, test := range tests {
		require.Equal(t, test.want, asBool(test.in), "%x", test.in)
	}
}
