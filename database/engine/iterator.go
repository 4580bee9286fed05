// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// ErrIterReleased is returned by Iterator.Error after Release.
var ErrIterReleased = errors.New("engine: iterator released")

// Iterator walks the key/value pairs of a snapshot in key order.  A new
// iterator is positioned before its first pair, so the first call to Next
// moves to it.
type Iterator interface {
	// First moves to the first pair and reports whether it exists.
	First() bool

	// Last moves to the last pair and reports whether it exists.
	Last() bool

	// Seek moves to the first pair whose key is greater than or equal to
	// key and reports whether it exists.
	Seek(key []byte) bool

	// Next moves to the next pair.  It returns false once exhausted.
	Next() bool

	// Prev moves to the previous pair.  It returns false once exhausted.
	Prev() bool

	// Valid reports whether the iterator is positioned on a pair.
	Valid() bool

	// Error returns any accumulated error.  Exhausting the pairs is not an
	// error.
	Error() error

	// Key returns the current key, or nil if done.  The slice is only
	// valid until the iterator moves.
	Key() []byte

	// Value returns the current value, or nil if done.  The slice is only
	// valid until the iterator moves.
	Value() []byte

	Releaser
}

// Range is a half-open key range [Start, Limit).  A nil Start is the
// beginning of the keyspace and a nil Limit is its end.
type Range struct {
	Start []byte
	Limit []byte
}

// BytesPrefix returns the range covering every key that starts with prefix.
func BytesPrefix(prefix []byte) *Range {
	r := util.BytesPrefix(prefix)
	return &Range{Start: r.Start, Limit: r.Limit}
}

// EmptyIterator returns an iterator with no pairs whose Error reports err.
func EmptyIterator(err error) Iterator {
	return iterator.NewEmptyIterator(err)
}
