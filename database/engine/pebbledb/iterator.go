// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pebbledb

import (
	"github.com/cockroachdb/pebble"
	"github.com/elementsalpha/alphad/database/engine"
)

func NewIterator(iter *pebble.Iterator) engine.Iterator {
	return &Iterator{Iterator: iter}
}

// Iterator adapts a pebble iterator to the goleveldb style the engine uses: a
// fresh iterator sits before the first pair and Next moves onto it.
type Iterator struct {
	*pebble.Iterator
	positioned bool
	released   bool
}

func (i *Iterator) First() bool {
	if i.released {
		return false
	}
	i.positioned = true
	return i.Iterator.First()
}

func (i *Iterator) Last() bool {
	if i.released {
		return false
	}
	i.positioned = true
	return i.Iterator.Last()
}

func (i *Iterator) Seek(key []byte) bool {
	if i.released {
		return false
	}
	i.positioned = true
	return i.Iterator.SeekGE(key)
}

func (i *Iterator) Next() bool {
	if i.released {
		return false
	}
	if !i.positioned {
		return i.First()
	}
	return i.Iterator.Next()
}

func (i *Iterator) Prev() bool {
	if i.released {
		return false
	}
	if !i.positioned {
		return false
	}
	return i.Iterator.Prev()
}

func (i *Iterator) Valid() bool {
	return !i.released && i.positioned && i.Iterator.Valid()
}

func (i *Iterator) Key() []byte {
	if !i.Valid() {
		return nil
	}
	return i.Iterator.Key()
}

func (i *Iterator) Value() []byte {
	if !i.Valid() {
		return nil
	}
	return i.Iterator.Value()
}

func (i *Iterator) Release() {
	if !i.released {
		i.released = true
		i.Iterator.Close()
	}
}

func (i *Iterator) Error() error {
	if i.released {
		return ErrIteratorReleased
	}
	return i.Iterator.Error()
}
