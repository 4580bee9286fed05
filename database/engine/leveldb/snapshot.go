// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package leveldb

import (
	"github.com/elementsalpha/alphad/database/engine"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
)

func NewSnapshot(snapshot *leveldb.Snapshot) engine.Snapshot {
	return &Snapshot{Snapshot: snapshot}
}

// Snapshot wraps a goleveldb snapshot.  goleveldb already copies values out
// of Get.
type Snapshot struct {
	*leveldb.Snapshot
}

func (s *Snapshot) Has(key []byte) (bool, error) {
	has, err := s.Snapshot.Has(key, nil)
	return has, convertErr(err)
}

func (s *Snapshot) Get(key []byte) ([]byte, error) {
	val, err := s.Snapshot.Get(key, nil)
	if err != nil {
		return nil, convertErr(err)
	}
	return val, nil
}

func (s *Snapshot) Release() {
	s.Snapshot.Release()
}

func (s *Snapshot) NewIterator(slice *engine.Range) engine.Iterator {
	var r *util.Range
	if slice != nil {
		r = &util.Range{Start: slice.Start, Limit: slice.Limit}
	}
	return &Iterator{Iterator: s.Snapshot.NewIterator(r, nil)}
}

// Iterator maps goleveldb iterator errors onto the engine ones.
type Iterator struct {
	iterator.Iterator
	released bool
}

func (i *Iterator) Release() {
	i.released = true
	i.Iterator.Release()
}

func (i *Iterator) Error() error {
	if i.released {
		return engine.ErrIterReleased
	}
	return convertErr(i.Iterator.Error())
}
