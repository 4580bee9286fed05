// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pebbledb

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/elementsalpha/alphad/database/engine"
)

func NewSnapshot(snapshot *pebble.Snapshot) engine.Snapshot {
	return &Snapshot{Snapshot: snapshot}
}

// Snapshot wraps a pebble snapshot.
type Snapshot struct {
	*pebble.Snapshot
	released bool
}

func (s *Snapshot) Has(key []byte) (bool, error) {
	_, err := s.Get(key)
	switch {
	case errors.Is(err, engine.ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// Get returns a copy of the stored value since pebble only lends it until the
// closer is closed.
func (s *Snapshot) Get(key []byte) ([]byte, error) {
	if s.released {
		return nil, ErrSnapshotReleased
	}

	ori, closer, err := s.Snapshot.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("pebbledb: %w", engine.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	val := make([]byte, len(ori))
	copy(val, ori)
	return val, nil
}

func (s *Snapshot) Release() {
	if !s.released {
		s.released = true
		s.Snapshot.Close()
	}
}

func (s *Snapshot) NewIterator(slice *engine.Range) engine.Iterator {
	if s.released {
		return engine.EmptyIterator(ErrSnapshotReleased)
	}

	opts := &pebble.IterOptions{}
	if slice != nil {
		opts.LowerBound = slice.Start
		opts.UpperBound = slice.Limit
	}
	iter, err := s.Snapshot.NewIter(opts)
	if err != nil {
		return engine.EmptyIterator(err)
	}
	return NewIterator(iter)
}
