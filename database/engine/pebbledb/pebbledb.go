// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package pebbledb implements engine.Engine on cockroachdb/pebble.
package pebbledb

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/bloom"
	"github.com/elementsalpha/alphad/database/engine"
)

var (
	ErrDbClosed         = fmt.Errorf("pebbledb: %w", engine.ErrClosed)
	ErrTxClosed         = fmt.Errorf("pebbledb: %w", engine.ErrTxDone)
	ErrSnapshotReleased = fmt.Errorf("pebbledb: %w", engine.ErrSnapshotReleased)
	ErrIteratorReleased = fmt.Errorf("pebbledb: %w", engine.ErrIterReleased)
)

const (
	// DefaultCache is the block cache size in MiB.
	DefaultCache = 64

	// DefaultHandles is the number of open files pebble may keep.
	DefaultHandles = 16
)

// NewDB opens the database at dbPath.  A cache or handles value of zero
// selects the default.
func NewDB(dbPath string, create bool, cache, handles int) (engine.Engine, error) {
	if cache <= 0 {
		cache = DefaultCache
	}
	if handles <= 0 {
		handles = DefaultHandles
	}

	levels := make([]pebble.LevelOptions, 7)
	for i := range levels {
		levels[i] = pebble.LevelOptions{
			TargetFileSize: int64(2<<i) * 1024 * 1024,
			FilterPolicy:   bloom.FilterPolicy(10),
		}
	}

	c := pebble.NewCache(int64(cache) * 1024 * 1024)
	defer c.Unref()

	opts := &pebble.Options{
		Cache:                    c,
		ErrorIfExists:            create,
		MaxOpenFiles:             handles,
		MaxConcurrentCompactions: runtime.NumCPU,
		Levels:                   levels,
	}
	opts.Experimental.ReadSamplingMultiplier = -1
	db, err := pebble.Open(dbPath, opts)
	if err != nil {
		return nil, err
	}

	return &DB{DB: db}, nil
}

// DB wraps a pebble handle.  pebble panics on use after close, so the closed
// state is tracked here.
type DB struct {
	*pebble.DB

	closed atomic.Bool
}

func (d *DB) Transaction() (engine.Transaction, error) {
	if d.closed.Load() {
		return nil, ErrDbClosed
	}
	return NewTransaction(d.DB.NewBatch()), nil
}

func (d *DB) Snapshot() (engine.Snapshot, error) {
	if d.closed.Load() {
		return nil, ErrDbClosed
	}
	return NewSnapshot(d.DB.NewSnapshot()), nil
}

func (d *DB) Close() error {
	if d.closed.Swap(true) {
		return ErrDbClosed
	}
	return d.DB.Close()
}
