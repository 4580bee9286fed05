// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package leveldb implements engine.Engine on goleveldb.
package leveldb

import (
	"errors"
	"fmt"

	"github.com/elementsalpha/alphad/database/engine"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// NewDB opens the database at dbPath.  When create is true the database must
// not already exist.
func NewDB(dbPath string, create bool) (engine.Engine, error) {
	opts := opt.Options{
		ErrorIfExist: create,
		Strict:       opt.DefaultStrict,
		Compression:  opt.NoCompression,
		Filter:       filter.NewBloomFilter(10),
	}
	ldb, err := leveldb.OpenFile(dbPath, &opts)
	if err != nil {
		return nil, err
	}
	return &DB{DB: ldb}, nil
}

// DB wraps a goleveldb handle.
type DB struct {
	*leveldb.DB
}

// Transaction opens a goleveldb transaction.  Only one may be open at a time;
// a second caller blocks until the first is committed or discarded.
func (d *DB) Transaction() (engine.Transaction, error) {
	tx, err := d.DB.OpenTransaction()
	if err != nil {
		return nil, convertErr(err)
	}
	return NewTransaction(tx), nil
}

func (d *DB) Snapshot() (engine.Snapshot, error) {
	snapshot, err := d.DB.GetSnapshot()
	if err != nil {
		return nil, convertErr(err)
	}
	return NewSnapshot(snapshot), nil
}

func (d *DB) Close() error {
	return convertErr(d.DB.Close())
}

// convertErr maps goleveldb sentinel errors onto the engine ones.
func convertErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, leveldb.ErrNotFound):
		return fmt.Errorf("leveldb: %w", engine.ErrNotFound)
	case errors.Is(err, leveldb.ErrClosed):
		return fmt.Errorf("leveldb: %w", engine.ErrClosed)
	case errors.Is(err, leveldb.ErrSnapshotReleased):
		return fmt.Errorf("leveldb: %w", engine.ErrSnapshotReleased)
	case errors.Is(err, leveldb.ErrIterReleased):
		return fmt.Errorf("leveldb: %w", engine.ErrIterReleased)
	}
	return err
}
