// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package engine defines the ordered key/value storage abstraction the peg index
is persisted on.

A backend provides write batches through Transaction and consistent read views
through Snapshot.  Writes staged in a transaction are invisible to every
snapshot until Commit returns.  Backends live in the leveldb and pebbledb
subpackages and are all exercised by TestSuiteEngine.
*/
package engine

import "errors"

// Errors shared by every backend.  Backends wrap their native errors so callers
// can test with errors.Is regardless of the engine in use.
var (
	// ErrNotFound is returned by Snapshot.Get when the key does not exist.
	ErrNotFound = errors.New("engine: key not found")

	// ErrClosed is returned when using an engine after Close.
	ErrClosed = errors.New("engine: closed")

	// ErrTxDone is returned when using a transaction that was already
	// committed or discarded.
	ErrTxDone = errors.New("engine: transaction already closed")

	// ErrSnapshotReleased is returned when reading from a released
	// snapshot.
	ErrSnapshotReleased = errors.New("engine: snapshot released")
)

// Engine is an ordered key/value store.
type Engine interface {
	// Transaction starts a write batch.
	Transaction() (Transaction, error)

	// Snapshot returns a read-only view of the committed state.
	Snapshot() (Snapshot, error)

	// Close releases the underlying store.  Closing twice returns an
	// error wrapping ErrClosed.
	Close() error
}

// Transaction stages writes that become visible atomically on Commit.
type Transaction interface {
	Put(key, value []byte) error
	Delete(key []byte) error

	// Commit writes the staged changes.  A transaction cannot be used
	// after Commit.
	Commit() error

	// Discard drops the staged changes.  It is safe to call more than once
	// and after Commit.
	Discard()
}

// Snapshot is a consistent read view.
type Snapshot interface {
	// Get returns a copy of the value stored for key, or an error wrapping
	// ErrNotFound.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)

	// NewIterator iterates the keys inside the given range in ascending
	// order.  A nil range, or nil bounds, are unbounded.
	NewIterator(*Range) Iterator

	Releaser
}

// Releaser is implemented by resources that must be released.  Release is
// safe to call more than once.
type Releaser interface {
	Release()
}

// View runs fn against a fresh snapshot which is released when fn returns.
func View(e Engine, fn func(Snapshot) error) error {
	snap, err := e.Snapshot()
	if err != nil {
		return err
	}
	defer snap.Release()

	return fn(snap)
}

// Update runs fn inside a transaction.  The transaction is committed when fn
// returns nil and discarded otherwise, including when fn panics.
func Update(e Engine, fn func(Transaction) error) error {
	tx, err := e.Transaction()
	if err != nil {
		return err
	}
	defer tx.Discard()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
