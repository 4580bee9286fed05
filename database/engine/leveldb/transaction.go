// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package leveldb

import (
	"github.com/elementsalpha/alphad/database/engine"
	"github.com/syndtr/goleveldb/leveldb"
)

func NewTransaction(tx *leveldb.Transaction) engine.Transaction {
	return &Transaction{Transaction: tx}
}

// Transaction wraps a goleveldb transaction.
type Transaction struct {
	*leveldb.Transaction
	done bool
}

func (t *Transaction) Put(key, value []byte) error {
	if t.done {
		return engine.ErrTxDone
	}
	return convertErr(t.Transaction.Put(key, value, nil))
}

func (t *Transaction) Delete(key []byte) error {
	if t.done {
		return engine.ErrTxDone
	}
	return convertErr(t.Transaction.Delete(key, nil))
}

func (t *Transaction) Discard() {
	if !t.done {
		t.done = true
		t.Transaction.Discard()
	}
}

func (t *Transaction) Commit() error {
	if t.done {
		return engine.ErrTxDone
	}
	t.done = true
	return convertErr(t.Transaction.Commit())
}
