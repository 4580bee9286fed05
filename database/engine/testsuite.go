// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// putAll commits kvs to e in a single transaction.
func putAll(t *testing.T, e Engine, kvs map[string]string) {
	t.Helper()

	err := Update(e, func(tx Transaction) error {
		for k, v := range kvs {
			if err := tx.Put([]byte(k), []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err, "failed to commit key/value pairs")
}

// TestSuiteEngine runs the behaviour every Engine implementation must share.
// newEngine must return a fresh, empty engine on each call.
func TestSuiteEngine(t *testing.T, newEngine func() Engine) {
	t.Run("TransactionSnapshot", func(t *testing.T) {
		engine := newEngine()
		defer engine.Close()

		tx, err := engine.Transaction()
		require.NoError(t, err, "failed to create transaction")

		key := []byte("key1")
		value := []byte("value1")
		require.NoError(t, tx.Put(key, value))

		// Staged writes are invisible before commit.
		snapshot, err := engine.Snapshot()
		require.NoError(t, err, "failed to create snapshot")

		has, err := snapshot.Has(key)
		require.NoError(t, err)
		require.False(t, has, "uncommitted key visible in snapshot")

		gotValue, err := snapshot.Get(key)
		require.ErrorIs(t, err, ErrNotFound)
		require.Nil(t, gotValue)

		require.NoError(t, tx.Commit())

		// The old snapshot keeps its view.
		has, err = snapshot.Has(key)
		require.NoError(t, err)
		require.False(t, has, "snapshot observed a later commit")
		snapshot.Release()

		snapshot, err = engine.Snapshot()
		require.NoError(t, err, "failed to create snapshot")
		defer snapshot.Release()

		gotValue, err = snapshot.Get(key)
		require.NoError(t, err)
		require.Equal(t, value, gotValue)

		// Returned values are owned by the caller.
		gotValue[0] ^= 0xff
		again, err := snapshot.Get(key)
		require.NoError(t, err)
		require.Equal(t, value, again)
	})

	t.Run("TransactionDelete", func(t *testing.T) {
		engine := newEngine()
		defer engine.Close()

		putAll(t, engine, map[string]string{"a": "1", "b": "2"})

		err := Update(engine, func(tx Transaction) error {
			if err := tx.Delete([]byte("a")); err != nil {
				return err
			}
			// Deleting a missing key is not an error.
			return tx.Delete([]byte("zzz"))
		})
		require.NoError(t, err)

		err = View(engine, func(s Snapshot) error {
			has, err := s.Has([]byte("a"))
			require.NoError(t, err)
			require.False(t, has)

			has, err = s.Has([]byte("b"))
			require.NoError(t, err)
			require.True(t, has)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("UpdateRollback", func(t *testing.T) {
		engine := newEngine()
		defer engine.Close()

		errAbort := errors.New("abort")
		err := Update(engine, func(tx Transaction) error {
			require.NoError(t, tx.Put([]byte("k"), []byte("v")))
			return errAbort
		})
		require.ErrorIs(t, err, errAbort)

		err = View(engine, func(s Snapshot) error {
			_, err := s.Get([]byte("k"))
			return err
		})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("TransactionIterator", func(t *testing.T) {
		for _, test := range []struct {
			kvs       map[string]string // random order of key-value pairs
			ranges    *Range
			expectkvs [][2]string
		}{
			{
				kvs:       map[string]string{"key1": "value1", "key2": "value2", "key3": "value3"},
				ranges:    &Range{Start: []byte("key0"), Limit: []byte("key1")},
				expectkvs: nil,
			},
			{
				kvs:       map[string]string{"key1": "value1", "key2": "value2", "key3": "value3"},
				ranges:    &Range{Start: []byte("key0"), Limit: []byte("key2")},
				expectkvs: [][2]string{{"key1", "value1"}},
			},
			{
				kvs:       map[string]string{"key1": "value1", "key2": "value2", "key3": "value3"},
				ranges:    &Range{Start: []byte("key1"), Limit: []byte("key3")},
				expectkvs: [][2]string{{"key1", "value1"}, {"key2", "value2"}},
			},
			{
				kvs:       map[string]string{"key1": "value1", "key2": "value2", "key3": "value3"},
				ranges:    &Range{Start: []byte("key10"), Limit: []byte("key30")},
				expectkvs: [][2]string{{"key2", "value2"}, {"key3", "value3"}},
			},
			{
				kvs:       map[string]string{"key1": "value1", "key2": "value2", "key3": "value3"},
				ranges:    &Range{Start: []byte("key2"), Limit: []byte("key2")},
				expectkvs: nil,
			},
			{
				kvs:       map[string]string{"key1": "value1", "key2": "value2"},
				ranges:    &Range{},
				expectkvs: [][2]string{{"key1", "value1"}, {"key2", "value2"}},
			},
			{
				kvs:       map[string]string{"key10": "value10", "key11": "value11", "key20": "value20", "key21": "value21"},
				ranges:    BytesPrefix([]byte("key1")),
				expectkvs: [][2]string{{"key10", "value10"}, {"key11", "value11"}},
			},
		} {
			engine := newEngine()
			putAll(t, engine, test.kvs)

			snapshot, err := engine.Snapshot()
			require.NoError(t, err, "failed to create snapshot")

			iter := snapshot.NewIterator(test.ranges)
			var idx int
			for iter.Next() {
				if idx >= len(test.expectkvs) {
					require.FailNowf(t, "unexpected key-value pair",
						"key: %s, value: %s", iter.Key(), iter.Value())
				}

				require.Equal(t, []byte(test.expectkvs[idx][0]), iter.Key(), "key mismatch")
				require.Equal(t, []byte(test.expectkvs[idx][1]), iter.Value(), "value mismatch")
				idx++
			}
			require.Equal(t, len(test.expectkvs), idx, "key-value pair count mismatch")
			require.NoError(t, iter.Error())
			require.Nil(t, iter.Key(), "exhausted iterator returned a key")

			iter.Release()
			snapshot.Release()
			require.NoError(t, engine.Close())
		}
	})

	t.Run("IteratorPositioning", func(t *testing.T) {
		engine := newEngine()
		defer engine.Close()

		putAll(t, engine, map[string]string{
			"p1": "a", "p3": "b", "p5": "c", "q0": "outside",
		})

		err := View(engine, func(s Snapshot) error {
			iter := s.NewIterator(BytesPrefix([]byte("p")))
			defer iter.Release()

			require.True(t, iter.Last())
			require.Equal(t, []byte("p5"), iter.Key())
			require.True(t, iter.Prev())
			require.Equal(t, []byte("p3"), iter.Key())

			require.True(t, iter.Seek([]byte("p2")))
			require.Equal(t, []byte("p3"), iter.Key())
			require.True(t, iter.Valid())

			require.False(t, iter.Seek([]byte("p6")))
			require.False(t, iter.Valid())

			require.True(t, iter.First())
			require.Equal(t, []byte("p1"), iter.Key())
			require.False(t, iter.Prev())
			return iter.Error()
		})
		require.NoError(t, err)
	})

	t.Run("DbClose", func(t *testing.T) {
		engine := newEngine()

		transaction, err := engine.Transaction()
		require.NoError(t, err, "failed to create transaction")

		transaction.Discard()
		transaction.Discard() // multiple calls to discard should be safe
		err = transaction.Commit()
		require.ErrorIs(t, err, ErrTxDone)
		require.ErrorIs(t, transaction.Put([]byte("k"), nil), ErrTxDone)

		snapshot, err := engine.Snapshot()
		require.NoError(t, err, "failed to create snapshot")

		iterator := snapshot.NewIterator(&Range{})
		require.NoError(t, iterator.Error(), "failed to create iterator")
		iterator.Release()
		iterator.Release() // multiple calls to release should be safe
		require.ErrorIs(t, iterator.Error(), ErrIterReleased)

		snapshot.Release()
		snapshot.Release() // multiple calls to release should be safe
		_, err = snapshot.Get([]byte("key"))
		require.ErrorIs(t, err, ErrSnapshotReleased)

		require.NoError(t, engine.Close(), "failed to close engine")
		require.ErrorIs(t, engine.Close(), ErrClosed)

		_, err = engine.Transaction()
		require.ErrorIs(t, err, ErrClosed)

		_, err = engine.Snapshot()
		require.ErrorIs(t, err, ErrClosed)
	})
}
