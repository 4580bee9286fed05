// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pegindex

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/lru"
	"github.com/elementsalpha/alphad/database/engine"
	"github.com/elementsalpha/alphad/database/engine/leveldb"
	"github.com/elementsalpha/alphad/database/engine/pebbledb"
	"github.com/elementsalpha/alphad/txscript"
)

const (
	// DefaultMinConfirmations is the depth a parent block needs before a
	// withdrawal may cite it.
	DefaultMinConfirmations = 10

	// DefaultConservativeConfirmations is the depth required when the
	// increased confirmation rule is active.
	DefaultConservativeConfirmations = 144

	// DefaultCacheSize is the number of deeply confirmed hashes kept in
	// memory.
	DefaultCacheSize = 2048

	// DefaultDbType is the backend used when none is configured.
	DefaultDbType = "leveldb"

	depthSize = 4
)

var (
	// confirmedPrefix prefixes every depth record.
	confirmedPrefix = []byte("c")

	// ErrBlockNotFound is returned by Depth for untracked blocks.
	ErrBlockNotFound = errors.New("block is not tracked by the peg index")

	// ErrUnknownDbType is returned by Open for an unsupported backend.
	ErrUnknownDbType = errors.New("unknown database type")
)

// SupportedDbTypes lists the backends Open accepts.
func SupportedDbTypes() []string {
	return []string{"leveldb", "pebbledb"}
}

// Config configures an Index.  Zero values select the defaults.
type Config struct {
	// DbType picks the backend used by Open.
	DbType string

	// DataDir is the directory Open places the database in.
	DataDir string

	MinConfirmations          uint32
	ConservativeConfirmations uint32
	CacheSize                 uint
}

func (cfg *Config) normalize() {
	if cfg.DbType == "" {
		cfg.DbType = DefaultDbType
	}
	if cfg.MinConfirmations == 0 {
		cfg.MinConfirmations = DefaultMinConfirmations
	}
	if cfg.ConservativeConfirmations == 0 {
		cfg.ConservativeConfirmations = DefaultConservativeConfirmations
	}
	if cfg.ConservativeConfirmations < cfg.MinConfirmations {
		cfg.ConservativeConfirmations = cfg.MinConfirmations
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = DefaultCacheSize
	}
}

// Index records parent chain block depths.  It is safe for concurrent use as
// long as the underlying engine is.
type Index struct {
	db       engine.Engine
	minConf  uint32
	consConf uint32

	// cacheMtx orders writes against the read-then-cache step of
	// IsConfirmed.  Writers hold it exclusively across the database update
	// and the cache change, so a depth read under the read lock is never
	// cached after the record changed.
	cacheMtx sync.RWMutex

	// deep holds hashes known to be at least consConf deep.
	deep lru.Cache
}

// Ensure Index implements the txscript.ConfirmationOracle interface.
var _ txscript.ConfirmationOracle = (*Index)(nil)

// Open opens, creating it when missing, the peg index database described by
// cfg.
func Open(cfg Config) (*Index, error) {
	cfg.normalize()

	dbPath := filepath.Join(cfg.DataDir, "pegindex_"+cfg.DbType)
	_, err := os.Stat(dbPath)
	create := os.IsNotExist(err)
	if create {
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, err
		}
	}

	var db engine.Engine
	switch cfg.DbType {
	case "leveldb":
		db, err = leveldb.NewDB(dbPath, create)
	case "pebbledb":
		db, err = pebbledb.NewDB(dbPath, create, 0, 0)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDbType, cfg.DbType)
	}
	if err != nil {
		return nil, err
	}

	log.Infof("Opened %s peg index at %s", cfg.DbType, dbPath)
	return New(db, cfg), nil
}

// New returns an index backed by db.  The index owns db from then on.
func New(db engine.Engine, cfg Config) *Index {
	cfg.normalize()
	return &Index{
		db:       db,
		minConf:  cfg.MinConfirmations,
		consConf: cfg.ConservativeConfirmations,
		deep:     lru.NewCache(cfg.CacheSize),
	}
}

func depthKey(hash *chainhash.Hash) []byte {
	key := make([]byte, len(confirmedPrefix)+chainhash.HashSize)
	copy(key, confirmedPrefix)
	copy(key[len(confirmedPrefix):], hash[:])
	return key
}

func decodeDepth(val []byte) (uint32, error) {
	if len(val) != depthSize {
		return 0, fmt.Errorf("corrupt depth record of %d bytes", len(val))
	}
	return binary.BigEndian.Uint32(val), nil
}

// Connect records hash at the given confirmation depth, replacing any earlier
// depth.
func (idx *Index) Connect(hash *chainhash.Hash, depth uint32) error {
	var val [depthSize]byte
	binary.BigEndian.PutUint32(val[:], depth)

	idx.cacheMtx.Lock()
	defer idx.cacheMtx.Unlock()

	err := engine.Update(idx.db, func(tx engine.Transaction) error {
		return tx.Put(depthKey(hash), val[:])
	})
	if err != nil {
		return err
	}

	if depth >= idx.consConf {
		idx.deep.Add(*hash)
	} else {
		idx.deep.Delete(*hash)
	}
	log.Debugf("Connected parent block %v at depth %d", hash, depth)
	return nil
}

// Disconnect forgets hash.  Disconnecting an untracked block is not an
// error.
func (idx *Index) Disconnect(hash *chainhash.Hash) error {
	idx.cacheMtx.Lock()
	defer idx.cacheMtx.Unlock()

	idx.deep.Delete(*hash)
	err := engine.Update(idx.db, func(tx engine.Transaction) error {
		return tx.Delete(depthKey(hash))
	})
	if err != nil {
		return err
	}

	log.Debugf("Disconnected parent block %v", hash)
	return nil
}

// Depth returns the recorded depth of hash, or ErrBlockNotFound.
func (idx *Index) Depth(hash *chainhash.Hash) (uint32, error) {
	var depth uint32
	err := engine.View(idx.db, func(snap engine.Snapshot) error {
		val, err := snap.Get(depthKey(hash))
		if errors.Is(err, engine.ErrNotFound) {
			return ErrBlockNotFound
		}
		if err != nil {
			return err
		}
		depth, err = decodeDepth(val)
		return err
	})
	return depth, err
}

// ForEach calls fn for every tracked block in hash order.  Iteration stops at
// the first error fn returns, which is passed back to the caller.
func (idx *Index) ForEach(fn func(hash chainhash.Hash, depth uint32) error) error {
	return engine.View(idx.db, func(snap engine.Snapshot) error {
		iter := snap.NewIterator(engine.BytesPrefix(confirmedPrefix))
		defer iter.Release()

		for iter.Next() {
			key := iter.Key()
			if len(key) != len(confirmedPrefix)+chainhash.HashSize {
				return fmt.Errorf("corrupt depth key %x", key)
			}
			var hash chainhash.Hash
			copy(hash[:], key[len(confirmedPrefix):])

			depth, err := decodeDepth(iter.Value())
			if err != nil {
				return err
			}
			if err := fn(hash, depth); err != nil {
				return err
			}
		}
		return iter.Error()
	})
}

// IsConfirmed reports whether hash is buried deeply enough to back a
// withdrawal.  Storage errors are logged and answered with false so a failing
// index never confirms anything.
//
// This function is part of the txscript.ConfirmationOracle interface.
func (idx *Index) IsConfirmed(hash *chainhash.Hash, conservative bool) bool {
	idx.cacheMtx.RLock()
	defer idx.cacheMtx.RUnlock()

	if idx.deep.Contains(*hash) {
		return true
	}

	depth, err := idx.Depth(hash)
	switch {
	case errors.Is(err, ErrBlockNotFound):
		return false
	case err != nil:
		log.Errorf("Unable to look up parent block %v: %v", hash, err)
		return false
	}

	if depth >= idx.consConf {
		idx.deep.Add(*hash)
		return true
	}
	if conservative {
		return false
	}
	return depth >= idx.minConf
}

// Close closes the underlying database.
func (idx *Index) Close() error {
	return idx.db.Close()
}
