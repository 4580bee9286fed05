// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	btcwire "github.com/btcsuite/btcd/wire"
)

// maxMerkleProofTxns bounds the transaction count a parent chain merkle block
// may claim.  It is the largest count a block of the maximum base size could
// hold.
const maxMerkleProofTxns = btcwire.MaxBlockPayload / 60

// hashMerkleBranches takes two hashes, treated as the left and right tree
// nodes, and returns the hash of their concatenation.
func hashMerkleBranches(left, right *chainhash.Hash) chainhash.Hash {
	var hash [chainhash.HashSize * 2]byte
	copy(hash[:chainhash.HashSize], left[:])
	copy(hash[chainhash.HashSize:], right[:])
	return chainhash.DoubleHashH(hash[:])
}

// partialMerkleTree holds the state used to build or walk the depth-first
// partial merkle tree carried by a parent chain merkle block.
type partialMerkleTree struct {
	numTx uint32

	// Building.
	allHashes   []chainhash.Hash
	matchedBits []byte
	finalHashes []chainhash.Hash
	bits        []byte

	// Extracting.
	hashes   []*chainhash.Hash
	flags    []byte
	bitsUsed uint32
	hashUsed uint32
	bad      bool
	matches  []chainhash.Hash
}

// calcTreeWidth calculates and returns the the number of nodes (width) or a
// merkle tree at the given depth-first height.
func (m *partialMerkleTree) calcTreeWidth(height uint32) uint32 {
	return (m.numTx + (1 << height) - 1) >> height
}

// treeHeight returns the number of merkle branches in the tree.
func (m *partialMerkleTree) treeHeight() uint32 {
	height := uint32(0)
	for m.calcTreeWidth(height) > 1 {
		height++
	}
	return height
}

// calcHash returns the hash for a sub-tree given a depth-first height and
// node position.
func (m *partialMerkleTree) calcHash(height, pos uint32) chainhash.Hash {
	if height == 0 {
		return m.allHashes[pos]
	}

	left := m.calcHash(height-1, pos*2)
	right := left
	if pos*2+1 < m.calcTreeWidth(height-1) {
		right = m.calcHash(height-1, pos*2+1)
	}
	return hashMerkleBranches(&left, &right)
}

// traverseAndBuild builds a partial merkle tree using a recursive depth-first
// approach.  As it calculates the hashes, it also saves whether or not each
// node is a parent node and a list of final hashes to be included in the
// merkle block.
func (m *partialMerkleTree) traverseAndBuild(height, pos uint32) {
	// Determine whether this node is a parent of a matched node.
	var isParent byte
	for i := pos << height; i < (pos+1)<<height && i < m.numTx; i++ {
		isParent |= m.matchedBits[i]
	}
	m.bits = append(m.bits, isParent)

	// When the node is a leaf node or not a parent of a matched node,
	// append the hash to the list that will be part of the final merkle
	// block.
	if height == 0 || isParent == 0x00 {
		m.finalHashes = append(m.finalHashes, m.calcHash(height, pos))
		return
	}

	// Descend into the left child and process its sub-tree.
	m.traverseAndBuild(height-1, pos*2)

	// Descend into the right child and process its sub-tree if
	// there is one.
	if pos*2+1 < m.calcTreeWidth(height-1) {
		m.traverseAndBuild(height-1, pos*2+1)
	}
}

// traverseAndExtract is the inverse of traverseAndBuild.  It consumes flag
// bits and hashes depth first, records the matched leaves and returns the
// hash of the sub-tree.  Malformed input marks the tree bad.
func (m *partialMerkleTree) traverseAndExtract(height, pos uint32) chainhash.Hash {
	if m.bitsUsed >= uint32(len(m.flags))*8 {
		m.bad = true
		return chainhash.Hash{}
	}
	isParent := (m.flags[m.bitsUsed/8] >> (m.bitsUsed % 8)) & 0x01
	m.bitsUsed++

	if height == 0 || isParent == 0 {
		if m.hashUsed >= uint32(len(m.hashes)) {
			m.bad = true
			return chainhash.Hash{}
		}
		hash := *m.hashes[m.hashUsed]
		m.hashUsed++
		if height == 0 && isParent == 1 {
			m.matches = append(m.matches, hash)
		}
		return hash
	}

	left := m.traverseAndExtract(height-1, pos*2)
	right := left
	if pos*2+1 < m.calcTreeWidth(height-1) {
		right = m.traverseAndExtract(height-1, pos*2+1)

		// Identical siblings allow a second tree with the same root.
		if right == left {
			m.bad = true
		}
	}
	return hashMerkleBranches(&left, &right)
}

// extractMerkleMatches validates the partial merkle tree of mb and returns
// the merkle root it commits to along with the matched transaction hashes.
func extractMerkleMatches(mb *btcwire.MsgMerkleBlock) (chainhash.Hash, []chainhash.Hash, error) {
	var zero chainhash.Hash
	switch {
	case mb.Transactions == 0:
		return zero, nil, errors.New("merkle block has no transactions")
	case mb.Transactions > maxMerkleProofTxns:
		return zero, nil, fmt.Errorf("merkle block claims %d "+
			"transactions", mb.Transactions)
	case uint32(len(mb.Hashes)) > mb.Transactions:
		return zero, nil, errors.New("merkle block has more hashes " +
			"than transactions")
	case len(mb.Flags)*8 < len(mb.Hashes):
		return zero, nil, errors.New("merkle block has fewer flag " +
			"bits than hashes")
	}

	m := partialMerkleTree{
		numTx:  mb.Transactions,
		hashes: mb.Hashes,
		flags:  mb.Flags,
	}
	root := m.traverseAndExtract(m.treeHeight(), 0)
	switch {
	case m.bad:
		return zero, nil, errors.New("malformed partial merkle tree")
	case (m.bitsUsed+7)/8 != uint32(len(mb.Flags)):
		return zero, nil, errors.New("merkle block has unused flag bytes")
	case m.hashUsed != uint32(len(mb.Hashes)):
		return zero, nil, errors.New("merkle block has unused hashes")
	}
	return root, m.matches, nil
}

// NewMerkleBlock returns a parent chain merkle block proving the inclusion of
// the transactions flagged in matched among txHashes.  The header merkle root
// is set to the root of txHashes.
func NewMerkleBlock(header btcwire.BlockHeader, txHashes []chainhash.Hash,
	matched []bool) (*btcwire.MsgMerkleBlock, error) {

	if len(txHashes) == 0 || len(matched) != len(txHashes) {
		return nil, fmt.Errorf("%d transaction hashes with %d match "+
			"flags", len(txHashes), len(matched))
	}

	numTx := uint32(len(txHashes))
	m := partialMerkleTree{
		numTx:       numTx,
		allHashes:   txHashes,
		matchedBits: make([]byte, numTx),
	}
	for i, match := range matched {
		if match {
			m.matchedBits[i] = 0x01
		}
	}

	// Build the depth-first partial merkle tree.
	height := m.treeHeight()
	header.MerkleRoot = m.calcHash(height, 0)
	m.traverseAndBuild(height, 0)

	msgMerkleBlock := btcwire.MsgMerkleBlock{
		Header:       header,
		Transactions: numTx,
		Hashes:       make([]*chainhash.Hash, 0, len(m.finalHashes)),
		Flags:        make([]byte, (len(m.bits)+7)/8),
	}
	for i := range m.finalHashes {
		if err := msgMerkleBlock.AddTxHash(&m.finalHashes[i]); err != nil {
			return nil, err
		}
	}
	for i := uint32(0); i < uint32(len(m.bits)); i++ {
		msgMerkleBlock.Flags[i/8] |= m.bits[i] << (i % 8)
	}
	return &msgMerkleBlock, nil
}
