// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/elementsalpha/alphad/wire"
)

// SigHashType represents hash type bits at the end of a signature.
type SigHashType uint32

// Hash type bits from the end of a signature.
const (
	SigHashAll          SigHashType = 0x1
	SigHashNone         SigHashType = 0x2
	SigHashSingle       SigHashType = 0x3
	SigHashAnyOneCanPay SigHashType = 0x80

	// sigHashMask defines the number of bits of the hash type which is used
	// to identify which outputs are signed.
	sigHashMask = 0x1f
)

// sigHashSingleBug is the hash returned for SIGHASH_SINGLE when the input
// has no matching output.  Signing it commits to nothing.
var sigHashSingleBug = chainhash.Hash{0x01}

// shallowCopyTx creates a shallow copy of the transaction for use when
// calculating the signature hash.  It is used over the Copy method on the
// transaction itself since that is a deep copy and therefore does more work
// and allocates much more space than needed.
func shallowCopyTx(tx *wire.MsgTx) wire.MsgTx {
	// As an additional memory optimization, use contiguous backing arrays
	// for the copied inputs and outputs and point the final slice of
	// pointers into the contiguous arrays.  This avoids a lot of small
	// allocations.
	txCopy := wire.MsgTx{
		Version:  tx.Version,
		TxIn:     make([]*wire.TxIn, len(tx.TxIn)),
		TxOut:    make([]*wire.TxOut, len(tx.TxOut)),
		LockTime: tx.LockTime,
	}
	txIns := make([]wire.TxIn, len(tx.TxIn))
	for i, oldTxIn := range tx.TxIn {
		txIns[i] = *oldTxIn
		txCopy.TxIn[i] = &txIns[i]
	}
	txOuts := make([]wire.TxOut, len(tx.TxOut))
	for i, oldTxOut := range tx.TxOut {
		txOuts[i] = *oldTxOut
		txCopy.TxOut[i] = &txOuts[i]
	}
	return txCopy
}

// SignatureHash computes the digest a signature with the given hash type
// commits to for input idx of tx.  scriptCode is the part of the spent
// script being executed and spent is the value of the output being spent.
//
// When hashType is SigHashSingle and idx has no corresponding output, the
// well known hash 1 is returned with no error.
func SignatureHash(scriptCode []byte, spent wire.Value, tx *wire.MsgTx,
	idx int, hashType SigHashType) (*chainhash.Hash, error) {

	if idx < 0 || idx >= len(tx.TxIn) {
		str := fmt.Sprintf("transaction input index %d is out of "+
			"range (%d inputs)", idx, len(tx.TxIn))
		return nil, scriptError(ErrInvalidIndex, str)
	}

	if hashType&sigHashMask == SigHashSingle && idx >= len(tx.TxOut) {
		hash := sigHashSingleBug
		return &hash, nil
	}

	// Remove all instances of OP_CODESEPARATOR from the script.
	scriptCode = removeOpcode(scriptCode, OP_CODESEPARATOR)

	// Make a shallow copy of the transaction, zeroing out the script for
	// all inputs that are not currently being processed.
	txCopy := shallowCopyTx(tx)
	for i := range txCopy.TxIn {
		if i == idx {
			txCopy.TxIn[idx].SignatureScript = scriptCode
		} else {
			txCopy.TxIn[i].SignatureScript = nil
		}
	}

	switch hashType & sigHashMask {
	case SigHashNone:
		txCopy.TxOut = txCopy.TxOut[0:0] // Empty slice.
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}

	case SigHashSingle:
		// Resize output array to up to and including requested index.
		txCopy.TxOut = txCopy.TxOut[:idx+1]

		// All but current output get zeroed out.
		for i := 0; i < idx; i++ {
			txCopy.TxOut[i].Value = wire.NullValue()
			txCopy.TxOut[i].PkScript = nil
		}

		// Sequence on all other inputs is 0, too.
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}

	default:
		// Consensus treats undefined hashtypes like normal SigHashAll
		// for purposes of hash generation.
		fallthrough
	case SigHashAll:
		// Nothing special here.
	}
	if hashType&SigHashAnyOneCanPay != 0 {
		txCopy.TxIn = txCopy.TxIn[idx : idx+1]
	}

	// The final hash is the double sha256 of the modified transaction
	// followed by the spent value and the hash type encoded as a 4-byte
	// little-endian value.
	spentBytes, err := spent.Bytes()
	if err != nil {
		return nil, err
	}
	wbuf := bytes.NewBuffer(make([]byte, 0,
		txCopy.SerializeSize()+len(spentBytes)+4))
	if err := txCopy.Serialize(wbuf); err != nil {
		return nil, err
	}
	wbuf.Write(spentBytes)
	var hashTypeBytes [4]byte
	binary.LittleEndian.PutUint32(hashTypeBytes[:], uint32(hashType))
	wbuf.Write(hashTypeBytes[:])

	hash := chainhash.DoubleHashH(wbuf.Bytes())
	return &hash, nil
}
