// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/elementsalpha/alphad/wire"
)

// RawTxInSignature returns the serialized ECDSA signature for the input idx of
// the given transaction spending an output worth spent, with hashType
// appended to it.
func RawTxInSignature(tx *wire.MsgTx, idx int, subScript []byte,
	spent wire.Value, hashType SigHashType, key *btcec.PrivateKey) ([]byte, error) {

	hash, err := SignatureHash(subScript, spent, tx, idx, hashType)
	if err != nil {
		return nil, err
	}
	signature := ecdsa.Sign(key, hash[:])

	return append(signature.Serialize(), byte(hashType)), nil
}

// SignatureScript creates an input signature script for tx to spend coins sent
// from a previous output to the owner of privKey.  tx must include all
// transaction inputs and outputs, however txin scripts are allowed to be filled
// or empty.  The returned script is calculated to be used as the idx'th txin
// sigscript for tx.  subscript is the PkScript of the previous output being
// used as the idx'th input.  privKey is serialized in either a compressed or
// uncompressed format based on compress.  This format must match the same
// format used to generate the payment address, or the script validation will
// fail.
func SignatureScript(tx *wire.MsgTx, idx int, subscript []byte,
	spent wire.Value, hashType SigHashType, privKey *btcec.PrivateKey,
	compress bool) ([]byte, error) {

	sig, err := RawTxInSignature(tx, idx, subscript, spent, hashType, privKey)
	if err != nil {
		return nil, err
	}

	pk := privKey.PubKey()
	var pkData []byte
	if compress {
		pkData = pk.SerializeCompressed()
	} else {
		pkData = pk.SerializeUncompressed()
	}

	return NewScriptBuilder().AddData(sig).AddData(pkData).Script()
}
