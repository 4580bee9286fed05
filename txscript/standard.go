// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
)

// PayToPubKeyHashScript creates a new script to pay a transaction output to
// the hash of the passed serialized public key.
func PayToPubKeyHashScript(serializedPubKey []byte) ([]byte, error) {
	return NewScriptBuilder().AddOp(OP_DUP).AddOp(OP_HASH160).
		AddData(btcutil.Hash160(serializedPubKey)).AddOp(OP_EQUALVERIFY).
		AddOp(OP_CHECKSIG).Script()
}

// MultiSigScript returns a valid script for a multisignature redemption where
// nrequired of the keys in pubkeys are required to have signed the transaction
// for success.  An Error with the error code ErrInvalidSignatureCount will be
// returned if nrequired is larger than the number of keys provided.
func MultiSigScript(pubkeys []*btcec.PublicKey, nrequired int) ([]byte, error) {
	if len(pubkeys) < nrequired {
		str := fmt.Sprintf("unable to generate multisig script with "+
			"%d required signatures when there are only %d public "+
			"keys available", nrequired, len(pubkeys))
		return nil, scriptError(ErrInvalidSignatureCount, str)
	}
	if len(pubkeys) > MaxPubKeysPerMultiSig {
		str := fmt.Sprintf("multisig script with %d public keys "+
			"exceeds the limit of %d", len(pubkeys),
			MaxPubKeysPerMultiSig)
		return nil, scriptError(ErrInvalidPubKeyCount, str)
	}

	builder := NewScriptBuilder().AddInt64(int64(nrequired))
	for _, key := range pubkeys {
		builder.AddData(key.SerializeCompressed())
	}
	builder.AddInt64(int64(len(pubkeys)))
	builder.AddOp(OP_CHECKMULTISIG)

	return builder.Script()
}
