// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/elementsalpha/alphad/database/engine/leveldb"
	"github.com/elementsalpha/alphad/pegindex"
	"github.com/elementsalpha/alphad/txscript"
	"github.com/elementsalpha/alphad/wire"
	"github.com/stretchr/testify/require"
)

// confidential returns a blinded value for tests.
func confidential(t *testing.T) wire.Value {
	t.Helper()

	commitment := append([]byte{0x08}, bytes.Repeat([]byte{0x5a}, 32)...)
	v, err := wire.ConfidentialValue(commitment)
	require.NoError(t, err)
	return v
}

func TestCalcFee(t *testing.T) {
	t.Parallel()

	opA := *wire.NewOutPoint(&chainhash.Hash{0x0a}, 0)
	opB := *wire.NewOutPoint(&chainhash.Hash{0x0b}, 3)

	tests := []struct {
		name   string
		inputs map[wire.OutPoint]wire.Value
		outs   []wire.Value
		fee    int64
		code   ErrorCode
	}{{
		name: "simple",
		inputs: map[wire.OutPoint]wire.Value{
			opA: wire.ExplicitValue(600), opB: wire.ExplicitValue(400),
		},
		outs: []wire.Value{wire.ExplicitValue(900), wire.ExplicitValue(90)},
		fee:  10,
	}, {
		name:   "zero fee",
		inputs: map[wire.OutPoint]wire.Value{opA: wire.ExplicitValue(5)},
		outs:   []wire.Value{wire.ExplicitValue(5)},
	}, {
		name:   "no outputs",
		inputs: map[wire.OutPoint]wire.Value{opA: wire.ExplicitValue(5)},
		fee:    5,
	}, {
		name:   "spend too high",
		inputs: map[wire.OutPoint]wire.Value{opA: wire.ExplicitValue(5)},
		outs:   []wire.Value{wire.ExplicitValue(6)},
		code:   ErrSpendTooHigh,
	}, {
		name:   "null output",
		inputs: map[wire.OutPoint]wire.Value{opA: wire.ExplicitValue(5)},
		outs:   []wire.Value{wire.NullValue()},
		code:   ErrConfidentialValue,
	}, {
		name:   "negative output",
		inputs: map[wire.OutPoint]wire.Value{opA: wire.ExplicitValue(5)},
		outs:   []wire.Value{wire.ExplicitValue(-1)},
		code:   ErrBadTxOutValue,
	}, {
		name: "input total above money range",
		inputs: map[wire.OutPoint]wire.Value{
			opA: wire.ExplicitValue(btcutil.MaxSatoshi),
			opB: wire.ExplicitValue(1),
		},
		code: ErrBadTxOutValue,
	}, {
		name:   "output above money range",
		inputs: map[wire.OutPoint]wire.Value{opA: wire.ExplicitValue(5)},
		outs:   []wire.Value{wire.ExplicitValue(btcutil.MaxSatoshi + 1)},
		code:   ErrBadTxOutValue,
	}}

	for _, test := range tests {
		tx := wire.NewMsgTx(1)
		prevOuts := make(PrevOutputMap)
		for _, op := range []wire.OutPoint{opA, opB} {
			v, ok := test.inputs[op]
			if !ok {
				continue
			}
			op := op
			tx.AddTxIn(wire.NewTxIn(&op, nil))
			prevOuts[op] = wire.NewTxOut(v, nil)
		}
		for _, v := range test.outs {
			tx.AddTxOut(wire.NewTxOut(v, nil))
		}

		fee, err := CalcFee(tx, prevOuts)
		if test.code != 0 {
			var rerr RuleError
			require.True(t, errors.As(err, &rerr), test.name)
			require.Equal(t, test.code, rerr.ErrorCode, test.name)
			continue
		}
		require.NoError(t, err, test.name)
		require.Equal(t, test.fee, fee, test.name)
	}

	// Blinded and missing inputs.
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(&opA, nil))
	_, err := CalcFee(tx, PrevOutputMap{opA: wire.NewTxOut(confidential(t), nil)})
	requireRuleError(t, err, ErrConfidentialValue)
	_, err = CalcFee(tx, PrevOutputMap{})
	requireRuleError(t, err, ErrMissingTxOut)
}

func requireRuleError(t *testing.T, err error, code ErrorCode) {
	t.Helper()

	var rerr RuleError
	require.True(t, errors.As(err, &rerr), "got %v", err)
	require.Equal(t, code, rerr.ErrorCode, rerr.Description)
}

// p2pkhFixture is a transaction spending numInputs pay-to-pubkey-hash outputs
// of 1000 each, all signed with the same key.
type p2pkhFixture struct {
	key      *btcec.PrivateKey
	pkScript []byte
	tx       *wire.MsgTx
	prevOuts PrevOutputMap
}

func newP2PKHFixture(t *testing.T, numInputs int) *p2pkhFixture {
	t.Helper()

	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	pkScript, err := txscript.PayToPubKeyHashScript(
		key.PubKey().SerializeCompressed())
	require.NoError(t, err)

	f := &p2pkhFixture{
		key:      key,
		pkScript: pkScript,
		tx:       wire.NewMsgTx(1),
		prevOuts: make(PrevOutputMap),
	}
	for i := 0; i < numInputs; i++ {
		op := wire.NewOutPoint(&chainhash.Hash{byte(i), 0x77}, uint32(i))
		f.tx.AddTxIn(wire.NewTxIn(op, nil))
		f.prevOuts[*op] = wire.NewTxOut(wire.ExplicitValue(1000), pkScript)
	}
	f.tx.AddTxOut(wire.NewTxOut(wire.ExplicitValue(int64(numInputs)*1000-10),
		pkScript))

	for i := range f.tx.TxIn {
		f.sign(t, i, wire.ExplicitValue(1000))
	}
	return f
}

// sign signs input idx committing to the given spent value.
func (f *p2pkhFixture) sign(t *testing.T, idx int, spent wire.Value) {
	t.Helper()

	sigScript, err := txscript.SignatureScript(f.tx, idx, f.pkScript,
		spent, txscript.SigHashAll, f.key, true)
	require.NoError(t, err)
	f.tx.TxIn[idx].SignatureScript = sigScript
}

func TestValidateTransactionScripts(t *testing.T) {
	t.Parallel()

	f := newP2PKHFixture(t, 12)
	sigCache := txscript.NewSigCache(100)

	err := ValidateTransactionScripts(f.tx, f.prevOuts,
		txscript.StandardVerifyFlags, sigCache, nil, 0)
	require.NoError(t, err)
	require.Equal(t, 12, sigCache.Len())

	// Cached signatures validate the same way.
	err = ValidateTransactionScripts(f.tx, f.prevOuts,
		txscript.StandardVerifyFlags, sigCache, nil, 0)
	require.NoError(t, err)

	// A signature over the wrong spent value fails only its own input.
	f.sign(t, 7, wire.ExplicitValue(999))
	err = ValidateTransactionScripts(f.tx, f.prevOuts,
		txscript.StandardVerifyFlags, nil, nil, 0)
	requireRuleError(t, err, ErrScriptValidation)
	require.ErrorIs(t, err, txscript.ErrEvalFalse)
	require.Contains(t, err.Error(), f.tx.TxHash().String()+":7 ")
}

func TestValidateTransactionScriptsMissingInput(t *testing.T) {
	t.Parallel()

	f := newP2PKHFixture(t, 3)
	delete(f.prevOuts, f.tx.TxIn[2].PreviousOutPoint)

	err := ValidateTransactionScripts(f.tx, f.prevOuts,
		txscript.StandardVerifyFlags, nil, nil, 0)
	requireRuleError(t, err, ErrMissingTxOut)
}

// TestValidateMissingAfterNonExplicit ensures a missing spent output is
// reported even when an earlier spent output is blinded or null, which stops
// the fee from being computed before the missing one is reached.
func TestValidateMissingAfterNonExplicit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value wire.Value
	}{
		{name: "confidential", value: confidential(t)},
		{name: "null", value: wire.NullValue()},
	}
	for _, test := range tests {
		first := wire.NewOutPoint(&chainhash.Hash{0x44}, 0)
		second := wire.NewOutPoint(&chainhash.Hash{0x45}, 1)
		tx := wire.NewMsgTx(1)
		tx.AddTxIn(wire.NewTxIn(first, nil))
		tx.AddTxIn(wire.NewTxIn(second, nil))
		tx.AddTxOut(wire.NewTxOut(wire.ExplicitValue(1), []byte{txscript.OP_TRUE}))
		prevOuts := PrevOutputMap{
			*first: wire.NewTxOut(test.value, []byte{txscript.OP_TRUE}),
		}

		_, err := CalcFee(tx, prevOuts)
		requireRuleError(t, err, ErrMissingTxOut)

		err = ValidateTransactionScripts(tx, prevOuts,
			txscript.StandardVerifyFlags, nil, nil, 0)
		requireRuleError(t, err, ErrMissingTxOut)
		require.Contains(t, err.Error(), "input 1", test.name)

		results, err := ValidateTransactionInputs(tx, prevOuts,
			txscript.StandardVerifyFlags, nil, nil, 0)
		requireRuleError(t, err, ErrMissingTxOut)
		require.Nil(t, results, test.name)
	}
}

func TestValidateTransactionScriptsShape(t *testing.T) {
	t.Parallel()

	err := ValidateTransactionScripts(wire.NewMsgTx(1), PrevOutputMap{},
		txscript.StandardVerifyFlags, nil, nil, 0)
	requireRuleError(t, err, ErrNoTxInputs)

	coinbase := wire.NewMsgTx(1)
	coinbase.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{},
		wire.MaxPrevOutIndex), []byte{0x51, 0x52}))
	coinbase.AddTxOut(wire.NewTxOut(wire.ExplicitValue(50), []byte{0x51}))
	err = ValidateTransactionScripts(coinbase, PrevOutputMap{},
		txscript.StandardVerifyFlags, nil, nil, 0)
	require.NoError(t, err)
}

// TestValidateTransactionScriptsBlinded ensures a blinded input does not stop
// ordinary scripts from validating.
func TestValidateTransactionScriptsBlinded(t *testing.T) {
	t.Parallel()

	op := wire.NewOutPoint(&chainhash.Hash{0x33}, 0)
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(op, nil))
	tx.AddTxOut(wire.NewTxOut(confidential(t), []byte{txscript.OP_TRUE}))
	prevOuts := PrevOutputMap{
		*op: wire.NewTxOut(confidential(t), []byte{txscript.OP_TRUE}),
	}

	err := ValidateTransactionScripts(tx, prevOuts,
		txscript.StandardVerifyFlags, nil, nil, 0)
	require.NoError(t, err)
}

// reorgSpend merges a pool input worth 30 with a withdrawal input worth 70
// locked by a reorg proof script citing parentBlock with a deadline of 60.
func reorgSpend(t *testing.T, parentBlock chainhash.Hash) (*wire.MsgTx, PrevOutputMap) {
	t.Helper()

	lockScript, err := txscript.NewScriptBuilder().
		AddInt64(60).
		AddData(parentBlock[:]).
		AddOp(txscript.OP_REORGPROOFVERIFY).
		AddOp(txscript.OP_2DROP).
		AddOp(txscript.OP_TRUE).
		Script()
	require.NoError(t, err)

	pool := wire.NewOutPoint(&chainhash.Hash{0x01}, 0)
	withdrawal := wire.NewOutPoint(&chainhash.Hash{0x02}, 1)
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(pool, nil))
	tx.AddTxIn(wire.NewTxIn(withdrawal, nil))
	tx.AddTxOut(wire.NewTxOut(wire.ExplicitValue(100), []byte{txscript.OP_TRUE}))

	return tx, PrevOutputMap{
		*pool:       wire.NewTxOut(wire.ExplicitValue(30), []byte{txscript.OP_TRUE}),
		*withdrawal: wire.NewTxOut(wire.ExplicitValue(70), lockScript),
	}
}

// TestValidateReorgProof runs a reorg proof spend against a peg index, which
// exercises the previous input value, spend height and oracle wiring.
func TestValidateReorgProof(t *testing.T) {
	t.Parallel()

	db, err := leveldb.NewDB(filepath.Join(t.TempDir(), "pegindex"), true)
	require.NoError(t, err)
	idx := pegindex.New(db, pegindex.Config{})
	defer idx.Close()

	parentBlock := chainhash.Hash{0xab, 0xcd}
	tx, prevOuts := reorgSpend(t, parentBlock)

	// The cited block is not confirmed, so the proof holds.
	err = ValidateTransactionScripts(tx, prevOuts,
		txscript.StandardVerifyFlags, nil, idx, 50)
	require.NoError(t, err)

	// Past the deadline.
	err = ValidateTransactionScripts(tx, prevOuts,
		txscript.StandardVerifyFlags, nil, idx, 61)
	requireRuleError(t, err, ErrScriptValidation)
	require.ErrorIs(t, err, txscript.ErrReorgProofDeadline)

	// Once the block is confirmed the proof no longer holds.
	require.NoError(t, idx.Connect(&parentBlock, 20))
	err = ValidateTransactionScripts(tx, prevOuts,
		txscript.StandardVerifyFlags, nil, idx, 50)
	require.ErrorIs(t, err, txscript.ErrReorgProofBlock)

	// The merge output must carry both inputs.
	require.NoError(t, idx.Disconnect(&parentBlock))
	tx.TxOut[0].Value = wire.ExplicitValue(99)
	err = ValidateTransactionScripts(tx, prevOuts,
		txscript.StandardVerifyFlags, nil, idx, 50)
	require.ErrorIs(t, err, txscript.ErrReorgProofValue)
}

func TestValidateTransactionInputs(t *testing.T) {
	t.Parallel()

	f := newP2PKHFixture(t, 4)
	f.sign(t, 1, wire.ExplicitValue(1))
	f.tx.TxIn[3].SignatureScript = nil

	results, err := ValidateTransactionInputs(f.tx, f.prevOuts,
		txscript.StandardVerifyFlags, nil, nil, 0)
	require.NoError(t, err)
	require.Len(t, results, 4)
	require.NoError(t, results[0])
	require.ErrorIs(t, results[1], txscript.ErrEvalFalse)
	require.NoError(t, results[2])
	requireRuleError(t, results[3], ErrScriptValidation)

	delete(f.prevOuts, f.tx.TxIn[0].PreviousOutPoint)
	_, err = ValidateTransactionInputs(f.tx, f.prevOuts,
		txscript.StandardVerifyFlags, nil, nil, 0)
	requireRuleError(t, err, ErrMissingTxOut)
}
