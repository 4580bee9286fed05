// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/elementsalpha/alphad/wire"
)

// PrevOutputFetcher returns the output an input spends, or nil when it is
// unknown.
type PrevOutputFetcher interface {
	FetchPrevOutput(op wire.OutPoint) *wire.TxOut
}

// PrevOutputMap is a PrevOutputFetcher backed by a map.
type PrevOutputMap map[wire.OutPoint]*wire.TxOut

// FetchPrevOutput returns the output stored for op.
func (m PrevOutputMap) FetchPrevOutput(op wire.OutPoint) *wire.TxOut {
	return m[op]
}

// explicitAmount returns the amount of an explicit value within the money
// range.
func explicitAmount(v wire.Value, what string) (int64, error) {
	amount, ok := v.Amount()
	if !ok {
		str := fmt.Sprintf("%s has a %v value", what, v.Type())
		return 0, ruleError(ErrConfidentialValue, str)
	}
	if amount < 0 || amount > btcutil.MaxSatoshi {
		str := fmt.Sprintf("%s value of %v is outside the valid range "+
			"[0, %v]", what, btcutil.Amount(amount),
			btcutil.Amount(btcutil.MaxSatoshi))
		return 0, ruleError(ErrBadTxOutValue, str)
	}
	return amount, nil
}

// missingTxOutError returns the ErrMissingTxOut rule error for input i of tx.
func missingTxOutError(tx *wire.MsgTx, i int) error {
	str := fmt.Sprintf("output %v referenced from input %d of "+
		"transaction %v does not exist", tx.TxIn[i].PreviousOutPoint, i,
		tx.TxHash())
	return ruleError(ErrMissingTxOut, str)
}

// fetchPrevOutputs returns the output spent by every input of tx, in input
// order.  A missing output is an ErrMissingTxOut rule error.
func fetchPrevOutputs(tx *wire.MsgTx, prevOuts PrevOutputFetcher) ([]*wire.TxOut, error) {
	spent := make([]*wire.TxOut, len(tx.TxIn))
	for i, txIn := range tx.TxIn {
		prevOut := prevOuts.FetchPrevOutput(txIn.PreviousOutPoint)
		if prevOut == nil {
			return nil, missingTxOutError(tx, i)
		}
		spent[i] = prevOut
	}
	return spent, nil
}

// CalcFee returns the explicit fee paid by tx, the spent input values minus
// the output values.  Every value involved must be explicit.  A missing
// spent output is reported before any value is examined.
func CalcFee(tx *wire.MsgTx, prevOuts PrevOutputFetcher) (int64, error) {
	spent, err := fetchPrevOutputs(tx, prevOuts)
	if err != nil {
		return 0, err
	}

	var totalIn int64
	for i, prevOut := range spent {
		amount, err := explicitAmount(prevOut.Value,
			fmt.Sprintf("output spent by input %d", i))
		if err != nil {
			return 0, err
		}

		// Each amount is bounded by MaxSatoshi, so the running sum
		// only needs checking against the same bound.
		totalIn += amount
		if totalIn > btcutil.MaxSatoshi {
			str := fmt.Sprintf("total input value of %v exceeds the "+
				"maximum allowed", btcutil.Amount(totalIn))
			return 0, ruleError(ErrBadTxOutValue, str)
		}
	}

	var totalOut int64
	for i, txOut := range tx.TxOut {
		amount, err := explicitAmount(txOut.Value,
			fmt.Sprintf("output %d", i))
		if err != nil {
			return 0, err
		}
		totalOut += amount
		if totalOut > btcutil.MaxSatoshi {
			str := fmt.Sprintf("total output value of %v exceeds the "+
				"maximum allowed", btcutil.Amount(totalOut))
			return 0, ruleError(ErrBadTxOutValue, str)
		}
	}

	if totalIn < totalOut {
		str := fmt.Sprintf("total value of all transaction outputs is "+
			"%v which is higher than the input amount of %v",
			btcutil.Amount(totalOut), btcutil.Amount(totalIn))
		return 0, ruleError(ErrSpendTooHigh, str)
	}
	return totalIn - totalOut, nil
}
