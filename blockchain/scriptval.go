// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"runtime"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/elementsalpha/alphad/txscript"
	"github.com/elementsalpha/alphad/wire"
)

// txValidateItem holds a transaction input along with the checker bound to
// it.
type txValidateItem struct {
	txInIndex int
	txIn      *wire.TxIn
	pkScript  []byte
	checker   txscript.SignatureChecker
}

// txValidator provides a type which asynchronously validates transaction
// inputs.  It provides several channels for communication and a processing
// function that is intended to be in run multiple goroutines.
type txValidator struct {
	validateChan chan *txValidateItem
	quitChan     chan struct{}
	resultChan   chan error
	tx           *wire.MsgTx
	flags        txscript.ScriptFlags
}

// sendResult sends the result of a script pair validation on the internal
// result channel while respecting the quit channel.  This allows orderly
// shutdown when the validation process is aborted early due to a validation
// error in one of the other goroutines.
func (v *txValidator) sendResult(result error) {
	select {
	case v.resultChan <- result:
	case <-v.quitChan:
	}
}

// validateItem runs the script pair of one input.
func validateItem(tx *wire.MsgTx, flags txscript.ScriptFlags,
	txVI *txValidateItem) error {

	sigScript := txVI.txIn.SignatureScript
	err := txscript.VerifyScript(sigScript, txVI.pkScript, flags,
		txVI.checker)
	if err != nil {
		str := fmt.Sprintf("failed to validate input %s:%d which "+
			"references output %v - %v (input script bytes %x, prev "+
			"output script bytes %x)", tx.TxHash(), txVI.txInIndex,
			txVI.txIn.PreviousOutPoint, err, sigScript, txVI.pkScript)
		return RuleError{
			ErrorCode:   ErrScriptValidation,
			Description: str,
			Err:         err,
		}
	}
	return nil
}

// validateHandler consumes items to validate from the internal validate channel
// and returns the result of the validation on the internal result channel. It
// must be run as a goroutine.
func (v *txValidator) validateHandler() {
out:
	for {
		select {
		case txVI := <-v.validateChan:
			if err := validateItem(v.tx, v.flags, txVI); err != nil {
				v.sendResult(err)
				break out
			}

			// Validation succeeded.
			v.sendResult(nil)

		case <-v.quitChan:
			break out
		}
	}
}

// Validate validates the scripts for all of the passed transaction inputs using
// multiple goroutines.
func (v *txValidator) Validate(items []*txValidateItem) error {
	if len(items) == 0 {
		return nil
	}

	// Limit the number of goroutines to do script validation based on the
	// number of processor cores.  This helps ensure the system stays
	// reasonably responsive under heavy load.
	maxGoRoutines := runtime.NumCPU() * 3
	if maxGoRoutines <= 0 {
		maxGoRoutines = 1
	}
	if maxGoRoutines > len(items) {
		maxGoRoutines = len(items)
	}

	// Start up validation handlers that are used to asynchronously
	// validate each transaction input.
	for i := 0; i < maxGoRoutines; i++ {
		go v.validateHandler()
	}

	// Validate each of the inputs.  The quit channel is closed when any
	// errors occur so all processing goroutines exit regardless of which
	// input had the validation error.
	numInputs := len(items)
	currentItem := 0
	processedItems := 0
	for processedItems < numInputs {
		// Only send items while there are still items that need to
		// be processed.  The select statement will never select a nil
		// channel.
		var validateChan chan *txValidateItem
		var item *txValidateItem
		if currentItem < numInputs {
			validateChan = v.validateChan
			item = items[currentItem]
		}

		select {
		case validateChan <- item:
			currentItem++

		case err := <-v.resultChan:
			processedItems++
			if err != nil {
				close(v.quitChan)
				return err
			}
		}
	}

	close(v.quitChan)
	return nil
}

// newTxValidator returns a new instance of txValidator to be used for
// validating transaction scripts asynchronously.
func newTxValidator(tx *wire.MsgTx, flags txscript.ScriptFlags) *txValidator {
	return &txValidator{
		validateChan: make(chan *txValidateItem),
		quitChan:     make(chan struct{}),
		resultChan:   make(chan error),
		tx:           tx,
		flags:        flags,
	}
}

// zeroHash is the hash of the null outpoint spent by coinbases.
var zeroHash chainhash.Hash

// isCoinBase reports whether tx is a coinbase: a single input spending the
// null outpoint.
func isCoinBase(tx *wire.MsgTx) bool {
	if len(tx.TxIn) != 1 {
		return false
	}
	prevOut := &tx.TxIn[0].PreviousOutPoint
	return prevOut.Index == wire.MaxPrevOutIndex && prevOut.Hash == zeroHash
}

// newValidateItems builds one item per input of tx.  Each input is checked by
// a txscript.FullChecker so the peg opcodes see the previous input value, the
// explicit fee, the spend height and the parent chain oracle.  A fee that
// cannot be computed because values are blinded is passed on as -1.
func newValidateItems(tx *wire.MsgTx, prevOuts PrevOutputFetcher,
	sigCache *txscript.SigCache, oracle txscript.ConfirmationOracle,
	spendHeight int32) ([]*txValidateItem, error) {

	if len(tx.TxIn) == 0 {
		return nil, ruleError(ErrNoTxInputs, fmt.Sprintf("transaction "+
			"%v has no inputs", tx.TxHash()))
	}
	if isCoinBase(tx) {
		return nil, nil
	}

	spent, err := fetchPrevOutputs(tx, prevOuts)
	if err != nil {
		return nil, err
	}

	fee, err := CalcFee(tx, prevOuts)
	if err != nil {
		log.Debugf("Fee of transaction %v unavailable to scripts: %v",
			tx.TxHash(), err)
		fee = -1
	}

	items := make([]*txValidateItem, 0, len(tx.TxIn))
	prevInValue := wire.NullValue()
	for txInIdx, txIn := range tx.TxIn {
		prevOut := spent[txInIdx]
		cfg := txscript.FullCheckerConfig{
			PrevInValue: prevInValue,
			Fee:         fee,
			SpendHeight: spendHeight,
			Oracle:      oracle,
			SigCache:    sigCache,
		}
		items = append(items, &txValidateItem{
			txInIndex: txInIdx,
			txIn:      txIn,
			pkScript:  prevOut.PkScript,
			checker: txscript.NewFullChecker(tx, txInIdx,
				prevOut.Value, cfg),
		})
		prevInValue = prevOut.Value
	}
	return items, nil
}

// ValidateTransactionScripts validates the scripts for the passed transaction
// using multiple goroutines.  The first failing input aborts validation and
// is reported as a RuleError.  Coinbase transactions have no scripts to
// validate.
func ValidateTransactionScripts(tx *wire.MsgTx, prevOuts PrevOutputFetcher,
	flags txscript.ScriptFlags, sigCache *txscript.SigCache,
	oracle txscript.ConfirmationOracle, spendHeight int32) error {

	txValItems, err := newValidateItems(tx, prevOuts, sigCache, oracle,
		spendHeight)
	if err != nil {
		return err
	}

	// Validate all of the inputs.
	validator := newTxValidator(tx, flags)
	if err := validator.Validate(txValItems); err != nil {
		return err
	}

	log.Tracef("Validated %d inputs of transaction %v", len(txValItems),
		tx.TxHash())
	return nil
}

// ValidateTransactionInputs validates every input of tx without stopping at
// the first failure.  The returned slice holds the result of each input, nil
// on success.  The error covers problems that prevent validating the inputs
// at all, such as a missing previous output.
func ValidateTransactionInputs(tx *wire.MsgTx, prevOuts PrevOutputFetcher,
	flags txscript.ScriptFlags, sigCache *txscript.SigCache,
	oracle txscript.ConfirmationOracle, spendHeight int32) ([]error, error) {

	items, err := newValidateItems(tx, prevOuts, sigCache, oracle,
		spendHeight)
	if err != nil {
		return nil, err
	}

	results := make([]error, len(items))
	for i, item := range items {
		results[i] = validateItem(tx, flags, item)
	}
	return results, nil
}
