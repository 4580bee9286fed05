// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	btcwire "github.com/btcsuite/btcd/wire"
)

// decodeMerkleBlock parses a serialized parent chain merkle block.
func decodeMerkleBlock(b []byte) (*btcwire.MsgMerkleBlock, error) {
	var mb btcwire.MsgMerkleBlock
	r := bytes.NewReader(b)
	err := mb.BtcDecode(r, btcwire.ProtocolVersion, btcwire.BaseEncoding)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after merkle block",
			r.Len())
	}
	return &mb, nil
}

// decodeLockTx parses a serialized parent chain transaction.
func decodeLockTx(b []byte) (*btcwire.MsgTx, error) {
	var tx btcwire.MsgTx
	r := bytes.NewReader(b)
	if err := tx.Deserialize(r); err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after lock transaction",
			r.Len())
	}
	return &tx, nil
}

// paysBackTo reports whether pkScript relocks funds to script, either
// directly or through its pay-to-script-hash form.
func paysBackTo(pkScript, script []byte) bool {
	if bytes.Equal(pkScript, script) {
		return true
	}
	p2sh, err := ScriptHash(script)
	return err == nil && bytes.Equal(pkScript, p2sh)
}

// opcodeWithdrawProofVerify proves that coins were locked on the parent chain
// and releases the same amount from the peg pool held by the input being
// spent.  The stack holds, top first, the index of the lock output, the
// serialized lock transaction and a serialized merkle block including it.
// Without ScriptVerifyWithdraw it behaves as OP_NOP4.
//
// This opcode does not change the contents of the data stack.
func opcodeWithdrawProofVerify(op *opcode, data []byte, vm *Engine) error {
	if !vm.hasFlag(ScriptVerifyWithdraw) {
		return opcodeNop(op, data, vm)
	}

	if vm.dstack.Depth() < 3 {
		str := fmt.Sprintf("%s requires 3 stack items, have %d",
			op.name, vm.dstack.Depth())
		return scriptError(ErrWithdrawProofFormat, str)
	}
	outputIndex, err := vm.dstack.PeekInt(0, maxScriptNumLen)
	if err != nil {
		str := fmt.Sprintf("%s: bad output index: %v", op.name, err)
		return scriptError(ErrWithdrawProofFormat, str)
	}
	lockTxBytes, err := vm.dstack.PeekByteArray(1)
	if err != nil {
		return err
	}
	merkleBlockBytes, err := vm.dstack.PeekByteArray(2)
	if err != nil {
		return err
	}

	lockTx, err := decodeLockTx(lockTxBytes)
	if err != nil {
		str := fmt.Sprintf("%s: bad lock transaction: %v", op.name, err)
		return scriptError(ErrWithdrawProofFormat, str)
	}
	merkleBlock, err := decodeMerkleBlock(merkleBlockBytes)
	if err != nil {
		str := fmt.Sprintf("%s: bad merkle block: %v", op.name, err)
		return scriptError(ErrWithdrawProofFormat, str)
	}

	// The merkle block must commit to exactly the lock transaction.
	root, matches, err := extractMerkleMatches(merkleBlock)
	if err != nil {
		str := fmt.Sprintf("%s: %v", op.name, err)
		return scriptError(ErrWithdrawProofLockTx, str)
	}
	if root != merkleBlock.Header.MerkleRoot {
		str := fmt.Sprintf("%s: merkle root mismatch: got %v, header "+
			"has %v", op.name, root, merkleBlock.Header.MerkleRoot)
		return scriptError(ErrWithdrawProofLockTx, str)
	}
	lockTxHash := lockTx.TxHash()
	if len(matches) != 1 || matches[0] != lockTxHash {
		str := fmt.Sprintf("%s: merkle block does not prove lock "+
			"transaction %v", op.name, lockTxHash)
		return scriptError(ErrWithdrawProofLockTx, str)
	}

	blockHash := merkleBlock.Header.BlockHash()
	conservative := vm.hasFlag(ScriptVerifyIncreaseConfirmationsRequired)
	if !vm.checker.IsConfirmedBlock(&blockHash, conservative) {
		str := fmt.Sprintf("%s: parent block %v is not confirmed",
			op.name, blockHash)
		return scriptError(ErrWithdrawProofBlock, str)
	}

	if outputIndex < 0 || int(outputIndex) >= len(lockTx.TxOut) {
		str := fmt.Sprintf("%s: lock transaction has no output %d",
			op.name, outputIndex)
		return scriptError(ErrWithdrawProofLockTx, str)
	}
	withdrawn := lockTx.TxOut[outputIndex].Value
	if withdrawn <= 0 {
		str := fmt.Sprintf("%s: lock output %d carries no value",
			op.name, outputIndex)
		return scriptError(ErrWithdrawProofLockTx, str)
	}

	valueIn, ok := vm.checker.ValueIn().Amount()
	if !ok || valueIn < withdrawn {
		str := fmt.Sprintf("%s: input value %v cannot fund withdrawal "+
			"of %d", op.name, vm.checker.ValueIn(), withdrawn)
		return scriptError(ErrWithdrawProofValue, str)
	}
	if vm.checker.TransactionFee() < 0 {
		str := fmt.Sprintf("%s: transaction fee is unknown or negative",
			op.name)
		return scriptError(ErrWithdrawProofValue, str)
	}

	// Whatever stays in the pool is relocked by the output paired with
	// this input.
	if valueIn == withdrawn {
		return nil
	}
	relock := vm.checker.OutputOffsetFromCurrent(0)
	if relock == nil {
		str := fmt.Sprintf("%s: no output relocks the remaining %d",
			op.name, valueIn-withdrawn)
		return scriptError(ErrWithdrawProofOutput, str)
	}
	relockValue, ok := relock.Value.Amount()
	if !ok || relockValue != valueIn-withdrawn {
		str := fmt.Sprintf("%s: relock output pays %v, want %d",
			op.name, relock.Value, valueIn-withdrawn)
		return scriptError(ErrWithdrawProofOutput, str)
	}
	if !paysBackTo(relock.PkScript, vm.script) {
		str := fmt.Sprintf("%s: relock output pays to a different "+
			"script", op.name)
		return scriptError(ErrWithdrawProofOutput, str)
	}
	return nil
}

// opcodeReorgProofVerify lets a withdrawal be reversed when the parent block
// it cited was reorganized away before the deadline height.  The stack holds,
// top first, the 32-byte hash of the cited block and the deadline.  The
// output paired with the previous input must merge both inputs back into the
// pool.  Without ScriptVerifyWithdraw it behaves as OP_NOP5.
//
// This opcode does not change the contents of the data stack.
func opcodeReorgProofVerify(op *opcode, data []byte, vm *Engine) error {
	if !vm.hasFlag(ScriptVerifyWithdraw) {
		return opcodeNop(op, data, vm)
	}

	if vm.dstack.Depth() < 2 {
		str := fmt.Sprintf("%s requires 2 stack items, have %d",
			op.name, vm.dstack.Depth())
		return scriptError(ErrReorgProofFormat, str)
	}
	hashBytes, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	blockHash, err := chainhash.NewHash(hashBytes)
	if err != nil {
		str := fmt.Sprintf("%s: bad block hash: %v", op.name, err)
		return scriptError(ErrReorgProofFormat, str)
	}
	deadline, err := vm.dstack.PeekInt(1, cltvMaxScriptNumLen)
	if err != nil {
		str := fmt.Sprintf("%s: bad deadline: %v", op.name, err)
		return scriptError(ErrReorgProofFormat, str)
	}

	if vm.checker.IsConfirmedBlock(blockHash, false) {
		str := fmt.Sprintf("%s: parent block %v is still confirmed",
			op.name, blockHash)
		return scriptError(ErrReorgProofBlock, str)
	}

	height := int64(vm.checker.SpendHeight())
	if height < 0 || height > int64(deadline) {
		str := fmt.Sprintf("%s: spend height %d is outside [0, %d]",
			op.name, height, deadline)
		return scriptError(ErrReorgProofDeadline, str)
	}

	prevIn, ok := vm.checker.ValueInPrevIn().Amount()
	if !ok {
		return scriptError(ErrReorgProofValue, op.name+
			": previous input value is not explicit")
	}
	valueIn, ok := vm.checker.ValueIn().Amount()
	if !ok {
		return scriptError(ErrReorgProofValue, op.name+
			": input value is not explicit")
	}
	merge := vm.checker.OutputOffsetFromCurrent(-1)
	if merge == nil {
		return scriptError(ErrReorgProofValue, op.name+
			": no output merges the reclaimed value")
	}
	mergeValue, ok := merge.Value.Amount()
	if !ok || mergeValue != prevIn+valueIn {
		str := fmt.Sprintf("%s: merge output pays %v, want %d",
			op.name, merge.Value, prevIn+valueIn)
		return scriptError(ErrReorgProofValue, str)
	}
	return nil
}
