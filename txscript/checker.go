// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/elementsalpha/alphad/wire"
)

// SignatureChecker supplies the transaction context a script is evaluated
// in.  The engine enforces every encoding rule itself and only asks the
// checker questions it cannot answer from the script alone.
type SignatureChecker interface {
	// CheckSig reports whether sig, which still carries its trailing hash
	// type byte, is a valid signature by pubKey over the input with the
	// given script code.
	CheckSig(sig, pubKey, scriptCode []byte) bool

	// CheckLockTime reports whether the transaction satisfies an absolute
	// lock time, or a relative one when isSequence is set.
	CheckLockTime(lockTime int64, isSequence bool) bool

	// OutputOffsetFromCurrent returns the output whose index is the
	// current input index plus offset, or nil.
	OutputOffsetFromCurrent(offset int) *wire.TxOut

	PrevOut() wire.OutPoint
	ValueIn() wire.Value
	ValueInPrevIn() wire.Value

	// TransactionFee returns the explicit fee of the transaction, or -1
	// when unknown.
	TransactionFee() int64

	// SpendHeight returns the height the spend is evaluated at, or -1.
	SpendHeight() int32

	// IsConfirmedBlock reports whether the parent chain block is buried
	// deep enough, using the stricter depth when conservative is set.
	IsConfirmedBlock(hash *chainhash.Hash, conservative bool) bool
}

// ConfirmationOracle answers parent chain confirmation queries for the
// federated peg opcodes.
type ConfirmationOracle interface {
	IsConfirmed(hash *chainhash.Hash, conservative bool) bool
}

// NullChecker is bound to no transaction.  Every signature is invalid, no
// lock time is satisfied and every withdraw query gets its empty answer.
type NullChecker struct{}

// Ensure NullChecker implements the SignatureChecker interface.
var _ SignatureChecker = NullChecker{}

func (NullChecker) CheckSig(sig, pubKey, scriptCode []byte) bool          { return false }
func (NullChecker) CheckLockTime(lockTime int64, isSequence bool) bool    { return false }
func (NullChecker) OutputOffsetFromCurrent(offset int) *wire.TxOut        { return nil }
func (NullChecker) PrevOut() wire.OutPoint                                { return wire.OutPoint{} }
func (NullChecker) ValueIn() wire.Value                                   { return wire.NullValue() }
func (NullChecker) ValueInPrevIn() wire.Value                             { return wire.NullValue() }
func (NullChecker) TransactionFee() int64                                 { return -1 }
func (NullChecker) SpendHeight() int32                                    { return -1 }
func (NullChecker) IsConfirmedBlock(hash *chainhash.Hash, cons bool) bool { return false }

// BoundChecker verifies signatures and lock times for one input of a
// transaction the caller promises not to modify while the checker is in use.
// Withdraw queries other than ValueIn and PrevOut get the NullChecker
// answers.
type BoundChecker struct {
	NullChecker

	tx       *wire.MsgTx
	idx      int
	spent    wire.Value
	sigCache *SigCache
}

// Ensure BoundChecker implements the SignatureChecker interface.
var _ SignatureChecker = (*BoundChecker)(nil)

// NewBoundChecker returns a checker for input idx of tx spending an output
// worth spent.  The transaction is borrowed, not copied.  sigCache may be
// nil.
func NewBoundChecker(tx *wire.MsgTx, idx int, spent wire.Value,
	sigCache *SigCache) *BoundChecker {

	return &BoundChecker{
		tx:       tx,
		idx:      idx,
		spent:    spent,
		sigCache: sigCache,
	}
}

// validIndex reports whether the bound input exists.
func (c *BoundChecker) validIndex() bool {
	return c.idx >= 0 && c.idx < len(c.tx.TxIn)
}

// CheckSig strips the hash type, hashes the transaction accordingly and
// verifies the ECDSA signature.  Valid signatures are remembered in the
// signature cache when one is configured.
func (c *BoundChecker) CheckSig(fullSig, pubKey, scriptCode []byte) bool {
	if len(fullSig) == 0 {
		return false
	}
	hashType := SigHashType(fullSig[len(fullSig)-1])
	sigBytes := fullSig[:len(fullSig)-1]

	pk, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		return false
	}
	sig, err := ecdsa.ParseSignature(sigBytes)
	if err != nil {
		return false
	}

	sigHash, err := SignatureHash(scriptCode, c.spent, c.tx, c.idx, hashType)
	if err != nil {
		log.Debugf("unable to compute signature hash for input %d: %v",
			c.idx, err)
		return false
	}

	if c.sigCache != nil {
		if c.sigCache.Exists(*sigHash, sig, pk) {
			return true
		}
		if !sig.Verify(sigHash[:], pk) {
			return false
		}
		c.sigCache.Add(*sigHash, sig, pk)
		return true
	}
	return sig.Verify(sigHash[:], pk)
}

// CheckLockTime applies the BIP0065 rules when isSequence is false and the
// BIP0112 rules otherwise.
func (c *BoundChecker) CheckLockTime(lockTime int64, isSequence bool) bool {
	if !c.validIndex() {
		return false
	}
	if isSequence {
		return c.checkSequence(lockTime)
	}

	// The lock time field of a transaction is either a block height at
	// which the transaction is finalized or a timestamp depending on if the
	// value is before the LockTimeThreshold.  When it is under the
	// threshold it is a block height.  Both values must be of the same
	// kind to be compared.
	txLockTime := int64(c.tx.LockTime)
	if !((txLockTime < LockTimeThreshold && lockTime < LockTimeThreshold) ||
		(txLockTime >= LockTimeThreshold && lockTime >= LockTimeThreshold)) {

		log.Tracef("mismatched locktime types -- tx locktime %d, "+
			"stack locktime %d", txLockTime, lockTime)
		return false
	}
	if lockTime > txLockTime {
		log.Tracef("locktime requirement not satisfied -- locktime is "+
			"greater than the transaction locktime: %d > %d",
			lockTime, txLockTime)
		return false
	}

	// A finalized input disables the transaction lock time, so it cannot
	// satisfy OP_CHECKLOCKTIMEVERIFY.
	return c.tx.TxIn[c.idx].Sequence != wire.MaxTxInSequenceNum
}

// checkSequence compares a relative lock time against the sequence of the
// bound input.
func (c *BoundChecker) checkSequence(sequence int64) bool {
	// Transactions from before relative lock times existed cannot satisfy
	// them.
	if c.tx.Version < 2 {
		return false
	}

	// Sequence numbers with their most significant bit set are not
	// consensus constrained.
	txSequence := int64(c.tx.TxIn[c.idx].Sequence)
	if txSequence&int64(wire.SequenceLockTimeDisabled) != 0 {
		return false
	}

	// Mask off non-consensus bits before doing comparisons.
	lockTimeMask := int64(wire.SequenceLockTimeIsSeconds |
		wire.SequenceLockTimeMask)
	seqMasked := sequence & lockTimeMask
	txMasked := txSequence & lockTimeMask

	// Both sequences must be of the same kind, blocks or seconds.
	const secondsFlag = int64(wire.SequenceLockTimeIsSeconds)
	if (seqMasked < secondsFlag) != (txMasked < secondsFlag) {
		return false
	}
	return seqMasked <= txMasked
}

// PrevOut returns the outpoint spent by the bound input.
func (c *BoundChecker) PrevOut() wire.OutPoint {
	if !c.validIndex() {
		return wire.OutPoint{}
	}
	return c.tx.TxIn[c.idx].PreviousOutPoint
}

// ValueIn returns the value of the output spent by the bound input.
func (c *BoundChecker) ValueIn() wire.Value {
	return c.spent
}

// OwnedChecker is a BoundChecker over a private snapshot of the transaction
// taken at construction, so the caller may keep mutating its own copy.
type OwnedChecker struct {
	BoundChecker
}

// NewOwnedChecker returns a checker over a deep copy of tx.
func NewOwnedChecker(tx *wire.MsgTx, idx int, spent wire.Value,
	sigCache *SigCache) *OwnedChecker {

	return &OwnedChecker{
		BoundChecker: *NewBoundChecker(tx.Copy(), idx, spent, sigCache),
	}
}

// FullCheckerConfig carries the block level context the withdraw and reorg
// proof opcodes consult.
type FullCheckerConfig struct {
	// PrevInValue is the value spent by the input just before this one.
	PrevInValue wire.Value

	// Fee is the explicit fee of the transaction, or -1 when it cannot
	// be computed.
	Fee int64

	SpendHeight int32

	// Oracle answers parent chain confirmation queries.  A nil oracle
	// confirms nothing.
	Oracle ConfirmationOracle

	SigCache *SigCache
}

// FullChecker answers every query, including the withdraw capabilities
// needed by OP_WITHDRAWPROOFVERIFY and OP_REORGPROOFVERIFY.
type FullChecker struct {
	BoundChecker
	cfg FullCheckerConfig
}

// Ensure FullChecker implements the SignatureChecker interface.
var _ SignatureChecker = (*FullChecker)(nil)

// NewFullChecker returns a withdraw capable checker for input idx of tx.  The
// transaction is borrowed.
func NewFullChecker(tx *wire.MsgTx, idx int, spent wire.Value,
	cfg FullCheckerConfig) *FullChecker {

	return &FullChecker{
		BoundChecker: *NewBoundChecker(tx, idx, spent, cfg.SigCache),
		cfg:          cfg,
	}
}

// OutputOffsetFromCurrent returns the output at the current input index plus
// offset, or nil when no such output exists.
func (c *FullChecker) OutputOffsetFromCurrent(offset int) *wire.TxOut {
	i := c.idx + offset
	if i < 0 || i >= len(c.tx.TxOut) {
		return nil
	}
	return c.tx.TxOut[i]
}

func (c *FullChecker) ValueInPrevIn() wire.Value { return c.cfg.PrevInValue }
func (c *FullChecker) TransactionFee() int64     { return c.cfg.Fee }
func (c *FullChecker) SpendHeight() int32        { return c.cfg.SpendHeight }

// IsConfirmedBlock delegates to the configured oracle.
func (c *FullChecker) IsConfirmedBlock(hash *chainhash.Hash, conservative bool) bool {
	if c.cfg.Oracle == nil {
		return false
	}
	return c.cfg.Oracle.IsConfirmed(hash, conservative)
}
