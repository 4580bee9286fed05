// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2017 The Decred developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// ScriptFlags is a bitmask defining additional operations or tests that will
// be done when executing a script pair.  The bit positions are consensus
// relevant and must not be reordered.
type ScriptFlags uint32

const (
	// ScriptBip16 defines whether the bip16 threshold has passed and thus
	// pay-to-script hash transactions will be fully validated.
	ScriptBip16 ScriptFlags = 1 << iota

	// ScriptVerifyStrictEncoding defines that signature scripts and
	// public keys must follow the strict encoding requirements.
	ScriptVerifyStrictEncoding

	// ScriptVerifyDERSignatures defines that signatures are required
	// to comply with the DER format.
	ScriptVerifyDERSignatures

	// ScriptVerifyLowS defines that signatures are required to comply with
	// the DER format and whose S value is <= order / 2.
	ScriptVerifyLowS

	// ScriptStrictMultiSig defines whether to verify the stack item
	// used by CHECKMULTISIG is zero length.
	ScriptStrictMultiSig

	// ScriptVerifySigPushOnly defines that signature scripts must contain
	// only pushed data.
	ScriptVerifySigPushOnly

	// ScriptVerifyMinimalData defines that signatures must use the smallest
	// push operator.
	ScriptVerifyMinimalData

	// ScriptDiscourageUpgradableNops defines whether to verify that
	// the NOP opcodes without an assigned meaning are reserved for future
	// soft-fork upgrades.  This flag must not be used for consensus
	// critical code nor applied to blocks as this flag is only for stricter
	// standard transaction checks.  This flag is only applied when the
	// above opcodes are executed.
	ScriptDiscourageUpgradableNops

	// ScriptVerifyCleanStack defines that the stack must contain only
	// one stack element after evaluation and that the element must be
	// true if interpreted as a boolean.  It only applies together with
	// the ScriptBip16 flag and has no effect on its own.
	ScriptVerifyCleanStack

	// ScriptVerifyCheckLockTimeVerify defines whether to verify that
	// a transaction output is spendable based on the locktime.
	ScriptVerifyCheckLockTimeVerify

	// ScriptVerifyCheckSequenceVerify defines whether to allow execution
	// pathways of a script to be restricted based on the age of the output
	// being spent.
	ScriptVerifyCheckSequenceVerify

	// ScriptVerifyWithdraw enables OP_WITHDRAWPROOFVERIFY and
	// OP_REORGPROOFVERIFY, the federated peg proof opcodes.
	ScriptVerifyWithdraw

	// ScriptVerifyIncreaseConfirmationsRequired makes withdraw proofs
	// require the conservative confirmation depth from the oracle.
	ScriptVerifyIncreaseConfirmationsRequired

	// allScriptFlags holds every defined flag bit.
	allScriptFlags = ScriptVerifyIncreaseConfirmationsRequired<<1 - 1

	// ScriptVerifyNone performs no additional checks.
	ScriptVerifyNone ScriptFlags = 0

	// MandatoryVerifyFlags are the script flags every block must satisfy.
	MandatoryVerifyFlags = ScriptBip16

	// StandardVerifyFlags are the script flags which are used when
	// executing transaction scripts to enforce additional checks which
	// are required for the script to be considered standard.  These checks
	// help reduce issues related to transaction malleability as well as
	// allow pay-to-script hash transactions.  Note these flags are
	// different than what is required for the consensus rules in that they
	// are more strict.
	StandardVerifyFlags = MandatoryVerifyFlags |
		ScriptVerifyStrictEncoding |
		ScriptVerifyDERSignatures |
		ScriptVerifyLowS |
		ScriptStrictMultiSig |
		ScriptVerifyMinimalData |
		ScriptDiscourageUpgradableNops |
		ScriptVerifyCleanStack |
		ScriptVerifyCheckLockTimeVerify |
		ScriptVerifyCheckSequenceVerify |
		ScriptVerifyWithdraw
)

// flagNames maps each flag to the name used in logs and configuration.
var flagNames = []struct {
	flag ScriptFlags
	name string
}{
	{ScriptBip16, "P2SH"},
	{ScriptVerifyStrictEncoding, "STRICTENC"},
	{ScriptVerifyDERSignatures, "DERSIG"},
	{ScriptVerifyLowS, "LOW_S"},
	{ScriptStrictMultiSig, "NULLDUMMY"},
	{ScriptVerifySigPushOnly, "SIGPUSHONLY"},
	{ScriptVerifyMinimalData, "MINIMALDATA"},
	{ScriptDiscourageUpgradableNops, "DISCOURAGE_UPGRADABLE_NOPS"},
	{ScriptVerifyCleanStack, "CLEANSTACK"},
	{ScriptVerifyCheckLockTimeVerify, "CHECKLOCKTIMEVERIFY"},
	{ScriptVerifyCheckSequenceVerify, "CHECKSEQUENCEVERIFY"},
	{ScriptVerifyWithdraw, "WITHDRAW"},
	{ScriptVerifyIncreaseConfirmationsRequired,
		"INCREASE_CONFIRMATIONS_REQUIRED"},
}

// String returns the set flags as a comma separated list of names.
func (f ScriptFlags) String() string {
	if f == ScriptVerifyNone {
		return "NONE"
	}
	var names []string
	for _, fn := range flagNames {
		if f&fn.flag == fn.flag {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, ",")
}

// ParseScriptFlags converts a comma separated list of flag names, as produced
// by ScriptFlags.String, into flags.  The names "standard", "mandatory" and
// "none" select the corresponding composites.
func ParseScriptFlags(s string) (ScriptFlags, error) {
	var flags ScriptFlags
	for _, name := range strings.Split(s, ",") {
		name = strings.ToUpper(strings.TrimSpace(name))
		switch name {
		case "", "NONE":
			continue
		case "STANDARD":
			flags |= StandardVerifyFlags
			continue
		case "MANDATORY":
			flags |= MandatoryVerifyFlags
			continue
		}

		found := false
		for _, fn := range flagNames {
			if fn.name == name {
				flags |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown script flag %q", name)
		}
	}
	return flags, nil
}

// checkFlags returns ErrInvalidFlags when flags sets a bit that no flag is
// defined for.
func checkFlags(flags ScriptFlags) error {
	if undefined := flags &^ allScriptFlags; undefined != 0 {
		str := fmt.Sprintf("undefined script flags 0x%x", uint32(undefined))
		return scriptError(ErrInvalidFlags, str)
	}
	return nil
}

// Engine is the virtual machine that executes a single script against a data
// stack.  A script pair is verified by running one Engine per script, see
// VerifyScript.
type Engine struct {
	flags   ScriptFlags
	checker SignatureChecker

	// script is the script being executed and tokenizer walks it.
	script    []byte
	tokenizer ScriptTokenizer

	// lastCodeSep is the offset just past the most recent
	// OP_CODESEPARATOR, or 0 when none has executed.
	lastCodeSep int

	dstack    stack // data stack
	astack    stack // alt stack
	condStack []int
	numOps    int
}

// hasFlag returns whether the script engine instance has the passed flag set.
func (vm *Engine) hasFlag(flag ScriptFlags) bool {
	return vm.flags&flag == flag
}

// isBranchExecuting returns whether or not the current conditional branch is
// actively executing.  For example, when the data stack has an OP_FALSE on it
// and an OP_IF is encountered, the branch is inactive until an OP_ELSE or
// OP_ENDIF is encountered.  It properly handles nested conditionals.
func (vm *Engine) isBranchExecuting() bool {
	for _, cond := range vm.condStack {
		if cond != OpCondTrue {
			return false
		}
	}
	return true
}

// isOpcodeDisabled returns whether or not the opcode is disabled and thus is
// always bad to see in the instruction stream (even if turned off by a
// conditional).
func isOpcodeDisabled(opcode byte) bool {
	switch opcode {
	case OP_CAT, OP_SUBSTR, OP_LEFT, OP_RIGHT, OP_INVERT, OP_AND, OP_OR,
		OP_XOR, OP_2MUL, OP_2DIV, OP_MUL, OP_DIV, OP_MOD, OP_LSHIFT,
		OP_RSHIFT:
		return true
	}
	return false
}

// isOpcodeAlwaysIllegal returns whether or not the opcode is always illegal
// when passed over by the program counter even if in a non-executed branch.
func isOpcodeAlwaysIllegal(opcode byte) bool {
	return opcode == OP_VERIF || opcode == OP_VERNOTIF
}

// isOpcodeConditional returns whether or not the opcode is a conditional opcode
// which changes the conditional execution stack when executed.
func isOpcodeConditional(opcode byte) bool {
	switch opcode {
	case OP_IF, OP_NOTIF, OP_ELSE, OP_ENDIF:
		return true
	}
	return false
}

// checkMinimalDataPush returns whether or not the provided opcode is the
// smallest possible way to represent the given data.  For example, the value
// 15 could be pushed with OP_DATA_1 15 (among other variations); however,
// OP_15 is a single opcode that represents the same value and is only a
// single byte versus two bytes.
func checkMinimalDataPush(op *opcode, data []byte) error {
	opcodeVal := op.value
	dataLen := len(data)
	switch {
	case dataLen == 0 && opcodeVal != OP_0:
		str := fmt.Sprintf("zero length data push is encoded with "+
			"opcode %s instead of OP_0", op.name)
		return scriptError(ErrMinimalData, str)
	case dataLen == 1 && data[0] >= 1 && data[0] <= 16:
		if opcodeVal != OP_1+data[0]-1 {
			str := fmt.Sprintf("data push of the value %d encoded "+
				"with opcode %s instead of OP_%d", data[0],
				op.name, data[0])
			return scriptError(ErrMinimalData, str)
		}
	case dataLen == 1 && data[0] == 0x81:
		if opcodeVal != OP_1NEGATE {
			str := fmt.Sprintf("data push of the value -1 encoded "+
				"with opcode %s instead of OP_1NEGATE", op.name)
			return scriptError(ErrMinimalData, str)
		}
	case dataLen <= 75:
		if int(opcodeVal) != dataLen {
			str := fmt.Sprintf("data push of %d bytes encoded "+
				"with opcode %s instead of OP_DATA_%d", dataLen,
				op.name, dataLen)
			return scriptError(ErrMinimalData, str)
		}
	case dataLen <= 255:
		if opcodeVal != OP_PUSHDATA1 {
			str := fmt.Sprintf("data push of %d bytes encoded "+
				"with opcode %s instead of OP_PUSHDATA1",
				dataLen, op.name)
			return scriptError(ErrMinimalData, str)
		}
	case dataLen <= 65535:
		if opcodeVal != OP_PUSHDATA2 {
			str := fmt.Sprintf("data push of %d bytes encoded "+
				"with opcode %s instead of OP_PUSHDATA2",
				dataLen, op.name)
			return scriptError(ErrMinimalData, str)
		}
	}
	return nil
}

// executeOpcode performs execution on the passed opcode.  It takes into
// account whether or not it is hidden by conditionals, but some rules still
// must be tested in this case.
func (vm *Engine) executeOpcode(op *opcode, data []byte) error {
	if len(data) > MaxScriptElementSize {
		str := fmt.Sprintf("element size %d exceeds max allowed size %d",
			len(data), MaxScriptElementSize)
		return scriptError(ErrElementTooBig, str)
	}

	// Note that this includes OP_RESERVED which counts as a push
	// operation.
	if op.value > OP_16 {
		vm.numOps++
		if vm.numOps > MaxOpsPerScript {
			str := fmt.Sprintf("exceeded max operation limit of %d",
				MaxOpsPerScript)
			return scriptError(ErrTooManyOperations, str)
		}
	}

	// Disabled and always-illegal opcodes fail on the program counter.
	if isOpcodeDisabled(op.value) {
		str := fmt.Sprintf("attempt to execute disabled opcode %s",
			op.name)
		return scriptError(ErrDisabledOpcode, str)
	}
	if isOpcodeAlwaysIllegal(op.value) {
		str := fmt.Sprintf("attempt to execute reserved opcode %s",
			op.name)
		return scriptError(ErrReservedOpcode, str)
	}

	executing := vm.isBranchExecuting()
	if !executing && !isOpcodeConditional(op.value) {
		return nil
	}

	if executing && vm.dstack.verifyMinimalData && op.value <= OP_PUSHDATA4 {
		if err := checkMinimalDataPush(op, data); err != nil {
			return err
		}
	}

	return op.opfunc(op, data, vm)
}

// Step executes the next instruction and moves the program counter to the
// next opcode in the script.  Step returns true once the final opcode has
// been executed successfully.  Once an error is returned the state of the
// engine is undefined.
func (vm *Engine) Step() (done bool, err error) {
	if !vm.tokenizer.Next() {
		if err := vm.tokenizer.Err(); err != nil {
			return true, err
		}
		return true, scriptError(ErrInvalidProgramCounter,
			"attempt to step past the end of the script")
	}

	err = vm.executeOpcode(vm.tokenizer.op, vm.tokenizer.Data())
	if err != nil {
		return true, err
	}

	// The number of elements in the combination of the data and alt stacks
	// must not exceed the maximum number of stack elements allowed.
	combinedStackSize := vm.dstack.Depth() + vm.astack.Depth()
	if combinedStackSize > MaxStackSize {
		str := fmt.Sprintf("combined stack size %d > max allowed %d",
			combinedStackSize, MaxStackSize)
		return true, scriptError(ErrStackOverflow, str)
	}

	if !vm.tokenizer.Done() {
		return false, nil
	}
	return true, vm.checkEnd()
}

// checkEnd enforces the rules that apply once the whole script has run.
func (vm *Engine) checkEnd() error {
	if len(vm.condStack) != 0 {
		return scriptError(ErrUnbalancedConditional,
			"end of script reached in conditional execution")
	}
	return nil
}

// Execute runs the script to completion.  The resulting data stack is
// available through GetStack whether or not an error is returned; judging
// its contents is left to the caller.
func (vm *Engine) Execute() (err error) {
	if vm.tokenizer.Done() {
		return vm.checkEnd()
	}

	for done := false; !done; {
		log.Tracef("%v", newLogClosure(func() string {
			dis, err := vm.DisasmPC()
			if err != nil {
				return fmt.Sprintf("stepping (%v)", err)
			}
			return fmt.Sprintf("stepping %v", dis)
		}))

		done, err = vm.Step()
		if err != nil {
			log.Tracef("%v", newLogClosure(func() string {
				dis, _ := vm.DisasmScript()
				return fmt.Sprintf("script failed (%v): %s\n%s", err,
					dis, spew.Sdump(vm.GetStack()))
			}))
			return err
		}

		log.Tracef("%v", newLogClosure(func() string {
			var dstr, astr string
			if vm.dstack.Depth() != 0 {
				dstr = "Stack:\n" + vm.dstack.String()
			}
			if vm.astack.Depth() != 0 {
				astr = "AltStack:\n" + vm.astack.String()
			}
			return dstr + astr
		}))
	}
	return nil
}

// DisasmPC returns the string for the disassembly of the opcode that will be
// next to execute when Step is called.
func (vm *Engine) DisasmPC() (string, error) {
	if vm.tokenizer.Done() {
		return "", scriptError(ErrInvalidProgramCounter,
			"program counter is past the end of the script")
	}

	// Parse a copy so the engine state is untouched.
	next := vm.tokenizer
	if !next.Next() {
		return "", next.Err()
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "%04x: ", vm.tokenizer.ByteIndex())
	disasmOpcode(&buf, next.op, next.Data(), false)
	return buf.String(), nil
}

// DisasmScript returns the disassembly of the script being executed.
func (vm *Engine) DisasmScript() (string, error) {
	return DisasmString(vm.script)
}

// subScript returns the script since the last OP_CODESEPARATOR.
func (vm *Engine) subScript() []byte {
	return vm.script[vm.lastCodeSep:]
}

// checkHashTypeEncoding returns whether or not the passed hashtype adheres to
// the strict encoding requirements if enabled.
func (vm *Engine) checkHashTypeEncoding(hashType SigHashType) error {
	if !vm.hasFlag(ScriptVerifyStrictEncoding) {
		return nil
	}

	sigHashType := hashType & ^SigHashAnyOneCanPay
	if sigHashType < SigHashAll || sigHashType > SigHashSingle {
		str := fmt.Sprintf("invalid hash type 0x%x", hashType)
		return scriptError(ErrInvalidSigHashType, str)
	}
	return nil
}

// checkPubKeyEncoding returns whether or not the passed public key adheres to
// the strict encoding requirements if enabled.
func (vm *Engine) checkPubKeyEncoding(pubKey []byte) error {
	if !vm.hasFlag(ScriptVerifyStrictEncoding) {
		return nil
	}

	if len(pubKey) == 33 && (pubKey[0] == 0x02 || pubKey[0] == 0x03) {
		// Compressed
		return nil
	}
	if len(pubKey) == 65 && pubKey[0] == 0x04 {
		// Uncompressed
		return nil
	}

	return scriptError(ErrPubKeyType, "unsupported public key type")
}

// checkFullSignatureEncoding applies the encoding policy to a signature
// with its trailing hash type byte.  An empty signature passes; it is the
// compact way to provide a signature that is known to be invalid.
func (vm *Engine) checkFullSignatureEncoding(fullSig []byte) error {
	if len(fullSig) == 0 {
		return nil
	}

	hashType := SigHashType(fullSig[len(fullSig)-1])
	if err := vm.checkSignatureEncoding(fullSig[:len(fullSig)-1]); err != nil {
		return err
	}
	return vm.checkHashTypeEncoding(hashType)
}

// checkSignatureEncoding returns whether or not the passed signature adheres to
// the strict encoding requirements if enabled.
func (vm *Engine) checkSignatureEncoding(sig []byte) error {
	if !vm.hasFlag(ScriptVerifyDERSignatures) &&
		!vm.hasFlag(ScriptVerifyLowS) &&
		!vm.hasFlag(ScriptVerifyStrictEncoding) {

		return nil
	}

	// The format of a DER encoded signature is as follows:
	//
	// 0x30 <total length> 0x02 <length of R> <R> 0x02 <length of S> <S>
	//   - 0x30 is the ASN.1 identifier for a sequence
	//   - Total length is 1 byte and specifies length of all remaining data
	//   - 0x02 is the ASN.1 identifier that specifies an integer follows
	//   - Length of R is 1 byte and specifies how many bytes R occupies
	//   - R is the arbitrary length big-endian encoded number which
	//     represents the R value of the signature.  DER encoding dictates
	//     that the value must be encoded using the minimum possible number
	//     of bytes.  This implies the first byte can only be null if the
	//     highest bit of the next byte is set in order to prevent it from
	//     being interpreted as a negative number.
	//   - 0x02 is once again the ASN.1 integer identifier
	//   - Length of S is 1 byte and specifies how many bytes S occupies
	//   - S is the arbitrary length big-endian encoded number which
	//     represents the S value of the signature.  The encoding rules are
	//     identical as those for R.
	const (
		asn1SequenceID = 0x30
		asn1IntegerID  = 0x02

		// minSigLen is the minimum length of a DER encoded signature
		// and is when both R and S are 1 byte each.
		minSigLen = 8

		// maxSigLen is the maximum length of a DER encoded signature
		// and is when both R and S are 33 bytes each.
		maxSigLen = 72

		sequenceOffset = 0
		dataLenOffset  = 1
		rTypeOffset    = 2
		rLenOffset     = 3
		rOffset        = 4
	)

	sigLen := len(sig)
	if sigLen < minSigLen {
		str := fmt.Sprintf("malformed signature: too short: %d < %d",
			sigLen, minSigLen)
		return scriptError(ErrSigTooShort, str)
	}
	if sigLen > maxSigLen {
		str := fmt.Sprintf("malformed signature: too long: %d > %d",
			sigLen, maxSigLen)
		return scriptError(ErrSigTooLong, str)
	}

	if sig[sequenceOffset] != asn1SequenceID {
		str := fmt.Sprintf("malformed signature: format has wrong "+
			"type: %#x", sig[sequenceOffset])
		return scriptError(ErrSigInvalidSeqID, str)
	}

	if int(sig[dataLenOffset]) != sigLen-2 {
		str := fmt.Sprintf("malformed signature: bad length: %d != %d",
			sig[dataLenOffset], sigLen-2)
		return scriptError(ErrSigInvalidDataLen, str)
	}

	// S must lie inside the signature.
	rLen := int(sig[rLenOffset])
	sTypeOffset := rOffset + rLen
	sLenOffset := sTypeOffset + 1
	if sTypeOffset >= sigLen {
		str := "malformed signature: S type indicator missing"
		return scriptError(ErrSigMissingSTypeID, str)
	}
	if sLenOffset >= sigLen {
		str := "malformed signature: S length missing"
		return scriptError(ErrSigMissingSLen, str)
	}

	// The lengths of R and S must match the overall length of the
	// signature.
	sOffset := sLenOffset + 1
	sLen := int(sig[sLenOffset])
	if sOffset+sLen != sigLen {
		str := "malformed signature: invalid S length"
		return scriptError(ErrSigInvalidSLen, str)
	}

	if sig[rTypeOffset] != asn1IntegerID {
		str := fmt.Sprintf("malformed signature: R integer marker: "+
			"%#x != %#x", sig[rTypeOffset], asn1IntegerID)
		return scriptError(ErrSigInvalidRIntID, str)
	}
	if rLen == 0 {
		str := "malformed signature: R length is zero"
		return scriptError(ErrSigZeroRLen, str)
	}
	if sig[rOffset]&0x80 != 0 {
		str := "malformed signature: R is negative"
		return scriptError(ErrSigNegativeR, str)
	}

	// Null bytes at the start of R are not allowed, unless R would
	// otherwise be interpreted as a negative number.
	if rLen > 1 && sig[rOffset] == 0x00 && sig[rOffset+1]&0x80 == 0 {
		str := "malformed signature: R value has too much padding"
		return scriptError(ErrSigTooMuchRPadding, str)
	}

	if sig[sTypeOffset] != asn1IntegerID {
		str := fmt.Sprintf("malformed signature: S integer marker: "+
			"%#x != %#x", sig[sTypeOffset], asn1IntegerID)
		return scriptError(ErrSigInvalidSIntID, str)
	}
	if sLen == 0 {
		str := "malformed signature: S length is zero"
		return scriptError(ErrSigZeroSLen, str)
	}
	if sig[sOffset]&0x80 != 0 {
		str := "malformed signature: S is negative"
		return scriptError(ErrSigNegativeS, str)
	}
	if sLen > 1 && sig[sOffset] == 0x00 && sig[sOffset+1]&0x80 == 0 {
		str := "malformed signature: S value has too much padding"
		return scriptError(ErrSigTooMuchSPadding, str)
	}

	// S must be at most half the group order, otherwise its complement
	// produces a second valid encoding of the same signature.
	if vm.hasFlag(ScriptVerifyLowS) && !isLowS(sig[sOffset:sOffset+sLen]) {
		return scriptError(ErrSigHighS, "signature is not canonical "+
			"due to unnecessarily high S value")
	}

	return nil
}

// isLowS reports whether the big-endian S value is at most half the order of
// the secp256k1 group.  Values that do not fit the group are not low.
func isLowS(s []byte) bool {
	for len(s) > 0 && s[0] == 0x00 {
		s = s[1:]
	}
	if len(s) > 32 {
		return false
	}

	var sValue secp256k1.ModNScalar
	if overflow := sValue.SetByteSlice(s); overflow {
		return false
	}
	return !sValue.IsOverHalfOrder()
}

// GetStack returns the contents of the primary stack as an array, where the
// last item in the array is the top of the stack.
func (vm *Engine) GetStack() [][]byte {
	return append([][]byte(nil), vm.dstack.stk...)
}

// SetStack sets the contents of the primary stack to the contents of the
// provided array where the last item in the array will be the top of the stack.
func (vm *Engine) SetStack(data [][]byte) {
	vm.dstack.stk = append(vm.dstack.stk[:0], data...)
}

// GetAltStack returns the contents of the alternate stack as an array where
// the last item in the array is the top of the stack.
func (vm *Engine) GetAltStack() [][]byte {
	return append([][]byte(nil), vm.astack.stk...)
}

// NewEngine returns a new script engine for the provided script.  The checker
// supplies the transaction context for the signature, lock time and federated
// peg opcodes; a nil checker behaves as NullChecker.  The flags modify the
// behavior of the script engine according to the description provided by each
// flag.
func NewEngine(script []byte, flags ScriptFlags, checker SignatureChecker) (*Engine, error) {
	if err := checkFlags(flags); err != nil {
		return nil, err
	}
	if len(script) > MaxScriptSize {
		str := fmt.Sprintf("script size %d is larger than max allowed "+
			"size %d", len(script), MaxScriptSize)
		return nil, scriptError(ErrScriptTooBig, str)
	}
	if checker == nil {
		checker = NullChecker{}
	}

	vm := Engine{
		flags:     flags,
		checker:   checker,
		script:    script,
		tokenizer: MakeScriptTokenizer(script),
	}
	if vm.hasFlag(ScriptVerifyMinimalData) {
		vm.dstack.verifyMinimalData = true
		vm.astack.verifyMinimalData = true
	}
	return &vm, nil
}

// EvalScript executes script on top of the passed stack, whose last element
// is the top.  The stack is updated in place on success and failure alike.
// A nil error means the script ran to completion; whether the result
// authorizes a spend is decided by the caller, see VerifyScript.
func EvalScript(stack *[][]byte, script []byte, flags ScriptFlags,
	checker SignatureChecker) error {

	vm, err := NewEngine(script, flags, checker)
	if err != nil {
		return err
	}
	vm.SetStack(*stack)
	err = vm.Execute()
	*stack = vm.GetStack()
	return err
}
