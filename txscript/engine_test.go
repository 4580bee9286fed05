// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/elementsalpha/alphad/wire"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestBadPC steps the engine past the end of the script and confirms that
// Step and DisasmPC fail correctly.
func TestBadPC(t *testing.T) {
	t.Parallel()

	vm, err := NewEngine([]byte{OP_NOP}, ScriptVerifyNone, nil)
	require.NoError(t, err)

	dis, err := vm.DisasmPC()
	require.NoError(t, err)
	require.Equal(t, "0000: OP_NOP", dis)

	done, err := vm.Step()
	require.NoError(t, err)
	require.True(t, done)

	_, err = vm.Step()
	require.ErrorIs(t, err, ErrInvalidProgramCounter)
	_, err = vm.DisasmPC()
	require.ErrorIs(t, err, ErrInvalidProgramCounter)
}

// ones returns a stack of n elements holding the number one.
func ones(n int) [][]byte {
	stack := make([][]byte, n)
	for i := range stack {
		stack[i] = []byte{1}
	}
	return stack
}

// TestEvalScript runs single scripts through the engine and checks the
// resulting error and data stack.
func TestEvalScript(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script string
		raw    []byte
		flags  ScriptFlags
		err    error
		stack  [][]byte
	}{{
		name:   "arithmetic",
		script: "1 2 ADD 3 EQUAL",
		stack:  [][]byte{{1}},
	}, {
		name:   "empty script",
		script: "",
	}, {
		name:   "false branch skipped",
		script: "0 IF 1 ENDIF",
	}, {
		name:   "else branch",
		script: "0 IF 2 ELSE 3 ENDIF",
		stack:  [][]byte{{3}},
	}, {
		name:   "nested skipped branch",
		script: "0 IF 0 IF 5 ELSE 6 ENDIF ELSE 7 ENDIF",
		stack:  [][]byte{{7}},
	}, {
		name:   "notif",
		script: "0 NOTIF 4 ENDIF",
		stack:  [][]byte{{4}},
	}, {
		name:   "disabled opcode in skipped branch",
		script: "0 IF CAT ENDIF",
		err:    ErrDisabledOpcode,
	}, {
		name:   "verif in skipped branch",
		script: "0 IF VERIF ENDIF",
		err:    ErrReservedOpcode,
	}, {
		name:   "reserved in skipped branch",
		script: "0 IF RESERVED ENDIF",
	}, {
		name:   "reserved executed",
		script: "RESERVED",
		err:    ErrReservedOpcode,
	}, {
		name:   "invalid opcode executed",
		script: "UNKNOWN186",
		err:    ErrReservedOpcode,
	}, {
		name:   "unterminated if",
		script: "1 IF",
		err:    ErrUnbalancedConditional,
	}, {
		name:   "endif without if",
		script: "ENDIF",
		err:    ErrUnbalancedConditional,
	}, {
		name:   "if with empty stack",
		script: "IF ENDIF",
		err:    ErrInvalidStackOperation,
	}, {
		name:   "return",
		script: "1 RETURN",
		err:    ErrEarlyReturn,
	}, {
		name:   "return in skipped branch",
		script: "0 IF RETURN ENDIF",
	}, {
		name:   "verify false",
		script: "0 VERIFY",
		err:    ErrVerify,
	}, {
		name:   "equalverify",
		script: "'abc' 'abd' EQUALVERIFY",
		err:    ErrEqualVerify,
	}, {
		name:   "alt stack underflow",
		script: "FROMALTSTACK",
		err:    ErrInvalidAltStackOperation,
	}, {
		name:   "non-minimal push allowed",
		script: "DATA_1 0x05",
		stack:  [][]byte{{5}},
	}, {
		name:   "non-minimal push",
		script: "DATA_1 0x05",
		flags:  ScriptVerifyMinimalData,
		err:    ErrMinimalData,
	}, {
		name:   "non-minimal push in skipped branch",
		script: "0 IF DATA_1 0x05 ENDIF",
		flags:  ScriptVerifyMinimalData,
	}, {
		name:   "non-minimal pushdata1",
		script: "PUSHDATA1 0x02 0x0102",
		flags:  ScriptVerifyMinimalData,
		err:    ErrMinimalData,
	}, {
		name:   "non-minimal number operand",
		script: "DATA_2 0x0100 1ADD",
		flags:  ScriptVerifyMinimalData,
		err:    ErrMinimalData,
	}, {
		name:   "upgradable nop allowed",
		script: "NOP1 NOP10",
	}, {
		name:   "upgradable nop discouraged",
		script: "NOP10",
		flags:  ScriptDiscourageUpgradableNops,
		err:    ErrDiscourageUpgradableNOPs,
	}, {
		name:   "plain nop never discouraged",
		script: "NOP",
		flags:  ScriptDiscourageUpgradableNops,
	}, {
		name:   "withdraw opcode inactive",
		script: "NOP4 NOP5",
	}, {
		name:   "withdraw opcode inactive and discouraged",
		script: "NOP4",
		flags:  ScriptDiscourageUpgradableNops,
		err:    ErrDiscourageUpgradableNOPs,
	}, {
		name:   "withdraw opcode active with empty stack",
		script: "NOP4",
		flags:  ScriptVerifyWithdraw,
		err:    ErrWithdrawProofFormat,
	}, {
		name:   "reorg opcode active with empty stack",
		script: "NOP5",
		flags:  ScriptVerifyWithdraw,
		err:    ErrReorgProofFormat,
	}, {
		name:   "cltv inactive",
		script: "0 CHECKLOCKTIMEVERIFY",
		stack:  [][]byte{nil},
	}, {
		name:   "cltv negative",
		script: "-1 CHECKLOCKTIMEVERIFY",
		flags:  ScriptVerifyCheckLockTimeVerify,
		err:    ErrNegativeLockTime,
	}, {
		name:   "cltv unsatisfied",
		script: "0 CHECKLOCKTIMEVERIFY",
		flags:  ScriptVerifyCheckLockTimeVerify,
		err:    ErrUnsatisfiedLockTime,
	}, {
		name:   "cltv operand too long",
		script: "0x06 0x010203040506 CHECKLOCKTIMEVERIFY",
		flags:  ScriptVerifyCheckLockTimeVerify,
		err:    ErrNumberTooBig,
	}, {
		name:   "csv empty stack",
		script: "CHECKSEQUENCEVERIFY",
		flags:  ScriptVerifyCheckSequenceVerify,
		err:    ErrInvalidStackOperation,
	}, {
		name:   "malformed push",
		script: "DATA_2 0x01",
		err:    ErrMalformedPush,
	}, {
		name:   "element too big",
		script: "PUSHDATA2 0x0902 0x00{521}",
		err:    ErrElementTooBig,
	}, {
		name:   "element at limit",
		script: "PUSHDATA2 0x0802 0x00{520} DROP",
	}, {
		name: "op count at limit",
		raw:  bytes.Repeat([]byte{OP_NOP}, MaxOpsPerScript),
	}, {
		name: "op count exceeded",
		raw:  bytes.Repeat([]byte{OP_NOP}, MaxOpsPerScript+1),
		err:  ErrTooManyOperations,
	}, {
		name: "pushes are not counted",
		raw: append(bytes.Repeat([]byte{OP_NOP}, MaxOpsPerScript),
			bytes.Repeat([]byte{OP_1}, 300)...),
		stack: ones(300),
	}, {
		name:  "stack at limit",
		raw:   bytes.Repeat([]byte{OP_1}, MaxStackSize),
		stack: ones(MaxStackSize),
	}, {
		name: "stack overflow",
		raw:  bytes.Repeat([]byte{OP_1}, MaxStackSize+1),
		err:  ErrStackOverflow,
	}, {
		name: "script too big",
		raw:  bytes.Repeat([]byte{OP_NOP}, MaxScriptSize+1),
		err:  ErrScriptTooBig,
	}, {
		name:   "clean stack alone is accepted",
		script: "1 1",
		flags:  ScriptVerifyCleanStack,
		stack:  [][]byte{{1}, {1}},
	}, {
		name:   "undefined flag bit",
		script: "1",
		flags:  ScriptVerifyIncreaseConfirmationsRequired << 1,
		err:    ErrInvalidFlags,
	}}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			script := test.raw
			if script == nil {
				script = mustParseShortForm(test.script)
			}

			var stack [][]byte
			err := EvalScript(&stack, script, test.flags, nil)
			if test.err != nil {
				require.ErrorIs(t, err, test.err)
				return
			}
			require.NoError(t, err)
			if len(test.stack) == 0 {
				require.Empty(t, stack)
				return
			}
			require.Equal(t, test.stack, stack)
		})
	}
}

// TestEvalScriptCarriesStack ensures the stack handed to EvalScript is the
// starting stack and receives the result.
func TestEvalScriptCarriesStack(t *testing.T) {
	t.Parallel()

	stack := [][]byte{{2}, {3}}
	err := EvalScript(&stack, mustParseShortForm("ADD 5 EQUAL"),
		ScriptVerifyNone, nil)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{1}}, stack)
}

// TestMaxScriptSize ensures a script of exactly MaxScriptSize bytes runs and
// a single extra byte is rejected.
func TestMaxScriptSize(t *testing.T) {
	t.Parallel()

	// 19 pushes of 523 bytes plus one push of 63 bytes.
	builder := NewScriptBuilder()
	for i := 0; i < 19; i++ {
		builder.AddData(bytes.Repeat([]byte{byte(i + 1)},
			MaxScriptElementSize))
	}
	builder.AddData(bytes.Repeat([]byte{0x7f}, 62))
	script, err := builder.Script()
	require.NoError(t, err)
	require.Len(t, script, MaxScriptSize)

	var stack [][]byte
	require.NoError(t, EvalScript(&stack, script, StandardVerifyFlags, nil))
	require.Len(t, stack, 20)

	stack = nil
	err = EvalScript(&stack, append(script, OP_NOP), ScriptVerifyNone, nil)
	require.ErrorIs(t, err, ErrScriptTooBig)
}

func TestAltStack(t *testing.T) {
	t.Parallel()

	vm, err := NewEngine(mustParseShortForm("1 2 TOALTSTACK"),
		ScriptVerifyNone, nil)
	require.NoError(t, err)
	require.NoError(t, vm.Execute())
	require.Equal(t, [][]byte{{1}}, vm.GetStack())
	require.Equal(t, [][]byte{{2}}, vm.GetAltStack())
}

// TestScriptFlagsString ensures flags render to names and parse back.
func TestScriptFlagsString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "NONE", ScriptVerifyNone.String())
	require.Equal(t, "P2SH,CLEANSTACK", (ScriptBip16 |
		ScriptVerifyCleanStack).String())

	flags, err := ParseScriptFlags("standard")
	require.NoError(t, err)
	require.Equal(t, StandardVerifyFlags, flags)
	require.Zero(t, flags&ScriptVerifySigPushOnly)
	require.Zero(t, flags&ScriptVerifyIncreaseConfirmationsRequired)

	flags, err = ParseScriptFlags("p2sh, withdraw")
	require.NoError(t, err)
	require.Equal(t, ScriptBip16|ScriptVerifyWithdraw, flags)

	flags, err = ParseScriptFlags("none")
	require.NoError(t, err)
	require.Equal(t, ScriptVerifyNone, flags)

	_, err = ParseScriptFlags("P2SH,BOGUS")
	require.Error(t, err)

	rapid.Check(t, func(t *rapid.T) {
		flags := ScriptFlags(rapid.Uint32Range(0, 1<<13-1).Draw(t, "flags"))
		parsed, err := ParseScriptFlags(flags.String())
		if err != nil {
			t.Fatalf("parse %q: %v", flags.String(), err)
		}
		if parsed != flags {
			t.Fatalf("round trip of %v gave %v", flags, parsed)
		}
	})
}

// scriptOps are the opcodes random scripts are drawn from.
var scriptOps = []byte{
	OP_0, OP_1, OP_2, OP_16, OP_1NEGATE, OP_DATA_1, OP_NOP, OP_NOP1,
	OP_NOP10, OP_IF, OP_NOTIF, OP_ELSE, OP_ENDIF, OP_VERIFY, OP_DUP,
	OP_DROP, OP_SWAP, OP_ADD, OP_SUB, OP_EQUAL, OP_NOT, OP_SIZE,
	OP_CHECKSIG, OP_CHECKLOCKTIMEVERIFY, OP_CHECKSEQUENCEVERIFY,
	OP_WITHDRAWPROOFVERIFY, OP_REORGPROOFVERIFY, OP_TOALTSTACK,
	OP_FROMALTSTACK, OP_DEPTH,
}

// randomScript draws a short script from scriptOps.  OP_DATA_1 is followed
// by its data byte.
func randomScript(t *rapid.T) []byte {
	ops := rapid.SliceOfN(rapid.SampledFrom(scriptOps), 0, 24).Draw(t, "ops")
	var script []byte
	for _, op := range ops {
		script = append(script, op)
		if op == OP_DATA_1 {
			script = append(script, rapid.Byte().Draw(t, "data"))
		}
	}
	return script
}

// nopActivatingFlags give a meaning to NOP2 through NOP5.
const nopActivatingFlags = ScriptVerifyCheckLockTimeVerify |
	ScriptVerifyCheckSequenceVerify | ScriptVerifyWithdraw

// TestEvalScriptFlagMonotonic checks that adding verification flags never
// turns a failing script into a passing one, and that evaluation is
// deterministic.  The single exception is a set that discourages upgradable
// NOPs gaining a flag that activates one of them, see
// TestDiscourageUpgradableNopsActivation.
func TestEvalScriptFlagMonotonic(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		script := randomScript(t)
		sigScript := randomScript(t)
		base := ScriptFlags(rapid.Uint32Range(0, 1<<13-1).Draw(t, "base"))
		extra := ScriptFlags(rapid.Uint32Range(0, 1<<13-1).Draw(t, "extra"))
		if base&ScriptDiscourageUpgradableNops != 0 {
			extra &^= nopActivatingFlags &^ base
		}

		verifyBase := VerifyScript(sigScript, script, base, nil)
		verifyMore := VerifyScript(sigScript, script, base|extra, nil)
		if verifyBase != nil && verifyMore == nil {
			t.Fatalf("scripts %x %x fail with %v (%v) but pass with %v",
				sigScript, script, base, verifyBase, base|extra)
		}

		var s1, s2, s3 [][]byte
		errBase := EvalScript(&s1, script, base, nil)
		errAgain := EvalScript(&s2, script, base, nil)
		errMore := EvalScript(&s3, script, base|extra, nil)

		var c1, c2 ErrorCode
		if (errBase == nil) != (errAgain == nil) {
			t.Fatalf("nondeterministic result: %v vs %v", errBase, errAgain)
		}
		if errBase != nil && errors.As(errBase, &c1) &&
			errors.As(errAgain, &c2) && c1 != c2 {

			t.Fatalf("nondeterministic error: %v vs %v", c1, c2)
		}
		if errBase != nil && errMore == nil {
			t.Fatalf("script %x fails with %v (%v) but passes with %v",
				script, base, errBase, base|extra)
		}
	})
}

// TestDiscourageUpgradableNopsActivation pins down the one flag pair that is
// not monotonic.  An executed NOP2 through NOP5 fails under
// ScriptDiscourageUpgradableNops alone but runs as its soft-fork opcode once
// the flag assigning it is added too, and may then succeed.
func TestDiscourageUpgradableNopsActivation(t *testing.T) {
	t.Parallel()

	lockTx := wire.NewMsgTx(2)
	lockTx.LockTime = 100
	prevHash := chainhash.Hash{0xcc}
	lockTx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prevHash, 0), nil))
	lockTx.TxIn[0].Sequence = 0
	lockTx.AddTxOut(wire.NewTxOut(wire.ExplicitValue(10), []byte{OP_TRUE}))
	checker := NewBoundChecker(lockTx, 0, wire.ExplicitValue(10), nil)

	tests := []struct {
		name   string
		script string
		flag   ScriptFlags
	}{{
		// Sequence with the disable bit set behaves as a NOP.
		name:   "CHECKSEQUENCEVERIFY",
		script: "0x05 0x0000008000 CHECKSEQUENCEVERIFY",
		flag:   ScriptVerifyCheckSequenceVerify,
	}, {
		name:   "CHECKLOCKTIMEVERIFY",
		script: "5 CHECKLOCKTIMEVERIFY",
		flag:   ScriptVerifyCheckLockTimeVerify,
	}}

	for _, test := range tests {
		script := mustParseShortForm(test.script)

		var stack [][]byte
		err := EvalScript(&stack, script, ScriptDiscourageUpgradableNops,
			checker)
		require.ErrorIs(t, err, ErrDiscourageUpgradableNOPs, test.name)

		stack = nil
		err = EvalScript(&stack, script,
			ScriptDiscourageUpgradableNops|test.flag, checker)
		require.NoError(t, err, test.name)

		// Without the discouragement both sets accept the script.
		stack = nil
		require.NoError(t, EvalScript(&stack, script, ScriptVerifyNone,
			checker), test.name)
		stack = nil
		require.NoError(t, EvalScript(&stack, script, test.flag, checker),
			test.name)
	}
}
