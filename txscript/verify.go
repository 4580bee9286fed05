// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "fmt"

// VerifyScript reports whether scriptSig satisfies scriptPubKey.  scriptSig
// runs first on an empty stack and scriptPubKey then runs on the result.  The
// spend is authorized when the top of the final stack is true.  With
// ScriptBip16 a pay-to-script-hash scriptPubKey additionally runs the redeem
// script pushed last by scriptSig on the remaining pushed items.
//
// A nil error authorizes the spend.  Every failure is an Error carrying the
// first rule that was violated.
func VerifyScript(scriptSig, scriptPubKey []byte, flags ScriptFlags,
	checker SignatureChecker) error {

	if err := checkFlags(flags); err != nil {
		return err
	}
	if flags&ScriptVerifySigPushOnly != 0 && !IsPushOnlyScript(scriptSig) {
		return scriptError(ErrNotPushOnly,
			"signature script is not push only")
	}

	var stack [][]byte
	if err := EvalScript(&stack, scriptSig, flags, checker); err != nil {
		return err
	}

	// Save the pushed items for the redeem script.
	var savedStack [][]byte
	if flags&ScriptBip16 != 0 {
		savedStack = append(savedStack, stack...)
	}

	if err := EvalScript(&stack, scriptPubKey, flags, checker); err != nil {
		return err
	}
	if err := checkFinalStack(stack, "public key script"); err != nil {
		return err
	}

	if flags&ScriptBip16 != 0 && IsPayToScriptHash(scriptPubKey) {
		// Only data pushes may feed a redeem script.
		if !IsPushOnlyScript(scriptSig) {
			return scriptError(ErrNotPushOnly,
				"pay to script hash is not push only")
		}

		// The hash comparison in scriptPubKey succeeded, so the saved
		// stack holds at least the redeem script.
		stack = savedStack
		if len(stack) == 0 {
			return scriptError(ErrInternal,
				"pay to script hash spend with an empty stack")
		}
		redeemScript := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		log.Tracef("%v", newLogClosure(func() string {
			dis, _ := DisasmString(redeemScript)
			return "executing redeem script: " + dis
		}))

		if err := EvalScript(&stack, redeemScript, flags, checker); err != nil {
			return err
		}
		if err := checkFinalStack(stack, "redeem script"); err != nil {
			return err
		}
	}

	// The clean stack rule applies only with P2SH active.
	if flags&(ScriptBip16|ScriptVerifyCleanStack) ==
		ScriptBip16|ScriptVerifyCleanStack && len(stack) != 1 {
		str := fmt.Sprintf("stack contains %d unexpected items",
			len(stack)-1)
		return scriptError(ErrCleanStack, str)
	}

	return nil
}

// checkFinalStack returns ErrEvalFalse unless the stack ends with a true
// element.
func checkFinalStack(stack [][]byte, what string) error {
	if len(stack) == 0 {
		return scriptError(ErrEvalFalse, what+" left an empty stack")
	}
	if !asBool(stack[len(stack)-1]) {
		return scriptError(ErrEvalFalse, what+" evaluated to false")
	}
	return nil
}
