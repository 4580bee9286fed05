// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
)

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific RuleError.
const (
	// ErrNoTxInputs indicates a transaction does not have any inputs.
	ErrNoTxInputs ErrorCode = iota

	// ErrMissingTxOut indicates a transaction output referenced by an input
	// could not be found.
	ErrMissingTxOut

	// ErrBadTxOutValue indicates an output value is negative or above the
	// maximum allowed.
	ErrBadTxOutValue

	// ErrConfidentialValue indicates an explicit amount was required but a
	// value was blinded or absent.
	ErrConfidentialValue

	// ErrSpendTooHigh indicates a transaction spends more than its inputs
	// provide.
	ErrSpendTooHigh

	// ErrScriptValidation indicates the result of executing a script
	// failed.  The error covers any failure when executing scripts such as
	// signature verification failures and execution past the end of the
	// stack.
	ErrScriptValidation

	// numErrorCodes is the maximum error code number used in tests.
	numErrorCodes
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrNoTxInputs:        "ErrNoTxInputs",
	ErrMissingTxOut:      "ErrMissingTxOut",
	ErrBadTxOutValue:     "ErrBadTxOutValue",
	ErrConfidentialValue: "ErrConfidentialValue",
	ErrSpendTooHigh:      "ErrSpendTooHigh",
	ErrScriptValidation:  "ErrScriptValidation",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// RuleError identifies a rule violation.  It is used to indicate that
// validation of a transaction failed due to one of the validation rules.  The
// caller can use errors.As to access the ErrorCode field and errors.Is to
// reach the underlying script error, if any.
type RuleError struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
	Err         error     // Underlying error, may be nil
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// Unwrap returns the underlying error.
func (e RuleError) Unwrap() error {
	return e.Err
}

// ruleError creates an RuleError given a set of arguments.
func ruleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}
