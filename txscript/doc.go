// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package txscript implements the alphad sidechain transaction script language.

This package provides data structures and functions to parse and execute
sidechain transaction scripts, compute the digests their signatures commit to
and verify whether a spending script satisfies the script it claims.

# Script Overview

Sidechain transaction scripts are written in a stack-based, FORTH-like
language.

The script language consists of a number of opcodes which fall into several
categories such pushing and popping data to and from the stack, performing
basic arithmetic, conditional branching, comparing hashes, and checking
cryptographic signatures.  Scripts are processed from left to right and
intentionally do not provide loops.

Two opcodes implement the federated two-way peg with the parent chain.
OP_WITHDRAWPROOFVERIFY releases coins from the peg pool against a merkle proof
that they were locked on the parent chain, and OP_REORGPROOFVERIFY reverses
such a withdrawal when the parent block it cited was reorganized away.  Both
are NOPs unless ScriptVerifyWithdraw is set.

# Transaction Context

Everything a script needs to know about the transaction spending it is
answered by a SignatureChecker.  NullChecker knows nothing, BoundChecker and
OwnedChecker verify signatures and lock times for one input, and FullChecker
adds the peg queries backed by a ConfirmationOracle.

# Verification Flags

ScriptFlags select the rules in force.  Adding a flag only ever rejects more
scripts, so a node may enforce more flags than the network without forking.

# Errors

Errors returned by this package are of type txscript.Error and carry an
ErrorCode identifying the rule that failed.  Use errors.Is with the code to
test for a specific failure.
*/
package txscript
