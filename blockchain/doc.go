// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package blockchain implements the transaction level validation rules that sit
above the script engine: explicit fee accounting and parallel script
verification of every input of a transaction.

# Errors

Rule violations are reported as RuleError values whose ErrorCode identifies
the broken rule.  Script failures keep the underlying txscript error reachable
through errors.Is.
*/
package blockchain
