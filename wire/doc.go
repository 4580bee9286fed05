// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package wire implements the sidechain transaction encoding.

Transactions keep the parent chain layout for inputs, lock time and version,
while every output amount is a Value: null, an explicit amount, or a 33-byte
Pedersen commitment.  Explicit and confidential values use the Elements
encoding so commitments produced by Elements tooling can be carried verbatim.

Variable length integers and byte strings reuse the parent chain codec.
*/
package wire
