// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package pegindex tracks how deeply parent chain blocks are buried and answers
the confirmation queries made by the federated peg opcodes.

The index is fed ahead of script validation, typically by a process that
follows the parent chain, through Connect and Disconnect.  Validation only
reads it through IsConfirmed, which never blocks on anything beyond a local
snapshot read.

Records are stored in an engine.Engine under the key

	'c' || block hash (32 bytes)

with the confirmation depth as a big-endian uint32 value, so a prefix scan
walks every tracked block in hash order.
*/
package pegindex
