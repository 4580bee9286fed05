// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Scriptcheck verifies the scripts of alphad sidechain transactions and
maintains the parent chain peg index consulted by the withdraw opcodes.

Usage:

	scriptcheck [OPTIONS] <command> [command options]

Commands:

	verify --tx <hex> --prevout <idx>:<value>:<pkScript hex> ...
	    Verify every input and print a verdict per input.  Exits non-zero
	    when any input fails.
	addblock <hash> <depth>
	    Record a parent chain block at a confirmation depth.
	removeblock <hash>
	    Forget a parent chain block.
	hasblock <hash>
	    Show the recorded depth of a parent chain block.

Application Options:

	-V, --version           Display version information and exit
	-C, --configfile=       Path to configuration file
	-b, --datadir=          Directory holding the peg index
	    --dbtype=           Database backend {leveldb, pebbledb}
	    --logdir=           Directory to log output
	-d, --debuglevel=       Logging level {trace, debug, info, warn, error, critical}
	    --flags=            Script verification flags (default: standard)
	    --sigcachemaxsize=  Signature cache entries (default: 100000)
	    --spendheight=      Sidechain height the transaction is validated at
	    --minconf=          Parent chain depth a withdrawal needs (default: 10)
	    --conservativeconf= Depth under the increased confirmation rule (default: 144)
*/
package main
