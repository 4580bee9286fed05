// Copyright (c) 2017 The Decred developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sampleconfig

// FileContents is a string containing the commented example config for
// scriptcheck.
const FileContents = `[Application Options]

; ------------------------------------------------------------------------------
; Data settings
; ------------------------------------------------------------------------------

; The directory holding the peg index.  The default is ~/.alphad/data on POSIX
; OSes, $LOCALAPPDATA/Alphad/data on Windows and
; ~/Library/Application Support/Alphad/data on macOS.  Environment variables are
; expanded so they may be used.
; datadir=~/.alphad/data

; Database backend for the peg index.  Valid options are leveldb and pebbledb.
; dbtype=leveldb


; ------------------------------------------------------------------------------
; Script verification
; ------------------------------------------------------------------------------

; Comma separated verification flags such as P2SH,STRICTENC,CLEANSTACK.  The
; names standard, mandatory and none select the predefined sets.
; flags=standard

; Maximum number of entries in the signature verification cache.
; sigcachemaxsize=100000

; Sidechain height transactions are validated at.  A negative value leaves it
; unknown and any OP_REORGPROOFVERIFY deadline check fails.
; spendheight=-1


; ------------------------------------------------------------------------------
; Parent chain confirmations
; ------------------------------------------------------------------------------

; Depth a parent chain block needs before a withdrawal locked to it is spendable.
; minconf=10

; Depth required when INCREASE_CONFIRMATIONS_REQUIRED is set.  Values below
; minconf are raised to minconf.
; conservativeconf=144


; ------------------------------------------------------------------------------
; Debug
; ------------------------------------------------------------------------------

; Directory to log output.
; logdir=~/.alphad/logs

; Debug logging level.
; Valid levels are {trace, debug, info, warn, error, critical}
; You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set
; log level for individual subsystems.  The subsystems are CHAN, PIDX, SCRP
; and TOOL.
; debuglevel=info
`
