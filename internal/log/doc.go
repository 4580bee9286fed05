// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package log wires the subsystem loggers of every alphad package to a single
// btclog backend that writes to standard output and a rotated log file.
package log
