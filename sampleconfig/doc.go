// Copyright (c) 2017 The Decred developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package sampleconfig provides a single constant that contains the contents of
the sample configuration file for scriptcheck.  The tool writes it out the first
time it runs without a configuration file so every option is documented next
to its default.
*/
package sampleconfig
