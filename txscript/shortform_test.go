// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// parseShortForm parses a string as as used in the test vectors into a script.
// Opcodes may be given with or without the OP_ prefix, decimal numbers are
// pushed as script numbers, 'quoted' strings are pushed as data and 0x
// prefixed hex is copied verbatim.  Hex may carry a {n} suffix to repeat it n
// times.
//
// For example:
//
//	DUP HASH160 0x14 0x01{20} EQUALVERIFY CHECKSIG
func parseShortForm(script string) ([]byte, error) {
	var result []byte
	for _, tok := range strings.Fields(script) {
		if num, err := strconv.ParseInt(tok, 10, 64); err == nil {
			push, err := NewScriptBuilder().AddInt64(num).Script()
			if err != nil {
				return nil, err
			}
			result = append(result, push...)
			continue
		}

		if strings.HasPrefix(tok, "0x") {
			repeat := 1
			if i := strings.IndexByte(tok, '{'); i != -1 {
				if !strings.HasSuffix(tok, "}") {
					return nil, fmt.Errorf("bad repeat in %q", tok)
				}
				n, err := strconv.Atoi(tok[i+1 : len(tok)-1])
				if err != nil {
					return nil, fmt.Errorf("bad repeat in %q: %v",
						tok, err)
				}
				repeat = n
				tok = tok[:i]
			}
			raw, err := hex.DecodeString(tok[2:])
			if err != nil {
				return nil, fmt.Errorf("bad hex in %q: %v", tok, err)
			}
			result = append(result, bytes.Repeat(raw, repeat)...)
			continue
		}

		if len(tok) >= 2 && tok[0] == '\'' && tok[len(tok)-1] == '\'' {
			push, err := NewScriptBuilder().
				AddFullData([]byte(tok[1 : len(tok)-1])).Script()
			if err != nil {
				return nil, err
			}
			result = append(result, push...)
			continue
		}

		name := tok
		if !strings.HasPrefix(name, "OP_") {
			name = "OP_" + name
		}
		op, ok := OpcodeByName[name]
		if !ok {
			return nil, fmt.Errorf("bad token %q", tok)
		}
		result = append(result, op)
	}
	return result, nil
}

// mustParseShortForm parses the passed short form script and returns the
// resulting bytes.  It panics if an error occurs.  This is only used in the
// tests as a helper since the only way it can fail is if there is an error in
// the test source code.
func mustParseShortForm(script string) []byte {
	s, err := parseShortForm(script)
	if err != nil {
		panic("invalid short form script in test source: err " +
			err.Error() + ", script: " + script)
	}
	return s
}
