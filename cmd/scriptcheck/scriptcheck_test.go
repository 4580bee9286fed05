// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/elementsalpha/alphad/pegindex"
	"github.com/elementsalpha/alphad/sampleconfig"
	"github.com/elementsalpha/alphad/txscript"
	"github.com/elementsalpha/alphad/wire"
	"github.com/stretchr/testify/require"
)

// harness runs scriptcheck against a private data and log directory.  The
// commands share the package level log rotator, so tests here are not
// parallel.
type harness struct {
	t    *testing.T
	base []string
}

func newHarness(t *testing.T, extra ...string) *harness {
	dir := t.TempDir()
	base := []string{
		"-C", filepath.Join(dir, "missing.conf"),
		"--datadir", filepath.Join(dir, "data"),
		"--logdir", filepath.Join(dir, "logs"),
		"--debuglevel", "off",
	}
	return &harness{t: t, base: append(base, extra...)}
}

func (h *harness) run(args ...string) (string, error) {
	var out bytes.Buffer
	all := append(append([]string{}, h.base...), args...)
	err := scriptcheckMain(all, &out)
	return out.String(), err
}

func TestParsePrevOut(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		idx      int
		value    wire.Value
		pkScript []byte
		err      bool
	}{
		{in: "0:1000:51", idx: 0, value: wire.ExplicitValue(1000), pkScript: []byte{0x51}},
		{in: "3:null:", idx: 3, value: wire.NullValue(), pkScript: []byte{}},
		{in: "1:-5:00", idx: 1, value: wire.ExplicitValue(-5), pkScript: []byte{0x00}},
		{in: "1:5", err: true},
		{in: "x:5:51", err: true},
		{in: "-1:5:51", err: true},
		{in: "0:five:51", err: true},
		{in: "0:5:zz", err: true},
	}
	for _, test := range tests {
		idx, txOut, err := parsePrevOut(test.in)
		if test.err {
			require.Error(t, err, test.in)
			continue
		}
		require.NoError(t, err, test.in)
		require.Equal(t, test.idx, idx, test.in)
		require.True(t, test.value.Equal(txOut.Value), test.in)
		require.Equal(t, test.pkScript, txOut.PkScript, test.in)
	}
}

// trueSpend returns a hex encoded two input transaction paying 290 to a
// single output.
func trueSpend(t *testing.T) string {
	t.Helper()

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{0x11}, 0), nil))
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{0x22}, 4), nil))
	tx.AddTxOut(wire.NewTxOut(wire.ExplicitValue(290), []byte{txscript.OP_TRUE}))
	raw, err := tx.Bytes()
	require.NoError(t, err)
	return hex.EncodeToString(raw)
}

func TestVerifyCommand(t *testing.T) {
	h := newHarness(t)
	txHex := trueSpend(t)

	out, err := h.run("verify", "--tx", txHex,
		"--prevout", "0:100:51", "--prevout", "1:200:51")
	require.NoError(t, err)
	require.Contains(t, out, "fee 0.00000010 BTC")
	require.Contains(t, out, "input 0: ok")
	require.Contains(t, out, "input 1: ok")
	require.Contains(t, out, "valid\n")

	// Input 1 leaves false on the stack.
	out, err = h.run("verify", "--tx", txHex,
		"--prevout", "0:100:51", "--prevout", "1:200:00")
	require.ErrorIs(t, err, errVerifyFailed)
	require.Contains(t, out, "input 0: ok")
	require.Contains(t, out, "input 1: failed: ")
	require.Contains(t, out, "invalid: 1 of 2 inputs failed")

	// Missing previous output.
	out, err = h.run("verify", "--tx", txHex, "--prevout", "0:100:51")
	require.Error(t, err)
	require.Contains(t, out, "invalid: ")

	_, err = h.run("verify", "--tx", txHex, "--prevout", "2:100:51")
	require.ErrorContains(t, err, "has 2 inputs")

	_, err = h.run("verify", "--tx", txHex,
		"--prevout", "0:100:51", "--prevout", "0:100:51")
	require.ErrorContains(t, err, "duplicate prevout")

	_, err = h.run("verify", "--tx", "zz")
	require.ErrorContains(t, err, "invalid transaction hex")
}

func TestVerifyCommandFlags(t *testing.T) {
	txHex := trueSpend(t)
	prevOuts := []string{"--prevout", "0:100:51", "--prevout", "1:200:5151"}

	// Two items remain on the stack of input 1, which only clean stack
	// rejects.
	h := newHarness(t, "--flags", "p2sh")
	out, err := h.run(append([]string{"verify", "--tx", txHex}, prevOuts...)...)
	require.NoError(t, err, out)

	h = newHarness(t, "--flags", "p2sh,cleanstack")
	out, err = h.run(append([]string{"verify", "--tx", txHex}, prevOuts...)...)
	require.ErrorIs(t, err, errVerifyFailed)
	require.Contains(t, out, "input 1: failed: ")

	h = newHarness(t, "--flags", "bogus")
	_, err = h.run("hasblock", chainhash.Hash{}.String())
	require.ErrorContains(t, err, "invalid --flags")
}

func TestPegIndexCommands(t *testing.T) {
	for _, dbType := range knownDbTypes {
		h := newHarness(t, "--dbtype", dbType)
		hash := chainhash.Hash{0xde, 0xad}

		out, err := h.run("hasblock", hash.String())
		require.NoError(t, err)
		require.Equal(t, fmt.Sprintf("%v not tracked\n", hash), out)

		out, err = h.run("addblock", hash.String(), "12")
		require.NoError(t, err)
		require.Equal(t, fmt.Sprintf("recorded %v at depth 12\n", hash), out)

		out, err = h.run("hasblock", hash.String())
		require.NoError(t, err)
		require.Equal(t, fmt.Sprintf("%v depth 12 confirmed true "+
			"conservative false\n", hash), out)

		out, err = h.run("removeblock", hash.String())
		require.NoError(t, err)
		require.Equal(t, fmt.Sprintf("removed %v\n", hash), out)

		out, err = h.run("hasblock", hash.String())
		require.NoError(t, err)
		require.Contains(t, out, "not tracked")

		_, err = h.run("addblock", "nothex", "1")
		require.Error(t, err)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	h := newHarness(t, "--dbtype", "bolt")
	_, err := h.run("hasblock", chainhash.Hash{}.String())
	require.ErrorContains(t, err, "database type")

	h = newHarness(t)
	_, err = h.run()
	require.Error(t, err, "a command is required")

	h = newHarness(t, "--debuglevel", "loud")
	_, err = h.run("hasblock", chainhash.Hash{}.String())
	require.ErrorContains(t, err, "debug level")
}

// TestSampleConfig ensures the generated sample config parses and leaves
// every default untouched, and that a config file overrides defaults while
// the command line still wins.
func TestSampleConfig(t *testing.T) {
	dir := t.TempDir()
	sample := filepath.Join(dir, "nested", "scriptcheck.conf")
	require.NoError(t, createDefaultConfigFile(sample))

	contents, err := os.ReadFile(sample)
	require.NoError(t, err)
	require.Equal(t, sampleconfig.FileContents, string(contents))

	cfg, cmd, err := loadConfig([]string{"-C", sample, "hasblock", "00"})
	require.NoError(t, err)
	require.Equal(t, "hasblock", cmd)
	require.Equal(t, pegindex.DefaultDbType, cfg.DbType)
	require.Equal(t, int32(-1), cfg.SpendHeight)
	require.Equal(t, txscript.StandardVerifyFlags, cfg.scriptFlags)
	require.EqualValues(t, pegindex.DefaultMinConfirmations,
		cfg.MinConfirmations)

	custom := filepath.Join(dir, "custom.conf")
	err = os.WriteFile(custom, []byte("[Application Options]\n"+
		"dbtype=pebbledb\nminconf=3\nflags=p2sh\n"), 0600)
	require.NoError(t, err)

	cfg, _, err = loadConfig([]string{"-C", custom, "--minconf", "4",
		"hasblock", "00"})
	require.NoError(t, err)
	require.Equal(t, "pebbledb", cfg.DbType)
	require.EqualValues(t, 4, cfg.MinConfirmations)
	require.Equal(t, txscript.ScriptBip16, cfg.scriptFlags)
}
