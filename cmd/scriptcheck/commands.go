// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/elementsalpha/alphad/blockchain"
	"github.com/elementsalpha/alphad/internal/log"
	"github.com/elementsalpha/alphad/pegindex"
	"github.com/elementsalpha/alphad/txscript"
	"github.com/elementsalpha/alphad/wire"
)

// errVerifyFailed is returned when at least one input fails to verify.
var errVerifyFailed = errors.New("transaction failed verification")

// parsePrevOut parses a spent output given as <input index>:<value>:<hex
// pkScript>.  The value is an amount in satoshi or "null".
func parsePrevOut(s string) (int, *wire.TxOut, error) {
	fields := strings.SplitN(s, ":", 3)
	if len(fields) != 3 {
		return 0, nil, fmt.Errorf("malformed prevout %q -- use "+
			"<input index>:<value>:<hex pkScript>", s)
	}

	idx, err := strconv.Atoi(fields[0])
	if err != nil || idx < 0 {
		return 0, nil, fmt.Errorf("invalid input index %q", fields[0])
	}

	var value wire.Value
	if fields[1] == "null" {
		value = wire.NullValue()
	} else {
		amount, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return 0, nil, fmt.Errorf("invalid value %q: %w",
				fields[1], err)
		}
		value = wire.ExplicitValue(amount)
	}

	pkScript, err := hex.DecodeString(fields[2])
	if err != nil {
		return 0, nil, fmt.Errorf("invalid pkScript: %w", err)
	}
	return idx, wire.NewTxOut(value, pkScript), nil
}

// prevOutputs maps the --prevout arguments onto the inputs of tx.
func prevOutputs(tx *wire.MsgTx, args []string) (blockchain.PrevOutputMap, error) {
	prevOuts := make(blockchain.PrevOutputMap, len(args))
	seen := make(map[int]struct{}, len(args))
	for _, arg := range args {
		idx, txOut, err := parsePrevOut(arg)
		if err != nil {
			return nil, err
		}
		if idx >= len(tx.TxIn) {
			return nil, fmt.Errorf("prevout for input %d but the "+
				"transaction has %d inputs", idx, len(tx.TxIn))
		}
		if _, ok := seen[idx]; ok {
			return nil, fmt.Errorf("duplicate prevout for input %d",
				idx)
		}
		seen[idx] = struct{}{}
		prevOuts[tx.TxIn[idx].PreviousOutPoint] = txOut
	}
	return prevOuts, nil
}

// runVerify verifies every input of the transaction and prints a verdict per
// input.
func runVerify(cfg *config, idx *pegindex.Index, out io.Writer) error {
	rawTx, err := hex.DecodeString(cfg.VerifyCmd.Tx)
	if err != nil {
		return fmt.Errorf("invalid transaction hex: %w", err)
	}
	tx, err := wire.TxFromBytes(rawTx)
	if err != nil {
		return fmt.Errorf("unable to decode transaction: %w", err)
	}
	prevOuts, err := prevOutputs(tx, cfg.VerifyCmd.PrevOuts)
	if err != nil {
		return err
	}

	log.ToolLog.Debugf("Verifying %v with flags %v at height %d",
		tx.TxHash(), cfg.scriptFlags, cfg.SpendHeight)

	fmt.Fprintf(out, "transaction %v\n", tx.TxHash())
	if fee, err := blockchain.CalcFee(tx, prevOuts); err == nil {
		fmt.Fprintf(out, "fee %v\n", btcutil.Amount(fee))
	} else {
		fmt.Fprintf(out, "fee unknown: %v\n", err)
	}

	sigCache := txscript.NewSigCache(cfg.SigCacheMaxSize)
	results, err := blockchain.ValidateTransactionInputs(tx, prevOuts,
		cfg.scriptFlags, sigCache, idx, cfg.SpendHeight)
	if err != nil {
		fmt.Fprintf(out, "invalid: %v\n", err)
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "coinbase: no scripts to verify")
		return nil
	}

	var failed int
	for i, result := range results {
		if result == nil {
			fmt.Fprintf(out, "input %d: ok\n", i)
			continue
		}
		failed++

		// Report the script error rather than the full rule error
		// which repeats both scripts.
		reason := result
		var rerr blockchain.RuleError
		if errors.As(result, &rerr) && rerr.Err != nil {
			reason = rerr.Err
		}
		fmt.Fprintf(out, "input %d: failed: %v\n", i, reason)
		log.ToolLog.Debugf("%v", result)
	}

	if failed > 0 {
		fmt.Fprintf(out, "invalid: %d of %d inputs failed\n", failed,
			len(results))
		return errVerifyFailed
	}
	fmt.Fprintln(out, "valid")
	return nil
}

func runAddBlock(cmd *addBlockCmd, idx *pegindex.Index, out io.Writer) error {
	hash, err := chainhash.NewHashFromStr(cmd.Args.Hash)
	if err != nil {
		return err
	}
	if err := idx.Connect(hash, cmd.Args.Depth); err != nil {
		return err
	}
	fmt.Fprintf(out, "recorded %v at depth %d\n", hash, cmd.Args.Depth)
	return nil
}

func runRemoveBlock(cmd *removeBlockCmd, idx *pegindex.Index, out io.Writer) error {
	hash, err := chainhash.NewHashFromStr(cmd.Args.Hash)
	if err != nil {
		return err
	}
	if err := idx.Disconnect(hash); err != nil {
		return err
	}
	fmt.Fprintf(out, "removed %v\n", hash)
	return nil
}

func runHasBlock(cmd *hasBlockCmd, idx *pegindex.Index, out io.Writer) error {
	hash, err := chainhash.NewHashFromStr(cmd.Args.Hash)
	if err != nil {
		return err
	}

	depth, err := idx.Depth(hash)
	switch {
	case errors.Is(err, pegindex.ErrBlockNotFound):
		fmt.Fprintf(out, "%v not tracked\n", hash)
		return nil
	case err != nil:
		return err
	}

	fmt.Fprintf(out, "%v depth %d confirmed %t conservative %t\n", hash,
		depth, idx.IsConfirmed(hash, false), idx.IsConfirmed(hash, true))
	return nil
}
