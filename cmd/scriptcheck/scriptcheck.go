// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/elementsalpha/alphad/internal/log"
	"github.com/elementsalpha/alphad/pegindex"
	flags "github.com/jessevdk/go-flags"
)

// scriptcheckMain is the real main function for scriptcheck.  It is necessary
// to work around the fact that deferred functions do not run when os.Exit()
// is called.  Command output is written to out.
func scriptcheckMain(args []string, out io.Writer) error {
	cfg, command, err := loadConfig(args)
	if err != nil {
		return err
	}

	err = log.InitLogRotator(filepath.Join(cfg.LogDir, defaultLogFilename))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	defer func() {
		if log.LogRotator != nil {
			log.LogRotator.Close()
		}
	}()

	if err := log.ParseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		err := fmt.Errorf("loadConfig: %w", err)
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	idx, err := pegindex.Open(pegindex.Config{
		DbType:                    cfg.DbType,
		DataDir:                   cfg.DataDir,
		MinConfirmations:          cfg.MinConfirmations,
		ConservativeConfirmations: cfg.ConservativeConfirmations,
	})
	if err != nil {
		log.ToolLog.Errorf("Unable to open peg index: %v", err)
		return err
	}
	defer func() {
		if err := idx.Close(); err != nil {
			log.ToolLog.Errorf("Unable to close peg index: %v", err)
		}
	}()

	switch command {
	case "verify":
		return runVerify(cfg, idx, out)
	case "addblock":
		return runAddBlock(&cfg.AddBlockCmd, idx, out)
	case "removeblock":
		return runRemoveBlock(&cfg.RemoveBlockCmd, idx, out)
	case "hasblock":
		return runHasBlock(&cfg.HasBlockCmd, idx, out)
	}
	return fmt.Errorf("unknown command %q", command)
}

func main() {
	if err := scriptcheckMain(os.Args[1:], os.Stdout); err != nil {
		var ferr *flags.Error
		if errors.Is(err, errShowVersion) ||
			(errors.As(err, &ferr) && ferr.Type == flags.ErrHelp) {

			os.Exit(0)
		}
		os.Exit(1)
	}
}
