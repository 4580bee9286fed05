// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/elementsalpha/alphad/internal/version"
	"github.com/elementsalpha/alphad/pegindex"
	"github.com/elementsalpha/alphad/sampleconfig"
	"github.com/elementsalpha/alphad/txscript"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename  = "scriptcheck.conf"
	defaultDataDirname     = "data"
	defaultLogDirname      = "logs"
	defaultLogFilename     = "scriptcheck.log"
	defaultLogLevel        = "info"
	defaultFlags           = "standard"
	defaultSigCacheMaxSize = 100000
)

var (
	alphadHomeDir     = btcutil.AppDataDir("alphad", false)
	defaultConfigFile = filepath.Join(alphadHomeDir, defaultConfigFilename)
	defaultDataDir    = filepath.Join(alphadHomeDir, defaultDataDirname)
	defaultLogDir     = filepath.Join(alphadHomeDir, defaultLogDirname)
	knownDbTypes      = pegindex.SupportedDbTypes()

	// errShowVersion is returned by loadConfig after printing the version.
	errShowVersion = errors.New("version requested")
)

// config defines the configuration options for scriptcheck.
//
// See loadConfig for details on the configuration load process.
type config struct {
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir     string `short:"b" long:"datadir" description:"Directory holding the peg index"`
	DbType      string `long:"dbtype" description:"Database backend to use for the peg index {leveldb, pebbledb}"`
	LogDir      string `long:"logdir" description:"Directory to log output"`
	DebugLevel  string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`

	Flags           string `long:"flags" description:"Comma separated script verification flags, or standard, mandatory or none"`
	SigCacheMaxSize uint   `long:"sigcachemaxsize" description:"The maximum number of entries in the signature verification cache"`
	SpendHeight     int32  `long:"spendheight" description:"Sidechain height the transaction is validated at"`

	MinConfirmations          uint32 `long:"minconf" description:"Parent chain depth a withdrawal needs"`
	ConservativeConfirmations uint32 `long:"conservativeconf" description:"Parent chain depth a withdrawal needs under the increased confirmation rule"`

	VerifyCmd      verifyCmd      `command:"verify" description:"Verify the scripts of a transaction"`
	AddBlockCmd    addBlockCmd    `command:"addblock" description:"Record a parent chain block at a confirmation depth"`
	RemoveBlockCmd removeBlockCmd `command:"removeblock" description:"Forget a parent chain block"`
	HasBlockCmd    hasBlockCmd    `command:"hasblock" description:"Show the recorded depth of a parent chain block"`

	scriptFlags txscript.ScriptFlags
}

// verifyCmd holds the verify command options.
type verifyCmd struct {
	Tx       string   `long:"tx" required:"true" description:"Hex encoded transaction"`
	PrevOuts []string `long:"prevout" description:"Spent output as <input index>:<value>:<hex pkScript>, once per input"`
}

// blockArgs holds a parent chain block hash argument.
type blockArgs struct {
	Hash string `positional-arg-name:"hash" description:"Parent chain block hash"`
}

type addBlockCmd struct {
	Args struct {
		Hash  string `positional-arg-name:"hash" description:"Parent chain block hash"`
		Depth uint32 `positional-arg-name:"depth" description:"Confirmation depth"`
	} `positional-args:"yes" required:"yes"`
}

type removeBlockCmd struct {
	Args blockArgs `positional-args:"yes" required:"yes"`
}

type hasBlockCmd struct {
	Args blockArgs `positional-args:"yes" required:"yes"`
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(alphadHomeDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but they variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

// createDefaultConfigFile writes the sample configuration to destinationPath,
// creating its directory if needed.
func createDefaultConfigFile(destinationPath string) error {
	err := os.MkdirAll(filepath.Dir(destinationPath), 0700)
	if err != nil {
		return err
	}

	return os.WriteFile(destinationPath,
		[]byte(sampleconfig.FileContents), 0600)
}

// validDbType returns whether or not dbType is a supported database type.
func validDbType(dbType string) bool {
	for _, knownType := range knownDbTypes {
		if dbType == knownType {
			return true
		}
	}

	return false
}

// loadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// The above results in functioning properly without any config settings
// while still allowing the user to override settings with config files and
// command line options.  Command line options always take precedence.  The
// returned string names the command to run.
func loadConfig(args []string) (*config, string, error) {
	// Default config.
	cfg := config{
		ConfigFile:      defaultConfigFile,
		DataDir:         defaultDataDir,
		DbType:          pegindex.DefaultDbType,
		LogDir:          defaultLogDir,
		DebugLevel:      defaultLogLevel,
		Flags:           defaultFlags,
		SigCacheMaxSize: defaultSigCacheMaxSize,
		SpendHeight:     -1,

		MinConfirmations:          pegindex.DefaultMinConfirmations,
		ConservativeConfirmations: pegindex.DefaultConservativeConfirmations,
	}

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.  Any errors can be ignored
	// here since they will be caught by the final parse below.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.IgnoreUnknown)
	preParser.SubcommandsOptional = true
	_, _ = preParser.ParseArgs(args)

	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)
	if preCfg.ShowVersion {
		fmt.Println(appName, "version", version.String())
		return nil, "", errShowVersion
	}

	// Write the sample config the first time the default config file is
	// used.
	if preCfg.ConfigFile == defaultConfigFile {
		if _, err := os.Stat(preCfg.ConfigFile); os.IsNotExist(err) {
			err := createDefaultConfigFile(preCfg.ConfigFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating a default "+
					"config file: %v\n", err)
			}
		}
	}

	// Load additional config from file.  A missing file is not an error.
	parser := flags.NewParser(&cfg, flags.Default)
	err := flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
	if err != nil {
		if _, ok := err.(*os.PathError); !ok {
			fmt.Fprintf(os.Stderr, "Error parsing config file: %v\n",
				err)
			fmt.Fprintln(os.Stderr, usageMessage)
			return nil, "", err
		}
	}

	// Parse command line options again to ensure they take precedence.
	_, err = parser.ParseArgs(args)
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			fmt.Fprintln(os.Stderr, usageMessage)
		}
		return nil, "", err
	}

	// Validate database type.
	if !validDbType(cfg.DbType) {
		str := "%s: The specified database type [%v] is invalid -- " +
			"supported types %v"
		err := fmt.Errorf(str, "loadConfig", cfg.DbType, knownDbTypes)
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, "", err
	}

	// Parse the script verification flags.
	cfg.scriptFlags, err = txscript.ParseScriptFlags(cfg.Flags)
	if err != nil {
		err := fmt.Errorf("loadConfig: invalid --flags: %w", err)
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, "", err
	}

	cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)

	return &cfg, parser.Active.Name, nil
}
