// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btclog"
	"github.com/stretchr/testify/require"
)

// levels returns the current level of every subsystem.
func levels() map[string]btclog.Level {
	m := make(map[string]btclog.Level)
	for id, logger := range SubsystemLoggers {
		m[id] = logger.Level()
	}
	return m
}

// TestParseAndSetDebugLevels mutates the shared subsystem loggers so it does
// not run in parallel.
func TestParseAndSetDebugLevels(t *testing.T) {
	defer SetLogLevels("info")

	tests := []struct {
		name   string
		levels string
		want   map[string]btclog.Level
		error  bool
	}{{
		name:   "global",
		levels: "debug",
		want: map[string]btclog.Level{
			"CHAN": btclog.LevelDebug, "PIDX": btclog.LevelDebug,
			"SCRP": btclog.LevelDebug, "TOOL": btclog.LevelDebug,
		},
	}, {
		name:   "global with overrides",
		levels: "warn,SCRP=trace,PIDX=debug",
		want: map[string]btclog.Level{
			"CHAN": btclog.LevelWarn, "PIDX": btclog.LevelDebug,
			"SCRP": btclog.LevelTrace, "TOOL": btclog.LevelWarn,
		},
	}, {
		name:   "pairs only",
		levels: "TOOL=off",
		want: map[string]btclog.Level{
			"CHAN": btclog.LevelInfo, "PIDX": btclog.LevelInfo,
			"SCRP": btclog.LevelInfo, "TOOL": btclog.LevelOff,
		},
	}, {
		name:   "bad global level",
		levels: "loud",
		error:  true,
	}, {
		name:   "unknown subsystem",
		levels: "info,PEER=debug",
		error:  true,
	}, {
		name:   "bad pair level",
		levels: "SCRP=chatty",
		error:  true,
	}, {
		name:   "malformed pair",
		levels: "info,SCRP=debug=trace",
		error:  true,
	}}

	for _, test := range tests {
		SetLogLevels("info")
		before := levels()

		err := ParseAndSetDebugLevels(test.levels)
		if test.error {
			require.Error(t, err, test.name)
			// A rejected level string applies none of its pairs.
			require.Equal(t, before, levels(), test.name)
			continue
		}
		require.NoError(t, err, test.name)
		require.Equal(t, test.want, levels(), test.name)
	}
}

func TestSupportedSubsystems(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"CHAN", "PIDX", "SCRP", "TOOL"},
		SupportedSubsystems())
}

// TestInitLogRotator swaps the package rotator so it does not run in
// parallel.
func TestInitLogRotator(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "scriptcheck.log")
	require.NoError(t, InitLogRotator(logFile))
	defer func() {
		LogRotator.Close()
		LogRotator = nil
	}()

	_, err := os.Stat(filepath.Dir(logFile))
	require.NoError(t, err)
}
