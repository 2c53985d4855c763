// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package log provides the subsystem logger used by the indexer
// packages, following the btcd convention of a package-level
// logger swapped in by the caller via UseLogger.
package log

import (
	"io"
	"os"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
)

// log is the subsystem logger. It is disabled by default so library
// consumers that never call UseLogger or InitLogRotator see no output.
var log = btclog.Disabled

// UseLogger sets the subsystem logger used by this package and its
// callers.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// Logger returns the currently installed subsystem logger.
func Logger() btclog.Logger {
	return log
}

// InitLogRotator initializes a rotating file logger writing to logFile,
// tees the output to w as well (typically os.Stdout), and installs it
// as the subsystem logger at the given level.
func InitLogRotator(logFile string, w io.Writer, level btclog.Level) error {
	if w == nil {
		w = os.Stdout
	}

	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return err
	}

	backend := btclog.NewBackend(io.MultiWriter(w, r))
	logger := backend.Logger("RUNE")
	logger.SetLevel(level)

	UseLogger(logger)

	return nil
}
