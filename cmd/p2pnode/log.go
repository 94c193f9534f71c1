// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/lastcanal/libbitcoin-network/p2p"
)

// logWriter writes to both standard output and the rotator, once it has
// been initialized by initLogRotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	logRotator.Write(p)
	return len(p), nil
}

var (
	backendLog = btclog.NewBackend(logWriter{})
	logRotator *rotator.Rotator

	p2pnodeLog = backendLog.Logger("NODE")
	p2pLog     = backendLog.Logger("P2P")
)

// subsystemLoggers maps a subsystem identifier to its logger, for
// SetLogLevel/SetLogLevels.
var subsystemLoggers = map[string]btclog.Logger{
	"NODE": p2pnodeLog,
	"P2P":  p2pLog,
}

func init() {
	p2p.UseLogger(p2pLog)
}

// initLogRotator opens logFile for writing, creating roll files alongside
// it, and must be called before any logger is used.
func initLogRotator(logFile string) {
	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory: %v\n", err)
		os.Exit(1)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create file rotator: %v\n", err)
		os.Exit(1)
	}
	logRotator = r
}

// setLogLevel sets the level of one subsystem, ignoring unknown subsystem
// identifiers.
func setLogLevel(subsystemID, logLevel string) {
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}
	level, _ := btclog.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// setLogLevels sets every subsystem logger to logLevel.
func setLogLevels(logLevel string) {
	for subsystemID := range subsystemLoggers {
		setLogLevel(subsystemID, logLevel)
	}
}
