// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"os/signal"
)

// interruptSignals defines the signals caught to trigger a clean shutdown.
var interruptSignals = []os.Signal{os.Interrupt}

// interruptListener returns a channel that is closed the first time one of
// interruptSignals arrives.
func interruptListener() <-chan struct{} {
	c := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, interruptSignals...)

		sig := <-sigChan
		p2pnodeLog.Infof("Received signal (%s), shutting down...", sig)
		close(c)
	}()

	return c
}
