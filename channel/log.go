// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

import "github.com/btcsuite/btclog"

// log is the package-level logger. It performs no output until a caller
// supplies one with UseLogger.
var log = btclog.Disabled

// UseLogger uses logger to output package logging info, overriding the
// default no-op logger.
func UseLogger(logger btclog.Logger) {
	log = logger
}
