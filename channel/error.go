// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

import "errors"

var (
	// ErrOperationFailed is returned when a precondition is violated, such
	// as starting a channel that is already running.
	ErrOperationFailed = errors.New("operation failed")

	// ErrChannelStopped is delivered to message subscribers when the
	// channel stops, and returned by Send once stopped.
	ErrChannelStopped = errors.New("channel stopped")

	// ErrBadStream is returned for framing, magic, size, checksum, or
	// payload parse errors on the read cycle.
	ErrBadStream = errors.New("bad stream")
)
