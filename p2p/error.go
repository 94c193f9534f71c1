// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import "errors"

var (
	// ErrOperationFailed is returned when a precondition is violated, such
	// as starting a manager that is already running.
	ErrOperationFailed = errors.New("operation failed")

	// ErrServiceStopped is delivered to SubscribeConnections handlers when
	// the manager stops, to Connect handlers once it has stopped, and to a
	// Start handler whose seeding completes after Stop.
	ErrServiceStopped = errors.New("service stopped")

	// ErrFileSystem is reported in place of the underlying error when a
	// host store load during start or save during stop fails; the
	// underlying error is logged.
	ErrFileSystem = errors.New("host store file error")
)
