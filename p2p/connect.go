// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"github.com/lastcanal/libbitcoin-network/channel"
)

// establishOutbound starts ch's read cycle, runs the version/verack
// handshake, and, on success, registers it in the connection set and
// attaches its heartbeat. On any failure the channel is stopped and the
// error returned; the caller owns closing the underlying socket only if
// this returns before Start succeeds.
func establishOutbound(mgr *Manager, ch *channel.Channel) error {
	if err := ch.Start(nil); err != nil {
		return err
	}

	if _, err := handshake(ch, &mgr.settings, 0); err != nil {
		ch.Stop(channel.ErrBadStream)
		return err
	}

	if err := mgr.notifyConnected(ch.Authority(), ch); err != nil {
		ch.Stop(channel.ErrChannelStopped)
		return err
	}

	attachHeartbeat(ch, &mgr.settings)
	return nil
}
