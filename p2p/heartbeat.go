// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"sync/atomic"
	"time"

	"github.com/lastcanal/libbitcoin-network/channel"
	"github.com/lastcanal/libbitcoin-network/wire"
)

// attachHeartbeat wakes every heartbeatInterval to check the channel's
// idle time: past expirationTimeout it stops the channel outright; past
// the shorter revivalInterval it sends an unsolicited ping to provoke
// traffic (a pong, or anything else) before expiration arrives; otherwise
// it does nothing, since recent real traffic already proves the channel
// alive. This follows protocol_ping.hpp's revival/expiration pairing and
// the pingInterval/idleTimeout constants a peer implementation keeps for
// the same purpose. It must be called once ch has been notified into
// the live connection set.
func attachHeartbeat(ch *channel.Channel, s *Settings) {
	heartbeat := s.heartbeatInterval()
	revival := s.revivalInterval()
	expiration := s.expirationTimeout()
	if heartbeat <= 0 || expiration <= 0 {
		return
	}

	var lastActivity atomic.Int64
	lastActivity.Store(time.Now().UnixNano())
	touch := func(error, wire.Message) { lastActivity.Store(time.Now().UnixNano()) }

	ch.Subscribe(wire.CmdPing, func(err error, msg wire.Message) {
		touch(err, msg)
		if err != nil {
			return
		}
		if p, ok := msg.(*wire.MsgPing); ok {
			ch.Send(wire.NewMsgPong(p.Nonce))
		}
	})
	ch.Subscribe(wire.CmdPong, touch)
	ch.Subscribe(wire.CmdAddr, touch)
	ch.Subscribe(wire.CmdGetAddr, touch)

	stopped := make(chan struct{})
	ch.SubscribeStop(func(error) { close(stopped) })

	ticker := time.NewTicker(heartbeat)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stopped:
				return
			case <-ticker.C:
				idle := time.Since(time.Unix(0, lastActivity.Load()))
				if idle >= expiration {
					ch.Stop(channel.ErrChannelStopped)
					return
				}
				if revival <= 0 || idle >= revival {
					ch.Send(wire.NewMsgPing(nonce()))
				}
			}
		}
	}()
}
