// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package connset

import (
	"net"
	"testing"

	"github.com/lastcanal/libbitcoin-network/channel"
	"github.com/lastcanal/libbitcoin-network/wire"
	"github.com/stretchr/testify/require"
)

func newTestChannel(t *testing.T) *channel.Channel {
	_, serverConn := net.Pipe()
	t.Cleanup(func() { serverConn.Close() })
	return channel.New(serverConn, wire.MainNet, wire.DefaultMaxPayloadSize)
}

func TestSetStoreDuplicateFails(t *testing.T) {
	s := New()
	ch1 := newTestChannel(t)
	ch2 := newTestChannel(t)

	require.NoError(t, s.Store("127.0.0.1:8333", ch1))
	require.ErrorIs(t, s.Store("127.0.0.1:8333", ch2), ErrAddressInUse)
	require.Equal(t, 1, s.Count())
	require.True(t, s.Exists("127.0.0.1:8333"))
}

func TestSetRemove(t *testing.T) {
	s := New()
	ch := newTestChannel(t)
	require.NoError(t, s.Store("10.0.0.1:8333", ch))

	s.Remove("10.0.0.1:8333")
	require.False(t, s.Exists("10.0.0.1:8333"))
	require.Equal(t, 0, s.Count())
}

func TestSetStopClosesAllChannels(t *testing.T) {
	s := New()
	require.NoError(t, s.Store("a:1", newTestChannel(t)))
	require.NoError(t, s.Store("b:1", newTestChannel(t)))

	s.Stop(channel.ErrChannelStopped)
	require.Equal(t, 0, s.Count())
}
