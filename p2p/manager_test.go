// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"net"
	"testing"
	"time"

	"github.com/lastcanal/libbitcoin-network/channel"
	"github.com/lastcanal/libbitcoin-network/wire"
	"github.com/stretchr/testify/require"
)

// runFakePeer wraps conn in its own channel and answers version with
// version+verack, ping with pong, and getaddr with a one-entry addr list —
// just enough of the protocol for the manager under test to complete a
// handshake and a seed harvest against it.
func runFakePeer(t *testing.T, conn net.Conn, magic wire.BitcoinNet) *channel.Channel {
	ch := channel.New(conn, magic, wire.DefaultMaxPayloadSize)
	ch.Subscribe(wire.CmdVersion, func(err error, msg wire.Message) {
		if err != nil {
			return
		}
		me := wire.NewNetAddressIPPort(net.IPv4zero, 0, 0)
		you := wire.NewNetAddressIPPort(net.IPv4zero, 0, 0)
		ch.Send(wire.NewMsgVersion(me, you, 1, 0))
		ch.Send(wire.NewMsgVerAck())
	})
	ch.Subscribe(wire.CmdPing, func(err error, msg wire.Message) {
		if err != nil {
			return
		}
		ch.Send(wire.NewMsgPong(msg.(*wire.MsgPing).Nonce))
	})
	ch.Subscribe(wire.CmdGetAddr, func(err error, msg wire.Message) {
		if err != nil {
			return
		}
		ch.Send(&wire.MsgAddr{AddrList: []*wire.NetAddress{
			wire.NewNetAddressIPPort(net.ParseIP("10.0.0.2"), 8333, wire.SFNodeNetwork),
		}})
	})
	require.NoError(t, ch.Start(nil))
	t.Cleanup(func() { ch.Stop(channel.ErrChannelStopped) })
	return ch
}

func testSettings() Settings {
	return Settings{
		Magic:                   wire.TestNet3,
		ChannelHandshakeSeconds: 2,
		ConnectTimeoutSeconds:   2,
		ManualRetrySeconds:      1,
		HostPoolCapacity:        100,
	}
}

func TestManagerStartRunStopEmptySettings(t *testing.T) {
	mgr := New(testSettings())

	var startErr error
	mgr.Start(func(err error) { startErr = err })
	require.NoError(t, startErr)

	var runErr error
	mgr.Run(func(err error) { runErr = err })
	require.NoError(t, runErr)

	var stopErr error
	mgr.Stop(func(err error) { stopErr = err })
	require.NoError(t, stopErr)
}

func TestManagerStopIsIdempotent(t *testing.T) {
	mgr := New(testSettings())
	mgr.Start(func(error) {})
	mgr.Run(func(error) {})

	calls := 0
	handler := func(error) { calls++ }
	mgr.Stop(handler)
	mgr.Stop(handler)

	require.Equal(t, 2, calls)
	require.True(t, mgr.Stopped())
}

func TestManagerStartTwiceFails(t *testing.T) {
	mgr := New(testSettings())
	mgr.Start(func(error) {})

	var err error
	mgr.Start(func(e error) { err = e })
	require.ErrorIs(t, err, ErrOperationFailed)

	mgr.Stop(func(error) {})
}

func TestManagerConnectAfterStopFails(t *testing.T) {
	mgr := New(testSettings())
	mgr.Start(func(error) {})
	mgr.Stop(func(error) {})

	var err error
	mgr.Connect("10.0.0.1", 8333, func(e error) { err = e })
	require.ErrorIs(t, err, ErrServiceStopped)
}

func TestManagerConnectNotifiesSubscribers(t *testing.T) {
	orig := Dial
	defer func() { Dial = orig }()

	Dial = func(network, address string) (net.Conn, error) {
		clientConn, serverConn := net.Pipe()
		runFakePeer(t, serverConn, wire.TestNet3)
		return clientConn, nil
	}

	mgr := New(testSettings())
	mgr.Start(func(error) {})
	mgr.Run(func(error) {})
	defer mgr.Stop(func(error) {})

	notified := make(chan *channel.Channel, 1)
	mgr.SubscribeConnections(func(err error, ch *channel.Channel) {
		if err == nil {
			notified <- ch
		}
	})

	var connectErr error
	done := make(chan struct{})
	mgr.Connect("10.0.0.1", 8333, func(err error) {
		connectErr = err
		close(done)
	})

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("connect did not complete")
	}
	require.NoError(t, connectErr)

	select {
	case <-notified:
	case <-time.After(3 * time.Second):
		t.Fatal("connection subscriber was not notified")
	}
}

func TestManagerSeedHarvestsAddresses(t *testing.T) {
	orig := Dial
	defer func() { Dial = orig }()

	Dial = func(network, address string) (net.Conn, error) {
		clientConn, serverConn := net.Pipe()
		runFakePeer(t, serverConn, wire.TestNet3)
		return clientConn, nil
	}

	settings := testSettings()
	settings.Seeds = []string{"10.0.0.1:8333"}
	mgr := New(settings)

	var startErr error
	done := make(chan struct{})
	mgr.Start(func(err error) {
		startErr = err
		close(done)
	})

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("start did not complete")
	}
	require.NoError(t, startErr)
	require.Equal(t, 1, mgr.hosts.Count())
	mgr.Stop(func(error) {})
}
