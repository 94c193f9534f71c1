// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

import (
	"net"
	"testing"
	"time"

	"github.com/lastcanal/libbitcoin-network/wire"
	"github.com/stretchr/testify/require"
)

func newLoopbackPair() (net.Conn, net.Conn) {
	return net.Pipe()
}

func TestChannelFramedEcho(t *testing.T) {
	clientConn, serverConn := newLoopbackPair()
	defer clientConn.Close()

	server := New(serverConn, wire.MainNet, wire.DefaultMaxPayloadSize)
	defer server.Stop(nil)

	received := make(chan uint64, 1)
	server.Subscribe(wire.CmdPing, func(err error, msg wire.Message) {
		if err != nil {
			return
		}
		received <- msg.(*wire.MsgPing).Nonce
	})
	require.NoError(t, server.Start(nil))

	_, err := wire.WriteMessage(clientConn, wire.NewMsgPing(42), wire.ProtocolVersion, wire.MainNet)
	require.NoError(t, err)

	select {
	case nonce := <-received:
		require.Equal(t, uint64(42), nonce)
	case <-time.After(2 * time.Second):
		t.Fatal("ping subscriber was never invoked")
	}
}

// rawHeading hand-encodes a 24-byte heading without going through
// wire.WriteMessage, so a test can declare a payload length larger than
// what it actually sends.
func rawHeading(magic wire.BitcoinNet, command string, length uint32) []byte {
	buf := make([]byte, 24)
	buf[0] = byte(magic)
	buf[1] = byte(magic >> 8)
	buf[2] = byte(magic >> 16)
	buf[3] = byte(magic >> 24)
	copy(buf[4:16], command)
	buf[16] = byte(length)
	buf[17] = byte(length >> 8)
	buf[18] = byte(length >> 16)
	buf[19] = byte(length >> 24)
	return buf
}

func TestChannelOversizePayloadStopsBeforeReadingBody(t *testing.T) {
	clientConn, serverConn := newLoopbackPair()
	defer clientConn.Close()

	const maxPayload = 1024
	server := New(serverConn, wire.MainNet, maxPayload)

	stopped := make(chan error, 1)
	server.SubscribeStop(func(err error) { stopped <- err })
	require.NoError(t, server.Start(nil))

	hdr := rawHeading(wire.MainNet, wire.CmdPing, maxPayload+1)
	go func() {
		_, _ = clientConn.Write(hdr)
		// Deliberately never send the declared payload: if the
		// channel tried to read it before checking the guard, this
		// test would hang rather than observe a stop.
	}()

	select {
	case err := <-stopped:
		require.ErrorIs(t, err, ErrBadStream)
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not stop on oversize heading")
	}
}

func TestChannelBadMagicStops(t *testing.T) {
	clientConn, serverConn := newLoopbackPair()
	defer clientConn.Close()

	server := New(serverConn, wire.MainNet, wire.DefaultMaxPayloadSize)
	stopped := make(chan error, 1)
	server.SubscribeStop(func(err error) { stopped <- err })
	require.NoError(t, server.Start(nil))

	hdr := rawHeading(wire.TestNet3, wire.CmdPing, 0)
	go func() { _, _ = clientConn.Write(hdr) }()

	select {
	case err := <-stopped:
		require.ErrorIs(t, err, ErrBadStream)
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not stop on wrong magic")
	}
}

func TestChannelStopIsIdempotent(t *testing.T) {
	_, serverConn := newLoopbackPair()
	server := New(serverConn, wire.MainNet, wire.DefaultMaxPayloadSize)
	require.NoError(t, server.Start(nil))

	calls := 0
	server.SubscribeStop(func(err error) { calls++ })

	server.Stop(ErrBadStream)
	server.Stop(ErrBadStream)
	server.Stop(ErrBadStream)

	require.True(t, server.Stopped())
}

func TestChannelSendAfterStopFails(t *testing.T) {
	_, serverConn := newLoopbackPair()
	server := New(serverConn, wire.MainNet, wire.DefaultMaxPayloadSize)
	require.NoError(t, server.Start(nil))
	server.Stop(ErrBadStream)

	err := server.Send(wire.NewMsgPing(1))
	require.ErrorIs(t, err, ErrChannelStopped)
}

func TestChannelStartTwiceFails(t *testing.T) {
	_, serverConn := newLoopbackPair()
	server := New(serverConn, wire.MainNet, wire.DefaultMaxPayloadSize)
	defer server.Stop(nil)

	require.NoError(t, server.Start(nil))
	require.ErrorIs(t, server.Start(nil), ErrOperationFailed)
}
