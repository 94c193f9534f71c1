// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"crypto/rand"
	"encoding/binary"
	"net"
	"strconv"
	"time"

	"github.com/lastcanal/libbitcoin-network/channel"
	"github.com/lastcanal/libbitcoin-network/wire"
)

// nonce returns a random 64-bit nonce for a version message's self-connect
// detection.
func nonce() uint64 {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	return binary.LittleEndian.Uint64(buf[:])
}

// selfAddress returns the endpoint a version message advertises as this
// node's own, falling back to an unroutable placeholder when Settings.Self
// is unset.
func selfAddress(s *Settings) *wire.NetAddress {
	if s.Self != nil {
		return s.Self
	}
	return wire.NewNetAddressIPPort(net.IPv4zero, 0, s.Services)
}

// peerAddress builds the NetAddress a version message advertises for the
// remote end, derived from the channel's cached authority string.
func peerAddress(ch *channel.Channel, s *Settings) *wire.NetAddress {
	host, portStr, err := net.SplitHostPort(ch.Authority())
	var ip net.IP
	var port uint16
	if err == nil {
		ip = net.ParseIP(host)
		if p, perr := strconv.Atoi(portStr); perr == nil {
			port = uint16(p)
		}
	}
	if ip == nil {
		ip = net.IPv4zero
	}
	return wire.NewNetAddressIPPort(ip, port, 0)
}

// handshake performs the version/verack exchange on ch and reports the
// remote's version message once both sides have completed it, or an error
// if the exchange times out or the channel stops first. The caller is
// expected to have already called ch.Start.
func handshake(ch *channel.Channel, s *Settings, lastBlock int32) (*wire.MsgVersion, error) {
	versionCh := make(chan *wire.MsgVersion, 1)
	verackCh := make(chan struct{}, 1)
	errCh := make(chan error, 1)

	ch.Subscribe(wire.CmdVersion, func(err error, msg wire.Message) {
		if err != nil {
			select {
			case errCh <- err:
			default:
			}
			return
		}
		if v, ok := msg.(*wire.MsgVersion); ok {
			select {
			case versionCh <- v:
			default:
			}
		}
	})
	ch.Subscribe(wire.CmdVerAck, func(err error, msg wire.Message) {
		if err != nil {
			select {
			case errCh <- err:
			default:
			}
			return
		}
		select {
		case verackCh <- struct{}{}:
		default:
		}
	})

	me := selfAddress(s)
	you := peerAddress(ch, s)
	ver := wire.NewMsgVersion(me, you, nonce(), lastBlock)
	ver.Services = s.Services
	if s.UserAgent != "" {
		ver.UserAgent = s.UserAgent
	}
	if s.ProtocolVersion != 0 {
		ver.ProtocolVersion = int32(s.ProtocolVersion)
	}

	if err := ch.Send(ver); err != nil {
		return nil, err
	}
	if err := ch.Send(wire.NewMsgVerAck()); err != nil {
		return nil, err
	}

	timeout := time.NewTimer(s.handshakeTimeout())
	defer timeout.Stop()

	var remoteVersion *wire.MsgVersion
	var gotVerAck bool
	for remoteVersion == nil || !gotVerAck {
		select {
		case v := <-versionCh:
			remoteVersion = v
		case <-verackCh:
			gotVerAck = true
		case err := <-errCh:
			return nil, err
		case <-timeout.C:
			return nil, ErrOperationFailed
		}
	}

	return remoteVersion, nil
}
