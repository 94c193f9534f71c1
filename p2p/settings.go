// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"net"
	"time"

	"github.com/lastcanal/libbitcoin-network/wire"
)

// Settings configures a Manager. Time-based fields are expressed in the
// units their name carries (seconds or minutes) to match how a node
// operator's configuration file states them, and are converted to
// time.Duration at the point of use.
type Settings struct {
	// Threads is the configured worker count. The manager does not size a
	// worker pool from it: each session loop and each channel's read cycle
	// runs on its own goroutine.
	Threads int

	// InboundPort is the TCP port the inbound session listens on. Zero
	// disables inbound listening.
	InboundPort uint16

	// OutboundConnections is the target number of simultaneous outbound
	// connections the outbound session tries to maintain.
	OutboundConnections int

	// ManualRetrySeconds is the fixed interval a manual connection is
	// redialed at after a failed or dropped attempt.
	ManualRetrySeconds int

	// ConnectTimeoutSeconds bounds how long the seed session waits for an
	// addr reply after sending getaddr. Dial attempts themselves are not
	// given a timeout.
	ConnectTimeoutSeconds int

	// ChannelHandshakeSeconds bounds how long a channel is given to
	// complete the version/verack exchange before it is stopped.
	ChannelHandshakeSeconds int

	// ChannelRevivalMinutes is the idle interval after which a channel
	// revives itself by sending an unsolicited ping.
	ChannelRevivalMinutes int

	// ChannelHeartbeatMinutes is the interval at which a channel, once
	// notified into the live set, checks its idle time. It sends a ping
	// only once that idle time reaches ChannelRevivalMinutes, or on every
	// check when ChannelRevivalMinutes is zero.
	ChannelHeartbeatMinutes int

	// ChannelExpirationMinutes is the idle interval after which a channel
	// that has not answered a heartbeat is stopped.
	ChannelExpirationMinutes int

	// HostPoolCapacity bounds the number of addresses the host store
	// retains.
	HostPoolCapacity uint

	// Seeds lists "host:port" endpoints the seed session harvests
	// addresses from at startup.
	Seeds []string

	// Self is the endpoint this node advertises as its own in the
	// version message's AddrMe field. Nil advertises an unroutable
	// placeholder.
	Self *wire.NetAddress

	// Blacklist lists configured subnets. No session checks dialed or
	// accepted endpoints against it.
	Blacklist []*net.IPNet

	// UserAgent is advertised in the version message.
	UserAgent string

	// ProtocolVersion is advertised in the version message.
	ProtocolVersion uint32

	// Services is the service bitfield advertised in the version
	// message.
	Services wire.ServiceFlag

	// Magic selects the network (mainnet, testnet, ...) channels are
	// framed under.
	Magic wire.BitcoinNet

	// MaxPayload bounds a single message's payload size. Zero means
	// wire.DefaultMaxPayloadSize.
	MaxPayload uint32

	// HostStorePath is where the host store is loaded from at start and
	// saved to at stop. Empty disables persistence.
	HostStorePath string

	// Proxy, if non-empty, is a SOCKS5 proxy address outbound dials are
	// routed through.
	Proxy string
	// ProxyUsername and ProxyPassword authenticate to Proxy, if set.
	ProxyUsername string
	ProxyPassword string
}

func (s *Settings) handshakeTimeout() time.Duration {
	return time.Duration(s.ChannelHandshakeSeconds) * time.Second
}

func (s *Settings) connectTimeout() time.Duration {
	return time.Duration(s.ConnectTimeoutSeconds) * time.Second
}

func (s *Settings) manualRetryInterval() time.Duration {
	return time.Duration(s.ManualRetrySeconds) * time.Second
}

func (s *Settings) heartbeatInterval() time.Duration {
	return time.Duration(s.ChannelHeartbeatMinutes) * time.Minute
}

func (s *Settings) revivalInterval() time.Duration {
	return time.Duration(s.ChannelRevivalMinutes) * time.Minute
}

func (s *Settings) expirationTimeout() time.Duration {
	return time.Duration(s.ChannelExpirationMinutes) * time.Minute
}

func (s *Settings) maxPayload() uint32 {
	if s.MaxPayload == 0 {
		return wire.DefaultMaxPayloadSize
	}
	return s.MaxPayload
}
