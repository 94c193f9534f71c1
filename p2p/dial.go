// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"net"

	"github.com/btcsuite/go-socks/socks"
)

// dialFunc matches the shape of net.Dial, so a proxy-backed dialer can
// stand in for a direct one without the outbound session knowing which.
type dialFunc func(network, address string) (net.Conn, error)

var (
	// Dial connects to the address on the named network. Overridable for
	// tests, following connmgr's package-level Dial variable.
	Dial dialFunc = net.Dial

	// Listen binds a listener to the named local address. Overridable
	// for tests, following connmgr's mockListener usage.
	Listen func(network, address string) (net.Listener, error) = net.Listen
)

// dialerFor returns Dial directly, or a SOCKS5-proxying wrapper around it
// if s.Proxy is set, following the same socks.Proxy wiring a config layer
// uses to turn on proxy dialing.
func dialerFor(s *Settings) dialFunc {
	if s.Proxy == "" {
		return Dial
	}

	proxy := &socks.Proxy{
		Addr:     s.Proxy,
		Username: s.ProxyUsername,
		Password: s.ProxyPassword,
	}
	return proxy.Dial
}
