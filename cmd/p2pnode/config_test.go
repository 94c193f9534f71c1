// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lastcanal/libbitcoin-network/wire"
)

func TestParsePeerListAppliesDefaultPort(t *testing.T) {
	hosts, ports, err := parsePeerList([]string{"10.0.0.1", "10.0.0.2:9999"}, 8333)
	require.NoError(t, err)
	require.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, hosts)
	require.Equal(t, []uint16{8333, 9999}, ports)
}

func TestParsePeerListRejectsBadPort(t *testing.T) {
	_, _, err := parsePeerList([]string{"10.0.0.1:notaport"}, 8333)
	require.Error(t, err)
}

func TestValidLogLevel(t *testing.T) {
	require.True(t, validLogLevel("debug"))
	require.True(t, validLogLevel("critical"))
	require.False(t, validLogLevel("verbose"))
}

func TestNetMagic(t *testing.T) {
	var cfg config
	require.Equal(t, wire.MainNet, cfg.netMagic())

	cfg.TestNet3 = true
	require.Equal(t, wire.TestNet3, cfg.netMagic())

	cfg.TestNet3 = false
	cfg.SimNet = true
	require.Equal(t, wire.SimNet, cfg.netMagic())
}

func TestDefaultPeerPort(t *testing.T) {
	var cfg config
	require.EqualValues(t, defaultInboundPort, cfg.defaultPeerPort())

	cfg.TestNet3 = true
	require.EqualValues(t, 18333, cfg.defaultPeerPort())

	cfg.TestNet3 = false
	cfg.SimNet = true
	require.EqualValues(t, 18555, cfg.defaultPeerPort())
}

func TestSettingsConversion(t *testing.T) {
	cfg := config{
		Listen:                   "18444",
		OutboundConnections:      4,
		ManualRetrySeconds:       30,
		ConnectTimeoutSecs:       10,
		HandshakeSeconds:         10,
		RevivalMinutes:           5,
		HeartbeatMinutes:         1,
		ExpirationMinutes:        10,
		HostPoolCapacity:         500,
		UserAgent:                "/p2pnode:test/",
		ProtocolVersion:          wire.ProtocolVersion,
		Seeds:                    []string{"seed.example.com:8333"},
	}

	settings, err := cfg.settings()
	require.NoError(t, err)
	require.EqualValues(t, 18444, settings.InboundPort)
	require.Equal(t, 4, settings.OutboundConnections)
	require.Equal(t, []string{"seed.example.com:8333"}, settings.Seeds)
	require.Equal(t, wire.MainNet, settings.Magic)
	require.Equal(t, wire.SFNodeNetwork, settings.Services)
}

func TestSettingsConversionRejectsBadListenPort(t *testing.T) {
	cfg := config{Listen: "not-a-port"}
	_, err := cfg.settings()
	require.Error(t, err)
}
