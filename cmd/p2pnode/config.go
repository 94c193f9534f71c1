// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	flags "github.com/jessevdk/go-flags"

	"github.com/lastcanal/libbitcoin-network/p2p"
	"github.com/lastcanal/libbitcoin-network/wire"
)

const (
	defaultConfigFilename       = "p2pnode.conf"
	defaultLogFilename          = "p2pnode.log"
	defaultLogLevel             = "info"
	defaultInboundPort          = 8333
	defaultOutboundConnections  = 8
	defaultManualRetrySeconds   = 30
	defaultConnectTimeoutSecs   = 10
	defaultHandshakeSeconds     = 10
	defaultRevivalMinutes       = 5
	defaultHeartbeatMinutes     = 1
	defaultExpirationMinutes    = 10
	defaultHostPoolCapacity     = 1000
	defaultProtocolVersion      = wire.ProtocolVersion
	defaultUserAgent            = "/p2pnode:0.1.0/"
)

func p2pnodeHomeDir() string {
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "p2pnode")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".p2pnode")
	}
	return "."
}

var (
	defaultHomeDir   = p2pnodeHomeDir()
	defaultConfigFile = filepath.Join(defaultHomeDir, defaultConfigFilename)
	defaultLogFile    = filepath.Join(defaultHomeDir, "logs", defaultLogFilename)
	defaultHostsFile  = filepath.Join(defaultHomeDir, "hosts.dat")
)

// config defines every command-line and config-file option p2pnode accepts.
type config struct {
	ConfigFile string `short:"C" long:"configfile" description:"Path to configuration file"`
	LogDir     string `long:"logdir" description:"Directory to log output to"`
	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`

	TestNet3 bool `long:"testnet" description:"Use the test network"`
	SimNet   bool `long:"simnet" description:"Use the simulation test network"`

	Listen              string   `long:"listen" description:"Port to accept inbound connections on, 0 to disable"`
	OutboundConnections int      `long:"maxoutbound" description:"Target number of outbound connections to maintain"`
	AddPeers            []string `short:"a" long:"addpeer" description:"Add a persistent peer to connect to at startup, host:port"`
	Seeds               []string `long:"seed" description:"Add a one-shot address-harvesting seed peer, host:port"`
	HostsFile           string   `long:"hostsfile" description:"File to load/save known peer addresses"`

	ManualRetrySeconds  int `long:"manualretrysecs" description:"Seconds between redial attempts for a persistent peer"`
	ConnectTimeoutSecs  int `long:"connecttimeoutsecs" description:"Seconds a seed peer is given to answer getaddr; dials are not timed out"`
	HandshakeSeconds    int `long:"handshakesecs" description:"Seconds to allow the version handshake to complete"`
	RevivalMinutes      int `long:"revivalmins" description:"Idle minutes before an unsolicited ping is sent"`
	HeartbeatMinutes    int `long:"heartbeatmins" description:"Minutes between heartbeat checks"`
	ExpirationMinutes   int `long:"expirationmins" description:"Idle minutes before an unresponsive channel is dropped"`
	HostPoolCapacity    int `long:"hostpoolcap" description:"Maximum number of known peer addresses to retain"`

	Proxy         string `long:"proxy" description:"Connect via SOCKS5 proxy, host:port"`
	ProxyUser     string `long:"proxyuser" description:"Username for proxy server"`
	ProxyPass     string `long:"proxypass" description:"Password for proxy server"`

	UserAgent       string `long:"useragent" description:"User agent string advertised in the version message"`
	ProtocolVersion uint32 `long:"protocolversion" description:"Protocol version advertised in the version message"`

	Threads   int      `long:"threads" description:"Worker count recorded in the node settings; the session manager does not size a pool from it"`
	Blacklist []string `long:"blacklist" description:"CIDR subnet recorded in the node settings; connections are not filtered by it"`
}

func cleanAndExpandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		path = strings.Replace(path, "~", defaultHomeDir, 1)
	}
	return filepath.Clean(os.ExpandEnv(path))
}

func validLogLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "error", "critical":
		return true
	}
	return false
}

// parsePeerList splits peer specifications into host and port, applying
// defaultPort when a peer was given with no port of its own.
func parsePeerList(peers []string, defaultPort uint16) ([]string, []uint16, error) {
	hosts := make([]string, len(peers))
	ports := make([]uint16, len(peers))
	for i, p := range peers {
		host, portStr, err := net.SplitHostPort(p)
		if err != nil {
			hosts[i] = p
			ports[i] = defaultPort
			continue
		}
		port, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid port in peer %q: %w", p, err)
		}
		hosts[i] = host
		ports[i] = uint16(port)
	}
	return hosts, ports, nil
}

// loadConfig parses command-line and config-file options into a config,
// applying defaults first. It mirrors the two-pass (pre-parse for
// -C/--configfile, then full parse against the ini file and the command
// line together) pattern a flags-based config loader uses.
func loadConfig() (*config, []string, error) {
	cfg := config{
		ConfigFile:          defaultConfigFile,
		LogDir:              filepath.Dir(defaultLogFile),
		DebugLevel:          defaultLogLevel,
		Listen:              strconv.Itoa(defaultInboundPort),
		OutboundConnections: defaultOutboundConnections,
		HostsFile:           defaultHostsFile,
		ManualRetrySeconds:  defaultManualRetrySeconds,
		ConnectTimeoutSecs:  defaultConnectTimeoutSecs,
		HandshakeSeconds:    defaultHandshakeSeconds,
		RevivalMinutes:      defaultRevivalMinutes,
		HeartbeatMinutes:    defaultHeartbeatMinutes,
		ExpirationMinutes:   defaultExpirationMinutes,
		HostPoolCapacity:    defaultHostPoolCapacity,
		UserAgent:           defaultUserAgent,
		ProtocolVersion:     defaultProtocolVersion,
	}

	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.None)
	_, _ = preParser.Parse()

	if preCfg.ConfigFile != defaultConfigFile {
		cfg.ConfigFile = preCfg.ConfigFile
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if err := flags.NewIniParser(parser).ParseFile(cfg.ConfigFile); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			fmt.Fprintln(os.Stderr, err)
			return nil, nil, err
		}
	}

	remainingArgs, err := parser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return nil, nil, err
	}

	if cfg.TestNet3 && cfg.SimNet {
		err := fmt.Errorf("testnet and simnet can't be used together")
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	if !validLogLevel(cfg.DebugLevel) {
		err := fmt.Errorf("the specified debug level [%v] is invalid", cfg.DebugLevel)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	cfg.HostsFile = cleanAndExpandPath(cfg.HostsFile)

	return &cfg, remainingArgs, nil
}

// netMagic returns the network magic selected by cfg, defaulting to the
// main network.
func (cfg *config) netMagic() wire.BitcoinNet {
	switch {
	case cfg.TestNet3:
		return wire.TestNet3
	case cfg.SimNet:
		return wire.SimNet
	default:
		return wire.MainNet
	}
}

// defaultPeerPort returns the port a bare host:port-less peer address
// should be assumed to listen on, matching netMagic.
func (cfg *config) defaultPeerPort() uint16 {
	switch cfg.netMagic() {
	case wire.TestNet3:
		return 18333
	case wire.SimNet:
		return 18555
	default:
		return defaultInboundPort
	}
}

// settings converts a parsed config into p2p.Settings.
func (cfg *config) settings() (p2p.Settings, error) {
	inboundPort, err := strconv.ParseUint(cfg.Listen, 10, 16)
	if err != nil {
		return p2p.Settings{}, fmt.Errorf("invalid --listen port: %w", err)
	}

	blacklist := make([]*net.IPNet, 0, len(cfg.Blacklist))
	for _, cidr := range cfg.Blacklist {
		_, subnet, err := net.ParseCIDR(cidr)
		if err != nil {
			return p2p.Settings{}, fmt.Errorf("invalid --blacklist subnet %q: %w", cidr, err)
		}
		blacklist = append(blacklist, subnet)
	}

	return p2p.Settings{
		Threads:                  cfg.Threads,
		Blacklist:                blacklist,
		InboundPort:              uint16(inboundPort),
		OutboundConnections:      cfg.OutboundConnections,
		ManualRetrySeconds:       cfg.ManualRetrySeconds,
		ConnectTimeoutSeconds:    cfg.ConnectTimeoutSecs,
		ChannelHandshakeSeconds:  cfg.HandshakeSeconds,
		ChannelRevivalMinutes:    cfg.RevivalMinutes,
		ChannelHeartbeatMinutes:  cfg.HeartbeatMinutes,
		ChannelExpirationMinutes: cfg.ExpirationMinutes,
		HostPoolCapacity:         uint(cfg.HostPoolCapacity),
		Seeds:                    cfg.Seeds,
		UserAgent:                cfg.UserAgent,
		ProtocolVersion:          cfg.ProtocolVersion,
		Services:                 wire.SFNodeNetwork,
		Magic:                    cfg.netMagic(),
		HostStorePath:            cfg.HostsFile,
		Proxy:                    cfg.Proxy,
		ProxyUsername:            cfg.ProxyUser,
		ProxyPassword:            cfg.ProxyPass,
	}, nil
}
