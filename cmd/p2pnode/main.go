// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"

	"github.com/lastcanal/libbitcoin-network/channel"
	"github.com/lastcanal/libbitcoin-network/p2p"
)

func p2pnodeMain() error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	initLogRotator(filepath.Join(cfg.LogDir, defaultLogFilename))
	setLogLevels(cfg.DebugLevel)

	settings, err := cfg.settings()
	if err != nil {
		return err
	}
	p2pnodeLog.Debugf("settings: %v", spew.Sdump(settings))

	mgr := p2p.New(settings)

	mgr.SubscribeConnections(func(err error, ch *channel.Channel) {
		if err != nil {
			p2pnodeLog.Infof("connection subscriber stopped: %v", err)
			return
		}
		p2pnodeLog.Infof("connected: %s", ch.Authority())
	})

	interrupt := interruptListener()

	startErr := make(chan error, 1)
	mgr.Start(func(err error) { startErr <- err })
	if err := <-startErr; err != nil {
		return fmt.Errorf("start failed: %w", err)
	}

	runErr := make(chan error, 1)
	mgr.Run(func(err error) { runErr <- err })
	if err := <-runErr; err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	hosts, ports, err := parsePeerList(cfg.AddPeers, cfg.defaultPeerPort())
	if err != nil {
		return err
	}
	for i := range hosts {
		host, port := hosts[i], ports[i]
		mgr.Connect(host, port, func(err error) {
			if err != nil {
				p2pnodeLog.Warnf("manual connect to %s:%d failed: %v", host, port, err)
			}
		})
	}

	<-interrupt

	stopErr := make(chan error, 1)
	mgr.Stop(func(err error) { stopErr <- err })
	return <-stopErr
}

func main() {
	if err := p2pnodeMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
