// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"sync"
	"time"

	"github.com/lastcanal/libbitcoin-network/channel"
	"github.com/lastcanal/libbitcoin-network/wire"
)

// seedSession dials every configured seed, completes the handshake,
// requests addresses with getaddr, and stores whatever addr reply comes
// back into the host store, then disconnects — libbitcoin's session_seed,
// grounded also on protocol_address.hpp/protocol_seed.hpp's getaddr/addr
// exchange.
type seedSession struct {
	mgr *Manager
}

func newSeedSession(mgr *Manager) *seedSession {
	return &seedSession{mgr: mgr}
}

// start seeds every configured endpoint concurrently and invokes handler
// once every seed has either harvested addresses or failed. A manager
// with no configured seeds and a non-empty host store is not an error;
// this mirrors p2p::handle_hosts_seeded's unconditional success so long as
// the manager has not since stopped.
func (s *seedSession) start(handler func(error)) {
	if len(s.mgr.settings.Seeds) == 0 {
		handler(nil)
		return
	}

	var wg sync.WaitGroup
	for _, seed := range s.mgr.settings.Seeds {
		wg.Add(1)
		go func(seed string) {
			defer wg.Done()
			if err := s.seedOne(seed); err != nil {
				log.Debugf("seed %s failed: %v", seed, err)
			}
		}(seed)
	}
	wg.Wait()

	handler(nil)
}

func (s *seedSession) stop() {}

func (s *seedSession) seedOne(endpoint string) error {
	dial := dialerFor(&s.mgr.settings)
	conn, err := dial("tcp", endpoint)
	if err != nil {
		return err
	}

	ch := channel.New(conn, s.mgr.settings.Magic, s.mgr.settings.maxPayload())
	if err := ch.Start(nil); err != nil {
		conn.Close()
		return err
	}
	defer ch.Stop(channel.ErrChannelStopped)

	if _, err := handshake(ch, &s.mgr.settings, 0); err != nil {
		return err
	}

	addrCh := make(chan *wire.MsgAddr, 1)
	ch.Subscribe(wire.CmdAddr, func(err error, msg wire.Message) {
		if err != nil {
			return
		}
		if a, ok := msg.(*wire.MsgAddr); ok {
			select {
			case addrCh <- a:
			default:
			}
		}
	})

	if err := ch.Send(wire.NewMsgGetAddr()); err != nil {
		return err
	}

	select {
	case addr := <-addrCh:
		s.mgr.hosts.StoreMany(addr.AddrList)
		log.Infof("%d addresses found from seed %s", len(addr.AddrList), endpoint)
	case <-time.After(s.mgr.settings.connectTimeout()):
		log.Debugf("seed %s did not answer getaddr in time", endpoint)
	}

	return nil
}
