// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"net"
	"strconv"
	"sync"

	"github.com/lastcanal/libbitcoin-network/channel"
)

// inboundSession listens on settings.InboundPort and hands each accepted
// connection through the shared handshake/registration path, following
// a peer-to-peer listener's accept loop shape.
type inboundSession struct {
	mgr      *Manager
	listener net.Listener
	wg       sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

func newInboundSession(mgr *Manager) *inboundSession {
	return &inboundSession{mgr: mgr}
}

// start binds the listener and launches the accept loop. A zero
// InboundPort disables inbound listening entirely and is not an error.
func (s *inboundSession) start() error {
	if s.mgr.settings.InboundPort == 0 {
		return nil
	}

	addr := net.JoinHostPort("", strconv.Itoa(int(s.mgr.settings.InboundPort)))
	ln, err := Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *inboundSession) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *inboundSession) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isStopped() {
				return
			}
			log.Errorf("can't accept connection: %v", err)
			continue
		}

		ch := channel.New(conn, s.mgr.settings.Magic, s.mgr.settings.maxPayload())
		go func() {
			if err := establishOutbound(s.mgr, ch); err != nil {
				log.Debugf("inbound handshake with %s failed: %v", ch.Authority(), err)
			}
		}()
	}
}

// stop marks the session stopped before closing the listener, so
// acceptLoop's error check after Accept unblocks always observes
// isStopped as true and returns instead of spinning on a closed
// listener.
func (s *inboundSession) stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
}
