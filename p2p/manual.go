// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/lastcanal/libbitcoin-network/channel"
)

// manualSession maintains a persistent, reconnecting dial to every
// endpoint handed to Connect, retrying at a fixed interval on failure or
// disconnection — libbitcoin's session_manual, minus exponential backoff,
// which the original does not implement either.
type manualSession struct {
	mgr *Manager

	mu      sync.Mutex
	quit    chan struct{}
	stopped bool
	wg      sync.WaitGroup
}

func newManualSession(mgr *Manager) *manualSession {
	return &manualSession{mgr: mgr, quit: make(chan struct{})}
}

func (s *manualSession) start() {}

// connect launches (or relaunches) a persistent dial loop to host:port.
// handler, if non-nil, is invoked once with the outcome of the first
// attempt; later reconnects after a drop are not reported through it.
func (s *manualSession) connect(host string, port uint16, handler func(error)) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		if handler != nil {
			handler(ErrServiceStopped)
		}
		return
	}
	quit := s.quit
	s.wg.Add(1)
	s.mu.Unlock()

	go s.dialLoop(host, port, quit, handler)
}

func (s *manualSession) dialLoop(host string, port uint16, quit chan struct{}, handler func(error)) {
	defer s.wg.Done()

	first := true
	dial := dialerFor(&s.mgr.settings)
	addr := net.JoinHostPort(host, strconv.Itoa(int(port)))

	for {
		select {
		case <-quit:
			return
		default:
		}

		conn, err := dial("tcp", addr)
		if err != nil {
			if first {
				first = false
				if handler != nil {
					handler(err)
				}
			}
			log.Debugf("manual connect to %s failed: %v", addr, err)
			if !s.sleep(quit) {
				return
			}
			continue
		}

		ch := channel.New(conn, s.mgr.settings.Magic, s.mgr.settings.maxPayload())
		err = establishOutbound(s.mgr, ch)
		if first {
			first = false
			if handler != nil {
				handler(err)
			}
		}
		if err != nil {
			conn.Close()
			if !s.sleep(quit) {
				return
			}
			continue
		}

		ch.Wait()

		if !s.sleep(quit) {
			return
		}
	}
}

// sleep waits for the manual retry interval, returning false if quit fires
// first.
func (s *manualSession) sleep(quit chan struct{}) bool {
	timer := time.NewTimer(s.mgr.settings.manualRetryInterval())
	defer timer.Stop()
	select {
	case <-quit:
		return false
	case <-timer.C:
		return true
	}
}

func (s *manualSession) stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.quit)
	s.mu.Unlock()

	s.wg.Wait()
}

