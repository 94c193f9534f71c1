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

// outboundConnectRetry is how long the outbound session waits before
// trying to fill a connection slot again after a dial or handshake
// failure. Unlike the manual session this has no per-target identity to
// retry against, so a short fixed backoff is used instead of a
// configured setting.
const outboundConnectRetry = 5 * time.Second

// outboundSession maintains settings.OutboundConnections simultaneous
// connections by repeatedly drawing a candidate from the host store and
// dialing it, following libbitcoin's session_outbound.
type outboundSession struct {
	mgr     *Manager
	quit    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
}

func newOutboundSession(mgr *Manager) *outboundSession {
	return &outboundSession{mgr: mgr, quit: make(chan struct{})}
}

func (s *outboundSession) start() {
	target := s.mgr.settings.OutboundConnections
	for i := 0; i < target; i++ {
		s.wg.Add(1)
		go s.maintainOne()
	}
}

// maintainOne holds one of the outbound slots: each time its connection
// drops, it draws a fresh candidate from the host store and redials.
func (s *outboundSession) maintainOne() {
	defer s.wg.Done()

	for {
		select {
		case <-s.quit:
			return
		default:
		}

		na, ok := s.mgr.hosts.FetchOne()
		if !ok {
			if !s.sleep(outboundConnectRetry) {
				return
			}
			continue
		}

		addr := net.JoinHostPort(na.IP.String(), strconv.Itoa(int(na.Port)))
		if s.mgr.conns.Exists(addr) {
			continue
		}

		dial := dialerFor(&s.mgr.settings)
		conn, err := dial("tcp", addr)
		if err != nil {
			log.Debugf("outbound dial to %s failed: %v", addr, err)
			if !s.sleep(outboundConnectRetry) {
				return
			}
			continue
		}

		ch := channel.New(conn, s.mgr.settings.Magic, s.mgr.settings.maxPayload())
		if err := establishOutbound(s.mgr, ch); err != nil {
			log.Debugf("outbound handshake with %s failed: %v", addr, err)
			conn.Close()
			if !s.sleep(outboundConnectRetry) {
				return
			}
			continue
		}

		ch.Wait()

		if !s.sleep(outboundConnectRetry) {
			return
		}
	}
}

func (s *outboundSession) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-s.quit:
		return false
	case <-timer.C:
		return true
	}
}

func (s *outboundSession) stop() {
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
