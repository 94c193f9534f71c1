// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package p2p supervises the lifecycle of peer connections: loading and
// saving the known-host set, seeding it from configured peers, accepting
// inbound connections, and maintaining a target number of outbound ones.
// It is the Go translation of libbitcoin's network::p2p class; the
// original's start/run/stop nested callback-bind chains become explicit
// sequential methods on Manager, each driving its sessions in turn.
package p2p

import (
	"sync"
	"sync/atomic"

	"github.com/lastcanal/libbitcoin-network/channel"
	"github.com/lastcanal/libbitcoin-network/connset"
	"github.com/lastcanal/libbitcoin-network/hoststore"
)

// Manager owns the full set of sessions and live connections for one node.
// Its lifetime strictly exceeds every session and channel it creates; they
// hold only a back-reference to it, never the reverse, so there is no
// reference cycle to break at shutdown.
type Manager struct {
	settings Settings

	hosts *hoststore.Store
	conns *connset.Set

	subscriber *connectionSubscriber

	manual   *manualSession
	manualMu sync.Mutex

	sessMu   sync.Mutex
	seed     *seedSession
	inbound  *inboundSession
	outbound *outboundSession

	started int32
	stopped int32
}

// New returns a Manager configured by settings. Call Start, then Run, to
// bring it up; call Stop to bring it down.
func New(settings Settings) *Manager {
	return &Manager{
		settings:   settings,
		hosts:      hoststore.New(settings.HostPoolCapacity),
		conns:      connset.New(),
		subscriber: newConnectionSubscriber(),
	}
}

// Stopped reports whether the manager has stopped.
func (m *Manager) Stopped() bool {
	return atomic.LoadInt32(&m.stopped) != 0
}

// SubscribeConnections registers handler to be invoked once for every
// channel notified into the live connection set, and once more with
// ErrServiceStopped when the manager stops.
func (m *Manager) SubscribeConnections(handler func(err error, ch *channel.Channel)) bool {
	return m.subscriber.subscribe(handler)
}

// Start brings up the manual session, loads the host store from disk, and
// runs the seed session against settings.Seeds, in that order, matching
// p2p::start's handle_manual_started -> handle_hosts_loaded ->
// handle_hosts_seeded chain. handler is invoked once at the end of the
// sequence, or immediately with ErrOperationFailed if the manager is
// already running or has already stopped.
func (m *Manager) Start(handler func(error)) {
	if m.Stopped() {
		handler(ErrOperationFailed)
		return
	}
	if !atomic.CompareAndSwapInt32(&m.started, 0, 1) {
		handler(ErrOperationFailed)
		return
	}

	m.manualMu.Lock()
	m.manual = newManualSession(m)
	m.manualMu.Unlock()
	m.manual.start()

	if m.settings.HostStorePath != "" {
		if err := m.hosts.Load(m.settings.HostStorePath); err != nil {
			log.Errorf("error loading host addresses: %v", err)
			handler(ErrFileSystem)
			return
		}
	}

	m.sessMu.Lock()
	m.seed = newSeedSession(m)
	seed := m.seed
	m.sessMu.Unlock()

	seed.start(func(err error) {
		if m.Stopped() {
			handler(ErrServiceStopped)
			return
		}
		handler(err)
	})
}

// Run starts the inbound session (if settings.InboundPort is non-zero)
// followed by the outbound session, matching p2p::run's
// handle_inbound_started -> handle_outbound_started chain.
func (m *Manager) Run(handler func(error)) {
	m.sessMu.Lock()
	m.inbound = newInboundSession(m)
	inbound := m.inbound
	m.sessMu.Unlock()

	if err := inbound.start(); err != nil {
		log.Errorf("error starting inbound session: %v", err)
		handler(err)
		return
	}

	m.sessMu.Lock()
	m.outbound = newOutboundSession(m)
	outbound := m.outbound
	m.sessMu.Unlock()

	outbound.start()

	handler(nil)
}

// Connect hands host:port off to the manual session, which maintains a
// persistent, reconnecting dial to it. Nothing is dialed if the manager
// has stopped (handler receives ErrServiceStopped) or has not yet been
// started (handler receives ErrOperationFailed).
func (m *Manager) Connect(host string, port uint16, handler func(error)) {
	if m.Stopped() {
		if handler != nil {
			handler(ErrServiceStopped)
		}
		return
	}

	m.manualMu.Lock()
	manual := m.manual
	m.manualMu.Unlock()

	if manual == nil {
		if handler != nil {
			handler(ErrOperationFailed)
		}
		return
	}
	manual.connect(host, port, handler)
}

// Stop is idempotent: order follows p2p::stop — subscriber relay, then
// connections stop, then stopping and clearing the manual session, then
// stopping the seed, inbound and outbound sessions, then (only on the
// first call) saving the host store, then marking stopped.
// handler is invoked once at the end with the host-save result, or with
// nil immediately on every call after the first.
func (m *Manager) Stop(handler func(error)) {
	m.subscriber.relay(ErrServiceStopped)
	m.conns.Stop(ErrServiceStopped)

	m.manualMu.Lock()
	if m.manual != nil {
		m.manual.stop()
	}
	m.manual = nil
	m.manualMu.Unlock()

	m.sessMu.Lock()
	seed, inbound, outbound := m.seed, m.inbound, m.outbound
	m.sessMu.Unlock()

	if seed != nil {
		seed.stop()
	}
	if inbound != nil {
		inbound.stop()
	}
	if outbound != nil {
		outbound.stop()
	}

	var err error
	if !m.Stopped() && m.settings.HostStorePath != "" {
		err = m.hosts.Save(m.settings.HostStorePath)
		if err != nil {
			log.Errorf("error saving host addresses: %v", err)
			err = ErrFileSystem
		}
	}
	atomic.StoreInt32(&m.stopped, 1)

	if handler != nil {
		handler(err)
	}
}

// notifyConnected registers ch in the live connection set and, if that
// succeeds, relays it to every connection subscriber. key is the remote
// endpoint used to dedupe connections, matching p2p::store's delegation to
// the connections collaborator.
func (m *Manager) notifyConnected(key string, ch *channel.Channel) error {
	if err := m.conns.Store(key, ch); err != nil {
		return err
	}
	ch.SubscribeStop(func(error) { m.conns.Remove(key) })
	m.subscriber.notify(ch)
	return nil
}
