// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"sync"

	"github.com/lastcanal/libbitcoin-network/channel"
)

// connectionHandler is invoked once for every channel that completes its
// handshake and is notified into the live connection set, and once more
// with a non-nil err and a nil channel when the manager stops.
type connectionHandler func(err error, ch *channel.Channel)

// connectionSubscriber fans newly established channels out to every
// registered handler, mirroring libbitcoin's subscriber_ member of p2p and
// its subscribe_connections/relay pair.
type connectionSubscriber struct {
	mu       sync.Mutex
	handlers []connectionHandler
	stopped  bool
}

func newConnectionSubscriber() *connectionSubscriber {
	return &connectionSubscriber{}
}

// subscribe registers handler. Returns false if the subscriber has
// already stopped.
func (s *connectionSubscriber) subscribe(handler connectionHandler) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.handlers = append(s.handlers, handler)
	return true
}

// notify delivers (nil, ch) to every registered handler. Called once per
// channel that completes its handshake.
func (s *connectionSubscriber) notify(ch *channel.Channel) {
	s.mu.Lock()
	handlers := append([]connectionHandler{}, s.handlers...)
	s.mu.Unlock()

	for _, h := range handlers {
		go h(nil, ch)
	}
}

// relay delivers (err, nil) to every registered handler exactly once, then
// marks the subscriber stopped so later subscriptions are refused.
func (s *connectionSubscriber) relay(err error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	handlers := s.handlers
	s.handlers = nil
	s.mu.Unlock()

	for _, h := range handlers {
		go h(err, nil)
	}
}
