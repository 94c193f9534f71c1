// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

import (
	"sync"

	"github.com/lastcanal/libbitcoin-network/wire"
)

// messageHandler is invoked for each successfully parsed message of the
// command it was registered against, and once more with a non-nil err and
// a nil msg when the channel stops.
type messageHandler func(err error, msg wire.Message)

// delivery is one item queued for a messageSubscription: either a message
// (err nil) or the terminal stop sentinel (err non-nil, msg nil).
type delivery struct {
	err error
	msg wire.Message
}

// messageSubscription feeds one handler an ordered queue of deliveries,
// draining it on a dedicated goroutine so the handler always observes
// messages in the order broadcast enqueued them, with the terminal stop
// delivery landing after every message queued ahead of it. Queuing is
// unbounded so a slow handler never blocks the channel's read loop.
type messageSubscription struct {
	handler messageHandler

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []delivery
	closed bool
}

func newMessageSubscription(handler messageHandler) *messageSubscription {
	sub := &messageSubscription{handler: handler}
	sub.cond = sync.NewCond(&sub.mu)
	go sub.run()
	return sub
}

// enqueue appends d to the subscription's queue. Queuing after the
// terminal delivery is a no-op, since the worker goroutine has already
// exited.
func (sub *messageSubscription) enqueue(d delivery) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	sub.queue = append(sub.queue, d)
	sub.cond.Signal()
}

// run drains the queue in FIFO order, invoking the handler synchronously
// for each delivery. It returns after delivering the terminal sentinel.
func (sub *messageSubscription) run() {
	for {
		sub.mu.Lock()
		for len(sub.queue) == 0 {
			sub.cond.Wait()
		}
		d := sub.queue[0]
		sub.queue = sub.queue[1:]
		if d.err != nil {
			sub.closed = true
		}
		sub.mu.Unlock()

		sub.handler(d.err, d.msg)
		if d.err != nil {
			return
		}
	}
}

// messageSubscriber fans a decoded message out to every handler
// registered for its command. A subscription taken out while a broadcast
// is in flight takes effect starting with the next message, never the one
// currently being delivered, since broadcast snapshots the subscription
// slice under the lock before enqueuing to any of them. Each handler has
// its own ordered delivery queue, so a given handler always observes its
// messages, and then its terminal stop delivery, in the order they were
// queued, while different handlers still run concurrently with each
// other.
type messageSubscriber struct {
	mu       sync.Mutex
	handlers map[string][]*messageSubscription
	stopped  bool
}

func newMessageSubscriber() *messageSubscriber {
	return &messageSubscriber{handlers: make(map[string][]*messageSubscription)}
}

// subscribe registers handler for command. Returns false if the
// subscriber has already stopped.
func (s *messageSubscriber) subscribe(command string, handler messageHandler) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.handlers[command] = append(s.handlers[command], newMessageSubscription(handler))
	return true
}

// broadcast queues msg to every subscription registered for
// msg.Command(), in the order readLoop calls broadcast.
func (s *messageSubscriber) broadcast(msg wire.Message) {
	s.mu.Lock()
	subs := append([]*messageSubscription{}, s.handlers[msg.Command()]...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.enqueue(delivery{msg: msg})
	}
}

// stop marks the subscriber stopped, refusing further subscriptions, and
// queues err as the terminal delivery to every handler registered for
// every command exactly once. Because each subscription drains its own
// queue in order, the terminal delivery always lands after every message
// broadcast enqueued for that handler before stop was called.
func (s *messageSubscriber) stop(err error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	all := s.handlers
	s.handlers = nil
	s.mu.Unlock()

	for _, subs := range all {
		for _, sub := range subs {
			sub.enqueue(delivery{err: err})
		}
	}
}

// stopSubscriber fans a channel's terminal error out to every registered
// one-shot stop handler exactly once.
type stopSubscriber struct {
	mu       sync.Mutex
	handlers []func(error)
	stopped  bool
}

func newStopSubscriber() *stopSubscriber {
	return &stopSubscriber{}
}

// subscribe registers a one-shot handler invoked with the channel's final
// error. Returns false if the subscriber has already stopped.
func (s *stopSubscriber) subscribe(handler func(error)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.handlers = append(s.handlers, handler)
	return true
}

// relay delivers err to every registered handler exactly once, then marks
// the subscriber stopped so later subscriptions are refused.
func (s *stopSubscriber) relay(err error) {
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
		go h(err)
	}
}
