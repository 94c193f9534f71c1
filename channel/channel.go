// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package channel implements one live peer-to-peer connection: framing
// messages onto a socket, verifying their checksums, and fanning decoded
// messages out to subscribers. It is the Go translation of libbitcoin's
// proxy: the original expresses the read cycle as a chain of
// asio::async_read completion handlers under a boost thread pool; here it
// is a single reader goroutine per connection, guarded by the same
// per-socket mutex for writes.
package channel

import (
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/lastcanal/libbitcoin-network/wire"
)

// Channel is one live connection to a peer: a socket, the network magic it
// was negotiated under, and the subscriber registries that deliver
// decoded messages and the terminal stop error.
type Channel struct {
	conn   net.Conn
	sendMu sync.Mutex

	magic      wire.BitcoinNet
	maxPayload uint32
	authority  string

	messages *messageSubscriber
	stops    *stopSubscriber

	started int32
	stopped int32
	wg      sync.WaitGroup
}

// New returns a Channel wrapping conn. maxPayload bounds a single
// message's payload; pass wire.DefaultMaxPayloadSize for the conventional
// 10 MiB cap.
func New(conn net.Conn, magic wire.BitcoinNet, maxPayload uint32) *Channel {
	return &Channel{
		conn:       conn,
		magic:      magic,
		maxPayload: maxPayload,
		authority:  conn.RemoteAddr().String(),
		messages:   newMessageSubscriber(),
		stops:      newStopSubscriber(),
	}
}

// Authority returns the cached remote address string, stable even after
// the underlying socket is closed.
func (c *Channel) Authority() string {
	return c.authority
}

// Stopped reports whether the channel has stopped.
func (c *Channel) Stopped() bool {
	return atomic.LoadInt32(&c.stopped) != 0
}

// Start marks the channel running, invokes handler synchronously, then
// begins the read cycle on its own goroutine. Returns ErrOperationFailed
// if the channel has already stopped or is already running.
func (c *Channel) Start(handler func(error)) error {
	if c.Stopped() {
		return ErrOperationFailed
	}
	if !atomic.CompareAndSwapInt32(&c.started, 0, 1) {
		return ErrOperationFailed
	}

	if handler != nil {
		handler(nil)
	}

	c.wg.Add(1)
	go c.readLoop()
	return nil
}

// SubscribeStop registers a one-shot handler invoked with the channel's
// final error once it stops.
func (c *Channel) SubscribeStop(handler func(error)) bool {
	return c.stops.subscribe(handler)
}

// Subscribe registers handler to run for every successfully parsed
// message of command, in the order bytes arrive on the socket. handler is
// invoked once more with a non-nil error and a nil message when the
// channel stops.
func (c *Channel) Subscribe(command string, handler func(err error, msg wire.Message)) bool {
	return c.messages.subscribe(command, handler)
}

// Send serializes msg with its heading and writes it to the socket.
// Concurrent sends on the same channel are serialized by sendMu and run
// FIFO. Returns ErrChannelStopped if the channel has already stopped.
func (c *Channel) Send(msg wire.Message) error {
	if c.Stopped() {
		return ErrChannelStopped
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.Stopped() {
		return ErrChannelStopped
	}

	_, err := wire.WriteMessage(c.conn, msg, wire.ProtocolVersion, c.magic)
	if err != nil {
		log.Warnf("channel %s: send %s failed: %v", c.authority, msg.Command(), err)
		c.Stop(ErrBadStream)
		return err
	}
	return nil
}

// Stop is idempotent; a nil err is relayed as ErrChannelStopped. It marks
// the channel stopped, broadcasts ErrChannelStopped to message
// subscribers, relays err to stop subscribers, then closes the socket.
// Subsequent calls are no-ops.
func (c *Channel) Stop(err error) {
	if err == nil {
		err = ErrChannelStopped
	}

	if !atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		return
	}

	c.messages.stop(ErrChannelStopped)
	c.stops.relay(err)

	c.sendMu.Lock()
	_ = c.conn.Close()
	c.sendMu.Unlock()
}

// Wait blocks until the read-cycle goroutine has returned.
func (c *Channel) Wait() {
	c.wg.Wait()
}

// readLoop runs the heading -> size guard -> payload -> checksum ->
// dispatch cycle until the channel stops or a transport/framing error
// ends it.
func (c *Channel) readLoop() {
	defer c.wg.Done()

	for {
		if c.Stopped() {
			return
		}

		hdr, err := wire.ReadHeading(c.conn)
		if err != nil {
			if c.Stopped() {
				return
			}
			if err == io.EOF {
				c.Stop(ErrChannelStopped)
				return
			}
			log.Debugf("channel %s: heading read failed: %v", c.authority, err)
			c.Stop(ErrBadStream)
			return
		}

		if hdr.Magic != c.magic {
			log.Warnf("channel %s: magic mismatch, got %v want %v",
				c.authority, hdr.Magic, c.magic)
			c.Stop(ErrBadStream)
			return
		}

		if hdr.Length > c.maxPayload {
			log.Warnf("channel %s: payload %d exceeds max %d",
				c.authority, hdr.Length, c.maxPayload)
			c.Stop(ErrBadStream)
			return
		}

		if c.Stopped() {
			return
		}

		msg, unconsumed, err := wire.ReadPayload(c.conn, hdr, wire.ProtocolVersion)
		if err != nil {
			log.Debugf("channel %s: payload decode failed: %v", c.authority, err)
			c.Stop(ErrBadStream)
			return
		}
		if unconsumed {
			log.Warnf("channel %s: unconsumed bytes decoding %s",
				c.authority, hdr.Command)
		}

		c.messages.broadcast(msg)
	}
}

func (c *Channel) String() string {
	return fmt.Sprintf("channel(%s)", c.authority)
}
