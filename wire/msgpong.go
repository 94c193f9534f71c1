// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgPong implements the Message interface and answers a MsgPing with the
// same nonce, confirming the connection is alive.
type MsgPong struct {
	Nonce uint64
}

// BtcDecode decodes r into the receiver.
func (msg *MsgPong) BtcDecode(r io.Reader, pver uint32) error {
	return readElement(r, &msg.Nonce)
}

// BtcEncode encodes the receiver to w.
func (msg *MsgPong) BtcEncode(w io.Writer, pver uint32) error {
	return writeElement(w, msg.Nonce)
}

// Command returns the protocol command string.
func (msg *MsgPong) Command() string {
	return CmdPong
}

// MaxPayloadLength returns the maximum payload size for a pong message.
func (msg *MsgPong) MaxPayloadLength(pver uint32) uint32 {
	return 8
}

// NewMsgPong returns a new pong message with the given nonce.
func NewMsgPong(nonce uint64) *MsgPong {
	return &MsgPong{Nonce: nonce}
}
