// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgPing implements the Message interface. It is used by the channel
// heartbeat to confirm a connection is still responsive; the nonce it
// carries is echoed back in the peer's MsgPong.
type MsgPing struct {
	Nonce uint64
}

// BtcDecode decodes r into the receiver.
func (msg *MsgPing) BtcDecode(r io.Reader, pver uint32) error {
	return readElement(r, &msg.Nonce)
}

// BtcEncode encodes the receiver to w.
func (msg *MsgPing) BtcEncode(w io.Writer, pver uint32) error {
	return writeElement(w, msg.Nonce)
}

// Command returns the protocol command string.
func (msg *MsgPing) Command() string {
	return CmdPing
}

// MaxPayloadLength returns the maximum payload size for a ping message.
func (msg *MsgPing) MaxPayloadLength(pver uint32) uint32 {
	return 8
}

// NewMsgPing returns a new ping message with the given nonce.
func NewMsgPing(nonce uint64) *MsgPing {
	return &MsgPing{Nonce: nonce}
}
