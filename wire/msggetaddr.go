// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgGetAddr implements the Message interface and requests the recipient's
// known peer addresses. The seed session sends this after completing the
// handshake.
type MsgGetAddr struct{}

// BtcDecode is a no-op; getaddr has no payload.
func (msg *MsgGetAddr) BtcDecode(r io.Reader, pver uint32) error {
	return nil
}

// BtcEncode is a no-op; getaddr has no payload.
func (msg *MsgGetAddr) BtcEncode(w io.Writer, pver uint32) error {
	return nil
}

// Command returns the protocol command string.
func (msg *MsgGetAddr) Command() string {
	return CmdGetAddr
}

// MaxPayloadLength returns the maximum payload size for a getaddr message.
func (msg *MsgGetAddr) MaxPayloadLength(pver uint32) uint32 {
	return 0
}

// NewMsgGetAddr returns a new getaddr message.
func NewMsgGetAddr() *MsgGetAddr {
	return &MsgGetAddr{}
}
