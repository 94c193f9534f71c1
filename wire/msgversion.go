// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"
	"time"
)

// MaxUserAgentLen is the maximum allowed length for the user agent field
// in a version message, a DoS guard against an unbounded string.
const MaxUserAgentLen = 256

// MsgVersion implements the Message interface and represents the first
// message a peer sends after connecting, used to negotiate the protocol
// version and exchange identifying information during the handshake.
type MsgVersion struct {
	ProtocolVersion int32
	Services        ServiceFlag
	Timestamp       int64
	AddrYou         NetAddress
	AddrMe          NetAddress
	Nonce           uint64
	UserAgent       string
	LastBlock       int32
}

// BtcDecode decodes r into the receiver.
func (msg *MsgVersion) BtcDecode(r io.Reader, pver uint32) error {
	if err := readElements(r, &msg.ProtocolVersion, &msg.Services,
		&msg.Timestamp); err != nil {
		return err
	}

	if err := readNetAddress(r, &msg.AddrYou, false); err != nil {
		return err
	}
	if err := readNetAddress(r, &msg.AddrMe, false); err != nil {
		return err
	}

	if err := readElement(r, &msg.Nonce); err != nil {
		return err
	}

	userAgent, err := ReadVarString(r, MaxUserAgentLen)
	if err != nil {
		return err
	}
	msg.UserAgent = userAgent

	return readElement(r, &msg.LastBlock)
}

// BtcEncode encodes the receiver to w.
func (msg *MsgVersion) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeElements(w, msg.ProtocolVersion, msg.Services,
		msg.Timestamp); err != nil {
		return err
	}

	if err := writeNetAddress(w, &msg.AddrYou, false); err != nil {
		return err
	}
	if err := writeNetAddress(w, &msg.AddrMe, false); err != nil {
		return err
	}

	if err := writeElement(w, msg.Nonce); err != nil {
		return err
	}

	if err := WriteVarString(w, msg.UserAgent); err != nil {
		return err
	}

	return writeElement(w, msg.LastBlock)
}

// Command returns the protocol command string.
func (msg *MsgVersion) Command() string {
	return CmdVersion
}

// MaxPayloadLength returns the maximum payload size for a version message.
func (msg *MsgVersion) MaxPayloadLength(pver uint32) uint32 {
	// 4 + 8 + 8 + 26 + 26 + 8 + (1 + MaxUserAgentLen) + 4
	return 26 + 26 + 4 + 8 + 8 + 8 + 1 + MaxUserAgentLen + 4
}

// NewMsgVersion returns a new version message populated from its
// arguments, ready to encode on the wire.
func NewMsgVersion(me, you *NetAddress, nonce uint64, lastBlock int32) *MsgVersion {
	return &MsgVersion{
		ProtocolVersion: int32(ProtocolVersion),
		Services:        0,
		Timestamp:       time.Now().Unix(),
		AddrMe:          *me,
		AddrYou:         *you,
		Nonce:           nonce,
		UserAgent:       "",
		LastBlock:       lastBlock,
	}
}
