// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// RejectCode represents the reason a peer rejected a message.
type RejectCode uint8

// Supported reject codes.
const (
	RejectMalformed  RejectCode = 0x01
	RejectInvalid    RejectCode = 0x10
	RejectObsolete   RejectCode = 0x11
	RejectDuplicate  RejectCode = 0x12
	RejectNonstandard RejectCode = 0x40
)

// MsgReject implements the Message interface and informs a peer that one
// of its messages was rejected.
type MsgReject struct {
	Cmd    string
	Code   RejectCode
	Reason string
}

// BtcDecode decodes r into the receiver.
func (msg *MsgReject) BtcDecode(r io.Reader, pver uint32) error {
	cmd, err := ReadVarString(r, CommandSize)
	if err != nil {
		return err
	}
	msg.Cmd = cmd

	var code uint8
	if err := readElement(r, &code); err != nil {
		return err
	}
	msg.Code = RejectCode(code)

	reason, err := ReadVarString(r, 256)
	if err != nil {
		return err
	}
	msg.Reason = reason
	return nil
}

// BtcEncode encodes the receiver to w.
func (msg *MsgReject) BtcEncode(w io.Writer, pver uint32) error {
	if err := WriteVarString(w, msg.Cmd); err != nil {
		return err
	}
	if err := writeElement(w, uint8(msg.Code)); err != nil {
		return err
	}
	return WriteVarString(w, msg.Reason)
}

// Command returns the protocol command string.
func (msg *MsgReject) Command() string {
	return CmdReject
}

// MaxPayloadLength returns the maximum payload size for a reject message.
func (msg *MsgReject) MaxPayloadLength(pver uint32) uint32 {
	return 1 + CommandSize + 1 + 256
}

// NewMsgReject returns a new reject message.
func NewMsgReject(cmd string, code RejectCode, reason string) *MsgReject {
	return &MsgReject{Cmd: cmd, Code: code, Reason: reason}
}
