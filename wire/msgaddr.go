// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
)

// MaxAddrPerMsg is the maximum number of addresses allowed in a single addr
// message, a DoS guard against an unbounded list.
const MaxAddrPerMsg = 1000

// MsgAddr implements the Message interface and carries a list of known
// peer addresses, sent in reply to MsgGetAddr during host harvesting.
type MsgAddr struct {
	AddrList []*NetAddress
}

// AddAddress appends addr to the message, failing if the message would
// exceed MaxAddrPerMsg.
func (msg *MsgAddr) AddAddress(na *NetAddress) error {
	if len(msg.AddrList)+1 > MaxAddrPerMsg {
		return messageError("MsgAddr.AddAddress", fmt.Sprintf(
			"too many addresses in message [max %v]", MaxAddrPerMsg))
	}
	msg.AddrList = append(msg.AddrList, na)
	return nil
}

// BtcDecode decodes r into the receiver.
func (msg *MsgAddr) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxAddrPerMsg {
		return messageError("MsgAddr.BtcDecode", fmt.Sprintf(
			"too many addresses for message [count %v, max %v]",
			count, MaxAddrPerMsg))
	}

	addrList := make([]*NetAddress, 0, count)
	for i := uint64(0); i < count; i++ {
		na := &NetAddress{}
		if err := readNetAddress(r, na, true); err != nil {
			return err
		}
		addrList = append(addrList, na)
	}
	msg.AddrList = addrList
	return nil
}

// BtcEncode encodes the receiver to w.
func (msg *MsgAddr) BtcEncode(w io.Writer, pver uint32) error {
	count := len(msg.AddrList)
	if count > MaxAddrPerMsg {
		return messageError("MsgAddr.BtcEncode", fmt.Sprintf(
			"too many addresses for message [count %v, max %v]",
			count, MaxAddrPerMsg))
	}

	if err := WriteVarInt(w, uint64(count)); err != nil {
		return err
	}

	for _, na := range msg.AddrList {
		if err := writeNetAddress(w, na, true); err != nil {
			return err
		}
	}
	return nil
}

// Command returns the protocol command string.
func (msg *MsgAddr) Command() string {
	return CmdAddr
}

// MaxPayloadLength returns the maximum payload size for an addr message.
func (msg *MsgAddr) MaxPayloadLength(pver uint32) uint32 {
	// Varint count (up to 3 bytes for MaxAddrPerMsg) + 30 bytes per address.
	return 3 + (MaxAddrPerMsg * 30)
}

// NewMsgAddr returns a new, empty addr message.
func NewMsgAddr() *MsgAddr {
	return &MsgAddr{
		AddrList: make([]*NetAddress, 0, MaxAddrPerMsg),
	}
}
