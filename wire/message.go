// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// MessageHeaderSize is the number of bytes in a bitcoin message heading:
// 4-byte magic, 12-byte command, 4-byte payload length, 4-byte checksum.
const MessageHeaderSize = 24

// CommandSize is the fixed size of the command field in a message heading.
// Shorter commands are zero padded.
const CommandSize = 12

// DefaultMaxPayloadSize is the default DoS-resistant cap on a single
// message's payload. Callers needing a different cap pass their own
// limit to the channel layer rather than this package.
const DefaultMaxPayloadSize = 10 * 1024 * 1024

// Message commands.
const (
	CmdVersion = "version"
	CmdVerAck  = "verack"
	CmdPing    = "ping"
	CmdPong    = "pong"
	CmdGetAddr = "getaddr"
	CmdAddr    = "addr"
	CmdReject  = "reject"
)

// Message is the interface every wire protocol message implements.
type Message interface {
	BtcDecode(r io.Reader, pver uint32) error
	BtcEncode(w io.Writer, pver uint32) error
	Command() string
	MaxPayloadLength(pver uint32) uint32
}

// makeEmptyMessage creates a zero-value message for the given command so it
// can be decoded into, or reports ErrUnknownMessage if the command is not
// recognized.
func makeEmptyMessage(command string) (Message, error) {
	switch command {
	case CmdVersion:
		return &MsgVersion{}, nil
	case CmdVerAck:
		return &MsgVerAck{}, nil
	case CmdPing:
		return &MsgPing{}, nil
	case CmdPong:
		return &MsgPong{}, nil
	case CmdGetAddr:
		return &MsgGetAddr{}, nil
	case CmdAddr:
		return &MsgAddr{}, nil
	case CmdReject:
		return &MsgReject{}, nil
	default:
		return nil, ErrUnknownMessage
	}
}

// Heading is the 24-byte frame prefix that precedes every message payload
// on the wire.
type Heading struct {
	Magic    BitcoinNet
	Command  string
	Length   uint32
	Checksum [4]byte
}

// readHeading parses a Heading from exactly MessageHeaderSize bytes.
func readHeading(r io.Reader) (*Heading, error) {
	var raw [MessageHeaderSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return nil, err
	}

	hr := bytes.NewReader(raw[:])
	hdr := Heading{}
	var command [CommandSize]byte
	if err := readElements(hr, &hdr.Magic, &command, &hdr.Length, &hdr.Checksum); err != nil {
		return nil, err
	}
	hdr.Command = string(bytes.TrimRight(command[:], "\x00"))

	return &hdr, nil
}

// writeHeading serializes hdr to w.
func writeHeading(w io.Writer, hdr *Heading) error {
	var command [CommandSize]byte
	if len(hdr.Command) > CommandSize {
		return messageError("writeHeading", fmt.Sprintf(
			"command [%s] is too long [max %v]", hdr.Command, CommandSize))
	}
	copy(command[:], hdr.Command)

	return writeElements(w, hdr.Magic, command, hdr.Length, hdr.Checksum)
}

// checksum returns the first four bytes of the double SHA-256 of payload.
func checksum(payload []byte) [4]byte {
	var sum [4]byte
	copy(sum[:], chainhash.DoubleHashB(payload)[:4])
	return sum
}

// WriteMessage serializes msg with its heading and writes it to w. It
// returns the number of bytes written.
func WriteMessage(w io.Writer, msg Message, pver uint32, net BitcoinNet) (int, error) {
	cmd := msg.Command()
	if len(cmd) > CommandSize {
		return 0, messageError("WriteMessage", fmt.Sprintf(
			"command [%s] is too long [max %v]", cmd, CommandSize))
	}

	var payloadBuf bytes.Buffer
	if err := msg.BtcEncode(&payloadBuf, pver); err != nil {
		return 0, err
	}
	payload := payloadBuf.Bytes()

	mpl := msg.MaxPayloadLength(pver)
	if uint32(len(payload)) > mpl {
		return 0, messageError("WriteMessage", fmt.Sprintf(
			"message payload is too large - encoded %d bytes, but max "+
				"payload size for [%s] is %d bytes", len(payload), cmd, mpl))
	}

	hdr := Heading{
		Magic:    net,
		Command:  cmd,
		Length:   uint32(len(payload)),
		Checksum: checksum(payload),
	}

	var headerBuf bytes.Buffer
	if err := writeHeading(&headerBuf, &hdr); err != nil {
		return 0, err
	}

	n, err := w.Write(headerBuf.Bytes())
	total := n
	if err != nil {
		return total, err
	}

	if len(payload) > 0 {
		n, err = w.Write(payload)
		total += n
	}
	return total, err
}

// ReadHeading reads and decodes a message heading from r. The caller is
// expected to check the returned Heading's Length against its own size
// limit before calling ReadPayload, so the size guard runs before any
// payload byte is read.
func ReadHeading(r io.Reader) (*Heading, error) {
	return readHeading(r)
}

// ReadPayload reads exactly hdr.Length bytes from r, verifies the checksum,
// and decodes the payload into a typed Message. unconsumed reports whether
// bytes remained in the payload after decoding, which the channel layer
// logs but does not treat as fatal.
func ReadPayload(r io.Reader, hdr *Heading, pver uint32) (msg Message, unconsumed bool, err error) {
	payload := make([]byte, hdr.Length)
	if _, err = io.ReadFull(r, payload); err != nil {
		return nil, false, err
	}

	if checksum(payload) != hdr.Checksum {
		return nil, false, messageError("ReadPayload", fmt.Sprintf(
			"payload checksum failed - heading indicates %x, actual is %x",
			hdr.Checksum, checksum(payload)))
	}

	msg, err = makeEmptyMessage(hdr.Command)
	if err != nil {
		return nil, false, err
	}

	mpl := msg.MaxPayloadLength(pver)
	if hdr.Length > mpl {
		return nil, false, messageError("ReadPayload", fmt.Sprintf(
			"payload exceeds max length - heading indicates %d bytes, max "+
				"for [%s] is %d", hdr.Length, hdr.Command, mpl))
	}

	pr := bytes.NewReader(payload)
	if err = msg.BtcDecode(pr, pver); err != nil {
		return nil, false, err
	}

	return msg, pr.Len() > 0, nil
}
