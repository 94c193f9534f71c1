// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

// ProtocolVersion is the latest protocol version this package understands
// enough of to negotiate a handshake. Callers are free to advertise a
// different value in Settings; this is only the ceiling we encode/decode.
const ProtocolVersion uint32 = 70016

// BitcoinNet represents which bitcoin network a message belongs to.
type BitcoinNet uint32

// Bitcoin network magic numbers, per the reference client.
const (
	MainNet  BitcoinNet = 0xd9b4bef9
	TestNet3 BitcoinNet = 0x0709110b
	RegTest  BitcoinNet = 0xdab5bffa
	SimNet   BitcoinNet = 0x12141c16
)

// String returns the BitcoinNet in human-readable form.
func (n BitcoinNet) String() string {
	switch n {
	case MainNet:
		return "MainNet"
	case TestNet3:
		return "TestNet3"
	case RegTest:
		return "RegTest"
	case SimNet:
		return "SimNet"
	default:
		return "Unknown"
	}
}

// ServiceFlag identifies services supported by a bitcoin peer.
type ServiceFlag uint64

const (
	// SFNodeNetwork denotes a peer that can serve the full block chain.
	SFNodeNetwork ServiceFlag = 1 << 0

	// SFNodeGetUTXO denotes a peer that supports the getutxo protocol.
	SFNodeGetUTXO ServiceFlag = 1 << 1

	// SFNodeBloom denotes a peer that supports bloom filtering.
	SFNodeBloom ServiceFlag = 1 << 2
)

// serviceFlagStrings is a map of service flags back to their constant
// names for pretty printing.
var serviceFlagStrings = map[ServiceFlag]string{
	SFNodeNetwork: "SFNodeNetwork",
	SFNodeGetUTXO: "SFNodeGetUTXO",
	SFNodeBloom:   "SFNodeBloom",
}

// String returns the ServiceFlag in human-readable form.
func (f ServiceFlag) String() string {
	if s, ok := serviceFlagStrings[f]; ok {
		return s
	}
	return "Unknown"
}
