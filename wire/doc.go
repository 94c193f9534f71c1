// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire implements the Bitcoin peer-to-peer wire protocol: the
// 24-byte message heading, the small set of control messages the session
// layer needs to complete a handshake and harvest addresses, and the
// minimal legacy transaction representation the script engine signs over.
//
// Block validation, the full transaction relay surface, and the BIP0324 v2
// transport are out of scope; this package only carries the legacy v1
// message framing and the handful of message types peers exchange during
// the handshake and address gossip.
package wire
