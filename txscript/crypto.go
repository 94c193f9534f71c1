// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"golang.org/x/crypto/ripemd160"
)

// doubleSHA256 returns SHA-256(SHA-256(b)), the hash bitcoin uses for
// signature hashes, transaction IDs, and the checksum in its wire framing.
func doubleSHA256(b []byte) []byte {
	return chainhash.DoubleHashB(b)
}

// hash160 returns RIPEMD-160(SHA-256(b)), used by OP_HASH160 and by the
// pay-to-pubkey-hash and pay-to-script-hash templates.
func hash160(b []byte) []byte {
	h := sha256.Sum256(b)
	ripemd := ripemd160.New()
	ripemd.Write(h[:])
	return ripemd.Sum(nil)
}
