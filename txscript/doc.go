// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txscript implements the consensus-relevant slice of the bitcoin
// script interpreter this library exposes: parsing a script into an
// operation sequence, executing an input/output script pair against a
// shared stack, and computing the signature hash OP_CHECKSIG verifies
// against. It is a pure function of its inputs — no goroutines, no I/O.
package txscript
