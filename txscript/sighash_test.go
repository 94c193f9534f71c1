// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/lastcanal/libbitcoin-network/wire"
	"github.com/stretchr/testify/require"
)

func buildTestTx() *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: 0}, nil))
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: 1}, nil))
	tx.AddTxOut(wire.NewTxOut(1000, []byte{OP_DUP}))
	return tx
}

func TestCalcSignatureHashSigHashSingleOutOfRange(t *testing.T) {
	tx := buildTestTx()
	pkScript := []ParsedOpcode{{Opcode: OP_DUP}}

	// idx 1 has no matching output: SIGHASH_SINGLE's legacy quirk returns
	// 0x0000...01 rather than hashing anything.
	hash, err := CalcSignatureHash(pkScript, SigHashSingle, tx, 1)
	require.NoError(t, err)

	want := make([]byte, 32)
	want[0] = 0x01
	require.Equal(t, want, hash)
}

func TestCalcSignatureHashDeterministic(t *testing.T) {
	tx := buildTestTx()
	pkScript := []ParsedOpcode{{Opcode: OP_DUP}}

	h1, err := CalcSignatureHash(pkScript, SigHashAll, tx, 0)
	require.NoError(t, err)
	h2, err := CalcSignatureHash(pkScript, SigHashAll, tx, 0)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
	require.Len(t, h1, 32)
}

func TestCalcSignatureHashAnyOneCanPayShrinksInputs(t *testing.T) {
	tx := buildTestTx()
	pkScript := []ParsedOpcode{{Opcode: OP_DUP}}

	allHash, err := CalcSignatureHash(pkScript, SigHashAll, tx, 0)
	require.NoError(t, err)

	anyoneHash, err := CalcSignatureHash(
		pkScript, SigHashAll|SigHashAnyOneCanPay, tx, 0,
	)
	require.NoError(t, err)

	require.NotEqual(t, allHash, anyoneHash)
}

func TestCalcSignatureHashRemovesCodeSeparator(t *testing.T) {
	tx := buildTestTx()
	withSep := []ParsedOpcode{{Opcode: OP_CODESEPARATOR}, {Opcode: OP_DUP}}
	withoutSep := []ParsedOpcode{{Opcode: OP_DUP}}

	h1, err := CalcSignatureHash(withSep, SigHashAll, tx, 0)
	require.NoError(t, err)
	h2, err := CalcSignatureHash(withoutSep, SigHashAll, tx, 0)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}
