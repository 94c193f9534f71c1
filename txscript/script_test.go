// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUnparseRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		script []byte
	}{
		{"empty", []byte{}},
		{"single op", []byte{OP_DUP}},
		{"small push", []byte{0x03, 'a', 'b', 'c'}},
		{"pushdata1", append([]byte{OP_PUSHDATA1, 0x80}, make([]byte, 0x80)...)},
		{"pushdata2", append([]byte{OP_PUSHDATA2, 0x00, 0x01}, make([]byte, 0x100)...)},
		{"op_0", []byte{OP_0}},
		{"p2pkh template", []byte{
			OP_DUP, OP_HASH160, 0x14,
			0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a,
			0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, 0x11, 0x12, 0x13, 0x14,
			OP_EQUALVERIFY, OP_CHECKSIG,
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ops, err := ParseScript(tc.script)
			require.NoError(t, err)

			out, err := UnparseScript(ops)
			require.NoError(t, err)
			require.Equal(t, tc.script, out)
		})
	}
}

func TestParseScriptTooShort(t *testing.T) {
	_, err := ParseScript([]byte{0x05, 0x01, 0x02})
	require.ErrorIs(t, err, ErrScriptTooShort)
}

func TestGetScriptClass(t *testing.T) {
	pubKey33 := make([]byte, 33)
	hash20 := make([]byte, 20)

	tests := []struct {
		name  string
		ops   []ParsedOpcode
		class ScriptClass
	}{
		{
			"pubkeyhash",
			[]ParsedOpcode{
				{Opcode: OP_DUP}, {Opcode: OP_HASH160},
				{Opcode: 0x14, Data: hash20},
				{Opcode: OP_EQUALVERIFY}, {Opcode: OP_CHECKSIG},
			},
			PubKeyHashTy,
		},
		{
			"pubkey",
			[]ParsedOpcode{
				{Opcode: 0x21, Data: pubKey33}, {Opcode: OP_CHECKSIG},
			},
			PubKeyTy,
		},
		{
			"scripthash",
			[]ParsedOpcode{
				{Opcode: OP_HASH160}, {Opcode: 0x14, Data: hash20}, {Opcode: OP_EQUAL},
			},
			ScriptHashTy,
		},
		{
			"multisig 2-of-3",
			[]ParsedOpcode{
				{Opcode: OP_1 + 1},
				{Opcode: 0x21, Data: pubKey33},
				{Opcode: 0x21, Data: pubKey33},
				{Opcode: 0x21, Data: pubKey33},
				{Opcode: OP_1 + 2},
				{Opcode: OP_CHECKMULTISIG},
			},
			MultiSigTy,
		},
		{
			"nonstandard",
			[]ParsedOpcode{{Opcode: OP_DROP}},
			NonStandardTy,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.class, GetScriptClass(tc.ops))
		})
	}
}

func TestScriptClassString(t *testing.T) {
	require.Equal(t, "pubkeyhash", PubKeyHashTy.String())
	require.Equal(t, "nonstandard", NonStandardTy.String())
}
