// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/lastcanal/libbitcoin-network/wire"
	"github.com/stretchr/testify/require"
)

// signedPubKeyHashScripts builds a minimal one-input, one-output
// transaction spending a pay-to-pubkey-hash output, and returns the
// signature script and public key script that, run together, should
// verify.
func signedPubKeyHashScripts(t *testing.T) (sigScript, pkScript []byte, tx *wire.MsgTx) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	pubKeyBytes := priv.PubKey().SerializeCompressed()

	pkHash := hash160(pubKeyBytes)
	pkOps := []ParsedOpcode{
		{Opcode: OP_DUP},
		{Opcode: OP_HASH160},
		{Opcode: byte(len(pkHash)), Data: pkHash},
		{Opcode: OP_EQUALVERIFY},
		{Opcode: OP_CHECKSIG},
	}
	pkScript, err = UnparseScript(pkOps)
	require.NoError(t, err)

	tx = wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: 0}, nil))
	tx.AddTxOut(wire.NewTxOut(50000, pkScript))

	sigHash, err := CalcSignatureHash(pkOps, SigHashAll, tx, 0)
	require.NoError(t, err)

	sig := ecdsa.Sign(priv, sigHash)
	fullSig := append(sig.Serialize(), byte(SigHashAll))

	sigOps := []ParsedOpcode{
		{Opcode: byte(len(fullSig)), Data: fullSig},
		{Opcode: byte(len(pubKeyBytes)), Data: pubKeyBytes},
	}
	sigScript, err = UnparseScript(sigOps)
	require.NoError(t, err)

	return sigScript, pkScript, tx
}

func TestExecutePubKeyHashVerifies(t *testing.T) {
	sigScript, pkScript, tx := signedPubKeyHashScripts(t)

	ok, err := Execute(sigScript, pkScript, tx, 0)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestExecuteTamperedSignatureFails(t *testing.T) {
	sigScript, pkScript, tx := signedPubKeyHashScripts(t)

	// Flip a byte inside the signature push; still parses as a script,
	// should fail verification rather than erroring.
	tampered := append([]byte{}, sigScript...)
	tampered[5] ^= 0xff

	ok, err := Execute(tampered, pkScript, tx, 0)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestExecuteWrongKeyFails(t *testing.T) {
	_, pkScript, tx := signedPubKeyHashScripts(t)

	otherPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	pkOps, err := ParseScript(pkScript)
	require.NoError(t, err)

	sigHash, err := CalcSignatureHash(pkOps, SigHashAll, tx, 0)
	require.NoError(t, err)
	sig := ecdsa.Sign(otherPriv, sigHash)
	fullSig := append(sig.Serialize(), byte(SigHashAll))

	wrongPubKey := otherPriv.PubKey().SerializeCompressed()
	sigOps := []ParsedOpcode{
		{Opcode: byte(len(fullSig)), Data: fullSig},
		{Opcode: byte(len(wrongPubKey)), Data: wrongPubKey},
	}
	sigScript, err := UnparseScript(sigOps)
	require.NoError(t, err)

	ok, err := Execute(sigScript, pkScript, tx, 0)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEngineEqualVerifyFailure(t *testing.T) {
	sigScript := []byte{0x01, 0x01}
	pkScript := []byte{0x01, 0x02, OP_EQUALVERIFY}

	vm, err := NewEngine(sigScript, pkScript, wire.NewMsgTx(1), 0)
	require.NoError(t, err)
	_, err = vm.execute()
	require.ErrorIs(t, err, ErrVerifyFailed)
}

func TestEngineDropAndDup(t *testing.T) {
	sigScript := []byte{0x01, 0x01, 0x01, 0x00, OP_DROP}
	pkScript := []byte{OP_DUP}

	ok, err := Execute(sigScript, pkScript, wire.NewMsgTx(1), 0)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCastToBool(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want bool
	}{
		{"empty", []byte{}, false},
		{"zero", []byte{0x00}, false},
		{"negative zero", []byte{0x00, 0x80}, false},
		{"trailing sign bit only", []byte{0x80}, false},
		{"one", []byte{0x01}, true},
		{"nonzero with sign bit", []byte{0x01, 0x80}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, CastToBool(tc.in))
		})
	}
}
