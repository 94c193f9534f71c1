// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"

	"github.com/lastcanal/libbitcoin-network/wire"
)

// ParsedOpcode is a single decoded operation: an opcode byte plus, for
// push opcodes, the payload it pushes.
type ParsedOpcode struct {
	Opcode byte
	Data   []byte
}

// isPush reports whether pop pushes data (as opposed to performing a
// stack or arithmetic effect).
func (pop *ParsedOpcode) isPush() bool {
	return pop.Opcode <= OP_PUSHDATA4
}

// Disasm renders pop the way txscript's DisasmScript names operations, for
// debug logs and test failure messages.
func (pop *ParsedOpcode) Disasm() string {
	if pop.Opcode == OP_0 {
		return opcodeName(OP_0)
	}
	if pop.isPush() {
		return hexEncode(pop.Data)
	}
	if isSmallInt(pop.Opcode) {
		return opcodeName(pop.Opcode)
	}
	return opcodeName(pop.Opcode)
}

func hexEncode(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = digits[v>>4]
		out[i*2+1] = digits[v&0x0f]
	}
	return string(out)
}

// ParseScript decodes raw script bytes into an operation sequence,
// following bitcoin's push-encoding rules byte-for-byte. Unknown opcode
// bytes are still emitted, carrying their own byte value as Opcode, so
// that Execute (not ParseScript) is the point of failure
// for a bad script — matching the reference client's parse/execute split.
func ParseScript(script []byte) ([]ParsedOpcode, error) {
	var ops []ParsedOpcode

	for i := 0; i < len(script); {
		op := script[i]
		i++

		switch {
		case op == OP_0:
			ops = append(ops, ParsedOpcode{Opcode: OP_0, Data: []byte{}})

		case op >= OP_DATA_1 && op <= OP_DATA_75:
			n := int(op)
			if i+n > len(script) {
				return ops, ErrScriptTooShort
			}
			ops = append(ops, ParsedOpcode{Opcode: op, Data: script[i : i+n]})
			i += n

		case op == OP_PUSHDATA1:
			if i+1 > len(script) {
				return ops, ErrScriptTooShort
			}
			n := int(script[i])
			i++
			if i+n > len(script) {
				return ops, ErrScriptTooShort
			}
			ops = append(ops, ParsedOpcode{Opcode: op, Data: script[i : i+n]})
			i += n

		case op == OP_PUSHDATA2:
			if i+2 > len(script) {
				return ops, ErrScriptTooShort
			}
			n := int(binary.LittleEndian.Uint16(script[i : i+2]))
			i += 2
			if i+n > len(script) {
				return ops, ErrScriptTooShort
			}
			ops = append(ops, ParsedOpcode{Opcode: op, Data: script[i : i+n]})
			i += n

		case op == OP_PUSHDATA4:
			if i+4 > len(script) {
				return ops, ErrScriptTooShort
			}
			n := int(binary.LittleEndian.Uint32(script[i : i+4]))
			i += 4
			if i+n > len(script) {
				return ops, ErrScriptTooShort
			}
			ops = append(ops, ParsedOpcode{Opcode: op, Data: script[i : i+n]})
			i += n

		default:
			ops = append(ops, ParsedOpcode{Opcode: op})
		}
	}

	return ops, nil
}

// UnparseScript is the inverse of ParseScript, choosing the smallest push
// encoding that fits each payload size.
func UnparseScript(ops []ParsedOpcode) ([]byte, error) {
	var buf bytes.Buffer

	for _, pop := range ops {
		switch {
		case pop.isPush():
			if err := writeCanonicalPush(&buf, pop.Data); err != nil {
				return nil, err
			}
		default:
			buf.WriteByte(pop.Opcode)
		}
	}

	return append([]byte{}, buf.Bytes()...), nil
}

// writeCanonicalPush writes data using the smallest push opcode able to
// carry its length.
func writeCanonicalPush(buf *bytes.Buffer, data []byte) error {
	n := len(data)
	switch {
	case n == 0:
		buf.WriteByte(OP_0)
	case n <= OP_DATA_75:
		buf.WriteByte(byte(n))
		buf.Write(data)
	case n <= 0xff:
		buf.WriteByte(OP_PUSHDATA1)
		buf.WriteByte(byte(n))
		buf.Write(data)
	case n <= 0xffff:
		buf.WriteByte(OP_PUSHDATA2)
		var lenBuf [2]byte
		binary.LittleEndian.PutUint16(lenBuf[:], uint16(n))
		buf.Write(lenBuf[:])
		buf.Write(data)
	default:
		buf.WriteByte(OP_PUSHDATA4)
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(n))
		buf.Write(lenBuf[:])
		buf.Write(data)
	}
	return nil
}

// NewCoinbaseScript builds a coinbase input script without opcode
// interpretation: the entire body becomes a single raw-data push, since
// coinbase inputs carry miner-chosen bytes rather than a redeem script.
func NewCoinbaseScript(raw []byte) []ParsedOpcode {
	return []ParsedOpcode{{Opcode: OP_DATA_75, Data: raw}}
}

// removeOpcode returns a copy of ops with every occurrence of the given
// opcode removed. It is used to strip OP_CODESEPARATOR from the
// sub-script before computing a signature hash.
func removeOpcode(ops []ParsedOpcode, opcode byte) []ParsedOpcode {
	out := make([]ParsedOpcode, 0, len(ops))
	for _, pop := range ops {
		if pop.Opcode == opcode {
			continue
		}
		out = append(out, pop)
	}
	return out
}

// SigHashType represents the hash_type byte appended to a DER signature
// and consumed by OP_CHECKSIG when computing what it verifies against.
type SigHashType uint32

// Recognized hash types. The low five bits select the base type; the high
// bit is the AnyOneCanPay flag.
const (
	SigHashAll          SigHashType = 0x1
	SigHashNone         SigHashType = 0x2
	SigHashSingle       SigHashType = 0x3
	SigHashAnyOneCanPay SigHashType = 0x80
)

// CalcSignatureHash computes the transaction signature hash OP_CHECKSIG
// verifies against, bit-exact including the legacy SIGHASH_SINGLE
// out-of-range quirk. script is the sub-script (already sliced from the point of the
// last OP_CODESEPARATOR, if any) that becomes input idx's script during
// hashing.
func CalcSignatureHash(script []ParsedOpcode, hashType SigHashType, tx *wire.MsgTx, idx int) ([]byte, error) {
	script = removeOpcode(script, OP_CODESEPARATOR)
	sigScript, err := UnparseScript(script)
	if err != nil {
		return nil, err
	}

	txCopy := tx.Copy()
	for i := range txCopy.TxIn {
		if i == idx {
			txCopy.TxIn[i].SignatureScript = sigScript
		} else {
			txCopy.TxIn[i].SignatureScript = nil
		}
	}

	switch hashType & 0x1f {
	case SigHashNone:
		txCopy.TxOut = txCopy.TxOut[:0]
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}

	case SigHashSingle:
		if idx >= len(txCopy.TxOut) {
			// A legacy quirk consensus requires preserving: the buggy
			// reference implementation returns this constant instead of
			// hashing anything, and every input rejecting differently
			// would be a consensus split.
			hash := make([]byte, 32)
			hash[0] = 0x01
			return hash, nil
		}

		txCopy.TxOut = txCopy.TxOut[:idx+1]
		for i := 0; i < idx; i++ {
			txCopy.TxOut[i].Value = -1
			txCopy.TxOut[i].PkScript = []byte{}
		}
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}

	default:
		// SigHashAll, and any undefined type, is treated as SigHashAll
		// for hashing purposes, matching the reference client.
	}

	if hashType&SigHashAnyOneCanPay != 0 {
		txCopy.TxIn = txCopy.TxIn[idx : idx+1]
	}

	var buf bytes.Buffer
	if err := txCopy.Serialize(&buf); err != nil {
		return nil, err
	}

	var hashTypeBuf [4]byte
	binary.LittleEndian.PutUint32(hashTypeBuf[:], uint32(hashType))
	buf.Write(hashTypeBuf[:])

	return doubleSHA256(buf.Bytes()), nil
}

// ScriptClass classifies a script's payment type.
type ScriptClass int

const (
	NonStandardTy ScriptClass = iota
	PubKeyTy
	PubKeyHashTy
	ScriptHashTy
	MultiSigTy
)

// String returns the human-readable name of the script class.
func (t ScriptClass) String() string {
	switch t {
	case PubKeyTy:
		return "pubkey"
	case PubKeyHashTy:
		return "pubkeyhash"
	case ScriptHashTy:
		return "scripthash"
	case MultiSigTy:
		return "multisig"
	default:
		return "nonstandard"
	}
}

// GetScriptClass pattern-matches ops against the standard payment templates.
func GetScriptClass(ops []ParsedOpcode) ScriptClass {
	switch {
	case isPubkeyHash(ops):
		return PubKeyHashTy
	case isPubkey(ops):
		return PubKeyTy
	case isScriptHash(ops):
		return ScriptHashTy
	case isMultisig(ops):
		return MultiSigTy
	default:
		return NonStandardTy
	}
}

// isPubkeyHash matches: dup, hash160, <20-byte push>, equalverify, checksig.
func isPubkeyHash(ops []ParsedOpcode) bool {
	return len(ops) == 5 &&
		ops[0].Opcode == OP_DUP &&
		ops[1].Opcode == OP_HASH160 &&
		ops[2].isPush() && len(ops[2].Data) == 20 &&
		ops[3].Opcode == OP_EQUALVERIFY &&
		ops[4].Opcode == OP_CHECKSIG
}

// isPubkey matches: <33-or-65-byte push>, checksig.
func isPubkey(ops []ParsedOpcode) bool {
	return len(ops) == 2 &&
		ops[0].isPush() && (len(ops[0].Data) == 33 || len(ops[0].Data) == 65) &&
		ops[1].Opcode == OP_CHECKSIG
}

// isScriptHash matches: hash160, <20-byte push>, equal.
func isScriptHash(ops []ParsedOpcode) bool {
	return len(ops) == 3 &&
		ops[0].Opcode == OP_HASH160 &&
		ops[1].isPush() && len(ops[1].Data) == 20 &&
		ops[2].Opcode == OP_EQUAL
}

// isMultisig matches: op_M, <pubkey pushes>, op_N, checkmultisig. The
// opcode itself is not executable in this engine; it is recognized here
// only so GetScriptClass can classify it.
func isMultisig(ops []ParsedOpcode) bool {
	if len(ops) < 4 {
		return false
	}
	if !isSmallInt(ops[0].Opcode) {
		return false
	}
	last := len(ops) - 1
	if ops[last].Opcode != OP_CHECKMULTISIG {
		return false
	}
	if !isSmallInt(ops[last-1].Opcode) {
		return false
	}
	numKeys := asSmallInt(ops[last-1].Opcode)
	if numKeys != last-1-1 {
		return false
	}
	for _, pop := range ops[1 : last-1] {
		if !pop.isPush() || (len(pop.Data) != 33 && len(pop.Data) != 65) {
			return false
		}
	}
	return true
}
