// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/lastcanal/libbitcoin-network/wire"
)

// Engine is the virtual machine that runs an input/output script pair
// against a single shared stack.
type Engine struct {
	scripts     [][]ParsedOpcode
	scriptIdx   int
	opIdx       int
	lastCodeSep int
	dstack      stack
	tx          *wire.MsgTx
	txIdx       int
}

// NewEngine parses sigScript and pkScript and returns an Engine ready to
// run them against input txIdx of tx. tx and txIdx are only consulted by
// OP_CHECKSIG, to compute the signature hash it verifies against.
func NewEngine(sigScript, pkScript []byte, tx *wire.MsgTx, txIdx int) (*Engine, error) {
	sigOps, err := ParseScript(sigScript)
	if err != nil {
		return nil, err
	}
	pkOps, err := ParseScript(pkScript)
	if err != nil {
		return nil, err
	}

	return &Engine{
		scripts: [][]ParsedOpcode{sigOps, pkOps},
		tx:      tx,
		txIdx:   txIdx,
	}, nil
}

// Execute runs the input script and then the output script against a
// shared stack, per bitcoin's "scriptSig then scriptPubKey" evaluation
// order. It returns true iff both scripts ran without error and the stack's
// top element is truthy once the output script completes. A failure during
// execution is reported only as false with a nil error; the error is
// non-nil only when a script fails to parse.
func Execute(sigScript, pkScript []byte, tx *wire.MsgTx, txIdx int) (bool, error) {
	vm, err := NewEngine(sigScript, pkScript, tx, txIdx)
	if err != nil {
		return false, err
	}
	ok, err := vm.execute()
	if err != nil {
		return false, nil
	}
	return ok, nil
}

func (vm *Engine) execute() (bool, error) {
	for vm.scriptIdx < len(vm.scripts) {
		ops := vm.scripts[vm.scriptIdx]
		vm.lastCodeSep = 0
		for vm.opIdx = 0; vm.opIdx < len(ops); vm.opIdx++ {
			if err := vm.step(ops, vm.opIdx); err != nil {
				return false, err
			}
		}
		vm.scriptIdx++
	}

	if vm.dstack.Depth() == 0 {
		return false, ErrEmptyStack
	}
	top, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return false, err
	}
	return CastToBool(top), nil
}

// step executes a single parsed operation against the shared stack.
func (vm *Engine) step(ops []ParsedOpcode, idx int) error {
	pop := ops[idx]

	if pop.isPush() {
		vm.dstack.PushByteArray(pop.Data)
		return nil
	}

	switch pop.Opcode {
	case OP_0:
		vm.dstack.PushByteArray([]byte{})

	case OP_1NEGATE:
		vm.dstack.PushByteArray([]byte{0x81})

	case OP_NOP:
		// no effect

	case OP_DROP:
		if _, err := vm.dstack.PopByteArray(); err != nil {
			return err
		}

	case OP_DUP:
		top, err := vm.dstack.PeekByteArray(0)
		if err != nil {
			return err
		}
		vm.dstack.PushByteArray(top)

	case OP_SHA256:
		data, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		sum := sha256.Sum256(data)
		vm.dstack.PushByteArray(sum[:])

	case OP_HASH160:
		data, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		vm.dstack.PushByteArray(hash160(data))

	case OP_EQUAL:
		a, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		b, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		vm.dstack.PushBool(bytesEqual(a, b))

	case OP_EQUALVERIFY:
		a, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		b, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		if !bytesEqual(a, b) {
			return ErrVerifyFailed
		}

	case OP_CODESEPARATOR:
		vm.lastCodeSep = idx

	case OP_CHECKSIG:
		if err := vm.opCheckSig(ops); err != nil {
			return err
		}

	default:
		if isSmallInt(pop.Opcode) {
			vm.dstack.PushByteArray([]byte{byte(asSmallInt(pop.Opcode))})
			return nil
		}
		return ErrUnimplementedOpcode
	}

	return nil
}

// opCheckSig pops a pubkey and a signature (with trailing hash type byte)
// off the stack, computes the signature hash over the sub-script
// following the most recent OP_CODESEPARATOR, and pushes whether the
// signature verifies. A malformed signature or pubkey pushes false rather
// than aborting execution, matching the reference client's behavior of
// letting script evaluation continue to a normal pass/fail result.
func (vm *Engine) opCheckSig(ops []ParsedOpcode) error {
	pubKeyBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	fullSig, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	if len(fullSig) == 0 {
		vm.dstack.PushBool(false)
		return nil
	}

	hashType := SigHashType(fullSig[len(fullSig)-1])
	sig := fullSig[:len(fullSig)-1]

	subScript := removeOpcode(ops[vm.lastCodeSep:], OP_CODESEPARATOR)

	sigHash, err := CalcSignatureHash(subScript, hashType, vm.tx, vm.txIdx)
	if err != nil {
		return err
	}

	pubKey, err := btcec.ParsePubKey(pubKeyBytes)
	if err != nil {
		vm.dstack.PushBool(false)
		return nil
	}

	parsedSig, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		vm.dstack.PushBool(false)
		return nil
	}

	vm.dstack.PushBool(parsedSig.Verify(sigHash, pubKey))
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// DisasmScript renders every operation of scriptIdx (0 for the input
// script, 1 for the output script) for debug logging.
func (vm *Engine) DisasmScript(scriptIdx int) string {
	if scriptIdx < 0 || scriptIdx >= len(vm.scripts) {
		return ""
	}
	var out string
	for i, pop := range vm.scripts[scriptIdx] {
		if i > 0 {
			out += " "
		}
		out += pop.Disasm()
	}
	return out
}
