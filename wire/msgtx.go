// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// MaxTxInSequenceNum is the default, "final" sequence number for a
// transaction input.
const MaxTxInSequenceNum uint32 = 0xffffffff

// maxTxInPerMessage, maxTxOutPerMessage and maxScriptSize bound the allocation
// this package makes while decoding untrusted transactions.
const (
	maxTxInPerMessage  = 100000
	maxTxOutPerMessage = 100000
	maxScriptSize      = 10000
)

// OutPoint identifies a specific output of a specific transaction.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new transaction outpoint for the given hash and
// output index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{Hash: *hash, Index: index}
}

// TxIn defines a bitcoin transaction input: the outpoint it spends and the
// script that unlocks it, commonly called the input script.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
}

// NewTxIn returns a new transaction input spending prevOut, unlocked by
// signatureScript, with the default sequence number.
func NewTxIn(prevOut *OutPoint, signatureScript []byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		SignatureScript:  signatureScript,
		Sequence:         MaxTxInSequenceNum,
	}
}

// TxOut defines a bitcoin transaction output: the amount it carries and
// the script that must be satisfied to spend it, commonly called the
// output script.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// NewTxOut returns a new transaction output with the given value and
// output script.
func NewTxOut(value int64, pkScript []byte) *TxOut {
	return &TxOut{Value: value, PkScript: pkScript}
}

// MsgTx implements the Message interface and represents a legacy bitcoin
// transaction: the minimal fields the signature hash algorithm operates
// on. Segregated witness fields are out of scope.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// NewMsgTx returns a new, empty transaction.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{Version: version}
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// Copy returns a deep copy of the transaction, so callers such as the
// script engine's signature hash computation can mutate inputs and
// outputs without disturbing the original.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := &MsgTx{
		Version:  msg.Version,
		TxIn:     make([]*TxIn, 0, len(msg.TxIn)),
		TxOut:    make([]*TxOut, 0, len(msg.TxOut)),
		LockTime: msg.LockTime,
	}

	for _, oldTxIn := range msg.TxIn {
		newTxIn := &TxIn{
			PreviousOutPoint: OutPoint{
				Hash:  oldTxIn.PreviousOutPoint.Hash,
				Index: oldTxIn.PreviousOutPoint.Index,
			},
			Sequence: oldTxIn.Sequence,
		}
		if oldTxIn.SignatureScript != nil {
			newTxIn.SignatureScript = make([]byte, len(oldTxIn.SignatureScript))
			copy(newTxIn.SignatureScript, oldTxIn.SignatureScript)
		}
		newTx.TxIn = append(newTx.TxIn, newTxIn)
	}

	for _, oldTxOut := range msg.TxOut {
		newTxOut := &TxOut{Value: oldTxOut.Value}
		if oldTxOut.PkScript != nil {
			newTxOut.PkScript = make([]byte, len(oldTxOut.PkScript))
			copy(newTxOut.PkScript, oldTxOut.PkScript)
		}
		newTx.TxOut = append(newTx.TxOut, newTxOut)
	}

	return newTx
}

// TxHash returns the double SHA-256 hash of the serialized transaction.
func (msg *MsgTx) TxHash() chainhash.Hash {
	var buf bytes.Buffer
	_ = msg.Serialize(&buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

// BtcDecode decodes r into the receiver using the canonical legacy
// encoding (version, inputs, outputs, locktime).
func (msg *MsgTx) BtcDecode(r io.Reader, pver uint32) error {
	if err := readElement(r, &msg.Version); err != nil {
		return err
	}

	txInCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if txInCount > maxTxInPerMessage {
		return messageError("MsgTx.BtcDecode", "too many transaction inputs")
	}

	msg.TxIn = make([]*TxIn, 0, txInCount)
	for i := uint64(0); i < txInCount; i++ {
		ti := &TxIn{}
		if err := readTxIn(r, ti); err != nil {
			return err
		}
		msg.TxIn = append(msg.TxIn, ti)
	}

	txOutCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if txOutCount > maxTxOutPerMessage {
		return messageError("MsgTx.BtcDecode", "too many transaction outputs")
	}

	msg.TxOut = make([]*TxOut, 0, txOutCount)
	for i := uint64(0); i < txOutCount; i++ {
		to := &TxOut{}
		if err := readTxOut(r, to); err != nil {
			return err
		}
		msg.TxOut = append(msg.TxOut, to)
	}

	return readElement(r, &msg.LockTime)
}

// BtcEncode encodes the receiver to w using the canonical legacy encoding.
func (msg *MsgTx) BtcEncode(w io.Writer, pver uint32) error {
	return msg.Serialize(w)
}

// Serialize writes the canonical legacy encoding of the transaction to w.
// It is the exact byte sequence the signature hash algorithm double
// hashes, and is called directly (rather than through BtcEncode) so the
// script engine never depends on protocol version negotiation.
func (msg *MsgTx) Serialize(w io.Writer) error {
	if err := writeElement(w, msg.Version); err != nil {
		return err
	}

	if err := WriteVarInt(w, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeTxIn(w, ti); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := writeTxOut(w, to); err != nil {
			return err
		}
	}

	return writeElement(w, msg.LockTime)
}

// Command returns the protocol command string.
func (msg *MsgTx) Command() string {
	return "tx"
}

// MaxPayloadLength returns the maximum payload size for a tx message.
func (msg *MsgTx) MaxPayloadLength(pver uint32) uint32 {
	return DefaultMaxPayloadSize
}

func readTxIn(r io.Reader, ti *TxIn) error {
	if err := readElements(r, &ti.PreviousOutPoint.Hash, &ti.PreviousOutPoint.Index); err != nil {
		return err
	}

	script, err := ReadVarBytes(r, maxScriptSize, "signature script")
	if err != nil {
		return err
	}
	ti.SignatureScript = script

	return readElement(r, &ti.Sequence)
}

func writeTxIn(w io.Writer, ti *TxIn) error {
	if err := writeElements(w, ti.PreviousOutPoint.Hash, ti.PreviousOutPoint.Index); err != nil {
		return err
	}

	if err := WriteVarBytes(w, ti.SignatureScript); err != nil {
		return err
	}

	return writeElement(w, ti.Sequence)
}

func readTxOut(r io.Reader, to *TxOut) error {
	if err := readElement(r, &to.Value); err != nil {
		return err
	}

	script, err := ReadVarBytes(r, maxScriptSize, "public key script")
	if err != nil {
		return err
	}
	to.PkScript = script
	return nil
}

func writeTxOut(w io.Writer, to *TxOut) error {
	if err := writeElement(w, to.Value); err != nil {
		return err
	}
	return WriteVarBytes(w, to.PkScript)
}
