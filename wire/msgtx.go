// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	btcwire "github.com/btcsuite/btcd/wire"
)

const (
	// TxVersion is the current latest supported transaction version.
	TxVersion = 1

	// MaxTxInSequenceNum is the maximum sequence number the sequence field
	// of a transaction input can be.
	MaxTxInSequenceNum uint32 = 0xffffffff

	// MaxPrevOutIndex is the maximum index the index field of a previous
	// outpoint can be.
	MaxPrevOutIndex uint32 = 0xffffffff

	// SequenceLockTimeDisabled is a flag that if set on a transaction
	// input's sequence number, the sequence number will not be interpreted
	// as a relative locktime.
	SequenceLockTimeDisabled = 1 << 31

	// SequenceLockTimeIsSeconds is a flag that if set on a transaction
	// input's sequence number, the relative locktime has units of 512
	// seconds.
	SequenceLockTimeIsSeconds = 1 << 22

	// SequenceLockTimeMask is a mask that extracts the relative locktime
	// when masked against the transaction input sequence number.
	SequenceLockTimeMask = 0x0000ffff

	// MaxTxSize bounds the serialized size of a transaction accepted by
	// Deserialize.
	MaxTxSize = 1000000

	// pver is the protocol version passed to the parent chain var-int
	// codec, which ignores it.
	pver = 0

	// minTxInPayload is the minimum payload size for a transaction input.
	// PreviousOutPoint.Hash + PreviousOutPoint.Index 4 bytes + Varint for
	// SignatureScript length 1 byte + Sequence 4 bytes.
	minTxInPayload = 9 + chainhash.HashSize

	// minTxOutPayload is the minimum payload size for a transaction
	// output.  Null value 1 byte + Varint for PkScript length 1 byte.
	minTxOutPayload = 2

	// maxTxInPerMessage and maxTxOutPerMessage bound the counts read
	// during decoding so a bogus count cannot exhaust memory.
	maxTxInPerMessage  = MaxTxSize/minTxInPayload + 1
	maxTxOutPerMessage = MaxTxSize/minTxOutPayload + 1
)

// OutPoint defines a sidechain data type that is used to track previous
// transaction outputs.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new transaction outpoint point with the provided hash
// and index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{
		Hash:  *hash,
		Index: index,
	}
}

// String returns the OutPoint in the human-readable form "hash:index".
func (o OutPoint) String() string {
	// Allocate enough for hash string, colon, and 10 digits.
	buf := make([]byte, 2*chainhash.HashSize+1, 2*chainhash.HashSize+1+10)
	copy(buf, o.Hash.String())
	buf[2*chainhash.HashSize] = ':'
	buf = strconv.AppendUint(buf, uint64(o.Index), 10)
	return string(buf)
}

// TxIn defines a sidechain transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction input.
func (t *TxIn) SerializeSize() int {
	// Outpoint Hash 32 bytes + Outpoint Index 4 bytes + Sequence 4 bytes +
	// serialized varint size for the length of SignatureScript +
	// SignatureScript bytes.
	return 40 + btcwire.VarIntSerializeSize(uint64(len(t.SignatureScript))) +
		len(t.SignatureScript)
}

// NewTxIn returns a new transaction input with the provided previous
// outpoint and signature script with a default sequence of
// MaxTxInSequenceNum.
func NewTxIn(prevOut *OutPoint, signatureScript []byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		SignatureScript:  signatureScript,
		Sequence:         MaxTxInSequenceNum,
	}
}

// TxOut defines a sidechain transaction output.  Its value may be blinded.
type TxOut struct {
	Value    Value
	PkScript []byte
}

// SerializeSize returns the number of bytes it would take to serialize the
// the transaction output.
func (t *TxOut) SerializeSize() int {
	return t.Value.SerializeSize() +
		btcwire.VarIntSerializeSize(uint64(len(t.PkScript))) +
		len(t.PkScript)
}

// NewTxOut returns a new transaction output with the provided value and
// public key script.
func NewTxOut(value Value, pkScript []byte) *TxOut {
	return &TxOut{
		Value:    value,
		PkScript: pkScript,
	}
}

// MsgTx is a sidechain transaction.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// NewMsgTx returns a new transaction with the given version and no inputs or
// outputs.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{
		Version: version,
		TxIn:    make([]*TxIn, 0, 1),
		TxOut:   make([]*TxOut, 0, 1),
	}
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// TxHash generates the hash for the transaction.  Transactions carrying a
// negative explicit value cannot be serialized but still hash uniquely, with
// each such amount taken as its two's complement bits.
func (msg *MsgTx) TxHash() chainhash.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSize()))

	// Writes to a bytes.Buffer and unchecked value encodings cannot fail.
	_ = msg.serialize(buf, false)
	return chainhash.DoubleHashH(buf.Bytes())
}

// Copy creates a deep copy of the transaction so that the original does not
// get modified when the copy is manipulated.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := MsgTx{
		Version:  msg.Version,
		TxIn:     make([]*TxIn, 0, len(msg.TxIn)),
		TxOut:    make([]*TxOut, 0, len(msg.TxOut)),
		LockTime: msg.LockTime,
	}

	for _, oldTxIn := range msg.TxIn {
		var newScript []byte
		if oldTxIn.SignatureScript != nil {
			newScript = make([]byte, len(oldTxIn.SignatureScript))
			copy(newScript, oldTxIn.SignatureScript)
		}
		newTx.TxIn = append(newTx.TxIn, &TxIn{
			PreviousOutPoint: oldTxIn.PreviousOutPoint,
			SignatureScript:  newScript,
			Sequence:         oldTxIn.Sequence,
		})
	}

	for _, oldTxOut := range msg.TxOut {
		var newScript []byte
		if oldTxOut.PkScript != nil {
			newScript = make([]byte, len(oldTxOut.PkScript))
			copy(newScript, oldTxOut.PkScript)
		}
		newTx.TxOut = append(newTx.TxOut, &TxOut{
			Value:    oldTxOut.Value,
			PkScript: newScript,
		})
	}

	return &newTx
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction.
func (msg *MsgTx) SerializeSize() int {
	// Version 4 bytes + LockTime 4 bytes + serialized varint size for the
	// number of transaction inputs and outputs.
	n := 8 + btcwire.VarIntSerializeSize(uint64(len(msg.TxIn))) +
		btcwire.VarIntSerializeSize(uint64(len(msg.TxOut)))

	for _, txIn := range msg.TxIn {
		n += txIn.SerializeSize()
	}
	for _, txOut := range msg.TxOut {
		n += txOut.SerializeSize()
	}
	return n
}

// Serialize encodes the transaction to w.  The layout is the parent chain
// legacy layout with each output amount replaced by its Value encoding.
func (msg *MsgTx) Serialize(w io.Writer) error {
	return msg.serialize(w, true)
}

// serialize encodes the transaction to w.  Negative explicit values are
// rejected when strict is set.
func (msg *MsgTx) serialize(w io.Writer, strict bool) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(msg.Version))
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}

	if err := btcwire.WriteVarInt(w, pver, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeTxIn(w, ti); err != nil {
			return err
		}
	}

	if err := btcwire.WriteVarInt(w, pver, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := writeTxOut(w, to, strict); err != nil {
			return err
		}
	}

	binary.LittleEndian.PutUint32(buf[:], msg.LockTime)
	_, err := w.Write(buf[:])
	return err
}

// Bytes returns the serialized transaction.
func (msg *MsgTx) Bytes() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSize()))
	if err := msg.Serialize(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Deserialize decodes a transaction from r into the receiver.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	msg.Version = int32(binary.LittleEndian.Uint32(buf[:]))

	count, err := btcwire.ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if count > maxTxInPerMessage {
		return fmt.Errorf("too many input transactions to fit into "+
			"max message size [count %d, max %d]", count,
			maxTxInPerMessage)
	}
	msg.TxIn = make([]*TxIn, count)
	for i := range msg.TxIn {
		ti := new(TxIn)
		if err := readTxIn(r, ti); err != nil {
			return err
		}
		msg.TxIn[i] = ti
	}

	count, err = btcwire.ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if count > maxTxOutPerMessage {
		return fmt.Errorf("too many output transactions to fit into "+
			"max message size [count %d, max %d]", count,
			maxTxOutPerMessage)
	}
	msg.TxOut = make([]*TxOut, count)
	for i := range msg.TxOut {
		to := new(TxOut)
		if err := readTxOut(r, to); err != nil {
			return err
		}
		msg.TxOut[i] = to
	}

	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	msg.LockTime = binary.LittleEndian.Uint32(buf[:])
	return nil
}

// TxFromBytes decodes a transaction that occupies all of b.
func TxFromBytes(b []byte) (*MsgTx, error) {
	if len(b) > MaxTxSize {
		return nil, fmt.Errorf("transaction is %d bytes, max %d",
			len(b), MaxTxSize)
	}

	r := bytes.NewReader(b)
	var tx MsgTx
	if err := tx.Deserialize(r); err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after transaction",
			r.Len())
	}
	return &tx, nil
}

func writeTxIn(w io.Writer, ti *TxIn) error {
	if _, err := w.Write(ti.PreviousOutPoint.Hash[:]); err != nil {
		return err
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], ti.PreviousOutPoint.Index)
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}
	if err := btcwire.WriteVarBytes(w, pver, ti.SignatureScript); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(buf[:], ti.Sequence)
	_, err := w.Write(buf[:])
	return err
}

func readTxIn(r io.Reader, ti *TxIn) error {
	if _, err := io.ReadFull(r, ti.PreviousOutPoint.Hash[:]); err != nil {
		return err
	}
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	ti.PreviousOutPoint.Index = binary.LittleEndian.Uint32(buf[:])

	script, err := btcwire.ReadVarBytes(r, pver, MaxTxSize,
		"transaction input signature script")
	if err != nil {
		return err
	}
	ti.SignatureScript = script

	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	ti.Sequence = binary.LittleEndian.Uint32(buf[:])
	return nil
}

func writeTxOut(w io.Writer, to *TxOut, strict bool) error {
	encode := to.Value.Bytes
	if !strict {
		encode = to.Value.rawBytes
	}
	value, err := encode()
	if err != nil {
		return err
	}
	if _, err := w.Write(value); err != nil {
		return err
	}
	return btcwire.WriteVarBytes(w, pver, to.PkScript)
}

func readTxOut(r io.Reader, to *TxOut) error {
	value, err := ReadValue(r)
	if err != nil {
		return err
	}
	to.Value = value

	script, err := btcwire.ReadVarBytes(r, pver, MaxTxSize,
		"transaction output public key script")
	if err != nil {
		return err
	}
	to.PkScript = script
	return nil
}
