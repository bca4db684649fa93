// Copyright 2024 The powchain Authors
// This file is part of the powchain library.
//
// The powchain library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The powchain library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the powchain library. If not, see <http://www.gnu.org/licenses/>.

// Package types defines the wire/consensus data model: transactions, blocks,
// and the Merkle tree bound into a block header.
//
// Canonical serialization is hand-rolled on top of encoding/binary rather
// than reached for via encoding/gob or a protobuf schema: the data model is a
// handful of fixed-width integers and byte strings (exactly what RLP-style
// codecs in go-ethereum itself hand-roll for the same reason), and the spec
// requires byte-exact, network-wide agreement on field order and endianness
// that a reflection-based codec would only obscure.
package types

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/chaintutor/powchain/internal/common"
)

// ErrShortBuffer is returned by decode helpers when the input is truncated.
var ErrShortBuffer = errors.New("types: short buffer")

type encoder struct {
	buf bytes.Buffer
}

func (e *encoder) writeHash(h common.Hash) {
	e.buf.Write(h[:])
}

func (e *encoder) writeUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) writeUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

// writeUint128 writes v as a 16-byte big-endian field, the wire shape of the
// spec's u128 value/nonce/timestamp fields.
func (e *encoder) writeUint128(v *Uint128) {
	var b [16]byte
	v.PutBytes16(&b)
	e.buf.Write(b[:])
}

func (e *encoder) writeBytesLP(p []byte) {
	e.writeUint32(uint32(len(p)))
	e.buf.Write(p)
}

func (e *encoder) bytes() []byte { return e.buf.Bytes() }

type decoder struct {
	b []byte
}

func newDecoder(b []byte) *decoder { return &decoder{b: b} }

func (d *decoder) take(n int) ([]byte, error) {
	if len(d.b) < n {
		return nil, ErrShortBuffer
	}
	out := d.b[:n]
	d.b = d.b[n:]
	return out, nil
}

func (d *decoder) readHash() (common.Hash, error) {
	b, err := d.take(common.HashLength)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(b), nil
}

func (d *decoder) readUint32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *decoder) readUint64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (d *decoder) readUint128() (*Uint128, error) {
	b, err := d.take(16)
	if err != nil {
		return nil, err
	}
	return Uint128FromBytes16(b), nil
}

func (d *decoder) readBytesLP() ([]byte, error) {
	n, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	return d.take(int(n))
}
