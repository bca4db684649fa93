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

package types

import (
	"github.com/chaintutor/powchain/internal/ccrypto"
	"github.com/chaintutor/powchain/internal/common"
)

// Header is a block's proof-of-work envelope. Its hash — SHA-256 of its own
// canonical encoding — is what the difficulty target bounds; the payload
// (the transaction list) is bound in only indirectly, via MerkleRoot.
type Header struct {
	Parent     common.Hash
	Nonce      uint32
	Difficulty common.Hash
	Timestamp  *Uint128 // milliseconds since the Unix epoch
	MerkleRoot common.Hash
}

// Encode returns the canonical binary encoding of the header.
func (h *Header) Encode() []byte {
	e := &encoder{}
	e.writeHash(h.Parent)
	e.writeUint32(h.Nonce)
	e.writeHash(h.Difficulty)
	e.writeUint128(h.Timestamp)
	e.writeHash(h.MerkleRoot)
	return e.bytes()
}

func decodeHeader(d *decoder) (*Header, error) {
	parent, err := d.readHash()
	if err != nil {
		return nil, err
	}
	nonce, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	difficulty, err := d.readHash()
	if err != nil {
		return nil, err
	}
	ts, err := d.readUint128()
	if err != nil {
		return nil, err
	}
	root, err := d.readHash()
	if err != nil {
		return nil, err
	}
	return &Header{Parent: parent, Nonce: nonce, Difficulty: difficulty, Timestamp: ts, MerkleRoot: root}, nil
}

// Hash returns the SHA-256 digest of the header's canonical encoding. This,
// not the block's overall encoding, is the value the proof-of-work check
// and the parent-linking invariant operate on.
func (h *Header) Hash() common.Hash {
	return ccrypto.Sha256(h.Encode())
}

// Block is a header together with its ordered transaction payload.
type Block struct {
	Header *Header
	Data   []*SignedTransaction
}

// Hash returns the block's hash, defined as its header's hash.
func (b *Block) Hash() common.Hash {
	return b.Header.Hash()
}

// Encode returns the canonical binary encoding of the whole block (header
// followed by a length-prefixed transaction list), used on the wire.
func (b *Block) Encode() []byte {
	e := &encoder{}
	e.buf.Write(b.Header.Encode())
	e.writeUint32(uint32(len(b.Data)))
	for _, st := range b.Data {
		e.writeBytesLP(st.Encode())
	}
	return e.bytes()
}

// DecodeBlock parses a block from its canonical encoding.
func DecodeBlock(raw []byte) (*Block, error) {
	d := newDecoder(raw)
	hdr, err := decodeHeader(d)
	if err != nil {
		return nil, err
	}
	n, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	data := make([]*SignedTransaction, 0, n)
	for i := uint32(0); i < n; i++ {
		stBytes, err := d.readBytesLP()
		if err != nil {
			return nil, err
		}
		st, err := decodeSignedTransaction(newDecoder(stBytes))
		if err != nil {
			return nil, err
		}
		data = append(data, st)
	}
	return &Block{Header: hdr, Data: data}, nil
}

// MerkleRoot computes the Merkle root over data, matching NewMerkleTree(data).Root().
func MerkleRoot(data []*SignedTransaction) common.Hash {
	return NewMerkleTree(data).Root()
}

// ValidUnder reports whether b is valid as a direct child of parent, per the
// four checks in the spec's data model: correct parent link, proof-of-work
// satisfied against the parent's difficulty, merkle root matches the
// payload, and every embedded transaction's signature verifies.
func (b *Block) ValidUnder(parent *Block) bool {
	if b.Header.Parent != parent.Hash() {
		return false
	}
	if !b.Hash().LessOrEqual(parent.Header.Difficulty) {
		return false
	}
	if b.Header.MerkleRoot != MerkleRoot(b.Data) {
		return false
	}
	for _, st := range b.Data {
		if !st.VerifySignature() {
			return false
		}
	}
	return true
}
