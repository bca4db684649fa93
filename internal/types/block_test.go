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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chaintutor/powchain/internal/common"
)

var easyDifficulty = common.Hash{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

func genesisFixture() *Block {
	hdr := &Header{
		Parent:     common.Hash{},
		Nonce:      0,
		Difficulty: easyDifficulty,
		Timestamp:  NewUint128(0),
		MerkleRoot: MerkleRoot(nil),
	}
	return &Block{Header: hdr, Data: nil}
}

func TestBlockEncodeDecodeRoundTrips(t *testing.T) {
	st := txFixture(t, 0)
	g := genesisFixture()
	hdr := &Header{
		Parent:     g.Hash(),
		Nonce:      99,
		Difficulty: easyDifficulty,
		Timestamp:  NewUint128(123),
		MerkleRoot: MerkleRoot([]*SignedTransaction{st}),
	}
	b := &Block{Header: hdr, Data: []*SignedTransaction{st}}

	decoded, err := DecodeBlock(b.Encode())
	require.NoError(t, err)
	require.Equal(t, b.Hash(), decoded.Hash())
	require.Len(t, decoded.Data, 1)
	require.Equal(t, st.Hash(), decoded.Data[0].Hash())
}

func TestValidUnderAcceptsWellFormedChild(t *testing.T) {
	g := genesisFixture()
	child := &Block{
		Header: &Header{
			Parent:     g.Hash(),
			Nonce:      1,
			Difficulty: easyDifficulty,
			Timestamp:  NewUint128(1),
			MerkleRoot: MerkleRoot(nil),
		},
	}
	require.True(t, child.ValidUnder(g))
}

func TestValidUnderRejectsWrongParent(t *testing.T) {
	g := genesisFixture()
	child := &Block{
		Header: &Header{
			Parent:     common.BytesToHash([]byte{0x01}),
			Difficulty: easyDifficulty,
			Timestamp:  NewUint128(1),
			MerkleRoot: MerkleRoot(nil),
		},
	}
	require.False(t, child.ValidUnder(g))
}

func TestValidUnderRejectsMismatchedMerkleRoot(t *testing.T) {
	g := genesisFixture()
	st := txFixture(t, 0)
	child := &Block{
		Header: &Header{
			Parent:     g.Hash(),
			Difficulty: easyDifficulty,
			Timestamp:  NewUint128(1),
			MerkleRoot: common.Hash{0x01}, // wrong: doesn't match st's root
		},
		Data: []*SignedTransaction{st},
	}
	require.False(t, child.ValidUnder(g))
}

func TestValidUnderRejectsInvalidTransactionSignature(t *testing.T) {
	g := genesisFixture()
	st := txFixture(t, 0)
	st.Signature[0] ^= 0xff
	child := &Block{
		Header: &Header{
			Parent:     g.Hash(),
			Difficulty: easyDifficulty,
			Timestamp:  NewUint128(1),
			MerkleRoot: MerkleRoot([]*SignedTransaction{st}),
		},
		Data: []*SignedTransaction{st},
	}
	require.False(t, child.ValidUnder(g))
}
