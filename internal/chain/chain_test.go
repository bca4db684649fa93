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

package chain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chaintutor/powchain/internal/common"
	"github.com/chaintutor/powchain/internal/types"
)

func child(t *testing.T, parent *types.Block, nonce uint32) *types.Block {
	t.Helper()
	hdr := &types.Header{
		Parent:     parent.Hash(),
		Nonce:      nonce,
		Difficulty: Difficulty,
		Timestamp:  types.NewUint128(uint64(nonce)),
		MerkleRoot: types.MerkleRoot(nil),
	}
	return &types.Block{Header: hdr, Data: nil}
}

func TestNewChainHasOnlyGenesis(t *testing.T) {
	c := New()
	g := Genesis()
	require.Equal(t, g.Hash(), c.Tip())
	h, ok := c.Height(g.Hash())
	require.True(t, ok)
	require.EqualValues(t, 0, h)
}

func TestInsertAdvancesTip(t *testing.T) {
	c := New()
	g := Genesis()
	b1 := child(t, g, 1)

	hash := c.Insert(b1)
	require.Equal(t, b1.Hash(), hash)
	require.Equal(t, b1.Hash(), c.Tip())

	height, ok := c.Height(b1.Hash())
	require.True(t, ok)
	require.EqualValues(t, 1, height)
}

func TestInsertIsIdempotentByHash(t *testing.T) {
	c := New()
	g := Genesis()
	b1 := child(t, g, 1)

	c.Insert(b1)
	tip := c.Tip()
	c.Insert(b1)
	require.Equal(t, tip, c.Tip())
}

func TestInsertUnknownParentPanics(t *testing.T) {
	c := New()
	orphan := &types.Block{
		Header: &types.Header{
			Parent:     common.BytesToHash([]byte{0xAB}),
			Difficulty: Difficulty,
			Timestamp:  types.NewUint128(0),
			MerkleRoot: types.MerkleRoot(nil),
		},
	}
	require.Panics(t, func() { c.Insert(orphan) })
}

func TestFirstSeenTieBreakKeepsEarlierTipOnEqualHeight(t *testing.T) {
	c := New()
	g := Genesis()
	a := child(t, g, 1)
	b := child(t, g, 2)

	c.Insert(a)
	firstTip := c.Tip()
	c.Insert(b)

	// Both a and b are height 1; first-seen wins, so the tip must not have
	// moved to b.
	require.Equal(t, firstTip, c.Tip())
}

func TestBlocksInLongestChainOrdersGenesisFirst(t *testing.T) {
	c := New()
	g := Genesis()
	b1 := child(t, g, 1)
	b2 := child(t, b1, 2)
	c.Insert(b1)
	c.Insert(b2)

	chain := c.BlocksInLongestChain()
	require.Len(t, chain, 3)
	require.Equal(t, g.Hash(), chain[0])
	require.Equal(t, b1.Hash(), chain[1])
	require.Equal(t, b2.Hash(), chain[2])
}
