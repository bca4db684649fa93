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

// Package chain holds the node's canonical, in-memory block store: the
// hash-keyed block set, the height index, and the first-seen-longest tip
// rule.
package chain

import (
	"sync"

	"github.com/chaintutor/powchain/internal/common"
	"github.com/chaintutor/powchain/internal/types"
)

// Difficulty is the single, shared proof-of-work target used by both the
// genesis block and the miner. The spec's Rust reference kept this constant
// duplicated in two files and warned implementers to keep them in sync;
// here it is defined once and imported everywhere it is needed.
var Difficulty = common.Hash{ // 0x3c repeated: a deliberately easy target for a teaching network
	0x3c, 0x3c, 0x3c, 0x3c, 0x3c, 0x3c, 0x3c, 0x3c,
	0x3c, 0x3c, 0x3c, 0x3c, 0x3c, 0x3c, 0x3c, 0x3c,
	0x3c, 0x3c, 0x3c, 0x3c, 0x3c, 0x3c, 0x3c, 0x3c,
	0x3c, 0x3c, 0x3c, 0x3c, 0x3c, 0x3c, 0x3c, 0x3c,
}

// GenesisTimestamp is the fixed timestamp recorded in the genesis header.
const GenesisTimestamp = 0

// Genesis builds the network's shared genesis block: empty payload, the
// all-zero parent hash, and the package Difficulty target.
func Genesis() *types.Block {
	hdr := &types.Header{
		Parent:     common.Hash{},
		Nonce:      0,
		Difficulty: Difficulty,
		Timestamp:  types.NewUint128(GenesisTimestamp),
		MerkleRoot: types.MerkleRoot(nil),
	}
	return &types.Block{Header: hdr, Data: nil}
}

// Chain is the process-wide, lock-guarded block store. Once constructed it
// is shared by reference (never copied) among the miner, the mined-block
// worker, and the gossip workers.
type Chain struct {
	mu      sync.Mutex
	blocks  map[common.Hash]*types.Block
	heights map[common.Hash]uint64
	tip     common.Hash
}

// New returns a chain containing only the genesis block.
func New() *Chain {
	g := Genesis()
	hash := g.Hash()
	return &Chain{
		blocks:  map[common.Hash]*types.Block{hash: g},
		heights: map[common.Hash]uint64{hash: 0},
		tip:     hash,
	}
}

// Insert adds b to the store. b's parent must already be present — the
// caller (the gossip worker) is responsible for orphan buffering; calling
// Insert with an unknown parent is a programming error and panics, exactly
// as the spec requires ("a programming error").
func (c *Chain) Insert(b *types.Block) common.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insertLocked(b)
}

func (c *Chain) insertLocked(b *types.Block) common.Hash {
	hash := b.Hash()
	if _, ok := c.blocks[hash]; ok {
		return hash // idempotent by hash
	}
	parentHeight, ok := c.heights[b.Header.Parent]
	if !ok {
		panic("chain: insert called with unknown parent; caller must orphan-buffer first")
	}
	newHeight := parentHeight + 1
	c.blocks[hash] = b
	c.heights[hash] = newHeight

	if newHeight > c.heights[c.tip] {
		c.tip = hash
	}
	// else: first-seen tie-break — leave tip unchanged.
	return hash
}

// Tip returns the current chain head.
func (c *Chain) Tip() common.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tip
}

// Height returns the height of hash, and whether hash is known.
func (c *Chain) Height(hash common.Hash) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.heights[hash]
	return h, ok
}

// Has reports whether hash is present in the store.
func (c *Chain) Has(hash common.Hash) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.blocks[hash]
	return ok
}

// Block returns the block for hash, if present.
func (c *Chain) Block(hash common.Hash) (*types.Block, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.blocks[hash]
	return b, ok
}

// BlocksInLongestChain walks from the tip to genesis via parent pointers
// exactly Height(tip)+1 times, then reverses, returning hashes ordered
// genesis-first.
func (c *Chain) BlocksInLongestChain() []common.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	height := c.heights[c.tip]
	out := make([]common.Hash, 0, height+1)
	cur := c.tip
	for i := uint64(0); i <= height; i++ {
		out = append(out, cur)
		b := c.blocks[cur]
		cur = b.Header.Parent
	}
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}

// WithLock runs fn while holding the chain lock, giving callers (notably the
// gossip worker's Blocks handler, which must hold the chain lock across a
// multi-step validation-then-insert sequence) the same atomicity Insert
// alone can't provide.
func (c *Chain) WithLock(fn func(*Locked)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&Locked{c: c})
}

// Locked exposes the same operations as Chain but assumes the caller already
// holds c.mu — it must only be constructed from inside WithLock.
type Locked struct {
	c *Chain
}

func (l *Locked) Has(hash common.Hash) bool {
	_, ok := l.c.blocks[hash]
	return ok
}

func (l *Locked) Block(hash common.Hash) (*types.Block, bool) {
	b, ok := l.c.blocks[hash]
	return b, ok
}

func (l *Locked) Insert(b *types.Block) common.Hash {
	return l.c.insertLocked(b)
}
