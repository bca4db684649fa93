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

// MerkleTree is a binary hash tree over a block's transaction list. Odd
// levels are padded by duplicating the last node so every level but the
// root has even length.
//
// This is hand-rolled rather than built on the ecosystem's xsleonard/go-merkle
// (a library otherwise in this teacher's dependency orbit): that library's
// proof shape doesn't expose the exact leaf-parity convention the spec's
// verify() requires (sibling order chosen by the bit of the leaf index at
// each level, not by the library's own left/right bookkeeping), and the
// tree here is small enough that re-deriving it from the spec's original
// Rust reference (types/merkle.rs) is the more faithful translation.
type MerkleTree struct {
	levels [][]common.Hash // levels[0] = leaf hashes, ..., levels[len-1] = [root]
}

// NewMerkleTree builds the tree over the hashes of data, in order.
func NewMerkleTree(data []*SignedTransaction) *MerkleTree {
	if len(data) == 0 {
		return &MerkleTree{}
	}
	leaves := make([]common.Hash, len(data))
	for i, st := range data {
		leaves[i] = st.Hash()
	}
	if len(leaves) == 1 {
		return &MerkleTree{levels: [][]common.Hash{leaves}}
	}

	level := padOdd(leaves)
	levels := [][]common.Hash{level}
	for len(level) > 1 {
		next := make([]common.Hash, 0, (len(level)+1)/2)
		for i := 0; i+1 < len(level); i += 2 {
			next = append(next, hashPair(level[i], level[i+1]))
		}
		level = padOdd(next)
		levels = append(levels, level)
	}
	return &MerkleTree{levels: levels}
}

// padOdd duplicates the last element of level if its length is odd, unless
// the level already has length 1 (the root).
func padOdd(level []common.Hash) []common.Hash {
	if len(level)%2 == 1 && len(level) != 1 {
		level = append(append([]common.Hash{}, level...), level[len(level)-1])
	}
	return level
}

func hashPair(left, right common.Hash) common.Hash {
	buf := make([]byte, 0, 2*common.HashLength)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return ccrypto.Sha256(buf)
}

// Root returns the tree's root hash: the all-zero hash for an empty input,
// the single leaf's hash for a one-element input.
func (m *MerkleTree) Root() common.Hash {
	if len(m.levels) == 0 {
		return common.Hash{}
	}
	top := m.levels[len(m.levels)-1]
	return top[0]
}

// Proof returns the sibling hashes from leaf index i up to the root.
func (m *MerkleTree) Proof(i int) []common.Hash {
	var proof []common.Hash
	if len(m.levels) == 0 {
		return proof
	}
	if len(m.levels) == 1 {
		level := m.levels[0]
		if len(level) == 1 {
			return proof
		}
		if i%2 == 0 {
			proof = append(proof, level[1])
		} else {
			proof = append(proof, level[0])
		}
		return proof
	}
	pointer := i
	for lvl := 0; lvl < len(m.levels)-1; lvl++ {
		level := m.levels[lvl]
		if pointer%2 == 0 {
			proof = append(proof, level[pointer+1])
		} else {
			proof = append(proof, level[pointer-1])
		}
		pointer /= 2
	}
	return proof
}

// VerifyMerkleProof recomputes the root from datum, proof, the leaf's index,
// and reports whether it matches root. order at each level is chosen by the
// parity of the (shifting) index: even means datum is the left sibling.
func VerifyMerkleProof(root, datum common.Hash, proof []common.Hash, index int) bool {
	if root.IsZero() {
		return false
	}
	cur := datum
	pointer := index
	for _, sib := range proof {
		if pointer%2 == 0 {
			cur = hashPair(cur, sib)
		} else {
			cur = hashPair(sib, cur)
		}
		pointer /= 2
	}
	return cur == root
}
