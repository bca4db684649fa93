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

	"github.com/chaintutor/powchain/internal/ccrypto"
	"github.com/chaintutor/powchain/internal/common"
)

func txFixture(t *testing.T, nonce uint64) *SignedTransaction {
	t.Helper()
	kp, err := ccrypto.GenerateKeyPair()
	require.NoError(t, err)
	tx := &Transaction{
		Sender:   ccrypto.AddressFromPubkey(kp.Public),
		Receiver: ccrypto.AddressFromPubkey(kp.Public),
		Value:    NewUint128(1),
		Nonce:    NewUint128(nonce),
	}
	return Sign(tx, kp)
}

func TestMerkleRootEmpty(t *testing.T) {
	require.True(t, NewMerkleTree(nil).Root().IsZero())
}

func TestMerkleRootSingleElementIsLeafHash(t *testing.T) {
	st := txFixture(t, 0)
	tree := NewMerkleTree([]*SignedTransaction{st})
	require.Equal(t, st.Hash(), tree.Root())
}

func TestMerkleProofRoundTripsForEveryLeaf(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 7, 8} {
		data := make([]*SignedTransaction, n)
		for i := range data {
			data[i] = txFixture(t, uint64(i))
		}
		tree := NewMerkleTree(data)
		root := tree.Root()
		for i, st := range data {
			proof := tree.Proof(i)
			require.True(t, VerifyMerkleProof(root, st.Hash(), proof, i), "n=%d i=%d", n, i)
		}
	}
}

func TestMerkleProofRejectsWrongLeaf(t *testing.T) {
	data := []*SignedTransaction{txFixture(t, 0), txFixture(t, 1), txFixture(t, 2)}
	tree := NewMerkleTree(data)
	root := tree.Root()
	proof := tree.Proof(0)

	require.False(t, VerifyMerkleProof(root, data[1].Hash(), proof, 0))
}

func TestMerkleProofRejectsAgainstZeroRoot(t *testing.T) {
	require.False(t, VerifyMerkleProof(common.Hash{}, common.Hash{0x01}, nil, 0))
}
