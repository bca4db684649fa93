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

package gossip

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chaintutor/powchain/internal/ccrypto"
	"github.com/chaintutor/powchain/internal/chain"
	"github.com/chaintutor/powchain/internal/common"
	"github.com/chaintutor/powchain/internal/mempool"
	"github.com/chaintutor/powchain/internal/types"
)

// fakePeer records every message written to it.
type fakePeer struct {
	name string

	mu  sync.Mutex
	got []Message
}

func (p *fakePeer) Write(m Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, m)
}

func (p *fakePeer) String() string { return p.name }

func (p *fakePeer) messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Message(nil), p.got...)
}

// fakeBroadcaster records broadcasts, for tests that need to observe
// re-broadcast effects. It does not deliver them to any worker.
type fakeBroadcaster struct {
	mu  sync.Mutex
	got []Message
}

func (b *fakeBroadcaster) Broadcast(m Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.got = append(b.got, m)
}

func (b *fakeBroadcaster) messages() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Message(nil), b.got...)
}

// childBlock brute-forces a nonce so the returned block's hash actually
// satisfies difficulty against parent — handleBlocks rejects anything that
// doesn't, once the parent is known.
func childBlock(t *testing.T, parent *types.Block, seed uint32, difficulty common.Hash) *types.Block {
	t.Helper()
	for nonce := seed; ; nonce++ {
		hdr := &types.Header{
			Parent:     parent.Hash(),
			Nonce:      nonce,
			Difficulty: difficulty,
			Timestamp:  types.NewUint128(uint64(nonce)),
			MerkleRoot: types.MerkleRoot(nil),
		}
		b := &types.Block{Header: hdr, Data: nil}
		if b.Hash().LessOrEqual(difficulty) {
			return b
		}
	}
}

func newTestWorker(t *testing.T) (*Worker, *chain.Chain, *mempool.Mempool, *fakeBroadcaster) {
	t.Helper()
	c := chain.New()
	mp := mempool.New()
	bc := &fakeBroadcaster{}
	w := New(c, mp, bc, 2)
	return w, c, mp, bc
}

func TestHandleNewBlockHashesRepliesGetBlocksForUnknown(t *testing.T) {
	w, c, _, _ := newTestWorker(t)
	peer := &fakePeer{name: "p1"}
	unknown := common.BytesToHash([]byte{0x99})

	w.handle(NewBlockHashesMsg([]common.Hash{c.Tip(), unknown}), peer)

	msgs := peer.messages()
	require.Len(t, msgs, 1)
	require.Equal(t, KindGetBlocks, msgs[0].Kind)
	require.Equal(t, []common.Hash{unknown}, msgs[0].Hashes)
}

func TestHandleGetBlocksRepliesWithKnownBodies(t *testing.T) {
	w, c, _, _ := newTestWorker(t)
	peer := &fakePeer{name: "p1"}
	g, _ := c.Block(c.Tip())

	w.handle(NewGetBlocksMsg([]common.Hash{c.Tip()}), peer)

	msgs := peer.messages()
	require.Len(t, msgs, 1)
	require.Equal(t, KindBlocks, msgs[0].Kind)
	require.Len(t, msgs[0].Blocks, 1)
	require.Equal(t, g.Hash(), msgs[0].Blocks[0].Hash())
}

func TestHandleBlocksInsertsValidChildAndBroadcasts(t *testing.T) {
	w, c, _, bc := newTestWorker(t)
	g, _ := c.Block(c.Tip())
	child := childBlock(t, g, 1, chain.Difficulty)

	w.handleBlocks([]*types.Block{child})

	require.True(t, c.Has(child.Hash()))
	msgs := bc.messages()
	require.Len(t, msgs, 1)
	require.Equal(t, KindNewBlockHashes, msgs[0].Kind)
	require.Equal(t, []common.Hash{child.Hash()}, msgs[0].Hashes)
}

func TestHandleBlocksBuffersOrphanAndRequestsParent(t *testing.T) {
	w, c, _, bc := newTestWorker(t)
	g, _ := c.Block(c.Tip())
	missingParent := childBlock(t, g, 1, chain.Difficulty)
	orphan := childBlock(t, missingParent, 2, chain.Difficulty)

	w.handleBlocks([]*types.Block{orphan})

	require.False(t, c.Has(orphan.Hash()))
	msgs := bc.messages()
	require.Len(t, msgs, 1)
	require.Equal(t, KindGetBlocks, msgs[0].Kind)
	require.Equal(t, []common.Hash{missingParent.Hash()}, msgs[0].Hashes)
}

func TestHandleBlocksReinjectsBufferedOrphanOnceParentArrives(t *testing.T) {
	w, c, _, bc := newTestWorker(t)
	g, _ := c.Block(c.Tip())
	parent := childBlock(t, g, 1, chain.Difficulty)
	orphan := childBlock(t, parent, 2, chain.Difficulty)

	w.handleBlocks([]*types.Block{orphan})
	w.handleBlocks([]*types.Block{parent})

	msgs := bc.messages()
	var sawReinject bool
	for _, m := range msgs {
		if m.Kind == KindBlocks {
			for _, b := range m.Blocks {
				if b.Hash() == orphan.Hash() {
					sawReinject = true
				}
			}
		}
	}
	require.True(t, sawReinject, "expected orphan to be re-broadcast once its parent arrived")
}

func TestHandleTransactionsInsertsValidAndBroadcasts(t *testing.T) {
	w, _, mp, bc := newTestWorker(t)
	kp, err := ccrypto.GenerateKeyPair()
	require.NoError(t, err)
	tx := &types.Transaction{
		Sender:   ccrypto.AddressFromPubkey(kp.Public),
		Receiver: ccrypto.AddressFromPubkey(kp.Public),
		Value:    types.NewUint128(1),
		Nonce:    types.NewUint128(0),
	}
	st := types.Sign(tx, kp)

	w.handle(NewTransactionsMsg([]*types.SignedTransaction{st}), nil)

	require.True(t, mp.Has(st.Hash()))
	msgs := bc.messages()
	require.Len(t, msgs, 1)
	require.Equal(t, KindNewTransactionHashes, msgs[0].Kind)
}

func TestHandleTransactionsDropsInvalidSignature(t *testing.T) {
	w, _, mp, bc := newTestWorker(t)
	kp, err := ccrypto.GenerateKeyPair()
	require.NoError(t, err)
	tx := &types.Transaction{
		Sender:   ccrypto.AddressFromPubkey(kp.Public),
		Receiver: ccrypto.AddressFromPubkey(kp.Public),
		Value:    types.NewUint128(1),
		Nonce:    types.NewUint128(0),
	}
	st := types.Sign(tx, kp)
	st.Signature[0] ^= 0xff

	w.handle(NewTransactionsMsg([]*types.SignedTransaction{st}), nil)

	require.False(t, mp.Has(st.Hash()))
	require.Empty(t, bc.messages())
}

func TestHandlePingRepliesPong(t *testing.T) {
	w, _, _, _ := newTestWorker(t)
	peer := &fakePeer{name: "p1"}

	w.handle(NewPing(7), peer)

	msgs := peer.messages()
	require.Len(t, msgs, 1)
	require.Equal(t, KindPong, msgs[0].Kind)
	require.Equal(t, "7", msgs[0].PongText)
}

func TestRunDispatchesThroughPool(t *testing.T) {
	w, c, _, bc := newTestWorker(t)
	g, _ := c.Block(c.Tip())
	child := childBlock(t, g, 1, chain.Difficulty)

	in := make(chan Inbound, 1)
	done := make(chan struct{})
	go func() {
		w.Run(in)
		close(done)
	}()

	in <- Inbound{Raw: NewBlocksMsg([]*types.Block{child}).Encode()}
	close(in)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not drain and stop")
	}

	require.True(t, c.Has(child.Hash()))
	require.NotEmpty(t, bc.messages())
}
