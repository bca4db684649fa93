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

	"github.com/JekaMas/workerpool"

	"github.com/chaintutor/powchain/internal/chain"
	"github.com/chaintutor/powchain/internal/common"
	"github.com/chaintutor/powchain/internal/mempool"
	"github.com/chaintutor/powchain/internal/powchainlog"
	"github.com/chaintutor/powchain/internal/types"
)

// Worker is the gossip dispatcher: a pool of identical goroutines draining a
// single inbound-message channel, each applying the message contracts of
// §4.4 against the shared chain and mempool.
//
// The N identical worker goroutines are JekaMas/workerpool's fixed-size
// pool rather than a hand-rolled sync.WaitGroup fan-out — that library is
// already part of the teacher's own go.mod and is exactly "a pool of
// identical threads reading from a single channel".
type Worker struct {
	chain       *chain.Chain
	mempool     *mempool.Mempool
	broadcaster Broadcaster
	pool        *workerpool.WorkerPool
	log         powchainlog.Logger

	orphanMu sync.Mutex
	orphans  []*types.Block // unique by hash; an orphan is removed once its parent is inserted
}

// New builds a gossip worker with numWorkers goroutines in its pool.
func New(c *chain.Chain, mp *mempool.Mempool, b Broadcaster, numWorkers int) *Worker {
	return &Worker{
		chain:       c,
		mempool:     mp,
		broadcaster: b,
		pool:        workerpool.New(numWorkers),
		log:         powchainlog.New("component", "gossip"),
	}
}

// Run drains in until it is closed, dispatching each delivery to the
// worker pool. Run returns once in is closed and every in-flight task has
// drained.
func (w *Worker) Run(in <-chan Inbound) {
	for delivery := range in {
		delivery := delivery
		w.pool.Submit(func() {
			w.handleRaw(delivery)
		})
	}
	w.pool.StopWait()
}

func (w *Worker) handleRaw(delivery Inbound) {
	msg, err := Decode(delivery.Raw)
	if err != nil {
		w.log.Warn("dropping malformed message", "peer", delivery.From, "err", err)
		return
	}
	w.handle(msg, delivery.From)
}

func (w *Worker) handle(msg Message, from Peer) {
	switch msg.Kind {
	case KindPing:
		from.Write(NewPong(itoa(msg.PingNonce)))
	case KindPong:
		w.log.Debug("pong", "peer", from, "text", msg.PongText)
	case KindNewBlockHashes:
		w.handleNewBlockHashes(msg.Hashes, from)
	case KindGetBlocks:
		w.handleGetBlocks(msg.Hashes, from)
	case KindBlocks:
		w.handleBlocks(msg.Blocks)
	case KindNewTransactionHashes:
		w.handleNewTransactionHashes(msg.Hashes, from)
	case KindGetTransactions:
		w.handleGetTransactions(msg.Hashes, from)
	case KindTransactions:
		w.handleTransactions(msg.Txs)
	}
}

func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var b [20]byte
	i := len(b)
	for v > 0 {
		i--
		b[i] = byte('0' + v%10)
		v /= 10
	}
	return string(b[i:])
}

// handleNewBlockHashes replies GetBlocks with the subset of announced
// hashes this node does not already have.
func (w *Worker) handleNewBlockHashes(hashes []common.Hash, from Peer) {
	var unknown []common.Hash
	w.chain.WithLock(func(l *chain.Locked) {
		for _, h := range hashes {
			if !l.Has(h) {
				unknown = append(unknown, h)
			}
		}
	})
	if len(unknown) != 0 {
		from.Write(NewGetBlocksMsg(unknown))
	}
}

// handleGetBlocks replies Blocks with whichever requested bodies are
// present locally.
func (w *Worker) handleGetBlocks(hashes []common.Hash, from Peer) {
	var bodies []*types.Block
	w.chain.WithLock(func(l *chain.Locked) {
		for _, h := range hashes {
			if b, ok := l.Block(h); ok {
				bodies = append(bodies, b)
			}
		}
	})
	if len(bodies) != 0 {
		from.Write(NewBlocksMsg(bodies))
	}
}

// handleBlocks is the core of the block pipeline: validate-and-insert each
// delivered block under the chain lock, buffering orphans and re-injecting
// any orphan whose parent just arrived, then broadcast the batch of
// genuinely new hashes.
//
// The chain lock is acquired first and the mempool lock only ever taken
// strictly inside it (step 5, removing included transactions), matching the
// one permitted lock-ordering exception in §5.
func (w *Worker) handleBlocks(blocks []*types.Block) {
	var newBlocks []common.Hash
	var reinject []*types.Block

	w.chain.WithLock(func(l *chain.Locked) {
		for _, b := range blocks {
			hash := b.Hash()
			if l.Has(hash) {
				continue
			}
			parent, ok := l.Block(b.Header.Parent)
			if !ok {
				w.bufferOrphan(b)
				w.broadcaster.Broadcast(NewGetBlocksMsg([]common.Hash{b.Header.Parent}))
				continue
			}
			if !b.Hash().LessOrEqual(parent.Header.Difficulty) {
				w.log.Debug("dropping block failing proof of work", "hash", hash)
				continue
			}
			if b.Header.MerkleRoot != types.MerkleRoot(b.Data) {
				w.log.Debug("dropping block with mismatched merkle root", "hash", hash)
				continue
			}
			valid := true
			for _, st := range b.Data {
				if !st.VerifySignature() {
					valid = false
					break
				}
			}
			if !valid {
				w.log.Debug("dropping block with invalid transaction signature", "hash", hash)
				continue
			}

			var included []common.Hash
			for _, st := range b.Data {
				included = append(included, st.Hash())
			}
			w.mempool.RemoveAll(included)

			l.Insert(b)
			newBlocks = append(newBlocks, hash)

			reinject = append(reinject, w.popOrphansParentedBy(hash)...)
		}
	})

	for _, orphan := range reinject {
		// The orphan's parent is now known; re-entering it through the
		// normal pipeline (rather than inserting it directly here) keeps a
		// single code path responsible for validation.
		w.broadcaster.Broadcast(NewBlocksMsg([]*types.Block{orphan}))
	}

	if len(newBlocks) != 0 {
		w.broadcaster.Broadcast(NewBlockHashesMsg(newBlocks))
	}
}

func (w *Worker) bufferOrphan(b *types.Block) {
	w.orphanMu.Lock()
	defer w.orphanMu.Unlock()
	hash := b.Hash()
	for _, o := range w.orphans {
		if o.Hash() == hash {
			return // unique by hash
		}
	}
	w.orphans = append(w.orphans, b)
}

func (w *Worker) popOrphansParentedBy(parent common.Hash) []*types.Block {
	w.orphanMu.Lock()
	defer w.orphanMu.Unlock()
	var matched []*types.Block
	var remaining []*types.Block
	for _, o := range w.orphans {
		if o.Header.Parent == parent {
			matched = append(matched, o)
		} else {
			remaining = append(remaining, o)
		}
	}
	w.orphans = remaining
	return matched
}

func (w *Worker) handleNewTransactionHashes(hashes []common.Hash, from Peer) {
	var unknown []common.Hash
	for _, h := range hashes {
		if !w.mempool.Has(h) {
			unknown = append(unknown, h)
		}
	}
	if len(unknown) != 0 {
		from.Write(NewGetTransactionsMsg(unknown))
	}
}

func (w *Worker) handleGetTransactions(hashes []common.Hash, from Peer) {
	var bodies []*types.SignedTransaction
	for _, h := range hashes {
		if st, ok := w.mempool.Get(h); ok {
			bodies = append(bodies, st)
		}
	}
	if len(bodies) != 0 {
		from.Write(NewTransactionsMsg(bodies))
	}
}

func (w *Worker) handleTransactions(txs []*types.SignedTransaction) {
	var fresh []common.Hash
	for _, st := range txs {
		if !st.VerifySignature() {
			w.mempool.Remove(st.Hash())
			continue
		}
		if w.mempool.InsertIfAbsent(st) {
			fresh = append(fresh, st.Hash())
		}
	}
	if len(fresh) != 0 {
		w.broadcaster.Broadcast(NewTransactionHashesMsg(fresh))
	}
}
