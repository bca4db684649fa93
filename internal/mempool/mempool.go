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

// Package mempool holds the node's pending signed-transaction pool: a
// lock-guarded map from transaction hash to signed transaction, filled by
// gossip ingest and the transaction generator, drained by the miner.
package mempool

import (
	"sync"

	"github.com/chaintutor/powchain/internal/common"
	"github.com/chaintutor/powchain/internal/types"
)

// Mempool is a concurrent hash-keyed transaction pool. No ordering is
// guaranteed across Scan calls; consumers (the miner) must tolerate
// arbitrary iteration order.
type Mempool struct {
	mu  sync.Mutex
	txs map[common.Hash]*types.SignedTransaction
}

// New returns an empty mempool.
func New() *Mempool {
	return &Mempool{txs: make(map[common.Hash]*types.SignedTransaction)}
}

// InsertIfAbsent adds st under its hash if not already present, reporting
// whether it inserted.
func (m *Mempool) InsertIfAbsent(st *types.SignedTransaction) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := st.Hash()
	if _, ok := m.txs[h]; ok {
		return false
	}
	m.txs[h] = st
	return true
}

// Remove deletes the transaction with the given hash, if present.
func (m *Mempool) Remove(hash common.Hash) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.txs, hash)
}

// RemoveAll deletes every transaction whose hash appears in hashes.
func (m *Mempool) RemoveAll(hashes []common.Hash) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range hashes {
		delete(m.txs, h)
	}
}

// Has reports whether hash is present in the pool.
func (m *Mempool) Has(hash common.Hash) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.txs[hash]
	return ok
}

// Get returns the transaction for hash, if present.
func (m *Mempool) Get(hash common.Hash) (*types.SignedTransaction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.txs[hash]
	return st, ok
}

// Len returns the number of pooled transactions.
func (m *Mempool) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.txs)
}

// Scan iterates the pool under lock, invoking fn(hash, st) for every entry in
// unspecified order; it removes nothing. fn must not call back into the Mempool. Used by the
// miner's mempool scan (§4.3 step 4): verify every entry's signature,
// collecting invalid ones for removal.
func (m *Mempool) Scan(fn func(common.Hash, *types.SignedTransaction)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for h, st := range m.txs {
		fn(h, st)
	}
}
