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

// Package miner implements the proof-of-work search loop: a control-plane
// state machine (Paused/Running/ShutDown) driving a mempool-scanning block
// assembler.
package miner

import (
	"math/rand"
	"sync"
	"time"

	"github.com/chaintutor/powchain/internal/chain"
	"github.com/chaintutor/powchain/internal/common"
	"github.com/chaintutor/powchain/internal/mempool"
	"github.com/chaintutor/powchain/internal/powchainlog"
	"github.com/chaintutor/powchain/internal/types"
)

// TransactionCap is the maximum number of mempool entries included in a
// single candidate block (spec §6 constant).
const TransactionCap = 42

// controlSignal is the miner's single-producer-safe control message.
type controlSignal struct {
	kind controlKind
	lambda uint64
}

type controlKind int

const (
	sigStart controlKind = iota
	sigUpdate
	sigExit
)

// operatingState is the miner's control-plane state.
type operatingState int

const (
	statePaused operatingState = iota
	stateRunning
	stateShutDown
)

// Handle lets any goroutine drive the miner's control plane. It is safe to
// share across goroutines and to clone by value.
type Handle struct {
	control chan controlSignal
}

// Start transitions the miner into Running(lambda): lambda microseconds of
// sleep between PoW attempts, or 0 to mine as fast as possible.
func (h Handle) Start(lambda uint64) { h.control <- controlSignal{kind: sigStart, lambda: lambda} }

// Update asks a Running miner to re-snapshot the chain tip on its next
// iteration — used after an externally observed chain change.
func (h Handle) Update() { h.control <- controlSignal{kind: sigUpdate} }

// Exit asks the miner to shut down. The control channel is the miner's
// single-producer-safe channel; closing or dropping it without sending Exit
// is a programming error, matching the spec's "fatal" disconnection policy.
func (h Handle) Exit() { h.control <- controlSignal{kind: sigExit} }

// Miner owns the PoW search loop. Construct with New, then run Run in its
// own goroutine.
type Miner struct {
	chain   *chain.Chain
	mempool *mempool.Mempool
	control chan controlSignal
	mined   chan *types.Block
	log     powchainlog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New builds a miner over the given chain and mempool, paused until Handle.Start
// is called. The returned channel delivers every block the miner finds; a
// mined-block Worker (see worker.go) is expected to drain it.
func New(c *chain.Chain, mp *mempool.Mempool) (*Miner, Handle, <-chan *types.Block) {
	control := make(chan controlSignal)
	mined := make(chan *types.Block)
	m := &Miner{
		chain:   c,
		mempool: mp,
		control: control,
		mined:   mined,
		log:     powchainlog.New("component", "miner"),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	return m, Handle{control: control}, mined
}

// Run executes the mining loop. It never returns except after Exit, so
// callers run it in its own goroutine.
func (m *Miner) Run() {
	state := statePaused
	var lambda uint64
	parent := m.chain.Tip()

	for {
		switch state {
		case statePaused:
			sig := <-m.control
			switch sig.kind {
			case sigExit:
				m.log.Info("miner shutting down")
				state = stateShutDown
			case sigStart:
				m.log.Info("miner starting", "lambda", sig.lambda)
				state = stateRunning
				lambda = sig.lambda
			case sigUpdate:
				// paused: nothing to update
			}
			continue
		case stateShutDown:
			return
		default: // stateRunning
			select {
			case sig := <-m.control:
				switch sig.kind {
				case sigExit:
					m.log.Info("miner shutting down")
					state = stateShutDown
				case sigStart:
					state = stateRunning
					lambda = sig.lambda
				case sigUpdate:
					parent = m.chain.Tip()
				}
			default:
				// non-blocking drain: nothing pending, proceed to mine
			}
		}
		if state == stateShutDown {
			return
		}

		if minedHash, ok := m.tryMineOne(parent); ok {
			// The mined-block worker hasn't necessarily inserted this block
			// yet (it runs in its own goroutine) — continue the search
			// from our own just-emitted hash rather than re-reading the
			// chain tip, so a lambda=0 miner keeps a continuous chain.
			parent = minedHash
		}

		if state == stateRunning && lambda != 0 {
			time.Sleep(time.Duration(lambda) * time.Microsecond)
		}
	}
}

// tryMineOne assembles one candidate block on top of parent and, if it
// satisfies the proof-of-work target, emits it on the mined channel. It
// returns the mined block's hash and true if a block was emitted.
func (m *Miner) tryMineOne(parent common.Hash) (common.Hash, bool) {
	nonce := m.nextNonce()
	timestamp := uint64(time.Now().UnixMilli())

	included, includedHashes, invalid := m.scanMempool()
	m.mempool.RemoveAll(invalid)

	header := &types.Header{
		Parent:     parent,
		Nonce:      nonce,
		Difficulty: chain.Difficulty,
		Timestamp:  types.NewUint128(timestamp),
		MerkleRoot: types.MerkleRoot(included),
	}
	block := &types.Block{Header: header, Data: included}

	if !block.Hash().LessOrEqual(chain.Difficulty) {
		return common.Hash{}, false
	}

	m.mempool.RemoveAll(includedHashes)
	m.mined <- block
	return block.Hash(), true
}

// scanMempool verifies every pooled transaction's signature, returning up to
// TransactionCap valid entries (and their hashes, for post-mine removal) plus
// the hashes of every signature-invalid entry found, per spec §4.3 step 4.
func (m *Miner) scanMempool() (included []*types.SignedTransaction, includedHashes, invalid []common.Hash) {
	m.mempool.Scan(func(h common.Hash, st *types.SignedTransaction) {
		if !st.VerifySignature() {
			invalid = append(invalid, h)
			return
		}
		if len(included) >= TransactionCap {
			return
		}
		included = append(included, st)
		includedHashes = append(includedHashes, h)
	})
	return included, includedHashes, invalid
}

func (m *Miner) nextNonce() uint32 {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return m.rng.Uint32()
}
