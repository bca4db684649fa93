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

package txgen

import (
	"github.com/chaintutor/powchain/internal/common"
	"github.com/chaintutor/powchain/internal/gossip"
	"github.com/chaintutor/powchain/internal/mempool"
	"github.com/chaintutor/powchain/internal/powchainlog"
	"github.com/chaintutor/powchain/internal/types"
)

// Worker drains a Generator's output channel, inserting each transaction
// into the mempool and announcing it to the gossip broadcaster — the local
// analogue of a gossip peer receiving a freshly-seen transaction.
type Worker struct {
	mempool     *mempool.Mempool
	broadcaster gossip.Broadcaster
	log         powchainlog.Logger
}

// NewWorker builds a transaction-generator worker.
func NewWorker(mp *mempool.Mempool, b gossip.Broadcaster) *Worker {
	return &Worker{mempool: mp, broadcaster: b, log: powchainlog.New("component", "txgen-worker")}
}

// Run drains generated until it is closed.
func (w *Worker) Run(generated <-chan *types.SignedTransaction) {
	for st := range generated {
		if !w.mempool.InsertIfAbsent(st) {
			continue
		}
		hash := st.Hash()
		w.log.Debug("inserted generated transaction", "hash", hash)
		w.broadcaster.Broadcast(gossip.NewTransactionHashesMsg([]common.Hash{hash}))
	}
}
