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

package miner

import (
	"github.com/chaintutor/powchain/internal/chain"
	"github.com/chaintutor/powchain/internal/common"
	"github.com/chaintutor/powchain/internal/gossip"
	"github.com/chaintutor/powchain/internal/powchainlog"
	"github.com/chaintutor/powchain/internal/types"
)

// Worker drains the miner's mined-block channel, inserting each accepted
// block into the chain store and announcing it to the gossip broadcaster.
// It is the local analogue of a gossip peer receiving a self-mined block.
type Worker struct {
	chain       *chain.Chain
	broadcaster gossip.Broadcaster
	log         powchainlog.Logger
}

// NewWorker builds a mined-block worker.
func NewWorker(c *chain.Chain, b gossip.Broadcaster) *Worker {
	return &Worker{chain: c, broadcaster: b, log: powchainlog.New("component", "miner-worker")}
}

// Run drains mined until it is closed, inserting each block and broadcasting
// its hash.
func (w *Worker) Run(mined <-chan *types.Block) {
	for b := range mined {
		hash := w.chain.Insert(b)
		w.log.Info("inserted mined block", "hash", hash, "tip", w.chain.Tip())
		w.broadcaster.Broadcast(gossip.NewBlockHashesMsg([]common.Hash{hash}))
	}
}
