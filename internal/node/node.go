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

// Package node wires the chain, mempool, miner, transaction generator,
// gossip worker, and transport into one running process — the local
// analogue of go-ethereum's node.Node lifecycle manager.
package node

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/chaintutor/powchain/internal/chain"
	"github.com/chaintutor/powchain/internal/config"
	"github.com/chaintutor/powchain/internal/gossip"
	"github.com/chaintutor/powchain/internal/mempool"
	"github.com/chaintutor/powchain/internal/miner"
	"github.com/chaintutor/powchain/internal/powchainlog"
	"github.com/chaintutor/powchain/internal/transport"
	"github.com/chaintutor/powchain/internal/txgen"
)

// Node owns every long-lived component of a running instance and the
// handles needed to drive their control planes after Start.
type Node struct {
	cfg config.Config
	log powchainlog.Logger

	Chain   *chain.Chain
	Mempool *mempool.Mempool

	Miner     miner.Handle
	TxGen     txgen.Handle
	server    *transport.Server
	gossip    *gossip.Worker
	minerCore *miner.Miner
	minerWork *miner.Worker
	gen       *txgen.Generator
	genWork   *txgen.Worker
	ingest    chan gossip.Inbound

	runMined     func()
	runGenerated func()
	runIngest    func()
}

// New constructs every component wired together per cfg but starts nothing.
func New(cfg config.Config) *Node {
	c := chain.New()
	mp := mempool.New()
	ingest := make(chan gossip.Inbound, 256)

	server := transport.NewServer(cfg.ListenAddr, ingest)
	gw := gossip.New(c, mp, server, cfg.GossipWorkers)

	minerCore, minerHandle, mined := miner.New(c, mp)
	minerWork := miner.NewWorker(c, server)

	gen, genHandle, generated := txgen.New()
	genWork := txgen.NewWorker(mp, server)

	n := &Node{
		cfg:       cfg,
		log:       powchainlog.New("component", "node"),
		Chain:     c,
		Mempool:   mp,
		Miner:     minerHandle,
		TxGen:     genHandle,
		server:    server,
		gossip:    gw,
		minerCore: minerCore,
		minerWork: minerWork,
		gen:       gen,
		genWork:   genWork,
		ingest:    ingest,
	}

	// The channels returned by miner.New and txgen.New are only consumed here, so
	// stash them via closures rather than extra struct fields.
	n.runMined = func() { minerWork.Run(mined) }
	n.runGenerated = func() { genWork.Run(generated) }
	n.runIngest = func() { gw.Run(ingest) }

	return n
}

// Start dials configured peers, then launches the inbound listener and every
// background worker under a single errgroup — the same supervised-lifecycle
// shape go-ethereum's node/lifecycle.go uses. Start returns as soon as the
// goroutines are launched, without waiting for the listener to bind; the
// returned context is canceled when any supervised goroutine exits (cleanly
// or not).
func (n *Node) Start(ctx context.Context) (context.Context, error) {
	for _, addr := range n.cfg.Peers {
		if err := n.server.Dial(addr); err != nil {
			n.log.Warn("failed to dial configured peer", "addr", addr, "err", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	// errgroup cancels gctx only on a non-nil error; runCtx is also canceled
	// when a supervised goroutine returns cleanly.
	runCtx, cancel := context.WithCancel(gctx)
	supervise := func(fn func() error) {
		g.Go(func() error {
			defer cancel()
			return fn()
		})
	}
	supervise(func() error { n.runIngest(); return nil })
	supervise(func() error { n.minerCore.Run(); return nil })
	supervise(func() error { n.runMined(); return nil })
	supervise(func() error { n.gen.Run(); return nil })
	supervise(func() error { n.runGenerated(); return nil })
	supervise(func() error { return n.server.ListenAndServe() })

	go func() {
		if err := g.Wait(); err != nil {
			n.log.Error("node worker exited", "err", err)
		}
	}()

	return runCtx, nil
}

// Stop asks the miner and transaction generator to shut down. The gossip
// worker and transport stop when their input channels/listeners close,
// which happens at process exit; this keeps Stop a quick, synchronous call
// suitable for a signal handler.
func (n *Node) Stop() {
	n.Miner.Exit()
	n.TxGen.Exit()
}
