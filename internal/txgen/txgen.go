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

// Package txgen is the synthetic transaction generator: external to the
// node's core per spec §1, but given a first-class home here (supplemented
// from original_source/src/txgenerator) so the repository has a default
// load source feeding the mempool.
package txgen

import (
	"time"

	"github.com/chaintutor/powchain/internal/ccrypto"
	"github.com/chaintutor/powchain/internal/powchainlog"
	"github.com/chaintutor/powchain/internal/types"
)

// pacingScale matches original_source/src/txgenerator/mod.rs's constant: the
// control-plane theta parameter is scaled to a millisecond sleep so that
// small theta values still yield a human-observable pace.
const pacingScale = 30 * time.Millisecond

type controlKind int

const (
	sigStart controlKind = iota
	sigUpdate
	sigExit
)

type controlSignal struct {
	kind  controlKind
	theta uint64
}

// Handle drives the generator's control plane, mirroring miner.Handle.
type Handle struct {
	control chan controlSignal
}

func (h Handle) Start(theta uint64) { h.control <- controlSignal{kind: sigStart, theta: theta} }
func (h Handle) Update()            { h.control <- controlSignal{kind: sigUpdate} }
func (h Handle) Exit()              { h.control <- controlSignal{kind: sigExit} }

// Generator emits fresh, zero-value signed transactions onto its output
// channel while Running.
type Generator struct {
	control chan controlSignal
	out     chan *types.SignedTransaction
	log     powchainlog.Logger
}

// New builds a paused Generator. Run the returned Generator in its own
// goroutine; drain the returned channel with a Worker (see worker.go).
func New() (*Generator, Handle, <-chan *types.SignedTransaction) {
	control := make(chan controlSignal)
	out := make(chan *types.SignedTransaction)
	g := &Generator{control: control, out: out, log: powchainlog.New("component", "txgen")}
	return g, Handle{control: control}, out
}

// Run executes the generator loop until Exit is received.
func (g *Generator) Run() {
	paused := true
	var theta uint64

	for {
		if paused {
			sig := <-g.control
			switch sig.kind {
			case sigExit:
				g.log.Info("transaction generator shutting down")
				return
			case sigStart:
				g.log.Info("transaction generator starting", "theta", sig.theta)
				paused = false
				theta = sig.theta
			case sigUpdate:
				// paused: nothing to update
			}
			continue
		}

		select {
		case sig := <-g.control:
			switch sig.kind {
			case sigExit:
				g.log.Info("transaction generator shutting down")
				return
			case sigStart:
				theta = sig.theta
			case sigUpdate:
				// no per-tick state to resync
			}
		default:
		}

		st, err := generateOne()
		if err != nil {
			g.log.Warn("failed to generate synthetic transaction", "err", err)
			continue
		}
		// Keep watching the control channel while the output is not being
		// drained, so Exit is honored; the pending transaction is dropped.
		select {
		case g.out <- st:
		case sig := <-g.control:
			switch sig.kind {
			case sigExit:
				g.log.Info("transaction generator shutting down")
				return
			case sigStart:
				theta = sig.theta
			case sigUpdate:
			}
		}

		if theta != 0 {
			time.Sleep(time.Duration(theta) * pacingScale)
		}
	}
}

// generateOne builds a zero-value, zero-nonce transaction between two fresh
// keypairs, signed by the sender — the default policy from spec §6.
func generateOne() (*types.SignedTransaction, error) {
	senderKey, err := ccrypto.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	receiverKey, err := ccrypto.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	tx := &types.Transaction{
		Sender:   ccrypto.AddressFromPubkey(senderKey.Public),
		Receiver: ccrypto.AddressFromPubkey(receiverKey.Public),
		Value:    types.NewUint128(0),
		Nonce:    types.NewUint128(0),
	}
	return types.Sign(tx, senderKey), nil
}
