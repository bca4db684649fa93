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

// Package gossip implements the node's seven-message inventory protocol: the
// message codec, the orphan-buffering block pipeline, and the worker pool
// that dispatches inbound peer messages.
package gossip

import (
	"encoding/binary"
	"fmt"

	"github.com/chaintutor/powchain/internal/common"
	"github.com/chaintutor/powchain/internal/types"
)

// Kind tags the seven message variants on the wire.
type Kind byte

const (
	KindPing Kind = iota + 1
	KindPong
	KindNewBlockHashes
	KindGetBlocks
	KindBlocks
	KindNewTransactionHashes
	KindGetTransactions
	KindTransactions
)

// Message is the tagged union of everything a peer can send or receive.
// Exactly one of the typed fields is meaningful, selected by Kind — the
// same shape as a Rust enum translated into Go's more explicit idiom.
type Message struct {
	Kind Kind

	PingNonce uint64
	PongText  string

	Hashes []common.Hash // NewBlockHashes / GetBlocks / NewTransactionHashes / GetTransactions

	Blocks []*types.Block

	Txs []*types.SignedTransaction
}

func NewPing(nonce uint64) Message            { return Message{Kind: KindPing, PingNonce: nonce} }
func NewPong(s string) Message                { return Message{Kind: KindPong, PongText: s} }
func NewBlockHashesMsg(h []common.Hash) Message {
	return Message{Kind: KindNewBlockHashes, Hashes: h}
}
func NewGetBlocksMsg(h []common.Hash) Message { return Message{Kind: KindGetBlocks, Hashes: h} }
func NewBlocksMsg(b []*types.Block) Message   { return Message{Kind: KindBlocks, Blocks: b} }
func NewTransactionHashesMsg(h []common.Hash) Message {
	return Message{Kind: KindNewTransactionHashes, Hashes: h}
}
func NewGetTransactionsMsg(h []common.Hash) Message {
	return Message{Kind: KindGetTransactions, Hashes: h}
}
func NewTransactionsMsg(t []*types.SignedTransaction) Message {
	return Message{Kind: KindTransactions, Txs: t}
}

// Encode serializes m into its canonical wire form: a one-byte kind tag
// followed by the kind-specific payload.
func (m Message) Encode() []byte {
	var buf []byte
	buf = append(buf, byte(m.Kind))
	switch m.Kind {
	case KindPing:
		buf = appendUint64(buf, m.PingNonce)
	case KindPong:
		buf = appendBytesLP(buf, []byte(m.PongText))
	case KindNewBlockHashes, KindGetBlocks, KindNewTransactionHashes, KindGetTransactions:
		buf = appendHashes(buf, m.Hashes)
	case KindBlocks:
		buf = appendUint32(buf, uint32(len(m.Blocks)))
		for _, b := range m.Blocks {
			buf = appendBytesLP(buf, b.Encode())
		}
	case KindTransactions:
		buf = appendUint32(buf, uint32(len(m.Txs)))
		for _, t := range m.Txs {
			buf = appendBytesLP(buf, t.Encode())
		}
	}
	return buf
}

// Decode parses a Message from its canonical wire form.
func Decode(raw []byte) (Message, error) {
	if len(raw) < 1 {
		return Message{}, fmt.Errorf("gossip: empty message")
	}
	kind := Kind(raw[0])
	rest := raw[1:]
	switch kind {
	case KindPing:
		v, _, err := readUint64(rest)
		return Message{Kind: kind, PingNonce: v}, err
	case KindPong:
		v, _, err := readBytesLP(rest)
		return Message{Kind: kind, PongText: string(v)}, err
	case KindNewBlockHashes, KindGetBlocks, KindNewTransactionHashes, KindGetTransactions:
		hs, _, err := readHashes(rest)
		return Message{Kind: kind, Hashes: hs}, err
	case KindBlocks:
		n, rest, err := readUint32(rest)
		if err != nil {
			return Message{}, err
		}
		blocks := make([]*types.Block, 0, n)
		for i := uint32(0); i < n; i++ {
			var bb []byte
			bb, rest, err = readBytesLP(rest)
			if err != nil {
				return Message{}, err
			}
			b, err := types.DecodeBlock(bb)
			if err != nil {
				return Message{}, err
			}
			blocks = append(blocks, b)
		}
		return Message{Kind: kind, Blocks: blocks}, nil
	case KindTransactions:
		n, rest, err := readUint32(rest)
		if err != nil {
			return Message{}, err
		}
		txs := make([]*types.SignedTransaction, 0, n)
		for i := uint32(0); i < n; i++ {
			var tb []byte
			tb, rest, err = readBytesLP(rest)
			if err != nil {
				return Message{}, err
			}
			st, err := types.DecodeSignedTransaction(tb)
			if err != nil {
				return Message{}, err
			}
			txs = append(txs, st)
		}
		return Message{Kind: kind, Txs: txs}, nil
	default:
		return Message{}, fmt.Errorf("gossip: unknown message kind %d", kind)
	}
}

func appendUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func appendUint64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

func appendBytesLP(buf []byte, p []byte) []byte {
	buf = appendUint32(buf, uint32(len(p)))
	return append(buf, p...)
}

func appendHashes(buf []byte, hs []common.Hash) []byte {
	buf = appendUint32(buf, uint32(len(hs)))
	for _, h := range hs {
		buf = append(buf, h[:]...)
	}
	return buf
}

func readUint32(b []byte) (uint32, []byte, error) {
	if len(b) < 4 {
		return 0, nil, types.ErrShortBuffer
	}
	return binary.BigEndian.Uint32(b[:4]), b[4:], nil
}

func readUint64(b []byte) (uint64, []byte, error) {
	if len(b) < 8 {
		return 0, nil, types.ErrShortBuffer
	}
	return binary.BigEndian.Uint64(b[:8]), b[8:], nil
}

func readBytesLP(b []byte) ([]byte, []byte, error) {
	n, rest, err := readUint32(b)
	if err != nil {
		return nil, nil, err
	}
	if len(rest) < int(n) {
		return nil, nil, types.ErrShortBuffer
	}
	return rest[:n], rest[n:], nil
}

func readHashes(b []byte) ([]common.Hash, []byte, error) {
	n, rest, err := readUint32(b)
	if err != nil {
		return nil, nil, err
	}
	hs := make([]common.Hash, 0, n)
	for i := uint32(0); i < n; i++ {
		if len(rest) < common.HashLength {
			return nil, nil, types.ErrShortBuffer
		}
		hs = append(hs, common.BytesToHash(rest[:common.HashLength]))
		rest = rest[common.HashLength:]
	}
	return hs, rest, nil
}
