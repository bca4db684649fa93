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

// Package transport is the only package that knows peers are websocket
// connections. It implements gossip.Peer and gossip.Broadcaster; gossip
// itself never imports this package, so the dependency only ever points
// outward.
package transport

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/chaintutor/powchain/internal/gossip"
	"github.com/chaintutor/powchain/internal/powchainlog"
)

// wsPeer wraps a single websocket connection as a gossip.Peer. Writes are
// serialized with a mutex because gorilla/websocket forbids concurrent
// writers on one connection.
type wsPeer struct {
	conn *websocket.Conn
	addr string

	mu sync.Mutex
}

func newPeer(conn *websocket.Conn) *wsPeer {
	return &wsPeer{conn: conn, addr: conn.RemoteAddr().String()}
}

// Write serializes m and sends it as a single binary frame.
func (p *wsPeer) Write(m gossip.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.conn.WriteMessage(websocket.BinaryMessage, m.Encode()); err != nil {
		powchainlog.Warn("peer write failed", "peer", p.addr, "err", err)
	}
}

func (p *wsPeer) String() string { return p.addr }

func (p *wsPeer) close() {
	_ = p.conn.Close()
}
