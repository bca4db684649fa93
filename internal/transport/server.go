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

package transport

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/chaintutor/powchain/internal/gossip"
	"github.com/chaintutor/powchain/internal/powchainlog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Gossip peers are other nodes, not browsers; origin checking exists for
	// browser CSRF-style protection and doesn't apply here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server accepts inbound websocket peers and dials outbound ones, pushing
// the raw bytes of every binary frame onto a shared ingest channel for the
// gossip worker pool to decode and consume, and fanning outbound broadcasts to every live peer. It
// implements gossip.Broadcaster.
type Server struct {
	listenAddr string
	in         chan<- gossip.Inbound
	log        powchainlog.Logger

	mu    sync.Mutex
	peers map[*wsPeer]struct{}
}

// NewServer builds a Server listening on listenAddr (host:port) that
// delivers every inbound frame on in. in is typically the channel the
// gossip.Worker's Run reads from.
func NewServer(listenAddr string, in chan<- gossip.Inbound) *Server {
	return &Server{
		listenAddr: listenAddr,
		in:         in,
		log:        powchainlog.New("component", "transport"),
		peers:      make(map[*wsPeer]struct{}),
	}
}

// ListenAndServe blocks serving inbound peer connections until the process
// is killed or the listener errors.
func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleUpgrade)
	s.log.Info("listening for peers", "addr", s.listenAddr)
	return http.ListenAndServe(s.listenAddr, mux)
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", "err", err)
		return
	}
	s.adopt(conn)
}

// Dial connects out to a peer at addr ("host:port") and adopts the
// resulting connection exactly as an inbound one.
func (s *Server) Dial(addr string) error {
	url := "ws://" + addr + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return err
	}
	s.adopt(conn)
	return nil
}

func (s *Server) adopt(conn *websocket.Conn) {
	p := newPeer(conn)
	s.mu.Lock()
	s.peers[p] = struct{}{}
	s.mu.Unlock()
	s.log.Info("peer connected", "peer", p.addr)
	go s.readLoop(p)
}

func (s *Server) readLoop(p *wsPeer) {
	defer s.drop(p)
	for {
		kind, data, err := p.conn.ReadMessage()
		if err != nil {
			s.log.Debug("peer read ended", "peer", p.addr, "err", err)
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		s.in <- gossip.Inbound{Raw: data, From: p}
	}
}

func (s *Server) drop(p *wsPeer) {
	s.mu.Lock()
	delete(s.peers, p)
	s.mu.Unlock()
	p.close()
	s.log.Info("peer disconnected", "peer", p.addr)
}

// Broadcast fans m out to every currently connected peer.
func (s *Server) Broadcast(m gossip.Message) {
	s.mu.Lock()
	targets := make([]*wsPeer, 0, len(s.peers))
	for p := range s.peers {
		targets = append(targets, p)
	}
	s.mu.Unlock()
	for _, p := range targets {
		p.Write(m)
	}
}
