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

// Peer is the one operation the core needs from a single connected peer:
// deliver a message to it. The concrete implementation (framing,
// connection lifetime) lives entirely in the transport package;
// gossip only ever sees this interface, keeping the transport a true
// external collaborator per the spec's §6.
type Peer interface {
	Write(Message)
	String() string
}

// Broadcaster is the one operation the core needs from the transport as a
// whole: fan a message out to every currently connected peer.
type Broadcaster interface {
	Broadcast(Message)
}

// Inbound is a single (payload, sender) delivery off the wire, the shape the
// transport pushes onto the shared ingest channel the worker pool reads.
type Inbound struct {
	Raw  []byte
	From Peer
}
