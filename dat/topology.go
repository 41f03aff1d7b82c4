// Copyright 2026 The MeshDAT Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dat

import (
	"context"
	"fmt"
	"net/netip"
)

// NodeID is the stable identifier of a mesh node. It doubles as the
// tie-break key during candidate selection: on equal ring distance the
// numerically smaller identifier wins.
type NodeID uint64

func (id NodeID) String() string {
	return fmt.Sprintf("%#016x", uint64(id))
}

// Node is a mesh participant as exposed by the topology subsystem. The
// underlying node is owned by the topology; implementations must be safe for
// concurrent use, and the next hop may change between calls.
type Node interface {
	// ID returns the stable node identifier.
	ID() NodeID
	// RingAddress returns the node's position on the candidate-selection
	// ring. Positions are assigned by the topology subsystem.
	RingAddress() uint32
	// NextHop returns the current best next hop towards the node. The
	// second return value is false if the node is unreachable right now.
	NextHop() (netip.AddrPort, bool)
}

// Topology supplies the live set of mesh nodes. Nodes returns a snapshot
// that is safe to iterate while the membership changes; the snapshot may be
// stale by the time it is used.
type Topology interface {
	Nodes() []Node
}

// MessageKind tags a replicated message with its purpose.
type MessageKind uint8

const (
	// KindGet asks the receiving candidate to answer a lookup.
	KindGet MessageKind = iota
	// KindPut pushes an observed mapping to the receiving candidate.
	KindPut
)

func (k MessageKind) String() string {
	switch k {
	case KindGet:
		return "get"
	case KindPut:
		return "put"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Message is a payload tagged with its kind, addressed to a candidate.
type Message struct {
	Kind    MessageKind
	Payload []byte
}

// Transport delivers a message to a neighboring node. Sends are at-most-once
// and must not retry; an error means this particular delivery failed, the
// caller decides how to aggregate.
type Transport interface {
	Send(ctx context.Context, msg Message, nextHop netip.AddrPort) error
}
