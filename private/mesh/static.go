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

// Package mesh provides concrete topology and transport implementations for
// the distributed address table: a static node set whose next hops can be
// updated at runtime, and a unicast UDP transport.
package mesh

import (
	"net/netip"
	"sync/atomic"

	"github.com/meshproto/meshdat/dat"
	"github.com/meshproto/meshdat/pkg/private/serrors"
)

// NodeInfo describes one mesh node of a static topology. A zero NextHop
// means the node starts out unreachable.
type NodeInfo struct {
	ID          dat.NodeID
	RingAddress uint32
	NextHop     netip.AddrPort
}

// Static is a topology with a fixed membership. Next hops are swapped
// atomically, so lookups never block on routing updates.
type Static struct {
	byID  map[dat.NodeID]*staticNode
	nodes []dat.Node
}

// NewStatic builds a static topology from the given node set. Node
// identifiers must be unique.
func NewStatic(infos []NodeInfo) (*Static, error) {
	s := &Static{
		byID:  make(map[dat.NodeID]*staticNode, len(infos)),
		nodes: make([]dat.Node, 0, len(infos)),
	}
	for _, info := range infos {
		if _, ok := s.byID[info.ID]; ok {
			return nil, serrors.New("duplicate node", "id", info.ID)
		}
		n := &staticNode{id: info.ID, ring: info.RingAddress}
		if info.NextHop.IsValid() {
			hop := info.NextHop
			n.nextHop.Store(&hop)
		}
		s.byID[info.ID] = n
		s.nodes = append(s.nodes, n)
	}
	return s, nil
}

// Nodes returns a snapshot of the membership.
func (s *Static) Nodes() []dat.Node {
	out := make([]dat.Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// SetNextHop updates the next hop towards the given node.
func (s *Static) SetNextHop(id dat.NodeID, nextHop netip.AddrPort) error {
	n, ok := s.byID[id]
	if !ok {
		return serrors.New("unknown node", "id", id)
	}
	if !nextHop.IsValid() {
		return serrors.New("invalid next hop", "id", id, "next_hop", nextHop)
	}
	n.nextHop.Store(&nextHop)
	return nil
}

// ClearNextHop marks the given node as unreachable.
func (s *Static) ClearNextHop(id dat.NodeID) error {
	n, ok := s.byID[id]
	if !ok {
		return serrors.New("unknown node", "id", id)
	}
	n.nextHop.Store(nil)
	return nil
}

type staticNode struct {
	id      dat.NodeID
	ring    uint32
	nextHop atomic.Pointer[netip.AddrPort]
}

func (n *staticNode) ID() dat.NodeID      { return n.id }
func (n *staticNode) RingAddress() uint32 { return n.ring }

func (n *staticNode) NextHop() (netip.AddrPort, bool) {
	hop := n.nextHop.Load()
	if hop == nil {
		return netip.AddrPort{}, false
	}
	return *hop, true
}
