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
	"net/netip"
)

const (
	// DefaultCandidates is the default number of candidates an address is
	// replicated to.
	DefaultCandidates = 3
	// DefaultRingSize is the default size of the candidate-selection ring.
	// It is independent of the store bucket count; ring positions and keys
	// live in this larger space.
	DefaultRingSize = 1 << 16
)

// Candidate is a node selected as responsible for an address, together with
// its ring distance from the key. Candidates are produced fresh by every
// selection and are not retained.
type Candidate struct {
	Node     Node
	Distance uint64
}

// Selector computes which nodes are responsible for an address. For a key k
// on the ring, the responsible nodes are the ones whose ring address most
// closely precedes k, reading the ring in increasing direction with
// wraparound. The rule is deliberately asymmetric: all mesh nodes must
// agree on the owners of an address without coordination, so the orientation
// of the ring is part of the protocol and must not be changed to a
// symmetric nearest-neighbor rule.
type Selector struct {
	topo       Topology
	ringSize   uint64
	candidates int
}

// NewSelector creates a selector that picks up to candidates nodes on a ring
// of the given size. Non-positive arguments fall back to the defaults.
func NewSelector(topo Topology, ringSize uint64, candidates int) *Selector {
	if ringSize < 2 {
		ringSize = DefaultRingSize
	}
	if candidates < 1 {
		candidates = DefaultCandidates
	}
	return &Selector{
		topo:       topo,
		ringSize:   ringSize,
		candidates: candidates,
	}
}

// Select returns the ordered set of candidates responsible for dst, nearest
// first. Fewer than the configured number are returned if the mesh has fewer
// live nodes; an empty topology yields an empty slice. Repeated calls with
// an unchanged node set return the same list.
func (s *Selector) Select(dst netip.Addr) []Candidate {
	key := uint64(hashAddr(dst.Unmap())) % s.ringSize
	return s.selectKey(key)
}

// selectKey enumerates the candidates for a ring key in increasing
// (distance, id) order. Each round scans the live node set once and picks
// the eligible node with the smallest ring distance; the distance chosen in
// a round becomes the lower bound of the next, and nodes already selected
// are skipped, so ring-address collisions yield each colliding node exactly
// once, ordered by identifier.
func (s *Selector) selectKey(key uint64) []Candidate {
	cands := make([]Candidate, 0, s.candidates)
	var floor uint64
	for len(cands) < s.candidates {
		best, ok := s.nextCandidate(key, floor, cands)
		if !ok {
			// No eligible node left; later rounds only get stricter.
			break
		}
		cands = append(cands, best)
		floor = best.Distance
	}
	return cands
}

// nextCandidate runs one selection round. The comparison and the capture of
// the node reference happen on the same snapshot element, so a node that
// disappears from the topology mid-scan is either fully considered or not
// at all.
func (s *Selector) nextCandidate(key, floor uint64, selected []Candidate) (Candidate, bool) {
	var best Node
	var bestDist uint64
	for _, node := range s.topo.Nodes() {
		if node == nil || alreadySelected(selected, node.ID()) {
			continue
		}
		dist := s.distance(node.RingAddress(), key)
		if dist < floor {
			continue
		}
		if best != nil {
			if dist > bestDist {
				continue
			}
			// Ring collision: the smaller identifier wins.
			if dist == bestDist && node.ID() >= best.ID() {
				continue
			}
		}
		best = node
		bestDist = dist
	}
	if best == nil {
		return Candidate{}, false
	}
	return Candidate{Node: best, Distance: bestDist}, true
}

// distance is the ring distance from a node towards the key, measured in
// the increasing direction with wraparound. A node whose ring address
// immediately precedes the key has distance close to zero.
func (s *Selector) distance(ringAddr uint32, key uint64) uint64 {
	return (s.ringSize - uint64(ringAddr)%s.ringSize + key) % s.ringSize
}

func alreadySelected(cands []Candidate, id NodeID) bool {
	for _, c := range cands {
		if c.Node.ID() == id {
			return true
		}
	}
	return false
}
