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
	"time"
)

var HashAddr = hashAddr

// SelectKey exposes ring-key based selection for tests that need to pin the
// key instead of deriving it from an address hash.
func (s *Selector) SelectKey(key uint64) []Candidate {
	return s.selectKey(key)
}

// RingKey returns the ring key an address hashes to.
func (s *Selector) RingKey(dst netip.Addr) uint64 {
	return uint64(hashAddr(dst.Unmap())) % s.ringSize
}

// SetNow replaces the store's time source.
func (s *Store) SetNow(now func() time.Time) {
	s.now = now
}

// Store exposes the service's underlying store.
func (s *Service) Store() *Store {
	return s.store
}
