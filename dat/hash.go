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

// hashAddr computes the Jenkins one-at-a-time hash of the address bytes.
// The same function derives both the store bucket index and the ring key, so
// every node in the mesh maps an address to the same ring position. The
// address must be normalized (Unmap) by the caller; otherwise an IPv4
// address and its IPv4-in-IPv6 form would hash differently.
func hashAddr(addr netip.Addr) uint32 {
	var h uint32
	for _, b := range addr.AsSlice() {
		h += uint32(b)
		h += h << 10
		h ^= h >> 6
	}
	h += h << 3
	h ^= h >> 11
	h += h << 15
	return h
}
