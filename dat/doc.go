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

// Package dat implements the distributed address table: a replicated,
// self-organizing cache that maps network-layer addresses to link-layer
// addresses inside a mesh.
//
// The table has two halves. The local half is a concurrent, bucketized
// store of observed address mappings with time-based expiry, swept by a
// periodic purger. The distributed half selects, for any given address, the
// small set of mesh nodes responsible for storing and answering lookups of
// that address, using consistent hashing on a ring, and replicates
// resolution messages to them on a best-effort basis.
//
// The mesh topology and the message transport are collaborators injected at
// construction time; the package itself never does neighbor discovery or
// I/O beyond handing messages to the transport.
package dat
