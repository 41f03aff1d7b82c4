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
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/meshproto/meshdat/pkg/log"
	"github.com/meshproto/meshdat/pkg/metrics"
)

// DefaultBuckets is the default number of store buckets.
const DefaultBuckets = 1024

// linkLen is the width of a link-layer address in bytes.
const linkLen = 6

// Entry is one cached address mapping. Entries returned by the store are
// copies; mutating them has no effect on the cache.
type Entry struct {
	// Addr is the network-layer address, the lookup key.
	Addr netip.Addr
	// Link is the best known link-layer address for Addr.
	Link net.HardwareAddr
	// LastUpdate is the time the mapping was last observed.
	LastUpdate time.Time
}

// storeEntry is the bucket-internal representation. The link address is held
// by value so that a copy taken under the read lock shares no memory with
// the bucket.
type storeEntry struct {
	link       [linkLen]byte
	lastUpdate time.Time
}

type bucket struct {
	mu      sync.RWMutex
	entries map[netip.Addr]storeEntry
}

// StoreMetrics contains the counters of a store. Any field may be nil.
type StoreMetrics struct {
	Hits      metrics.Counter
	Misses    metrics.Counter
	New       metrics.Counter
	Changed   metrics.Counter
	Refreshed metrics.Counter
	Removed   metrics.Counter
	Entries   metrics.Gauge
}

// Store is the local half of the distributed address table: a fixed array of
// independently locked buckets, each holding the mappings whose address
// hashes into it. Lookups and insertions on different buckets proceed fully
// in parallel; an entry is observed either fully formed or not at all.
type Store struct {
	buckets []bucket
	metrics StoreMetrics
	logger  log.Logger

	// now is replaced in tests to control entry aging.
	now func() time.Time
}

// NewStore creates a store with the given number of buckets; values below
// one fall back to DefaultBuckets.
func NewStore(buckets int, m StoreMetrics) *Store {
	if buckets < 1 {
		buckets = DefaultBuckets
	}
	s := &Store{
		buckets: make([]bucket, buckets),
		metrics: m,
		logger:  log.New("component", "dat.store"),
		now:     time.Now,
	}
	for i := range s.buckets {
		s.buckets[i].entries = make(map[netip.Addr]storeEntry)
	}
	return s
}

func (s *Store) bucketFor(addr netip.Addr) *bucket {
	return &s.buckets[int(hashAddr(addr)%uint32(len(s.buckets)))]
}

// Find returns a copy of the entry for addr, if one is cached. It is safe to
// call concurrently with insertions and removals in any bucket.
func (s *Store) Find(addr netip.Addr) (Entry, bool) {
	addr = addr.Unmap()
	b := s.bucketFor(addr)
	b.mu.RLock()
	e, ok := b.entries[addr]
	b.mu.RUnlock()
	if !ok {
		metrics.CounterInc(s.metrics.Misses)
		return Entry{}, false
	}
	metrics.CounterInc(s.metrics.Hits)
	return exportEntry(addr, e), true
}

// Upsert caches the mapping addr -> link. An existing entry has its link
// address rewritten only if it changed; the last-update time is refreshed
// either way. Link addresses that are not 48 bits wide are dropped silently;
// the mapping will be rediscovered by a later observation.
func (s *Store) Upsert(addr netip.Addr, link net.HardwareAddr) {
	if len(link) != linkLen {
		s.logger.Debug("Dropping mapping with bad link address",
			"addr", addr, "link", link)
		return
	}
	addr = addr.Unmap()
	var lk [linkLen]byte
	copy(lk[:], link)

	b := s.bucketFor(addr)
	now := s.now()
	b.mu.Lock()
	old, ok := b.entries[addr]
	var outcome string
	switch {
	case !ok:
		b.entries[addr] = storeEntry{link: lk, lastUpdate: now}
		outcome = "new"
	case old.link != lk:
		b.entries[addr] = storeEntry{link: lk, lastUpdate: now}
		outcome = "changed"
	default:
		old.lastUpdate = now
		b.entries[addr] = old
		outcome = "refreshed"
	}
	b.mu.Unlock()

	// Upsert sits on the per-packet observation path; skip building the
	// log fields unless debug output is actually on.
	debug := s.logger.Enabled(log.DebugLevel)
	switch outcome {
	case "new":
		metrics.CounterInc(s.metrics.New)
		metrics.GaugeAdd(s.metrics.Entries, 1)
		if debug {
			s.logger.Debug("New entry added", "addr", addr, "link", link)
		}
	case "changed":
		metrics.CounterInc(s.metrics.Changed)
		if debug {
			s.logger.Debug("Entry updated", "addr", addr, "link", link)
		}
	case "refreshed":
		metrics.CounterInc(s.metrics.Refreshed)
	}
}

// RemoveIf unlinks every entry for which pred holds and returns the number
// of removed entries. Buckets are swept one at a time under their write
// lock; readers of other buckets are unaffected.
func (s *Store) RemoveIf(pred func(Entry) bool) int {
	var removed int
	for i := range s.buckets {
		b := &s.buckets[i]
		b.mu.Lock()
		for addr, e := range b.entries {
			if pred(exportEntry(addr, e)) {
				delete(b.entries, addr)
				removed++
			}
		}
		b.mu.Unlock()
	}
	if removed > 0 {
		metrics.CounterAdd(s.metrics.Removed, float64(removed))
		metrics.GaugeAdd(s.metrics.Entries, -float64(removed))
	}
	return removed
}

// Expire removes all entries whose last update is older than timeout and
// returns the number of removed entries.
func (s *Store) Expire(timeout time.Duration) int {
	cutoff := s.now().Add(-timeout)
	return s.RemoveIf(func(e Entry) bool {
		return e.LastUpdate.Before(cutoff)
	})
}

// Flush unconditionally removes all entries. Called on teardown, after the
// purger is stopped.
func (s *Store) Flush() int {
	return s.RemoveIf(func(Entry) bool { return true })
}

// Entries returns a point-in-time snapshot of all cached mappings, in no
// particular order. The snapshot uses the same read discipline as Find and
// can run concurrently with any mutation.
func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, s.Len())
	for i := range s.buckets {
		b := &s.buckets[i]
		b.mu.RLock()
		for addr, e := range b.entries {
			out = append(out, exportEntry(addr, e))
		}
		b.mu.RUnlock()
	}
	return out
}

// Len returns the number of cached mappings.
func (s *Store) Len() int {
	var n int
	for i := range s.buckets {
		b := &s.buckets[i]
		b.mu.RLock()
		n += len(b.entries)
		b.mu.RUnlock()
	}
	return n
}

func exportEntry(addr netip.Addr, e storeEntry) Entry {
	link := e.link
	return Entry{
		Addr:       addr,
		Link:       net.HardwareAddr(link[:]),
		LastUpdate: e.lastUpdate,
	}
}
