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
	"net"
	"net/netip"
	"time"

	"github.com/meshproto/meshdat/pkg/log"
	"github.com/meshproto/meshdat/pkg/private/serrors"
	"github.com/meshproto/meshdat/private/periodic"
)

const (
	// DefaultEntryTimeout is how long an unrefreshed mapping stays cached.
	DefaultEntryTimeout = 5 * time.Minute
	// DefaultPurgeInterval is the period of the purge sweep.
	DefaultPurgeInterval = 10 * time.Second
	// maxRingSize bounds the ring so that distance arithmetic cannot wrap
	// around uint64. Ring addresses are 32 bits wide, larger rings would
	// leave most of the key space without a predecessor anyway.
	maxRingSize = 1 << 32
)

// Config are the tunables of the DAT subsystem.
type Config struct {
	// Buckets is the number of store buckets, fixed at construction.
	Buckets int
	// EntryTimeout is the age at which an unrefreshed entry is purged.
	EntryTimeout time.Duration
	// PurgeInterval is the period of the purge sweep.
	PurgeInterval time.Duration
	// Candidates is the number of nodes an address is replicated to.
	Candidates int
	// RingSize is the size of the candidate-selection ring.
	RingSize uint64
}

func (cfg *Config) InitDefaults() {
	if cfg.Buckets == 0 {
		cfg.Buckets = DefaultBuckets
	}
	if cfg.EntryTimeout == 0 {
		cfg.EntryTimeout = DefaultEntryTimeout
	}
	if cfg.PurgeInterval == 0 {
		cfg.PurgeInterval = DefaultPurgeInterval
	}
	if cfg.Candidates == 0 {
		cfg.Candidates = DefaultCandidates
	}
	if cfg.RingSize == 0 {
		cfg.RingSize = DefaultRingSize
	}
}

func (cfg *Config) Validate() error {
	if cfg.Buckets < 1 {
		return serrors.New("bucket count must be positive", "buckets", cfg.Buckets)
	}
	if cfg.EntryTimeout <= 0 {
		return serrors.New("entry timeout must be positive", "timeout", cfg.EntryTimeout)
	}
	if cfg.PurgeInterval <= 0 {
		return serrors.New("purge interval must be positive", "interval", cfg.PurgeInterval)
	}
	if cfg.Candidates < 1 {
		return serrors.New("candidate count must be positive", "candidates", cfg.Candidates)
	}
	if cfg.RingSize < 2 {
		return serrors.New("ring size too small", "ring_size", cfg.RingSize)
	}
	if cfg.RingSize > maxRingSize {
		return serrors.New("ring size too large",
			"ring_size", cfg.RingSize, "max", uint64(maxRingSize))
	}
	return nil
}

// Service bundles the store, the selector, the replicator and the purge
// runner of one mesh interface. The topology and transport collaborators
// are injected; the service holds no ambient global state.
type Service struct {
	cfg        Config
	store      *Store
	selector   *Selector
	replicator *Replicator
	purger     *periodic.Runner
}

// New creates the DAT service and starts its purge runner. The caller must
// Close the service to stop the runner and flush the table. m may be nil to
// disable instrumentation.
func New(cfg Config, topo Topology, transport Transport, m *Metrics) (*Service, error) {
	cfg.InitDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, serrors.Wrap("validating DAT config", err)
	}
	store := NewStore(cfg.Buckets, m.storeMetrics())
	selector := NewSelector(topo, cfg.RingSize, cfg.Candidates)
	s := &Service{
		cfg:        cfg,
		store:      store,
		selector:   selector,
		replicator: NewReplicator(selector, transport, m.replicatorMetrics()),
	}
	s.purger = periodic.StartWithMetrics(
		&purger{store: store, timeout: cfg.EntryTimeout},
		m.purgerMetrics(),
		cfg.PurgeInterval,
		cfg.PurgeInterval,
	)
	return s, nil
}

// Close stops the purge runner and flushes the table. The runner is stopped
// first, so no sweep can run against the flushed store.
func (s *Service) Close() {
	s.purger.Stop()
	s.store.Flush()
}

// Lookup returns the cached mapping for addr, if any.
func (s *Service) Lookup(addr netip.Addr) (Entry, bool) {
	return s.store.Find(addr)
}

// Observe records an observed mapping from mesh traffic.
func (s *Service) Observe(addr netip.Addr, link net.HardwareAddr) {
	s.store.Upsert(addr, link)
}

// Replicate pushes payload to the candidates responsible for dst. See
// Replicator.Replicate.
func (s *Service) Replicate(
	ctx context.Context,
	payload []byte,
	dst netip.Addr,
	kind MessageKind,
) bool {
	return s.replicator.Replicate(ctx, payload, dst, kind)
}

// Candidates returns the nodes currently responsible for dst.
func (s *Service) Candidates(dst netip.Addr) []Candidate {
	return s.selector.Select(dst)
}

// Snapshot returns a copy of all cached mappings for diagnostics.
func (s *Service) Snapshot() []Entry {
	return s.store.Entries()
}

// TriggerPurge forces a purge sweep outside the regular period.
func (s *Service) TriggerPurge() {
	s.purger.TriggerRun()
}

// purger is the periodic task that evicts stale entries.
type purger struct {
	store   *Store
	timeout time.Duration
}

func (p *purger) Name() string {
	return "dat.purger"
}

func (p *purger) Run(ctx context.Context) {
	if removed := p.store.Expire(p.timeout); removed > 0 {
		log.FromCtx(ctx).Debug("Purged stale entries", "count", removed)
	}
}
