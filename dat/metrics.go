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
	"github.com/prometheus/client_golang/prometheus"

	"github.com/meshproto/meshdat/pkg/metrics"
	"github.com/meshproto/meshdat/private/periodic"
)

// Metrics groups all metrics of the DAT subsystem. A nil *Metrics disables
// instrumentation entirely.
type Metrics struct {
	lookups      metrics.Counter // label: result
	updates      metrics.Counter // label: kind
	removed      metrics.Counter
	entries      metrics.Gauge
	replications metrics.Counter // label: result
	sends        metrics.Counter // label: result
	purgerEvents metrics.Counter // label: event_type
	purgerTime   metrics.Gauge
}

// NewMetrics creates the DAT metrics and registers them with the default
// prometheus registerer. It must be called at most once per process.
func NewMetrics() *Metrics {
	return &Metrics{
		lookups: metrics.NewPromCounterFrom(prometheus.CounterOpts{
			Namespace: "meshdat",
			Subsystem: "dat",
			Name:      "lookups_total",
			Help:      "Number of local table lookups, by result.",
		}, []string{"result"}),
		updates: metrics.NewPromCounterFrom(prometheus.CounterOpts{
			Namespace: "meshdat",
			Subsystem: "dat",
			Name:      "updates_total",
			Help:      "Number of observed mappings, by outcome.",
		}, []string{"kind"}),
		removed: metrics.NewPromCounterFrom(prometheus.CounterOpts{
			Namespace: "meshdat",
			Subsystem: "dat",
			Name:      "removed_entries_total",
			Help:      "Number of entries removed from the table.",
		}, nil),
		entries: metrics.NewPromGaugeFrom(prometheus.GaugeOpts{
			Namespace: "meshdat",
			Subsystem: "dat",
			Name:      "entries",
			Help:      "Number of entries currently cached.",
		}, nil),
		replications: metrics.NewPromCounterFrom(prometheus.CounterOpts{
			Namespace: "meshdat",
			Subsystem: "dat",
			Name:      "replications_total",
			Help:      "Number of replication operations, by result.",
		}, []string{"result"}),
		sends: metrics.NewPromCounterFrom(prometheus.CounterOpts{
			Namespace: "meshdat",
			Subsystem: "dat",
			Name:      "candidate_sends_total",
			Help:      "Number of per-candidate send attempts, by result.",
		}, []string{"result"}),
		purgerEvents: metrics.NewPromCounterFrom(prometheus.CounterOpts{
			Namespace: "meshdat",
			Subsystem: "dat",
			Name:      "purger_events_total",
			Help:      "Number of purger runner events, by type.",
		}, []string{"event_type"}),
		purgerTime: metrics.NewPromGaugeFrom(prometheus.GaugeOpts{
			Namespace: "meshdat",
			Subsystem: "dat",
			Name:      "purger_runtime_seconds",
			Help:      "Duration of the last purge sweep.",
		}, nil),
	}
}

func (m *Metrics) storeMetrics() StoreMetrics {
	if m == nil {
		return StoreMetrics{}
	}
	return StoreMetrics{
		Hits:      metrics.CounterWith(m.lookups, "result", "hit"),
		Misses:    metrics.CounterWith(m.lookups, "result", "miss"),
		New:       metrics.CounterWith(m.updates, "kind", "new"),
		Changed:   metrics.CounterWith(m.updates, "kind", "changed"),
		Refreshed: metrics.CounterWith(m.updates, "kind", "refreshed"),
		Removed:   m.removed,
		Entries:   m.entries,
	}
}

func (m *Metrics) replicatorMetrics() ReplicatorMetrics {
	if m == nil {
		return ReplicatorMetrics{}
	}
	return ReplicatorMetrics{
		Delivered:   metrics.CounterWith(m.replications, "result", "delivered"),
		Undelivered: metrics.CounterWith(m.replications, "result", "undelivered"),
		SendsOK:     metrics.CounterWith(m.sends, "result", "ok"),
		SendsNoHop:  metrics.CounterWith(m.sends, "result", "no_route"),
		SendsError:  metrics.CounterWith(m.sends, "result", "error"),
	}
}

func (m *Metrics) purgerMetrics() *periodic.Metrics {
	if m == nil {
		return nil
	}
	return &periodic.Metrics{
		Events: func(eventType string) metrics.Counter {
			return metrics.CounterWith(m.purgerEvents, "event_type", eventType)
		},
		Runtime: m.purgerTime,
	}
}
