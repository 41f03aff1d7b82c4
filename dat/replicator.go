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
	"net/netip"
	"slices"

	"github.com/meshproto/meshdat/pkg/log"
	"github.com/meshproto/meshdat/pkg/metrics"
)

// ReplicatorMetrics contains the counters of a replicator. Any field may be
// nil.
type ReplicatorMetrics struct {
	Delivered   metrics.Counter
	Undelivered metrics.Counter
	SendsOK     metrics.Counter
	SendsNoHop  metrics.Counter
	SendsError  metrics.Counter
}

// Replicator pushes messages to the candidates responsible for an address.
type Replicator struct {
	selector  *Selector
	transport Transport
	metrics   ReplicatorMetrics
}

// NewReplicator creates a replicator that delivers through the given
// transport to candidates chosen by the given selector.
func NewReplicator(selector *Selector, transport Transport, m ReplicatorMetrics) *Replicator {
	return &Replicator{
		selector:  selector,
		transport: transport,
		metrics:   m,
	}
}

// Replicate sends payload, tagged with kind, to every candidate responsible
// for dst. Candidates without a current next hop are skipped and a failed
// send to one candidate never aborts the attempts on the others. The result
// is true if at least one candidate accepted the message for transmission;
// callers fall back to a broader resolution strategy on false.
func (r *Replicator) Replicate(
	ctx context.Context,
	payload []byte,
	dst netip.Addr,
	kind MessageKind,
) bool {
	logger := log.FromCtx(ctx)
	delivered := false
	for _, cand := range r.selector.Select(dst) {
		nextHop, ok := cand.Node.NextHop()
		if !ok {
			metrics.CounterInc(r.metrics.SendsNoHop)
			logger.Debug("Skipping candidate without route",
				"node", cand.Node.ID(), "dst", dst)
			continue
		}
		// Each candidate gets its own copy; the transport is free to
		// retain or mutate the buffer it is handed.
		msg := Message{Kind: kind, Payload: slices.Clone(payload)}
		if err := r.transport.Send(ctx, msg, nextHop); err != nil {
			metrics.CounterInc(r.metrics.SendsError)
			logger.Debug("Send to candidate failed",
				"node", cand.Node.ID(), "next_hop", nextHop, "err", err)
			continue
		}
		metrics.CounterInc(r.metrics.SendsOK)
		delivered = true
	}
	if delivered {
		metrics.CounterInc(r.metrics.Delivered)
	} else {
		metrics.CounterInc(r.metrics.Undelivered)
	}
	return delivered
}
