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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NewPromCounterFrom creates a prometheus counter vector registered with the
// default registerer, and wraps it as a Counter.
func NewPromCounterFrom(opts prometheus.CounterOpts, labelNames []string) Counter {
	return &counter{cv: promauto.NewCounterVec(opts, labelNames)}
}

// NewPromGaugeFrom creates a prometheus gauge vector registered with the
// default registerer, and wraps it as a Gauge.
func NewPromGaugeFrom(opts prometheus.GaugeOpts, labelNames []string) Gauge {
	return &gauge{gv: promauto.NewGaugeVec(opts, labelNames)}
}

// labelValuesSlice accumulates label values across With calls.
type labelValuesSlice []string

func (lvs labelValuesSlice) with(labelValues ...string) labelValuesSlice {
	if len(labelValues)%2 != 0 {
		labelValues = append(labelValues, "unknown")
	}
	result := make(labelValuesSlice, len(lvs), len(lvs)+len(labelValues))
	copy(result, lvs)
	return append(result, labelValues...)
}

func makeLabels(labelValues ...string) prometheus.Labels {
	labels := prometheus.Labels{}
	for i := 0; i+1 < len(labelValues); i += 2 {
		labels[labelValues[i]] = labelValues[i+1]
	}
	return labels
}

type counter struct {
	cv  *prometheus.CounterVec
	lvs labelValuesSlice
}

func (c *counter) With(labelValues ...string) Counter {
	return &counter{cv: c.cv, lvs: c.lvs.with(labelValues...)}
}

func (c *counter) Add(delta float64) {
	c.cv.With(makeLabels(c.lvs...)).Add(delta)
}

type gauge struct {
	gv  *prometheus.GaugeVec
	lvs labelValuesSlice
}

func (g *gauge) With(labelValues ...string) Gauge {
	return &gauge{gv: g.gv, lvs: g.lvs.with(labelValues...)}
}

func (g *gauge) Set(value float64) {
	g.gv.With(makeLabels(g.lvs...)).Set(value)
}

func (g *gauge) Add(delta float64) {
	g.gv.With(makeLabels(g.lvs...)).Add(delta)
}
