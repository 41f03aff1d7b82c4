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

package main

import (
	"io"
	"net/netip"

	"github.com/meshproto/meshdat/dat"
	datconfig "github.com/meshproto/meshdat/dat/config"
	"github.com/meshproto/meshdat/pkg/log"
	"github.com/meshproto/meshdat/pkg/private/serrors"
	"github.com/meshproto/meshdat/private/config"
	"github.com/meshproto/meshdat/private/mesh"
)

const defaultTransportAddr = "0.0.0.0:7700"

type Config struct {
	Logging   log.Config       `toml:"log,omitempty"`
	Metrics   MetricsConfig    `toml:"metrics,omitempty"`
	Table     datconfig.Config `toml:"table,omitempty"`
	Topology  TopologyConfig   `toml:"topology,omitempty"`
	Transport TransportConfig  `toml:"transport,omitempty"`
}

func (cfg *Config) InitDefaults() {
	config.InitAll(
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.Table,
		&cfg.Topology,
		&cfg.Transport,
	)
}

func (cfg *Config) Validate() error {
	return config.ValidateAll(
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.Table,
		&cfg.Topology,
		&cfg.Transport,
	)
}

func (cfg *Config) Sample(dst io.Writer) {
	config.WriteSample(dst,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.Table,
		&cfg.Topology,
		&cfg.Transport,
	)
}

func (cfg *Config) ConfigName() string {
	return "datd"
}

// MetricsConfig is the [metrics] section. An empty address disables the
// HTTP endpoint.
type MetricsConfig struct {
	config.NoDefaulter
	// Prometheus is the address the HTTP endpoint listens on.
	Prometheus string `toml:"prometheus,omitempty"`
}

func (cfg *MetricsConfig) Validate() error {
	if cfg.Prometheus == "" {
		return nil
	}
	if _, err := netip.ParseAddrPort(cfg.Prometheus); err != nil {
		return serrors.Wrap("parsing metrics address", err, "addr", cfg.Prometheus)
	}
	return nil
}

func (cfg *MetricsConfig) Sample(dst io.Writer) {
	io.WriteString(dst, metricsSample)
}

func (cfg *MetricsConfig) ConfigName() string {
	return "metrics"
}

// TransportConfig is the [transport] section.
type TransportConfig struct {
	// Local is the address the UDP transport binds to.
	Local string `toml:"local,omitempty"`
}

func (cfg *TransportConfig) InitDefaults() {
	if cfg.Local == "" {
		cfg.Local = defaultTransportAddr
	}
}

func (cfg *TransportConfig) Validate() error {
	cfg.InitDefaults()
	if _, err := netip.ParseAddrPort(cfg.Local); err != nil {
		return serrors.Wrap("parsing transport address", err, "addr", cfg.Local)
	}
	return nil
}

// LocalAddr returns the parsed bind address. Validate must have succeeded.
func (cfg *TransportConfig) LocalAddr() netip.AddrPort {
	return netip.MustParseAddrPort(cfg.Local)
}

func (cfg *TransportConfig) Sample(dst io.Writer) {
	io.WriteString(dst, transportSample)
}

func (cfg *TransportConfig) ConfigName() string {
	return "transport"
}

// TopologyConfig is the [topology] section, the static node set of the mesh.
type TopologyConfig struct {
	config.NoDefaulter
	Nodes []NodeEntry `toml:"nodes,omitempty"`
}

// NodeEntry describes one mesh node.
type NodeEntry struct {
	ID          uint64 `toml:"id"`
	RingAddress uint32 `toml:"ring_address"`
	// NextHop is the node's current UDP next hop; empty means unreachable.
	NextHop string `toml:"next_hop,omitempty"`
}

func (cfg *TopologyConfig) Validate() error {
	seen := make(map[uint64]struct{}, len(cfg.Nodes))
	for _, n := range cfg.Nodes {
		if _, ok := seen[n.ID]; ok {
			return serrors.New("duplicate node", "id", dat.NodeID(n.ID))
		}
		seen[n.ID] = struct{}{}
		if n.NextHop == "" {
			continue
		}
		if _, err := netip.ParseAddrPort(n.NextHop); err != nil {
			return serrors.Wrap("parsing next hop", err,
				"id", dat.NodeID(n.ID), "next_hop", n.NextHop)
		}
	}
	return nil
}

// NodeInfos converts the section into the static topology's node set.
// Validate must have succeeded.
func (cfg *TopologyConfig) NodeInfos() []mesh.NodeInfo {
	infos := make([]mesh.NodeInfo, 0, len(cfg.Nodes))
	for _, n := range cfg.Nodes {
		info := mesh.NodeInfo{ID: dat.NodeID(n.ID), RingAddress: n.RingAddress}
		if n.NextHop != "" {
			info.NextHop = netip.MustParseAddrPort(n.NextHop)
		}
		infos = append(infos, info)
	}
	return infos
}

func (cfg *TopologyConfig) Sample(dst io.Writer) {
	io.WriteString(dst, topologySample)
}

func (cfg *TopologyConfig) ConfigName() string {
	return "topology"
}

const metricsSample = `[metrics]
# Address the HTTP endpoint (metrics, status page) listens on.
# Empty disables the endpoint. (default "")
prometheus = "127.0.0.1:30442"
`

const transportSample = `[transport]
# Address the UDP transport binds to. (default "0.0.0.0:7700")
local = "0.0.0.0:7700"
`

const topologySample = `# Static node set of the mesh. One [[topology.nodes]]
# block per node; a node without next_hop is unreachable until a routing
# update arrives.
[[topology.nodes]]
id = 1
ring_address = 10
next_hop = "10.0.0.1:7700"

[[topology.nodes]]
id = 2
ring_address = 50
next_hop = "10.0.0.2:7700"
`
