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
	"bytes"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshproto/meshdat/dat"
	"github.com/meshproto/meshdat/pkg/private/xtest"
)

func TestConfigSampleParsesAndValidates(t *testing.T) {
	var buf bytes.Buffer
	var sample Config
	sample.Sample(&buf)

	var cfg Config
	require.NoError(t, toml.Unmarshal(buf.Bytes(), &cfg))
	cfg.InitDefaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, dat.DefaultBuckets, cfg.Table.Buckets)
	assert.Equal(t, "0.0.0.0:7700", cfg.Transport.Local)
	require.Len(t, cfg.Topology.Nodes, 2)
	infos := cfg.Topology.NodeInfos()
	assert.Equal(t, dat.NodeID(1), infos[0].ID)
	assert.Equal(t, xtest.MustParseAddrPort("10.0.0.1:7700"), infos[0].NextHop)
}

func TestConfigValidation(t *testing.T) {
	testCases := map[string]struct {
		modify    func(*Config)
		assertErr assert.ErrorAssertionFunc
	}{
		"defaults": {
			modify:    func(*Config) {},
			assertErr: assert.NoError,
		},
		"bad metrics address": {
			modify:    func(cfg *Config) { cfg.Metrics.Prometheus = "not-an-addr" },
			assertErr: assert.Error,
		},
		"metrics address without port": {
			modify:    func(cfg *Config) { cfg.Metrics.Prometheus = "127.0.0.1" },
			assertErr: assert.Error,
		},
		"bad transport address": {
			modify:    func(cfg *Config) { cfg.Transport.Local = "7700" },
			assertErr: assert.Error,
		},
		"duplicate node id": {
			modify: func(cfg *Config) {
				cfg.Topology.Nodes = []NodeEntry{
					{ID: 1, RingAddress: 10},
					{ID: 1, RingAddress: 20},
				}
			},
			assertErr: assert.Error,
		},
		"bad next hop": {
			modify: func(cfg *Config) {
				cfg.Topology.Nodes = []NodeEntry{
					{ID: 1, RingAddress: 10, NextHop: "10.0.0.1"},
				}
			},
			assertErr: assert.Error,
		},
		"bad table section": {
			modify:    func(cfg *Config) { cfg.Table.Candidates = -1 },
			assertErr: assert.Error,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var cfg Config
			cfg.InitDefaults()
			tc.modify(&cfg)
			tc.assertErr(t, cfg.Validate())
		})
	}
}
