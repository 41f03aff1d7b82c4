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

// Package config contains the TOML configuration of the distributed address
// table.
package config

import (
	"io"

	"github.com/meshproto/meshdat/dat"
	"github.com/meshproto/meshdat/pkg/private/util"
)

// Config is the [table] section of the daemon configuration.
type Config struct {
	// Buckets is the number of store buckets.
	Buckets int `toml:"buckets,omitempty"`
	// EntryTimeout is the age at which an unrefreshed entry is purged.
	EntryTimeout util.DurWrap `toml:"entry_timeout,omitempty"`
	// PurgeInterval is the period of the purge sweep.
	PurgeInterval util.DurWrap `toml:"purge_interval,omitempty"`
	// Candidates is the number of nodes an address is replicated to.
	Candidates int `toml:"candidates,omitempty"`
	// RingSize is the size of the candidate-selection ring.
	RingSize uint64 `toml:"ring_size,omitempty"`
}

func (cfg *Config) InitDefaults() {
	d := cfg.TableConfig()
	d.InitDefaults()
	cfg.Buckets = d.Buckets
	cfg.EntryTimeout.Duration = d.EntryTimeout
	cfg.PurgeInterval.Duration = d.PurgeInterval
	cfg.Candidates = d.Candidates
	cfg.RingSize = d.RingSize
}

func (cfg *Config) Validate() error {
	cfg.InitDefaults()
	d := cfg.TableConfig()
	return d.Validate()
}

// TableConfig converts the section into the core table configuration.
func (cfg *Config) TableConfig() dat.Config {
	return dat.Config{
		Buckets:       cfg.Buckets,
		EntryTimeout:  cfg.EntryTimeout.Duration,
		PurgeInterval: cfg.PurgeInterval.Duration,
		Candidates:    cfg.Candidates,
		RingSize:      cfg.RingSize,
	}
}

func (cfg *Config) Sample(dst io.Writer) {
	io.WriteString(dst, tableSample)
}

func (cfg *Config) ConfigName() string {
	return "table"
}

const tableSample = `[table]
# Number of store buckets. (default 1024)
buckets = 1024
# Age at which an unrefreshed entry is purged. (default 5m)
entry_timeout = "5m0s"
# Period of the purge sweep. (default 10s)
purge_interval = "10s"
# Number of nodes an address is replicated to. (default 3)
candidates = 3
# Size of the candidate-selection ring. (default 65536)
ring_size = 65536
`
