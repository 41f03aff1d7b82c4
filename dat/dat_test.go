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

package dat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshproto/meshdat/dat"
	"github.com/meshproto/meshdat/pkg/private/xtest"
)

func TestConfigValidate(t *testing.T) {
	testCases := map[string]struct {
		modify    func(*dat.Config)
		assertErr assert.ErrorAssertionFunc
	}{
		"defaults": {
			modify:    func(*dat.Config) {},
			assertErr: assert.NoError,
		},
		"negative buckets": {
			modify:    func(cfg *dat.Config) { cfg.Buckets = -1 },
			assertErr: assert.Error,
		},
		"negative timeout": {
			modify:    func(cfg *dat.Config) { cfg.EntryTimeout = -time.Second },
			assertErr: assert.Error,
		},
		"negative purge interval": {
			modify:    func(cfg *dat.Config) { cfg.PurgeInterval = -time.Second },
			assertErr: assert.Error,
		},
		"negative candidates": {
			modify:    func(cfg *dat.Config) { cfg.Candidates = -1 },
			assertErr: assert.Error,
		},
		"ring of one": {
			modify:    func(cfg *dat.Config) { cfg.RingSize = 1 },
			assertErr: assert.Error,
		},
		"ring of full 32-bit address space": {
			modify:    func(cfg *dat.Config) { cfg.RingSize = 1 << 32 },
			assertErr: assert.NoError,
		},
		"ring beyond distance arithmetic": {
			modify:    func(cfg *dat.Config) { cfg.RingSize = 1<<32 + 1 },
			assertErr: assert.Error,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var cfg dat.Config
			cfg.InitDefaults()
			tc.modify(&cfg)
			tc.assertErr(t, cfg.Validate())
		})
	}
}

func TestServiceLifecycle(t *testing.T) {
	topo := newTestTopology(
		&testNode{id: 1, ring: 10, nextHop: hop("10.255.0.1:7700"), hasHop: true},
		&testNode{id: 2, ring: 50, nextHop: hop("10.255.0.2:7700"), hasHop: true},
		&testNode{id: 3, ring: 90, nextHop: hop("10.255.0.3:7700"), hasHop: true},
	)
	tr := &recordingTransport{}
	svc, err := dat.New(dat.Config{PurgeInterval: time.Hour}, topo, tr, nil)
	require.NoError(t, err)
	defer svc.Close()

	addr := xtest.MustParseAddr("192.168.1.40")
	link := xtest.MustParseMAC("02:00:5e:10:00:01")

	_, ok := svc.Lookup(addr)
	assert.False(t, ok)

	svc.Observe(addr, link)
	entry, ok := svc.Lookup(addr)
	require.True(t, ok)
	assert.Equal(t, link, entry.Link)

	assert.Len(t, svc.Candidates(addr), 3)
	assert.True(t, svc.Replicate(testCtx(t), []byte("m"), addr, dat.KindPut))
	assert.Len(t, svc.Snapshot(), 1)
}

func TestServicePurgeEvictsStaleEntries(t *testing.T) {
	topo := newTestTopology(
		&testNode{id: 1, ring: 10, nextHop: hop("10.255.0.1:7700"), hasHop: true},
	)
	svc, err := dat.New(
		dat.Config{EntryTimeout: time.Minute, PurgeInterval: time.Hour},
		topo, &recordingTransport{}, nil,
	)
	require.NoError(t, err)
	defer svc.Close()

	now := time.Now()
	svc.Store().SetNow(func() time.Time { return now })
	svc.Observe(xtest.MustParseAddr("192.168.1.40"), xtest.MustParseMAC("02:00:5e:10:00:01"))
	svc.Observe(xtest.MustParseAddr("192.168.1.41"), xtest.MustParseMAC("02:00:5e:10:00:02"))

	// Refresh one entry half way through the timeout, then move past it.
	svc.Store().SetNow(func() time.Time { return now.Add(30 * time.Second) })
	svc.Observe(xtest.MustParseAddr("192.168.1.41"), xtest.MustParseMAC("02:00:5e:10:00:02"))
	svc.Store().SetNow(func() time.Time { return now.Add(70 * time.Second) })

	svc.TriggerPurge()
	assert.Eventually(t, func() bool {
		_, stale := svc.Lookup(xtest.MustParseAddr("192.168.1.40"))
		_, fresh := svc.Lookup(xtest.MustParseAddr("192.168.1.41"))
		return !stale && fresh
	}, time.Second, 5*time.Millisecond)
}

func TestServiceCloseFlushes(t *testing.T) {
	topo := newTestTopology(
		&testNode{id: 1, ring: 10, nextHop: hop("10.255.0.1:7700"), hasHop: true},
	)
	svc, err := dat.New(dat.Config{PurgeInterval: time.Hour}, topo, &recordingTransport{}, nil)
	require.NoError(t, err)

	svc.Observe(xtest.MustParseAddr("192.168.1.40"), xtest.MustParseMAC("02:00:5e:10:00:01"))
	svc.Close()
	assert.Empty(t, svc.Snapshot())
}

func TestServiceRejectsInvalidConfig(t *testing.T) {
	_, err := dat.New(
		dat.Config{Buckets: -3},
		newTestTopology(), &recordingTransport{}, nil,
	)
	assert.Error(t, err)
}
