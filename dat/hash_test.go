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

	"github.com/stretchr/testify/assert"

	"github.com/meshproto/meshdat/dat"
	"github.com/meshproto/meshdat/pkg/private/xtest"
)

func TestHashAddrVectors(t *testing.T) {
	// Fixed vectors of the Jenkins one-at-a-time hash over the address
	// bytes, generated independently of this implementation.
	testCases := map[string]uint32{
		"192.168.0.1": 827575943,
		"10.0.0.1":    3381526891,
		"172.16.5.9":  2406266471,
		"127.0.0.1":   196420273,
		"2001:db8::1": 3894977820,
		"fe80::1":     1008890072,
	}
	for addr, expected := range testCases {
		t.Run(addr, func(t *testing.T) {
			assert.Equal(t, expected, dat.HashAddr(xtest.MustParseAddr(addr)))
		})
	}
}

func TestHashAddrUnmappedEquivalence(t *testing.T) {
	v4 := xtest.MustParseAddr("192.168.0.1")
	mapped := xtest.MustParseAddr("::ffff:192.168.0.1")
	assert.Equal(t, dat.HashAddr(v4), dat.HashAddr(mapped.Unmap()))
}
