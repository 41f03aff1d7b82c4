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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshproto/meshdat/pkg/private/xtest"
)

func TestMappingCodec(t *testing.T) {
	testCases := []string{"192.168.0.40", "2001:db8::1"}
	for _, tc := range testCases {
		t.Run(tc, func(t *testing.T) {
			addr := xtest.MustParseAddr(tc)
			link := xtest.MustParseMAC("02:00:5e:10:00:01")

			gotAddr, gotLink, err := decodeMapping(encodeMapping(addr, link))
			require.NoError(t, err)
			assert.Equal(t, addr, gotAddr)
			assert.Equal(t, link, gotLink)
		})
	}
}

func TestQueryCodec(t *testing.T) {
	addr := xtest.MustParseAddr("10.7.0.3")
	got, err := decodeQuery(encodeQuery(addr))
	require.NoError(t, err)
	assert.Equal(t, addr, got)
}

func TestQueryCodecUnmapsV4InV6(t *testing.T) {
	got, err := decodeQuery(encodeQuery(xtest.MustParseAddr("::ffff:10.7.0.3")))
	require.NoError(t, err)
	assert.Equal(t, xtest.MustParseAddr("10.7.0.3"), got)
}

func TestDecodeMalformed(t *testing.T) {
	testCases := map[string][]byte{
		"empty":              nil,
		"bad address length": {3, 1, 2, 3},
		"truncated address":  {16, 1, 2, 3},
		"short link":         append(encodeQuery(xtest.MustParseAddr("10.7.0.3")), 1, 2),
	}
	for name, payload := range testCases {
		t.Run(name, func(t *testing.T) {
			_, _, err := decodeMapping(payload)
			assert.Error(t, err)
		})
	}
	// A mapping payload has trailing bytes from a query's point of view.
	addr := xtest.MustParseAddr("10.7.0.3")
	link := xtest.MustParseMAC("02:00:5e:10:00:01")
	_, err := decodeQuery(encodeMapping(addr, link))
	assert.Error(t, err)
}
