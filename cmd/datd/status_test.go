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
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/meshproto/meshdat/dat"
	"github.com/meshproto/meshdat/pkg/private/xtest"
)

func TestFormatAge(t *testing.T) {
	testCases := map[string]struct {
		age  time.Duration
		want string
	}{
		"fresh":        {age: 0, want: "0:00"},
		"seconds":      {age: 42 * time.Second, want: "0:42"},
		"minutes":      {age: 3*time.Minute + 7*time.Second, want: "3:07"},
		"many minutes": {age: 61 * time.Minute, want: "61:00"},
		"negative":     {age: -time.Second, want: "0:00"},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, formatAge(tc.age))
		})
	}
}

func TestWriteCache(t *testing.T) {
	now := time.Now()
	entries := []dat.Entry{
		{
			Addr:       xtest.MustParseAddr("192.168.0.50"),
			Link:       xtest.MustParseMAC("02:00:5e:10:00:02"),
			LastUpdate: now.Add(-75 * time.Second),
		},
		{
			Addr:       xtest.MustParseAddr("192.168.0.40"),
			Link:       xtest.MustParseMAC("02:00:5e:10:00:01"),
			LastUpdate: now,
		},
	}
	var buf bytes.Buffer
	writeCache(&buf, entries, now)

	out := buf.String()
	assert.Contains(t, out, "Cached mappings: 2")
	assert.Contains(t, out, "192.168.0.40")
	assert.Contains(t, out, "02:00:5e:10:00:02")
	assert.Contains(t, out, "1:15")
	// Sorted by address.
	assert.Less(t,
		bytes.Index(buf.Bytes(), []byte("192.168.0.40")),
		bytes.Index(buf.Bytes(), []byte("192.168.0.50")))
}
