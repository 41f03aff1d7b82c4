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

package serrors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meshproto/meshdat/pkg/private/serrors"
)

func TestErrorString(t *testing.T) {
	testCases := map[string]struct {
		err      error
		expected string
	}{
		"simple": {
			err:      serrors.New("resolution failed"),
			expected: "resolution failed",
		},
		"with context sorted": {
			err:      serrors.New("resolution failed", "zone", 7, "addr", "10.0.0.1"),
			expected: "resolution failed {addr=10.0.0.1; zone=7}",
		},
		"wrapped": {
			err:      serrors.Wrap("sending", errors.New("route missing"), "node", 3),
			expected: "sending {node=3}: route missing",
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.err.Error())
		})
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("route missing")
	err := serrors.Wrap("sending", cause, "node", 3)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}
