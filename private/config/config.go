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

// Package config provides the unified pattern for TOML configuration
// structs. Configurations are organized in sections; each section knows how
// to default, validate and sample itself.
package config

import (
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/meshproto/meshdat/pkg/private/serrors"
)

// Defaulter is implemented by sections that have defaults for unset values.
type Defaulter interface {
	InitDefaults()
}

// Validator is implemented by sections that check their values.
type Validator interface {
	Validate() error
}

// Sampler is implemented by sections that write a commented sample of
// themselves.
type Sampler interface {
	Sample(dst io.Writer)
	ConfigName() string
}

// Config is the interface a full application configuration implements.
type Config interface {
	Defaulter
	Validator
	Sampler
}

// InitAll initializes all given sections with their defaults.
func InitAll(defaulters ...Defaulter) {
	for _, d := range defaulters {
		d.InitDefaults()
	}
}

// ValidateAll validates all given sections and returns the first error.
func ValidateAll(validators ...Validator) error {
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return serrors.Wrap("validating config section", err)
		}
	}
	return nil
}

// WriteSample writes the sample of all given sections to dst.
func WriteSample(dst io.Writer, samplers ...Sampler) {
	for i, s := range samplers {
		if i != 0 {
			io.WriteString(dst, "\n")
		}
		s.Sample(dst)
	}
}

// LoadFile decodes the TOML file at path into cfg.
func LoadFile(path string, cfg interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return serrors.Wrap("reading config file", err, "file", path)
	}
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return serrors.Wrap("parsing config file", err, "file", path)
	}
	return nil
}

// NoDefaulter can be embedded by sections without defaults.
type NoDefaulter struct{}

func (NoDefaulter) InitDefaults() {}

// NoValidator can be embedded by sections that are always valid.
type NoValidator struct{}

func (NoValidator) Validate() error { return nil }
