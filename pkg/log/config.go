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

package log

import (
	"io"

	"go.uber.org/zap/zapcore"

	"github.com/meshproto/meshdat/pkg/private/serrors"
)

// Config is the TOML configuration of the logging subsystem.
type Config struct {
	Console ConsoleConfig `toml:"console,omitempty"`
}

// ConsoleConfig configures the log output of the process.
type ConsoleConfig struct {
	// Level of the logging, defaults to info.
	Level string `toml:"level,omitempty"`
	// Format of the log output, either "human" or "json". Defaults to human.
	Format string `toml:"format,omitempty"`
}

func (c *Config) InitDefaults() {
	if c.Console.Level == "" {
		c.Console.Level = "info"
	}
	if c.Console.Format == "" {
		c.Console.Format = "human"
	}
}

func (c *Config) Validate() error {
	c.InitDefaults()
	if _, err := zapcore.ParseLevel(c.Console.Level); err != nil {
		return serrors.Wrap("parsing log level", err, "level", c.Console.Level)
	}
	if c.Console.Format != "human" && c.Console.Format != "json" {
		return serrors.New("unsupported log format", "format", c.Console.Format)
	}
	return nil
}

func (c *Config) Sample(dst io.Writer) {
	io.WriteString(dst, logSample)
}

func (c *Config) ConfigName() string {
	return "log"
}

const logSample = `[log.console]
# Console logging level: debug, info or error. (default info)
level = "info"
# Log format, human or json. (default human)
format = "human"
`
