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

// Package log wraps zap behind a small key/value logging interface. The
// process-wide root logger is configured once via Setup; goroutines that can
// outlive their caller should defer HandlePanic.
package log

import (
	"fmt"
	"os"
	"runtime/debug"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/meshproto/meshdat/pkg/private/serrors"
)

// Level is the verbosity level of a log statement.
type Level = zapcore.Level

// DebugLevel is the level hot paths query with Enabled before building
// debug log fields.
const DebugLevel = zapcore.DebugLevel

// Logger describes the logging interface.
type Logger interface {
	New(ctx ...interface{}) Logger
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Enabled(lvl Level) bool
}

type logger struct {
	logger *zap.Logger
}

// New creates a logger with the given context, based on the root logger.
func New(ctx ...interface{}) Logger {
	return Root().New(ctx...)
}

func (l *logger) New(ctx ...interface{}) Logger {
	return &logger{logger: l.logger.With(convertCtx(ctx)...)}
}

func (l *logger) Debug(msg string, ctx ...interface{}) {
	l.logger.Debug(msg, convertCtx(ctx)...)
}

func (l *logger) Info(msg string, ctx ...interface{}) {
	l.logger.Info(msg, convertCtx(ctx)...)
}

func (l *logger) Error(msg string, ctx ...interface{}) {
	l.logger.Error(msg, convertCtx(ctx)...)
}

func (l *logger) Enabled(lvl Level) bool {
	return l.logger.Core().Enabled(lvl)
}

func convertCtx(ctx []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(ctx)/2)
	for i := 0; i+1 < len(ctx); i += 2 {
		fields = append(fields, zap.Any(fmt.Sprint(ctx[i]), ctx[i+1]))
	}
	return fields
}

// Setup configures the process-wide root logger. It must be called before
// the first call to Root or New takes effect; later calls reconfigure the
// root logger.
func Setup(cfg Config) error {
	cfg.InitDefaults()
	lvl, err := zapcore.ParseLevel(cfg.Console.Level)
	if err != nil {
		return serrors.Wrap("parsing log level", err, "level", cfg.Console.Level)
	}
	encoding := "console"
	if cfg.Console.Format == "json" {
		encoding = "json"
	}
	zCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(lvl),
		Encoding:          encoding,
		DisableCaller:     true,
		DisableStacktrace: true,
		EncoderConfig:     encoderConfig(encoding),
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}
	z, err := zCfg.Build()
	if err != nil {
		return serrors.Wrap("creating logger", err)
	}
	zap.ReplaceGlobals(z)
	return nil
}

func encoderConfig(encoding string) zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	if encoding == "console" {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return ec
}

// Root returns the root logger. It is never nil.
func Root() Logger {
	return &logger{logger: zap.L()}
}

// Discard silences all log output of the process. Intended for tests.
func Discard() {
	zap.ReplaceGlobals(zap.NewNop())
}

// HandlePanic catches panics and logs them. Any long-running goroutine
// should defer it; panics in such goroutines would otherwise unwind past any
// recovery installed lower in the stack.
func HandlePanic() {
	if msg := recover(); msg != nil {
		zap.L().Error("Panic", zap.Any("msg", msg), zap.ByteString("stack", debug.Stack()))
		_ = zap.L().Sync()
		os.Exit(255)
	}
}
