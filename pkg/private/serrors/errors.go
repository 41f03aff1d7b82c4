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

// Package serrors provides errors that carry additional log context in the
// form of key value pairs. The returned errors work with the standard
// errors.Is/As/Unwrap chain and render their context both in the Error
// string and as structured fields when logged through zap.
package serrors

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxPair struct {
	Key   string
	Value interface{}
}

type basicError struct {
	msg   string
	cause error
	ctx   []ctxPair
}

func (e *basicError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.msg)
	if len(e.ctx) != 0 {
		sb.WriteString(" {")
		for i, p := range e.ctx {
			if i != 0 {
				sb.WriteString("; ")
			}
			fmt.Fprintf(&sb, "%s=%v", p.Key, p.Value)
		}
		sb.WriteString("}")
	}
	if e.cause != nil {
		fmt.Fprintf(&sb, ": %s", e.cause)
	}
	return sb.String()
}

func (e *basicError) Unwrap() error {
	return e.cause
}

// MarshalLogObject implements zapcore.ObjectMarshaler for a nicer structured
// log representation.
func (e *basicError) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("msg", e.msg)
	if e.cause != nil {
		if m, ok := e.cause.(zapcore.ObjectMarshaler); ok {
			if err := enc.AddObject("cause", m); err != nil {
				return err
			}
		} else {
			enc.AddString("cause", e.cause.Error())
		}
	}
	for _, p := range e.ctx {
		zap.Any(p.Key, p.Value).AddTo(enc)
	}
	return nil
}

func mkContext(errCtx []interface{}) []ctxPair {
	pairs := make([]ctxPair, 0, len(errCtx)/2)
	for i := 0; i+1 < len(errCtx); i += 2 {
		pairs = append(pairs, ctxPair{Key: fmt.Sprint(errCtx[i]), Value: errCtx[i+1]})
	}
	sort.Slice(pairs, func(a, b int) bool {
		return pairs[a].Key < pairs[b].Key
	})
	return pairs
}

// New creates a new error with the given message and context, in the form of
// alternating key value pairs.
func New(msg string, errCtx ...interface{}) error {
	return &basicError{
		msg: msg,
		ctx: mkContext(errCtx),
	}
}

// Wrap returns an error that associates the given message and context with
// cause. The cause remains reachable through errors.Is/As/Unwrap.
func Wrap(msg string, cause error, errCtx ...interface{}) error {
	return &basicError{
		msg:   msg,
		cause: cause,
		ctx:   mkContext(errCtx),
	}
}
