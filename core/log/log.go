// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log provides a small context-scoped leveled logger.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// Severity is the level of a log message.
type Severity int

const (
	Debug Severity = iota
	Info
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Debug:
		return "D"
	case Info:
		return "I"
	case Warning:
		return "W"
	case Error:
		return "E"
	default:
		return "?"
	}
}

type ctxKey int

const (
	processKey ctxKey = iota
	valuesKey
	levelKey
)

// V is a set of key/value pairs that can be bound onto a context, and are
// printed alongside any message logged through that context.
type V map[string]interface{}

// Bind returns a copy of ctx with v merged into its current value set.
func (v V) Bind(ctx context.Context) context.Context {
	merged := V{}
	if existing, ok := ctx.Value(valuesKey).(V); ok {
		for k, val := range existing {
			merged[k] = val
		}
	}
	for k, val := range v {
		merged[k] = val
	}
	return context.WithValue(ctx, valuesKey, merged)
}

// PutProcess returns a copy of ctx tagged with the named process, shown as a
// prefix on every message logged through it.
func PutProcess(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, processKey, name)
}

// PutLevel returns a copy of ctx with the minimum severity that will be
// printed by messages logged through it.
func PutLevel(ctx context.Context, min Severity) context.Context {
	return context.WithValue(ctx, levelKey, min)
}

func level(ctx context.Context) Severity {
	if l, ok := ctx.Value(levelKey).(Severity); ok {
		return l
	}
	return Info
}

var mu sync.Mutex

// Logger writes leveled, context-scoped messages to stderr/stdout.
type Logger struct {
	ctx context.Context
}

// From builds a Logger bound to ctx.
func From(ctx context.Context) Logger { return Logger{ctx} }

func (l Logger) log(s Severity, format string, args ...interface{}) {
	if s < level(l.ctx) {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	out := os.Stdout
	if s >= Error {
		out = os.Stderr
	}
	prefix := s.String()
	if process, ok := l.ctx.Value(processKey).(string); ok && process != "" {
		prefix += "[" + process + "]"
	}
	fmt.Fprintf(out, "%s: %s\n", prefix, fmt.Sprintf(format, args...))
}

func (l Logger) D(format string, args ...interface{}) { l.log(Debug, format, args...) }
func (l Logger) I(format string, args ...interface{}) { l.log(Info, format, args...) }
func (l Logger) W(format string, args ...interface{}) { l.log(Warning, format, args...) }
func (l Logger) E(format string, args ...interface{}) { l.log(Error, format, args...) }

// Err logs err at Error severity with the supplied context message and
// returns err unchanged, so it can be used inline in a return statement.
func (l Logger) Err(err error, format string, args ...interface{}) error {
	if err != nil {
		l.E("%s: %v", fmt.Sprintf(format, args...), err)
	}
	return err
}

// Writer returns an io.WriteCloser that buffers writes and logs each
// complete line as one message at the given severity; Close logs any
// unterminated remainder. Used to pipe subprocess output into the logger.
func (l Logger) Writer(s Severity) io.WriteCloser {
	return &lineWriter{logger: l, severity: s}
}

type lineWriter struct {
	logger   Logger
	severity Severity
	buf      []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := indexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logger.log(w.severity, "%s", string(w.buf[:i]))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *lineWriter) Close() error {
	if len(w.buf) > 0 {
		w.logger.log(w.severity, "%s", string(w.buf))
		w.buf = nil
	}
	return nil
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// D logs a debug message to the context's logger.
func D(ctx context.Context, format string, args ...interface{}) { From(ctx).D(format, args...) }

// I logs an info message to the context's logger.
func I(ctx context.Context, format string, args ...interface{}) { From(ctx).I(format, args...) }

// W logs a warning message to the context's logger.
func W(ctx context.Context, format string, args ...interface{}) { From(ctx).W(format, args...) }

// E logs an error message to the context's logger.
func E(ctx context.Context, format string, args ...interface{}) { From(ctx).E(format, args...) }
