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

package log

import (
	"context"
	"testing"
)

func TestLineWriterBuffersUntilNewline(t *testing.T) {
	w := From(context.Background()).Writer(Info).(*lineWriter)
	if _, err := w.Write([]byte("partial")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(w.buf) != len("partial") {
		t.Errorf("buf = %q, want buffered %q", w.buf, "partial")
	}
	if _, err := w.Write([]byte(" line\nnext")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if string(w.buf) != "next" {
		t.Errorf("buf after newline = %q, want %q", w.buf, "next")
	}
}

func TestLineWriterCloseFlushesRemainder(t *testing.T) {
	w := From(context.Background()).Writer(Info).(*lineWriter)
	if _, err := w.Write([]byte("trailing, no newline")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(w.buf) != 0 {
		t.Errorf("buf after Close = %q, want empty", w.buf)
	}
}

func TestBindMergesValues(t *testing.T) {
	ctx := V{"a": 1}.Bind(context.Background())
	ctx = V{"b": 2}.Bind(ctx)
	merged, ok := ctx.Value(valuesKey).(V)
	if !ok {
		t.Fatalf("valuesKey not set")
	}
	if merged["a"] != 1 || merged["b"] != 2 {
		t.Errorf("merged = %#v, want both a and b present", merged)
	}
}

func TestPutLevelStoresThreshold(t *testing.T) {
	ctx := PutLevel(context.Background(), Warning)
	if got := level(ctx); got != Warning {
		t.Errorf("level(ctx) = %v, want %v", got, Warning)
	}
}
