//
// Copyright 2019 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS-IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
//
// Package eventstreamtest provides utilities for programmatically
// assembling event-stream fixtures in tests.
package eventstreamtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

// Builder allows successive programmatic assembly of an event-stream
// fixture. Construct a Builder (New), chain WithXxx calls to append events
// in timestamp order, then call Test(t) to get the assembled stream as a
// reader, or Bytes() to get the same as a []byte.
type Builder struct {
	buf  bytes.Buffer
	errs []error
}

// New constructs and returns a new, empty Builder.
func New() *Builder {
	return &Builder{}
}

func (b *Builder) emit(tag string, payload interface{}) *Builder {
	wrapper := map[string]interface{}{tag: payload}
	data, err := json.Marshal(wrapper)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("marshaling %s: %w", tag, err))
		return b
	}
	b.buf.Write(data)
	b.buf.WriteByte('\n')
	return b
}

func duration(nanos uint64) map[string]interface{} {
	return map[string]interface{}{
		"secs":  nanos / 1e9,
		"nanos": nanos % 1e9,
	}
}

// WithThreadStart appends a ThreadStart event.
func (b *Builder) WithThreadStart(id uint64, name string, nanos uint64) *Builder {
	return b.emit("ThreadStart", map[string]interface{}{
		"id": id, "name": name, "ts": duration(nanos),
	})
}

// WithThreadEnd appends a ThreadEnd event.
func (b *Builder) WithThreadEnd(id uint64, nanos uint64) *Builder {
	return b.emit("ThreadEnd", map[string]interface{}{
		"id": id, "ts": duration(nanos),
	})
}

// WithSyncStart appends a SyncStart event.
func (b *Builder) WithSyncStart(id, parentID uint64, name string, nanos uint64) *Builder {
	return b.emit("SyncStart", map[string]interface{}{
		"id": id, "parent_id": parentID, "name": name, "ts": duration(nanos),
	})
}

// WithSyncEnd appends a SyncEnd event.
func (b *Builder) WithSyncEnd(id uint64, nanos uint64) *Builder {
	return b.emit("SyncEnd", map[string]interface{}{
		"id": id, "ts": duration(nanos),
	})
}

// WithAsyncStart appends an AsyncStart event.
func (b *Builder) WithAsyncStart(id, parentID uint64, name string, nanos uint64) *Builder {
	return b.emit("AsyncStart", map[string]interface{}{
		"id": id, "parent_id": parentID, "name": name, "ts": duration(nanos),
	})
}

// WithAsyncOnCPU appends an AsyncOnCPU event.
func (b *Builder) WithAsyncOnCPU(id uint64, nanos uint64) *Builder {
	return b.emit("AsyncOnCPU", map[string]interface{}{
		"id": id, "ts": duration(nanos),
	})
}

// WithAsyncOffCPU appends an AsyncOffCPU event.
func (b *Builder) WithAsyncOffCPU(id uint64, nanos uint64) *Builder {
	return b.emit("AsyncOffCPU", map[string]interface{}{
		"id": id, "ts": duration(nanos),
	})
}

// WithAsyncEndSuccess appends an AsyncEnd event with a Success outcome.
func (b *Builder) WithAsyncEndSuccess(id uint64, nanos uint64) *Builder {
	return b.emit("AsyncEnd", map[string]interface{}{
		"id": id, "ts": duration(nanos), "outcome": "Success",
	})
}

// WithAsyncEndCancelled appends an AsyncEnd event with a Cancelled outcome.
func (b *Builder) WithAsyncEndCancelled(id uint64, nanos uint64) *Builder {
	return b.emit("AsyncEnd", map[string]interface{}{
		"id": id, "ts": duration(nanos), "outcome": "Cancelled",
	})
}

// WithAsyncEndError appends an AsyncEnd event with an Error outcome.
func (b *Builder) WithAsyncEndError(id uint64, nanos uint64, message string) *Builder {
	return b.emit("AsyncEnd", map[string]interface{}{
		"id": id, "ts": duration(nanos), "outcome": map[string]interface{}{"Error": message},
	})
}

// WithWakeup appends a Wakeup event.
func (b *Builder) WithWakeup(wakingSpan, parkedSpan uint64, nanos uint64) *Builder {
	return b.emit("Wakeup", map[string]interface{}{
		"waking_span": wakingSpan, "parked_span": parkedSpan, "ts": duration(nanos),
	})
}

// WithRawLine appends a pre-formed line verbatim, for fixtures that need to
// exercise malformed or unusual input.
func (b *Builder) WithRawLine(line string) *Builder {
	b.buf.WriteString(line)
	b.buf.WriteByte('\n')
	return b
}

// Bytes returns the assembled stream. If the builder is in error, it
// returns nil.
func (b *Builder) Bytes() []byte {
	if len(b.errs) > 0 {
		return nil
	}
	return b.buf.Bytes()
}

// Test returns a reader over the assembled stream, failing on the provided
// testing.T if the builder is in error.
func (b *Builder) Test(t *testing.T) *bytes.Reader {
	t.Helper()
	if len(b.errs) > 0 {
		var errStrs []string
		for _, err := range b.errs {
			errStrs = append(errStrs, err.Error())
		}
		t.Fatalf("failed to construct event stream: %s", strings.Join(errStrs, ", "))
	}
	return bytes.NewReader(b.buf.Bytes())
}
