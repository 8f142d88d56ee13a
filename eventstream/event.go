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
// Package eventstream defines the normative, newline-delimited JSON event
// format that a task-tracing recorder emits (SPEC_FULL.md §6.1), and the
// Loader that turns a stream of such events into a tracedata.Database
// (§4.1). The recorder itself -- whatever library is producing these
// lines -- is an external collaborator, out of scope for this repository.
package eventstream

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Duration is the wire representation of a timestamp: a duration from an
// implicit epoch, encoded as whole seconds plus a nanosecond remainder.
type Duration struct {
	Secs  uint64 `json:"secs"`
	Nanos uint32 `json:"nanos"`
}

// Nanos64 converts the duration to a total nanosecond count.
func (d Duration) Nanos64() uint64 {
	return d.Secs*1e9 + uint64(d.Nanos)
}

// Outcome is the terminal state of an async task, carried on AsyncEnd.
type Outcome struct {
	Kind    OutcomeKind
	Message string // only meaningful when Kind == OutcomeError
}

// OutcomeKind enumerates the tags of Outcome.
type OutcomeKind int

const (
	// OutcomeSuccess means the async task ran to completion.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeCancelled means the async task was dropped before completion.
	OutcomeCancelled
	// OutcomeError means the async task completed with an error message.
	OutcomeError
)

// UnmarshalJSON accepts either a bare tag string ("Success", "Cancelled")
// for unit variants, or a single-key object ({"Error": "message"}) for the
// data-carrying variant, matching the externally-tagged representation
// AsyncOutcome uses on the wire (SPEC_FULL.md §6.1).
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		switch tag {
		case "Success":
			*o = Outcome{Kind: OutcomeSuccess}
			return nil
		case "Cancelled":
			*o = Outcome{Kind: OutcomeCancelled}
			return nil
		default:
			return status.Errorf(codes.InvalidArgument, "unrecognized outcome tag %q", tag)
		}
	}
	var obj struct {
		Error *string `json:"Error"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return status.Errorf(codes.InvalidArgument, "unrecognized outcome %s: %v", data, err)
	}
	if obj.Error == nil {
		return status.Errorf(codes.InvalidArgument, "unrecognized outcome object %s", data)
	}
	*o = Outcome{Kind: OutcomeError, Message: *obj.Error}
	return nil
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeSuccess:
		return "Success"
	case OutcomeCancelled:
		return "Cancelled"
	case OutcomeError:
		return fmt.Sprintf("Error(%s)", o.Message)
	default:
		return "Unknown"
	}
}

// AsyncStart is the payload of an AsyncStart event: the beginning of an
// asynchronous task's lifetime.
type AsyncStart struct {
	ID       uint64          `json:"id"`
	ParentID uint64          `json:"parent_id"`
	Name     string          `json:"name"`
	Ts       Duration        `json:"ts"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// AsyncOnCPU is the payload of an AsyncOnCPU event: the start of an
// execution slice of an async task.
type AsyncOnCPU struct {
	ID uint64   `json:"id"`
	Ts Duration `json:"ts"`
}

// AsyncOffCPU is the payload of an AsyncOffCPU event: the end of an
// execution slice of an async task.
type AsyncOffCPU struct {
	ID uint64   `json:"id"`
	Ts Duration `json:"ts"`
}

// AsyncEnd is the payload of an AsyncEnd event: the end of an async task's
// lifetime.
type AsyncEnd struct {
	ID      uint64   `json:"id"`
	Ts      Duration `json:"ts"`
	Outcome Outcome  `json:"outcome"`
}

// SyncStart is the payload of a SyncStart event: the beginning of a nested
// synchronous region.
type SyncStart struct {
	ID       uint64          `json:"id"`
	ParentID uint64          `json:"parent_id"`
	Name     string          `json:"name"`
	Ts       Duration        `json:"ts"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// SyncEnd is the payload of a SyncEnd event.
type SyncEnd struct {
	ID uint64   `json:"id"`
	Ts Duration `json:"ts"`
}

// ThreadStart is the payload of a ThreadStart event: a new thread root.
type ThreadStart struct {
	ID   uint64   `json:"id"`
	Name string   `json:"name"`
	Ts   Duration `json:"ts"`
}

// ThreadEnd is the payload of a ThreadEnd event.
type ThreadEnd struct {
	ID uint64   `json:"id"`
	Ts Duration `json:"ts"`
}

// Wakeup is the payload of a Wakeup event: one running task notifying
// another, parked, task.
type Wakeup struct {
	WakingSpan uint64   `json:"waking_span"`
	ParkedSpan uint64   `json:"parked_span"`
	Ts         Duration `json:"ts"`
}

// wireEvent is the envelope for the externally-tagged event union: exactly
// one field is populated per line, matching {"Tag": {...fields...}}.
type wireEvent struct {
	AsyncStart  *AsyncStart  `json:"AsyncStart,omitempty"`
	AsyncOnCPU  *AsyncOnCPU  `json:"AsyncOnCPU,omitempty"`
	AsyncOffCPU *AsyncOffCPU `json:"AsyncOffCPU,omitempty"`
	AsyncEnd    *AsyncEnd    `json:"AsyncEnd,omitempty"`
	SyncStart   *SyncStart   `json:"SyncStart,omitempty"`
	SyncEnd     *SyncEnd     `json:"SyncEnd,omitempty"`
	ThreadStart *ThreadStart `json:"ThreadStart,omitempty"`
	ThreadEnd   *ThreadEnd   `json:"ThreadEnd,omitempty"`
	Wakeup      *Wakeup      `json:"Wakeup,omitempty"`
}

// Event is a single decoded line of the event stream: exactly one of the
// following fields is non-nil, identifying the event's tag.
type Event struct {
	AsyncStart  *AsyncStart
	AsyncOnCPU  *AsyncOnCPU
	AsyncOffCPU *AsyncOffCPU
	AsyncEnd    *AsyncEnd
	SyncStart   *SyncStart
	SyncEnd     *SyncEnd
	ThreadStart *ThreadStart
	ThreadEnd   *ThreadEnd
	Wakeup      *Wakeup
}

// Tag returns a short human-readable name for the populated event variant,
// for use in diagnostics.
func (e Event) Tag() string {
	switch {
	case e.AsyncStart != nil:
		return "AsyncStart"
	case e.AsyncOnCPU != nil:
		return "AsyncOnCPU"
	case e.AsyncOffCPU != nil:
		return "AsyncOffCPU"
	case e.AsyncEnd != nil:
		return "AsyncEnd"
	case e.SyncStart != nil:
		return "SyncStart"
	case e.SyncEnd != nil:
		return "SyncEnd"
	case e.ThreadStart != nil:
		return "ThreadStart"
	case e.ThreadEnd != nil:
		return "ThreadEnd"
	case e.Wakeup != nil:
		return "Wakeup"
	default:
		return "<empty>"
	}
}

// ParseEvent decodes a single line (without its trailing newline) of the
// event stream into an Event. It returns a codes.InvalidArgument error if
// the line is not valid JSON, or does not carry exactly one recognized
// tag.
func ParseEvent(line []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(line, &w); err != nil {
		return Event{}, status.Errorf(codes.InvalidArgument, "malformed event line: %v", err)
	}
	ev := Event{
		AsyncStart:  w.AsyncStart,
		AsyncOnCPU:  w.AsyncOnCPU,
		AsyncOffCPU: w.AsyncOffCPU,
		AsyncEnd:    w.AsyncEnd,
		SyncStart:   w.SyncStart,
		SyncEnd:     w.SyncEnd,
		ThreadStart: w.ThreadStart,
		ThreadEnd:   w.ThreadEnd,
		Wakeup:      w.Wakeup,
	}
	n := 0
	for _, set := range []bool{
		ev.AsyncStart != nil, ev.AsyncOnCPU != nil, ev.AsyncOffCPU != nil, ev.AsyncEnd != nil,
		ev.SyncStart != nil, ev.SyncEnd != nil, ev.ThreadStart != nil, ev.ThreadEnd != nil, ev.Wakeup != nil,
	} {
		if set {
			n++
		}
	}
	if n != 1 {
		return Event{}, status.Errorf(codes.InvalidArgument, "event line must have exactly one tag, found %d", n)
	}
	return ev, nil
}
