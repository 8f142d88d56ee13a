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
// Package tracedata provides the normalized, in-memory representation of a
// loaded task trace: interned task and name tables, per-task lifetime and
// on-CPU intervals, and wake/park cross-references.  It understands the
// task lifecycle events AsyncStart/AsyncEnd, SyncStart/SyncEnd,
// ThreadStart/ThreadEnd, AsyncOnCPU/AsyncOffCPU, and Wakeup.
package tracedata

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Span describes a half-open time interval [Begin, End) in nanoseconds from
// an unspecified monotonic origin.
type Span struct {
	Begin uint64
	End   uint64
}

// Valid returns true iff the span is well-formed: Begin strictly precedes End.
func (s Span) Valid() bool {
	return s.Begin < s.End
}

// Width returns the duration of the span in nanoseconds.
func (s Span) Width() uint64 {
	return s.End - s.Begin
}

// Intersects returns true iff the receiver and other overlap under half-open
// interval semantics.
func (s Span) Intersects(other Span) bool {
	return s.Begin < other.End && s.End > other.Begin
}

// Contains returns true iff t falls within the receiver under half-open
// interval semantics: Begin <= t < End.
func (s Span) Contains(t uint64) bool {
	return s.Begin <= t && t < s.End
}

// Union returns the smallest span containing both the receiver and other.
func (s Span) Union(other Span) Span {
	u := s
	if other.Begin < u.Begin {
		u.Begin = other.Begin
	}
	if other.End > u.End {
		u.End = other.End
	}
	return u
}

func (s Span) String() string {
	return fmt.Sprintf("[%d, %d)", s.Begin, s.End)
}

// checkSpan returns an error if s is not a valid, finalized span.
func checkSpan(s Span) error {
	if !s.Valid() {
		return status.Errorf(codes.InvalidArgument, "invalid span %s: begin must precede end", s)
	}
	return nil
}
