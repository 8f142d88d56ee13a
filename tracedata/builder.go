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
package tracedata

import (
	"sort"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Builder incrementally assembles a Database from a stream of task
// lifecycle events.  It is the single place that owns task storage during
// load: TaskIds are handed out sequentially as AddTask is called (the
// arena+index pattern -- see DESIGN.md), and every other package navigates
// tasks by TaskId from then on.
//
// Builder performs only the bookkeeping that requires a dense TaskId arena
// (closed-state tracking, children indexing); the event-stream-specific
// concerns -- mapping wire ids to TaskIds, matching AsyncOnCPU/AsyncOffCPU
// pairs, buffering wakeups until both endpoints are known -- belong to the
// eventstream package's loader, which calls through to Builder.
type Builder struct {
	names    *nameBank
	tasks    []Task
	closed   []bool
	cpuOpen  []bool
	children map[TaskId][]TaskId
	wakes    [][]WakeEdge
	parks    [][]WakeEdge
}

// NewBuilder returns a new, empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		names:    newNameBank(),
		children: make(map[TaskId][]TaskId),
	}
}

// InternName simplifies (per simplifyName) and interns a raw task name,
// returning its NameId.
func (b *Builder) InternName(raw string) NameId {
	return b.names.idByString(simplifyName(raw))
}

// AddTask allocates a fresh TaskId for a task first observed starting at
// begin, with the given parent (NoTask for thread roots) and name.
// hasOnCPU selects whether this is an async task (which tracks on-CPU
// sub-spans) or a sync span/thread (which does not). The task's end is
// initialized to the MaxTimestamp sentinel until Close is called.
func (b *Builder) AddTask(parent TaskId, name NameId, begin uint64, hasOnCPU bool) TaskId {
	id := TaskId(len(b.tasks))
	b.tasks = append(b.tasks, Task{
		ID:       id,
		Parent:   parent,
		Name:     name,
		Span:     Span{Begin: begin, End: MaxTimestamp},
		HasOnCPU: hasOnCPU,
	})
	b.closed = append(b.closed, false)
	b.cpuOpen = append(b.cpuOpen, false)
	b.wakes = append(b.wakes, nil)
	b.parks = append(b.parks, nil)
	if parent.Valid() {
		b.children[parent] = append(b.children[parent], id)
	}
	return id
}

// Close sets a task's end timestamp, marking it closed.  Returns a fatal
// error if id is out of range or already closed (a duplicate end event).
func (b *Builder) Close(id TaskId, end uint64) error {
	if err := b.checkID(id); err != nil {
		return err
	}
	if b.closed[id] {
		return status.Errorf(codes.FailedPrecondition, "task %s closed twice", id)
	}
	b.closed[id] = true
	b.tasks[id].Span.End = end
	return nil
}

// OpenOnCPU marks the start of an on-CPU bracket for an async task.
// Returns a fatal error if id is out of range, is not an async task, or
// already has an open bracket (two consecutive AsyncOnCPU events with no
// intervening AsyncOffCPU).
func (b *Builder) OpenOnCPU(id TaskId) error {
	if err := b.checkID(id); err != nil {
		return err
	}
	if !b.tasks[id].HasOnCPU {
		return status.Errorf(codes.FailedPrecondition, "task %s is not async, cannot go on-CPU", id)
	}
	if b.cpuOpen[id] {
		return status.Errorf(codes.FailedPrecondition, "task %s already on-CPU (double OnCPU)", id)
	}
	b.cpuOpen[id] = true
	return nil
}

// CloseOnCPU closes the most recently opened on-CPU bracket for id,
// appending [begin, end) to its on-CPU spans. Returns a fatal error if
// there is no open bracket (an AsyncOffCPU with no preceding AsyncOnCPU).
func (b *Builder) CloseOnCPU(id TaskId, begin, end uint64) error {
	if err := b.checkID(id); err != nil {
		return err
	}
	if !b.cpuOpen[id] {
		return status.Errorf(codes.FailedPrecondition, "task %s has no open on-CPU bracket (double OffCPU)", id)
	}
	b.cpuOpen[id] = false
	b.tasks[id].OnCPU = append(b.tasks[id].OnCPU, Span{Begin: begin, End: end})
	return nil
}

// HasOpenOnCPU reports whether id currently has an unmatched AsyncOnCPU.
func (b *Builder) HasOpenOnCPU(id TaskId) bool {
	if int(id) >= len(b.cpuOpen) {
		return false
	}
	return b.cpuOpen[id]
}

// IsClosed reports whether id has already received its End event.
func (b *Builder) IsClosed(id TaskId) bool {
	if int(id) >= len(b.closed) {
		return false
	}
	return b.closed[id]
}

// SetOutcome records the outcome of an async task's End event.
func (b *Builder) SetOutcome(id TaskId, outcome Outcome, errMsg string) error {
	if err := b.checkID(id); err != nil {
		return err
	}
	b.tasks[id].Outcome = outcome
	b.tasks[id].ErrorMessage = errMsg
	return nil
}

// AddWakeup records that waker woke parked at the given timestamp.
func (b *Builder) AddWakeup(waker, parked TaskId, nanos uint64) error {
	if err := b.checkID(waker); err != nil {
		return err
	}
	if err := b.checkID(parked); err != nil {
		return err
	}
	b.wakes[waker] = append(b.wakes[waker], WakeEdge{Other: parked, Nanos: nanos})
	b.parks[parked] = append(b.parks[parked], WakeEdge{Other: waker, Nanos: nanos})
	return nil
}

func (b *Builder) checkID(id TaskId) error {
	if int(id) < 0 || int(id) >= len(b.tasks) {
		return status.Errorf(codes.NotFound, "task %s not found", id)
	}
	return nil
}

// TaskCount returns the number of tasks added so far.
func (b *Builder) TaskCount() int {
	return len(b.tasks)
}

// Build finalizes the Database: any task still open (no End observed) is
// closed at maxTs, wake edges are sorted by timestamp for determinism, and
// the load invariants are checked: every task span is valid, and every
// on-CPU sub-span is valid, lies within its task's span, and (once sorted)
// does not overlap its neighbour. The caller (the
// eventstream loader) must close every pending on-CPU bracket via
// CloseOnCPU before calling Build -- see its EOF handling in §4.1 -- since
// only the loader knows the bracket's begin timestamp. Build consumes the
// receiver -- it must not be used again afterwards.
func (b *Builder) Build(maxTs uint64) (*Database, error) {
	for id := range b.tasks {
		tid := TaskId(id)
		if !b.closed[tid] {
			b.tasks[tid].Span.End = maxTs
			b.closed[tid] = true
		}
		if b.cpuOpen[tid] {
			return nil, status.Errorf(codes.Internal, "task %s still has an open on-CPU bracket at Build time", tid)
		}
		if err := checkSpan(b.tasks[tid].Span); err != nil {
			return nil, status.Errorf(codes.Internal, "task %s: %v", tid, err)
		}
	}

	for id := range b.tasks {
		tid := TaskId(id)
		onCPU := b.tasks[tid].OnCPU
		sort.Slice(onCPU, func(a, c int) bool { return onCPU[a].Begin < onCPU[c].Begin })
		for i, s := range onCPU {
			if !s.Valid() {
				return nil, status.Errorf(codes.Internal, "task %s on-CPU span %s invalid", tid, s)
			}
			if s.Begin < b.tasks[tid].Span.Begin || s.End > b.tasks[tid].Span.End {
				return nil, status.Errorf(codes.Internal, "task %s on-CPU span %s escapes task span %s", tid, s, b.tasks[tid].Span)
			}
			if i > 0 && onCPU[i-1].End > s.Begin {
				return nil, status.Errorf(codes.Internal, "task %s on-CPU spans overlap: %s, %s", tid, onCPU[i-1], s)
			}
		}
		sort.Slice(b.wakes[tid], func(a, c int) bool { return b.wakes[tid][a].Nanos < b.wakes[tid][c].Nanos })
		sort.Slice(b.parks[tid], func(a, c int) bool { return b.parks[tid][a].Nanos < b.parks[tid][c].Nanos })
	}

	db := &Database{
		names:    b.names,
		tasks:    b.tasks,
		children: b.children,
		wakes:    b.wakes,
		parks:    b.parks,
	}
	return db, nil
}
