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
package eventstream

import (
	"encoding/json"
	"io"

	"github.com/golang/glog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sujayakar/cyclotron/tracedata"
)

// pendingWakeup buffers a Wakeup event until both of its endpoints have
// been observed (or are known never to appear).
type pendingWakeup struct {
	waker, parked uint64
	nanos         uint64
}

// loader holds the mutable state needed to normalize a stream of wire
// events into a tracedata.Database: the external-id -> TaskId mapping, the
// begin timestamp of any currently-open on-CPU bracket, and wakeups that
// have not yet been resolved to both endpoints.
type loader struct {
	b *tracedata.Builder

	// ids maps the recorder's own task/span identifiers to the dense
	// TaskIds the builder hands out (SPEC_FULL.md §4.1's arena+index
	// translation layer).
	ids map[uint64]tracedata.TaskId

	// openCPU records the begin timestamp of each task's currently open
	// on-CPU bracket, keyed by TaskId.
	openCPU map[tracedata.TaskId]uint64

	wakeups []pendingWakeup

	maxTs uint64
}

func newLoader() *loader {
	return &loader{
		b:       tracedata.NewBuilder(),
		ids:     make(map[uint64]tracedata.TaskId),
		openCPU: make(map[tracedata.TaskId]uint64),
	}
}

// Load reads a newline-delimited stream of eventstream events from r and
// normalizes them into a tracedata.Database, per SPEC_FULL.md §4.1. A line
// that is not valid JSON, like an incomplete final line (the recording was
// still in progress when r was read), is logged with its line number and
// treated as the end of the stream, matching the traceparser package's
// truncation-as-EOF philosophy. A valid JSON line that is not a recognized
// event, or an event that breaks the loader's rules, is a fatal error.
func Load(r io.Reader) (*tracedata.Database, error) {
	ld := newLoader()
	lr := newLineReader(r)
	for {
		line, ok, err := lr.next()
		if err != nil {
			return nil, status.Errorf(codes.Internal, "reading event stream: %v", err)
		}
		if !ok {
			break
		}
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			glog.Warningf("eventstream: line %d is not valid JSON, treating it as the end of the stream", lr.lineNo)
			break
		}
		ev, err := ParseEvent(line)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "line %d: %v", lr.lineNo, err)
		}
		if err := ld.apply(ev); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "line %d (%s): %v", lr.lineNo, ev.Tag(), err)
		}
	}
	return ld.finish()
}

func (ld *loader) observe(nanos uint64) {
	if nanos > ld.maxTs {
		ld.maxTs = nanos
	}
}

// lookup returns the TaskId registered for an external id by its Start
// event, and false if no Start event for that id has been seen. It never
// registers a mapping; start does that.
func (ld *loader) lookup(ext uint64) (tracedata.TaskId, bool) {
	id, ok := ld.ids[ext]
	return id, ok
}

func (ld *loader) resolveParent(ext uint64) tracedata.TaskId {
	if id, ok := ld.lookup(ext); ok {
		return id
	}
	glog.Warningf("eventstream: parent id %d not found, attaching as root", ext)
	return tracedata.NoTask
}

func (ld *loader) apply(ev Event) error {
	switch {
	case ev.AsyncStart != nil:
		return ld.start(ev.AsyncStart.ID, ev.AsyncStart.ParentID, true, ev.AsyncStart.Name, ev.AsyncStart.Ts, true)
	case ev.SyncStart != nil:
		return ld.start(ev.SyncStart.ID, ev.SyncStart.ParentID, true, ev.SyncStart.Name, ev.SyncStart.Ts, false)
	case ev.ThreadStart != nil:
		return ld.start(ev.ThreadStart.ID, 0, false, ev.ThreadStart.Name, ev.ThreadStart.Ts, false)

	case ev.AsyncEnd != nil:
		id, err := ld.require(ev.AsyncEnd.ID)
		if err != nil {
			return err
		}
		nanos := ev.AsyncEnd.Ts.Nanos64()
		ld.observe(nanos)
		if err := ld.b.Close(id, nanos); err != nil {
			return err
		}
		outcome, msg := translateOutcome(ev.AsyncEnd.Outcome)
		return ld.b.SetOutcome(id, outcome, msg)
	case ev.SyncEnd != nil:
		id, err := ld.require(ev.SyncEnd.ID)
		if err != nil {
			return err
		}
		nanos := ev.SyncEnd.Ts.Nanos64()
		ld.observe(nanos)
		return ld.b.Close(id, nanos)
	case ev.ThreadEnd != nil:
		id, err := ld.require(ev.ThreadEnd.ID)
		if err != nil {
			return err
		}
		nanos := ev.ThreadEnd.Ts.Nanos64()
		ld.observe(nanos)
		return ld.b.Close(id, nanos)

	case ev.AsyncOnCPU != nil:
		id, err := ld.require(ev.AsyncOnCPU.ID)
		if err != nil {
			return err
		}
		nanos := ev.AsyncOnCPU.Ts.Nanos64()
		ld.observe(nanos)
		if err := ld.b.OpenOnCPU(id); err != nil {
			return err
		}
		ld.openCPU[id] = nanos
		return nil
	case ev.AsyncOffCPU != nil:
		id, err := ld.require(ev.AsyncOffCPU.ID)
		if err != nil {
			return err
		}
		nanos := ev.AsyncOffCPU.Ts.Nanos64()
		ld.observe(nanos)
		begin, ok := ld.openCPU[id]
		if !ok {
			return status.Errorf(codes.FailedPrecondition, "task %s has no open on-CPU bracket", id)
		}
		delete(ld.openCPU, id)
		return ld.b.CloseOnCPU(id, begin, nanos)

	case ev.Wakeup != nil:
		nanos := ev.Wakeup.Ts.Nanos64()
		ld.observe(nanos)
		ld.wakeups = append(ld.wakeups, pendingWakeup{
			waker:  ev.Wakeup.WakingSpan,
			parked: ev.Wakeup.ParkedSpan,
			nanos:  nanos,
		})
		return nil
	}
	return status.Errorf(codes.InvalidArgument, "unrecognized event")
}

// start registers a new task for a Start-shaped event. hasParent must be
// true for AsyncStart/SyncStart (whose parent_id field is always present,
// with no zero-sentinel "no parent" value -- id 0 is a legitimate external
// id) and false for ThreadStart (which carries no parent field at all).
func (ld *loader) start(ext, extParent uint64, hasParent bool, rawName string, ts Duration, hasOnCPU bool) error {
	if _, exists := ld.ids[ext]; exists {
		return status.Errorf(codes.AlreadyExists, "id %d already started", ext)
	}
	nanos := ts.Nanos64()
	ld.observe(nanos)
	parent := tracedata.NoTask
	if hasParent {
		parent = ld.resolveParent(extParent)
	}
	name := ld.b.InternName(rawName)
	id := ld.b.AddTask(parent, name, nanos, hasOnCPU)
	ld.ids[ext] = id
	return nil
}

func (ld *loader) require(ext uint64) (tracedata.TaskId, error) {
	id, ok := ld.lookup(ext)
	if !ok {
		return 0, status.Errorf(codes.NotFound, "id %d never started", ext)
	}
	return id, nil
}

func translateOutcome(o Outcome) (tracedata.Outcome, string) {
	switch o.Kind {
	case OutcomeSuccess:
		return tracedata.OutcomeSuccess, ""
	case OutcomeCancelled:
		return tracedata.OutcomeCancelled, ""
	case OutcomeError:
		return tracedata.OutcomeError, o.Message
	default:
		return tracedata.OutcomeUnknown, ""
	}
}

// finish closes out any tasks and brackets still open at end of stream,
// resolves buffered wakeups, and hands off to the builder.
func (ld *loader) finish() (*tracedata.Database, error) {
	for id, begin := range ld.openCPU {
		glog.Warningf("eventstream: task %s never went off-CPU, closing at stream end", id)
		if err := ld.b.CloseOnCPU(id, begin, ld.maxTs); err != nil {
			return nil, status.Errorf(codes.Internal, "closing dangling on-CPU bracket for %s: %v", id, err)
		}
	}
	for _, w := range ld.wakeups {
		waker, ok1 := ld.lookup(w.waker)
		parked, ok2 := ld.lookup(w.parked)
		if !ok1 || !ok2 {
			glog.Warningf("eventstream: dropping wakeup %d -> %d, endpoint never started", w.waker, w.parked)
			continue
		}
		if err := ld.b.AddWakeup(waker, parked, w.nanos); err != nil {
			return nil, err
		}
	}
	return ld.b.Build(ld.maxTs)
}
