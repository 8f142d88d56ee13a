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
// Package view is the interactive, single-threaded state machine sitting
// between a layout.Layout and the draw command stream: cursor position,
// drag state, zoom/pan window, and trace/profile mode. Every mutation is
// followed by a pure re-derivation of visible rows/aggregation and
// selection; there are no callbacks or subscribers.
package view

import (
	"math"
	"time"

	"github.com/sujayakar/cyclotron/layout"
	"github.com/sujayakar/cyclotron/tracedata"
)

// Now returns the current time. Tests override it to control drag-duration
// measurement without a real clock.
var Now = time.Now

// MinWidth is the narrowest span a View may zoom in to, in nanoseconds.
const MinWidth uint64 = 1e5

// Mode selects which Derived shape a View computes: the raw timeline, or
// a per-thread foreground-time aggregation.
type Mode int

const (
	ModeTrace Mode = iota
	ModeProfile
)

// Point is a cursor position in normalized [0,1]x[0,1] viewport coordinates.
type Point struct {
	X, Y float64
}

// View is the complete interactive state for one loaded trace.
type View struct {
	cursor     Point
	cursorDown *Point
	dragStart  time.Time
	mode       Mode
	limits     tracedata.Span
	span       tracedata.Span
	derived    *derived
	cache      *deriveCache
}

// New builds a View whose initial span is the full extent of l (excluding
// thread rows), in Trace mode, cursor at the origin.
func New(l *layout.Layout) *View {
	limits := l.SpanDiscountingThreads()
	v := &View{
		mode:   ModeTrace,
		limits: limits,
		span:   limits,
		cache:  newDeriveCache(32),
	}
	v.derived = v.deriveFor(l)
	return v
}

// ToggleMode flips between Trace and Profile mode and re-derives.
func (v *View) ToggleMode(l *layout.Layout) {
	if v.mode == ModeTrace {
		v.mode = ModeProfile
	} else {
		v.mode = ModeTrace
	}
	v.derived = v.deriveFor(l)
}

// Mode returns the current mode.
func (v *View) Mode() Mode {
	return v.mode
}

// Relayout recomputes Limits against a freshly rebuilt Layout (e.g. after a
// filter change) and reclamps the current span into it. The cache is
// dropped outright since cached Derived values reference the old Layout's
// rows.
func (v *View) Relayout(l *layout.Layout) {
	v.limits = l.SpanDiscountingThreads()
	v.cache = newDeriveCache(32)
	v.SetSpan(l, v.span)
}

// BeginDrag anchors a drag-to-zoom rectangle at the current cursor.
func (v *View) BeginDrag() {
	c := v.cursor
	v.cursorDown = &c
	v.dragStart = Now()
}

// CancelDrag discards an in-progress drag without committing a new span.
func (v *View) CancelDrag() {
	v.cursorDown = nil
}

// EndDrag completes a drag-to-zoom gesture and returns the span that was
// current before the call. If the drag was held for less than 100ms, it is
// treated as a click (select-under-cursor, already reflected by Hover) and
// the span is left unchanged. Panics if no drag is in progress, mirroring
// the precondition violation this indicates upstream.
func (v *View) EndDrag(l *layout.Layout) tracedata.Span {
	if v.cursorDown == nil {
		panic("view: EndDrag called without a preceding BeginDrag")
	}
	old := v.span
	down := *v.cursorDown
	v.cursorDown = nil

	if Now().Sub(v.dragStart) < 100*time.Millisecond {
		return old
	}

	left, right := down.X, v.cursor.X
	if left > right {
		left, right = right, left
	}

	begin := float64(v.span.Begin)
	end := float64(v.span.End)
	newBegin := begin*(1-left) + end*left
	newEnd := begin*(1-right) + end*right

	v.SetSpan(l, tracedata.Span{Begin: uint64(newBegin), End: uint64(newEnd)})
	return old
}

// Selection describes whatever is under the cursor in the current mode.
type Selection struct {
	IsSpan bool

	// Populated when IsSpan is true (Trace mode).
	Task tracedata.TaskId
	Span tracedata.Span

	// Populated in both modes.
	Name tracedata.NameId
	// Time is only meaningful when IsSpan is false (Profile mode):
	// aggregated foreground nanoseconds for Name.
	Time uint64
}

// Selection returns the current hover/drag selection, or false if nothing
// is selected.
func (v *View) Selection() (Selection, bool) {
	switch m := v.derived.mode.(type) {
	case traceDerived:
		if m.selection == nil {
			return Selection{}, false
		}
		return Selection{IsSpan: true, Task: m.selection.task, Name: m.selection.name, Span: m.selection.span}, true
	case profileDerived:
		if m.selection == nil {
			return Selection{}, false
		}
		return Selection{IsSpan: false, Name: m.selection.name, Time: m.selection.time}, true
	default:
		return Selection{}, false
	}
}

// Hover updates the cursor position and re-derives selection (and, via the
// memoization cache, potentially the whole Derived) for the new coordinate.
func (v *View) Hover(l *layout.Layout, coord Point) {
	v.cursor = coord
	v.derived = v.deriveFor(l)
}

// CursorTime returns the timestamp under the cursor's current horizontal
// position.
func (v *View) CursorTime() uint64 {
	begin := float64(v.span.Begin)
	end := float64(v.span.End)
	return uint64(begin*(1-v.cursor.X) + end*v.cursor.X)
}

// SpanTime returns the width, in nanoseconds, of the current visible span.
func (v *View) SpanTime() uint64 {
	return v.span.End - v.span.Begin
}

// Span returns the current visible window.
func (v *View) Span() tracedata.Span {
	return v.span
}

// Limits returns the maximum zoom-out extent.
func (v *View) Limits() tracedata.Span {
	return v.limits
}

func bounded(a, b, c uint64) uint64 {
	if b < a {
		return a
	}
	if b > c {
		return c
	}
	return b
}

// SetSpan clamps span into Limits (respecting MinWidth) and re-derives.
func (v *View) SetSpan(l *layout.Layout, span tracedata.Span) {
	v.span.Begin = bounded(v.limits.Begin, span.Begin, v.limits.End-MinWidth)
	v.span.End = bounded(v.span.Begin+MinWidth, span.End, v.limits.End)
	v.derived = v.deriveFor(l)
}

// SetSpanFull resets the visible window to the full extent of Limits.
func (v *View) SetSpanFull(l *layout.Layout) {
	v.SetSpan(l, v.limits)
}

func lerp(a, b, factor float64) float64 {
	return a*(1-factor) + b*factor
}

// Scroll interprets dx as a pan and dy as a cursor-anchored zoom: positive
// dy zooms in, negative zooms out, and the point under the cursor's
// horizontal position stays fixed. A no-op in Profile mode.
func (v *View) Scroll(l *layout.Layout, dx, dy float64) {
	if v.mode == ModeProfile {
		return
	}

	factor := math.Pow(1.05, -dy/10)
	cursor := v.cursor.X

	begin := float64(v.span.Begin)
	end := float64(v.span.End)

	xDelta := dx * (end - begin) / 1000.0

	newWidth := (end - begin) * factor
	maxWidth := float64(v.limits.End - v.limits.Begin)

	if newWidth < float64(MinWidth) {
		newWidth = float64(MinWidth)
	}
	if newWidth > maxWidth {
		newWidth = maxWidth
	}

	newBegin := lerp(begin+xDelta, end-newWidth+xDelta, cursor)
	newEnd := newBegin + newWidth

	v.span.Begin = bounded(v.limits.Begin, uint64(math.Max(0, newBegin)), v.limits.End-MinWidth)
	v.span.End = bounded(v.span.Begin+MinWidth, uint64(newEnd), v.limits.End)
	v.derived = v.deriveFor(l)
}
