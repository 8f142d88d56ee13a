// Copyright 2019 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS-IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package view

import (
	"testing"
	"time"

	"github.com/sujayakar/cyclotron/layout"
	"github.com/sujayakar/cyclotron/tracedata"
)

// buildFixtureLayout builds a two-task thread: a root spanning [0, 1e9) with
// one on-CPU child spanning [1e8, 5e8) on-CPU [2e8, 3e8).
func buildFixtureLayout(t *testing.T) *layout.Layout {
	t.Helper()
	b := tracedata.NewBuilder()
	rootName := b.InternName("root")
	childName := b.InternName("child")

	root := b.AddTask(tracedata.NoTask, rootName, 0, false)
	child := b.AddTask(root, childName, 1e8, true)
	if err := b.OpenOnCPU(child); err != nil {
		t.Fatal(err)
	}
	if err := b.CloseOnCPU(child, 2e8, 3e8); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(child, 5e8); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(root, 1e9); err != nil {
		t.Fatal(err)
	}

	db, err := b.Build(1e9)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	l, err := layout.Build(db, "")
	if err != nil {
		t.Fatalf("layout.Build: %v", err)
	}
	return l
}

func TestNewStartsInTraceModeAtFullExtent(t *testing.T) {
	l := buildFixtureLayout(t)
	v := New(l)
	if v.Mode() != ModeTrace {
		t.Errorf("Mode() = %v, want ModeTrace", v.Mode())
	}
	if v.Span() != v.Limits() {
		t.Errorf("Span() = %s, want full Limits() %s", v.Span(), v.Limits())
	}
}

func TestToggleModeSwitchesBetweenTraceAndProfile(t *testing.T) {
	l := buildFixtureLayout(t)
	v := New(l)
	v.ToggleMode(l)
	if v.Mode() != ModeProfile {
		t.Errorf("Mode() after one toggle = %v, want ModeProfile", v.Mode())
	}
	v.ToggleMode(l)
	if v.Mode() != ModeTrace {
		t.Errorf("Mode() after two toggles = %v, want ModeTrace", v.Mode())
	}
}

func TestSetSpanClampsToLimitsAndMinWidth(t *testing.T) {
	l := buildFixtureLayout(t)
	v := New(l)

	// A span narrower than MinWidth should be widened to MinWidth.
	v.SetSpan(l, tracedata.Span{Begin: 100, End: 101})
	if got := v.SpanTime(); got != MinWidth {
		t.Errorf("SpanTime() = %d, want MinWidth %d", got, MinWidth)
	}

	// A span extending past Limits should clamp to Limits.
	limits := v.Limits()
	v.SetSpan(l, tracedata.Span{Begin: 0, End: limits.End + 1e6})
	if v.Span().End != limits.End {
		t.Errorf("Span().End = %d, want clamped to Limits().End %d", v.Span().End, limits.End)
	}
}

func TestScrollZoomsInAndOutWithinBounds(t *testing.T) {
	l := buildFixtureLayout(t)
	v := New(l)
	full := v.SpanTime()

	v.Scroll(l, 0, 20) // zoom in: positive dy per the 1.05^(-dy/10) factor
	if got := v.SpanTime(); got >= full {
		t.Errorf("SpanTime() after zoom-in = %d, want < full extent %d", got, full)
	}

	v.Scroll(l, 0, -2000) // zoom far out, should clamp to the full extent
	if got := v.SpanTime(); got != v.Limits().End-v.Limits().Begin {
		t.Errorf("SpanTime() after zoom-out clamp = %d, want full Limits width", got)
	}
}

func TestScrollIsNoopInProfileMode(t *testing.T) {
	l := buildFixtureLayout(t)
	v := New(l)
	v.ToggleMode(l)
	before := v.Span()
	v.Scroll(l, 0, -50)
	if v.Span() != before {
		t.Errorf("Scroll mutated span in Profile mode: before %s, after %s", before, v.Span())
	}
}

func TestDragBelowThresholdDoesNotCommitSpan(t *testing.T) {
	l := buildFixtureLayout(t)
	v := New(l)
	before := v.Span()

	now := time.Unix(0, 0)
	Now = func() time.Time { return now }
	defer func() { Now = time.Now }()

	v.BeginDrag()
	now = now.Add(50 * time.Millisecond)
	v.Hover(l, Point{X: 0.8, Y: 0.5})
	old := v.EndDrag(l)

	if old != before {
		t.Errorf("EndDrag returned %s, want the pre-drag span %s", old, before)
	}
	if v.Span() != before {
		t.Errorf("short drag committed a new span: %s, want unchanged %s", v.Span(), before)
	}
}

func TestDragAboveThresholdCommitsSpan(t *testing.T) {
	l := buildFixtureLayout(t)
	v := New(l)
	before := v.Span()

	now := time.Unix(0, 0)
	Now = func() time.Time { return now }
	defer func() { Now = time.Now }()

	v.Hover(l, Point{X: 0.2, Y: 0.5})
	v.BeginDrag()
	now = now.Add(200 * time.Millisecond)
	v.Hover(l, Point{X: 0.6, Y: 0.5})
	old := v.EndDrag(l)

	if old != before {
		t.Errorf("EndDrag returned %s, want the pre-drag span %s", old, before)
	}
	if v.Span() == before {
		t.Errorf("long drag did not commit a new span")
	}
	if v.SpanTime() > before.End-before.Begin {
		t.Errorf("drag-zoom widened the span: got width %d, had %d", v.SpanTime(), before.End-before.Begin)
	}
}

func TestHoverSelectsTheOnCPUSpanUnderTheCursor(t *testing.T) {
	l := buildFixtureLayout(t)
	v := New(l)

	// The on-CPU child occupies row 1, [2e8, 3e8). Limits exclude the thread
	// row, so the window is the child's own [1e8, 5e8) and cursor.X = 0.25
	// maps to time 2e8, the on-CPU span's (inclusive) begin.
	v.Hover(l, Point{X: 0.25, Y: 0.75})

	sel, ok := v.Selection()
	if !ok {
		t.Fatal("Selection() returned nothing, want a hit on the on-CPU span")
	}
	if !sel.IsSpan {
		t.Fatalf("Selection() = %+v, want a Trace-mode span selection", sel)
	}
	if got, want := sel.Span, (tracedata.Span{Begin: 2e8, End: 3e8}); got != want {
		t.Errorf("Selection().Span = %s, want %s", got, want)
	}
}

func TestProfileModeAggregatesForegroundTime(t *testing.T) {
	l := buildFixtureLayout(t)
	v := New(l)
	v.ToggleMode(l)

	cmds := v.DrawCommands()
	if len(cmds) == 0 {
		t.Fatal("DrawCommands() returned nothing in Profile mode")
	}
}
