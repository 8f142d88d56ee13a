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
	"sort"

	"github.com/sujayakar/cyclotron/draw"
	"github.com/sujayakar/cyclotron/layout"
	"github.com/sujayakar/cyclotron/tracedata"
)

// derived is the per-frame snapshot computed from (cursor, span, mode,
// layout): either a Trace-mode row list or a Profile-mode aggregation,
// plus whatever is currently selected.
type derived struct {
	mode derivedMode
}

type derivedMode interface {
	isDerivedMode()
}

type subrow struct {
	key   draw.RowKey
	color draw.Color
	rng   draw.SpanRange
}

type traceRow struct {
	thread, row int
	subrows     []subrow
	base, limit float32
}

type traceSelection struct {
	key   draw.RowKey
	task  tracedata.TaskId
	name  tracedata.NameId
	index int
	span  tracedata.Span
}

type traceDerived struct {
	rows      []traceRow
	selection *traceSelection
}

func (traceDerived) isDerivedMode() {}

type profileRow struct {
	name        tracedata.NameId
	time        uint64
	base, limit float32
}

type profileThread struct {
	rows []profileRow
}

type profileSelection struct {
	name                    tracedata.NameId
	time                    uint64
	threadBase, threadLimit float32
	base, limit             float32
}

type profileDerived struct {
	threads   []profileThread
	selection *profileSelection
}

func (profileDerived) isDerivedMode() {}

// computeRows builds the Trace-mode row list: one entry per (thread, row)
// pair with at least one chunk overlapping span, each carrying one subrow
// per overlapping chunk (Back drawn faint behind Fore).
func computeRows(span tracedata.Span, l *layout.Layout) []traceRow {
	var res []traceRow
	base := float32(0)

	for ti, t := range l.Threads {
		for ri, r := range t.Rows {
			var subrows []subrow
			type candidate struct {
				back  bool
				alpha float32
			}
			for _, c := range []candidate{{true, 0}, {false, 0.5}} {
				ch := &r.Fore
				if c.back {
					ch = &r.Back
				}
				if ch.HasOverlap(span) {
					subrows = append(subrows, subrow{
						key:   draw.RowKey{Thread: ti, Row: ri, Back: c.back},
						color: draw.Color{R: 0, G: 0, B: 0, A: c.alpha},
						rng:   draw.SpanRange{Begin: 0, End: ch.Len()},
					})
				}
			}

			if len(subrows) > 0 {
				res = append(res, traceRow{
					thread:  ti,
					row:     ri,
					subrows: subrows,
					base:    base,
					limit:   base + 1,
				})
				base++
			}
		}
	}
	return res
}

// computeProfileRows builds the Profile-mode aggregation: per thread, total
// foreground time per NameId within span, sorted descending by time.
func computeProfileRows(span tracedata.Span, l *layout.Layout) []profileThread {
	res := make([]profileThread, 0, len(l.Threads))
	base := float32(0)

	for _, t := range l.Threads {
		cpuTimePerName := make(map[tracedata.NameId]uint64)

		for _, r := range t.Rows {
			for i, name := range r.Fore.Names {
				begin := r.Fore.Begins[i]
				end := r.Fore.Ends[i]
				if begin < span.Begin {
					begin = span.Begin
				}
				if end > span.End {
					end = span.End
				}
				if end < begin {
					end = begin
				}
				if end-begin > 0 {
					cpuTimePerName[name] += end - begin
				}
			}
		}

		names := make([]tracedata.NameId, 0, len(cpuTimePerName))
		for name := range cpuTimePerName {
			names = append(names, name)
		}
		sort.Slice(names, func(a, b int) bool {
			ta, tb := cpuTimePerName[names[a]], cpuTimePerName[names[b]]
			if ta != tb {
				return ta > tb
			}
			return names[a] < names[b]
		})

		var rows []profileRow
		for _, name := range names {
			rows = append(rows, profileRow{
				name:  name,
				time:  cpuTimePerName[name],
				base:  base,
				limit: base + 1,
			})
			base++
		}
		res = append(res, profileThread{rows: rows})
	}
	return res
}

func findSelection(cursor Point, span tracedata.Span, rows []traceRow, l *layout.Layout) *traceSelection {
	xValue := uint64(cursor.X*float64(span.End-span.Begin)) + span.Begin

	if len(rows) == 0 {
		return nil
	}
	total := rows[len(rows)-1].limit

	for _, row := range rows {
		vBase := row.base / total
		vLimit := row.limit / total
		if float32(cursor.Y) < vBase || float32(cursor.Y) >= vLimit {
			continue
		}

		for i := len(row.subrows) - 1; i >= 0; i-- {
			sr := row.subrows[i]
			rowData := &l.Threads[sr.key.Thread].Rows[sr.key.Row]
			ch := &rowData.Fore
			if sr.key.Back {
				ch = &rowData.Back
			}
			if idx, ok := ch.Find(xValue); ok {
				return &traceSelection{
					key:   sr.key,
					task:  ch.Tasks[idx],
					name:  ch.Names[idx],
					index: idx,
					span:  tracedata.Span{Begin: ch.Begins[idx], End: ch.Ends[idx]},
				}
			}
		}
	}
	return nil
}

func findProfileSelection(cursor Point, threads []profileThread) *profileSelection {
	if len(threads) == 0 || len(threads[len(threads)-1].rows) == 0 {
		return nil
	}
	totalHeight := threads[len(threads)-1].rows[len(threads[len(threads)-1].rows)-1].limit

	for _, thread := range threads {
		if len(thread.rows) == 0 {
			continue
		}
		for _, row := range thread.rows {
			base := row.base / totalHeight
			limit := row.limit / totalHeight
			if float32(cursor.Y) >= base && float32(cursor.Y) <= limit {
				return &profileSelection{
					name:        row.name,
					time:        row.time,
					threadBase:  thread.rows[0].base,
					threadLimit: thread.rows[len(thread.rows)-1].limit,
					base:        row.base,
					limit:       row.limit,
				}
			}
		}
	}
	return nil
}

func computeDerived(cursor Point, span tracedata.Span, mode Mode, l *layout.Layout) *derived {
	switch mode {
	case ModeProfile:
		threads := computeProfileRows(span, l)
		return &derived{mode: profileDerived{threads: threads, selection: findProfileSelection(cursor, threads)}}
	default:
		rows := computeRows(span, l)
		return &derived{mode: traceDerived{rows: rows, selection: findSelection(cursor, span, rows, l)}}
	}
}

// deriveFor looks up (or computes and caches) the Derived snapshot for the
// View's current (span, cursor, mode).
func (v *View) deriveFor(l *layout.Layout) *derived {
	key := cacheKey{span: v.span, cursor: v.cursor, mode: v.mode}
	if d, ok := v.cache.get(key); ok {
		return d
	}
	d := computeDerived(v.cursor, v.span, v.mode, l)
	v.cache.add(key, d)
	return d
}

var (
	primarySelectionR, primarySelectionG, primarySelectionB       = hslPrimary()
	secondarySelectionR, secondarySelectionG, secondarySelectionB = hslSecondary()
)

func hslPrimary() (float32, float32, float32) {
	return draw.HSLToRGB(0, 0.68, 0.35)
}

func hslSecondary() (float32, float32, float32) {
	return draw.HSLToRGB(0.67, 0.90, 0.35)
}

// DrawCommands renders the current Derived state into a draw command
// stream for an external renderer.
func (v *View) DrawCommands() []draw.Command {
	var res []draw.Command

	primary := draw.Color{R: primarySelectionR, G: primarySelectionG, B: primarySelectionB, A: 1}
	secondary := draw.Color{R: secondarySelectionR, G: secondarySelectionG, B: secondarySelectionB, A: 1}

	switch m := v.derived.mode.(type) {
	case traceDerived:
		if len(m.rows) > 0 {
			total := m.rows[len(m.rows)-1].limit
			var highlightName *tracedata.NameId
			if m.selection != nil {
				name := m.selection.name
				highlightName = &name
			}

			for _, row := range m.rows {
				region := draw.Region{
					LogicalBase:   float32(v.span.Begin) / 1e9,
					LogicalLimit:  float32(v.span.End) / 1e9,
					VerticalBase:  row.base / total,
					VerticalLimit: row.limit / total,
				}

				for _, sr := range row.subrows {
					res = append(res, draw.BoxList{
						Key:             sr.key,
						Color:           sr.color,
						Range:           sr.rng,
						NameToHighlight: highlightName,
						HighlightColor:  secondary,
						Region:          region,
					})

					if m.selection != nil && m.selection.key == sr.key {
						res = append(res, draw.BoxList{
							Key:            m.selection.key,
							Color:          primary,
							Range:          draw.SpanRange{Begin: m.selection.index, End: m.selection.index + 1},
							HighlightColor: primary,
							Region:         region,
						})
					}
				}

				res = append(res, draw.LabelList{
					Key:    draw.LabelRowKey{Thread: row.thread, Row: row.row},
					Region: region,
				})
			}
		}

		if v.cursorDown != nil {
			left, right := float32(v.cursorDown.X), float32(v.cursor.X)
			if left > right {
				left, right = right, left
			}
			res = append(res, draw.SimpleBox{
				Color:  draw.Color{R: 0, G: 0, B: 0, A: 0.4},
				Region: draw.SimpleRegion{Left: left, Right: right, Bottom: 0, Top: 1},
			})
		}

	case profileDerived:
		totalTime := float32(v.span.End - v.span.Begin)
		if len(m.threads) > 0 && len(m.threads[len(m.threads)-1].rows) > 0 {
			totalHeight := m.threads[len(m.threads)-1].rows[len(m.threads[len(m.threads)-1].rows)-1].limit

			if m.selection != nil {
				res = append(res, draw.SimpleBox{
					Color: draw.Color{R: 0, G: 1, B: 1, A: 0.4},
					Region: draw.SimpleRegion{
						Left: 0, Right: 1,
						Bottom: m.selection.threadBase / totalHeight,
						Top:    m.selection.threadLimit / totalHeight,
					},
				})
				res = append(res, draw.SimpleBox{
					Color: draw.Color{R: 0, G: 0, B: 1, A: 1},
					Region: draw.SimpleRegion{
						Left: 0, Right: 1,
						Bottom: m.selection.base / totalHeight,
						Top:    m.selection.limit / totalHeight,
					},
				})
			}

			for _, thread := range m.threads {
				for _, row := range thread.rows {
					res = append(res, draw.SimpleBox{
						Color: draw.Color{R: 0, G: 0, B: 0, A: 0.4},
						Region: draw.SimpleRegion{
							Left: 0, Right: float32(row.time) / totalTime,
							Bottom: row.base / totalHeight,
							Top:    row.limit / totalHeight,
						},
					})
				}
			}
		}
	}

	return res
}
