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
// Package layout packs a tracedata.Database's tasks into a Layout: one
// Thread per root task, each a vertical stack of Rows sized to hold its
// descendants without overlap.
package layout

import (
	"sort"

	"github.com/sujayakar/cyclotron/tracedata"
)

// Thread is one root task's full descendant tree, packed into rows. Row 0
// is always the thread row (IsThread == true), representing the root
// task's own lifetime.
type Thread struct {
	Rows []Row
}

// Layout is the complete packed placement of a Database (or a filtered
// subset of it): one Thread per root task, ordered by the root's start
// time.
type Layout struct {
	Threads []Thread
}

// childEntry pairs a task with its start time, for sorting siblings into
// start-time order without repeatedly dereferencing the Database.
type childEntry struct {
	begin uint64
	id    tracedata.TaskId
}

func sortEntries(entries []childEntry) {
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].begin != entries[b].begin {
			return entries[a].begin < entries[b].begin
		}
		return entries[a].id < entries[b].id
	})
}

// Build packs db's tasks into a Layout. If filter is non-empty, only tasks
// whose simplified name contains filter, plus all of their ancestors, are
// placed -- see computeIncluded.
//
// The algorithm runs in two passes. First, bottom-up (children before
// parents): compute each task's localLayout, the placement of its direct
// children relative to its own row. Second, top-down: walk each root's
// descendants, translating each task's local row into its thread's global
// row via an explicit stack (no recursion, so pathologically deep task
// trees can't blow the Go call stack).
func Build(db *tracedata.Database, filter string) (*Layout, error) {
	included := computeIncluded(db, filter)
	isIncluded := func(id tracedata.TaskId) bool {
		return included == nil || included[id]
	}

	childrenByTask := make(map[tracedata.TaskId][]childEntry)
	var roots []childEntry
	for _, task := range db.Tasks() {
		if !isIncluded(task.ID) {
			continue
		}
		if task.Parent.Valid() {
			childrenByTask[task.Parent] = append(childrenByTask[task.Parent], childEntry{task.Span.Begin, task.ID})
		} else {
			roots = append(roots, childEntry{task.Span.Begin, task.ID})
		}
	}
	for _, entries := range childrenByTask {
		sortEntries(entries)
	}
	sortEntries(roots)

	childrenRemaining := make(map[tracedata.TaskId]int, len(childrenByTask))
	for parent, entries := range childrenByTask {
		childrenRemaining[parent] = len(entries)
	}

	var queue []tracedata.TaskId
	for _, task := range db.Tasks() {
		if !isIncluded(task.ID) {
			continue
		}
		if _, hasChildren := childrenByTask[task.ID]; !hasChildren {
			queue = append(queue, task.ID)
		}
	}

	localLayouts := make(map[tracedata.TaskId]*localLayout, len(queue))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		task := db.MustTask(id)

		ll := newLocalLayout()
		if children, ok := childrenByTask[id]; ok {
			for _, c := range children {
				childTask := db.MustTask(c.id)
				ll.addRect(c.id, childTask.Span, localLayouts[c.id].totalHeight)
			}
		}
		localLayouts[id] = ll

		if task.Parent.Valid() && isIncluded(task.Parent) {
			childrenRemaining[task.Parent]--
			if childrenRemaining[task.Parent] == 0 {
				queue = append(queue, task.Parent)
			}
		}
	}

	threads := make([]Thread, 0, len(roots))
	for _, r := range roots {
		total := localLayouts[r.id].totalHeight
		thread := Thread{Rows: make([]Row, total)}
		thread.Rows[0].IsThread = true

		type frame struct {
			row int
			id  tracedata.TaskId
		}
		stack := []frame{{0, r.id}}
		for len(stack) > 0 {
			n := len(stack) - 1
			f := stack[n]
			stack = stack[:n]

			task := db.MustTask(f.id)
			if err := thread.Rows[f.row].add(task); err != nil {
				return nil, err
			}
			if children, ok := childrenByTask[f.id]; ok {
				ll := localLayouts[f.id]
				for i := len(children) - 1; i >= 0; i-- {
					c := children[i]
					rect := ll.children[c.id]
					stack = append(stack, frame{f.row + int(rect.row), c.id})
				}
			}
		}
		threads = append(threads, thread)
	}

	return &Layout{Threads: threads}, nil
}

// SpanDiscountingThreads returns the union of the time extents of every
// non-thread row across the layout: the window's maximum zoom-out extent
// (view.Limits), excluding the full-width thread rows themselves.
func (l *Layout) SpanDiscountingThreads() tracedata.Span {
	result := tracedata.Span{Begin: tracedata.MaxTimestamp, End: 0}
	found := false
	for _, t := range l.Threads {
		for _, row := range t.Rows {
			if row.IsThread {
				continue
			}
			for _, begins := range [][]uint64{row.Fore.Begins, row.Back.Begins} {
				for _, b := range begins {
					if b < result.Begin {
						result.Begin = b
					}
					found = true
				}
			}
			for _, ends := range [][]uint64{row.Fore.Ends, row.Back.Ends} {
				for _, e := range ends {
					if e > result.End {
						result.End = e
					}
				}
			}
		}
	}
	if !found {
		return tracedata.Span{}
	}
	return result
}
