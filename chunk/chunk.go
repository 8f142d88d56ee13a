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
// Package chunk provides Chunk, a packed, sorted, non-overlapping interval
// container: the storage shared by every row of a layout.Layout.
package chunk

import (
	"fmt"
	"sort"

	"github.com/sujayakar/cyclotron/tracedata"
)

// Chunk is a sorted, non-overlapping sequence of half-open intervals, each
// carrying a task and its (simplified) name. Groups is filled in after
// construction, by the layout package's color-grouping pass; until then it
// holds tracedata.UnknownGroup for every entry.
type Chunk struct {
	Begins []uint64
	Ends   []uint64
	Names  []tracedata.NameId
	Tasks  []tracedata.TaskId
	Groups []tracedata.GroupId
}

// New returns a new, empty Chunk.
func New() *Chunk {
	return &Chunk{}
}

// Len returns the number of intervals stored.
func (c *Chunk) Len() int {
	return len(c.Begins)
}

// endIndex returns the smallest index i such that Ends[i] > point, or
// len(Ends) if no such index exists. Since Ends is sorted and non-repeating,
// this is also the only index whose interval could possibly contain point
// or overlap a query starting at point.
func (c *Chunk) endIndex(point uint64) int {
	return sort.Search(len(c.Ends), func(i int) bool {
		return c.Ends[i] > point
	})
}

// HasOverlap reports whether any stored interval intersects q under
// half-open semantics.
func (c *Chunk) HasOverlap(q tracedata.Span) bool {
	i := c.endIndex(q.Begin)
	if i == len(c.Ends) {
		return false
	}
	return c.Begins[i] < q.End
}

// Find returns the index of the stored interval containing t, if any.
// Intervals never overlap, so at most one can contain t.
func (c *Chunk) Find(t uint64) (int, bool) {
	i := c.endIndex(t)
	if i == len(c.Ends) {
		return 0, false
	}
	if c.Begins[i] <= t {
		return i, true
	}
	return 0, false
}

// Add inserts span (with its name and owning task) into the chunk,
// maintaining sorted, non-overlapping order. It panics if span overlaps any
// interval already present -- the packing algorithms upstream guarantee
// this never happens, so a panic here indicates their invariant broke.
func (c *Chunk) Add(span tracedata.Span, name tracedata.NameId, task tracedata.TaskId) {
	i := c.endIndex(span.Begin)
	if i == len(c.Ends) {
		c.Begins = append(c.Begins, span.Begin)
		c.Ends = append(c.Ends, span.End)
		c.Names = append(c.Names, name)
		c.Tasks = append(c.Tasks, task)
		c.Groups = append(c.Groups, tracedata.UnknownGroup)
		return
	}
	if c.Begins[i] < span.End {
		panic(fmt.Sprintf("chunk.Add: %s overlaps existing interval [%d, %d)", span, c.Begins[i], c.Ends[i]))
	}
	c.Begins = insert(c.Begins, i, span.Begin)
	c.Ends = insert(c.Ends, i, span.End)
	c.Names = insertName(c.Names, i, name)
	c.Tasks = insertTask(c.Tasks, i, task)
	c.Groups = insertGroup(c.Groups, i, tracedata.UnknownGroup)
}

func insert(s []uint64, i int, v uint64) []uint64 {
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func insertName(s []tracedata.NameId, i int, v tracedata.NameId) []tracedata.NameId {
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func insertTask(s []tracedata.TaskId, i int, v tracedata.TaskId) []tracedata.TaskId {
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func insertGroup(s []tracedata.GroupId, i int, v tracedata.GroupId) []tracedata.GroupId {
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// AssignGroups overwrites Groups[i] for every stored interval by looking up
// its Names[i] through lookup. Used by the layout package's color-grouping
// pass, which runs once after every chunk is fully populated.
func (c *Chunk) AssignGroups(lookup func(tracedata.NameId) tracedata.GroupId) {
	for i, name := range c.Names {
		c.Groups[i] = lookup(name)
	}
}

// All returns an iterator function yielding (group, name, span) for every
// stored interval in order. Call it directly -- c.All()(func(g, n, s)
// bool {...}) -- this module targets a Go version that predates
// range-over-func syntax sugar.
func (c *Chunk) All() func(yield func(tracedata.GroupId, tracedata.NameId, tracedata.Span) bool) {
	return func(yield func(tracedata.GroupId, tracedata.NameId, tracedata.Span) bool) {
		for i := range c.Begins {
			span := tracedata.Span{Begin: c.Begins[i], End: c.Ends[i]}
			if !yield(c.Groups[i], c.Names[i], span) {
				return
			}
		}
	}
}
