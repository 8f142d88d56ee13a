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
package layout

import (
	"github.com/Workiva/go-datastructures/augmentedtree"

	"github.com/sujayakar/cyclotron/tracedata"
)

// layoutRect is the placed rectangle for a task and all of its already-laid-
// out descendants: a leaf task gets height 1, an internal task's rectangle
// is the bounding box of itself and its children.
//
//	height |
//	0      | [         parent task         ]
//	1      | [ first child ] [ third child ]
//	2      |        [   second child   ]
type layoutRect struct {
	task   tracedata.TaskId
	time   tracedata.Span
	row    uint64
	height uint64
}

// LowAtDimension, HighAtDimension, OverlapsAtDimension, and ID implement
// augmentedtree.Interval over a single dimension: elapsed time. Only time
// membership is indexed in the tree; the row/height check that completes
// the rectangle-overlap test is applied separately in overlaps, mirroring
// how analysis/sched_cpu_span_set.go indexes spans on one dimension (the
// timeline) per CPU and leaves the CPU partitioning itself to the map key.
func (r *layoutRect) LowAtDimension(d uint64) int64 {
	return int64(r.time.Begin)
}

func (r *layoutRect) HighAtDimension(d uint64) int64 {
	return int64(r.time.End)
}

func (r *layoutRect) OverlapsAtDimension(other augmentedtree.Interval, d uint64) bool {
	return r.HighAtDimension(d) > other.LowAtDimension(d) && other.HighAtDimension(d) > r.LowAtDimension(d)
}

func (r *layoutRect) ID() uint64 {
	return uint64(r.task)
}

// overlaps reports whether the receiver and other's time intervals AND row
// ranges both intersect, under half-open semantics on every axis.
func (r *layoutRect) overlaps(other *layoutRect) bool {
	if !r.time.Intersects(other.time) {
		return false
	}
	return r.row < other.row+other.height && other.row < r.row+r.height
}
