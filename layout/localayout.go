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

// localLayout is the placement of a single task's direct children within a
// local coordinate space whose origin is the task's own row (row 0).
type localLayout struct {
	// totalHeight is the height of the bounding box for this task: 1 for a
	// leaf, or otherwise the largest row + height over its placed children.
	totalHeight uint64

	children map[tracedata.TaskId]*layoutRect

	// placed indexes already-placed children by elapsed time, so that
	// addRect only has to exact-check rectangles that could possibly
	// overlap the candidate instead of every sibling placed so far.
	placed augmentedtree.Tree
}

func newLocalLayout() *localLayout {
	return &localLayout{
		totalHeight: 1,
		children:    make(map[tracedata.TaskId]*layoutRect),
		placed:      augmentedtree.New(1),
	}
}

// addRect places a child (task, with the given time span and already-
// computed subtree height) at the smallest row >= 1 whose bounding
// rectangle does not overlap any previously placed sibling.
func (ll *localLayout) addRect(task tracedata.TaskId, span tracedata.Span, height uint64) {
	query := &layoutRect{time: span}
	candidates := ll.placed.Query(query)

	for row := uint64(1); ; row++ {
		candidate := &layoutRect{task: task, time: span, row: row, height: height}
		conflict := false
		for _, iv := range candidates {
			if iv.(*layoutRect).overlaps(candidate) {
				conflict = true
				break
			}
		}
		if !conflict {
			if row+height > ll.totalHeight {
				ll.totalHeight = row + height
			}
			ll.children[task] = candidate
			ll.placed.Add(candidate)
			return
		}
	}
}
