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

import "fmt"

// NameId is a dense, interned handle into a Database's name table.  All
// downstream code refers to names by NameId only, never by string, so name
// comparisons reduce to integer equality.
type NameId uint32

// UnknownName is NameId 0. The name bank does not reserve it: the first
// name interned into a Database also receives NameId 0.
const UnknownName NameId = 0

func (n NameId) String() string {
	return fmt.Sprintf("name#%d", uint32(n))
}

// TaskId is a dense handle into a Database's task array, assigned
// sequentially in the order tasks are first observed during load.
type TaskId uint32

// NoTask is the reserved TaskId meaning "no such task" -- used for a root
// task's Parent, and for an unresolved event reference.
const NoTask TaskId = 1<<32 - 1

// Valid reports whether t refers to an actual task (i.e. is not NoTask).
func (t TaskId) Valid() bool {
	return t != NoTask
}

func (t TaskId) String() string {
	if !t.Valid() {
		return "<no task>"
	}
	return fmt.Sprintf("task#%d", uint32(t))
}

// GroupId is a dense, stable coloring handle assigned to each distinct task
// name observed during layout.  GroupId 0 is reserved for "unknown /
// no-highlight".
type GroupId uint32

// UnknownGroup is the reserved GroupId for names with no assigned color group.
const UnknownGroup GroupId = 0

func (g GroupId) String() string {
	return fmt.Sprintf("group#%d", uint32(g))
}
