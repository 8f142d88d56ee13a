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

// MaxTimestamp is the sentinel end-timestamp assigned to a task when it is
// opened, before its matching end event (if any) is observed.
const MaxTimestamp uint64 = 1<<64 - 1

// Database is the normalized, immutable-once-built representation of a
// loaded trace: an interned name table, a flat task array indexed by
// TaskId, and per-task wake/park adjacency lists.  Construction is
// synchronous and CPU-bound; once Build returns, a Database is never
// mutated again (see the view package's Layout replacement contract).
type Database struct {
	names *nameBank
	tasks []Task

	// children maps a task to the TaskIds of tasks it directly introduced,
	// in the order they were added.  Roots (tasks with Parent == NoTask) are
	// not indexed here.
	children map[TaskId][]TaskId

	// wakes[t] lists the parks t resolved (t was the waking task).
	// parks[t] lists the wakes that resolved t (t was the parked task).
	// Indexed by TaskId, arena+index style -- see DESIGN.md.
	wakes [][]WakeEdge
	parks [][]WakeEdge
}

// TaskCount returns the number of tasks in the database.
func (db *Database) TaskCount() int {
	return len(db.tasks)
}

// NameCount returns the number of distinct interned names.
func (db *Database) NameCount() int {
	return db.names.count()
}

// Task returns the task with the given id, or an error if id is out of
// range.
func (db *Database) Task(id TaskId) (*Task, error) {
	if int(id) < 0 || int(id) >= len(db.tasks) {
		return nil, status.Errorf(codes.NotFound, "task %s not found", id)
	}
	return &db.tasks[id], nil
}

// MustTask returns the task with the given id, panicking if it does not
// exist.  Intended for call sites (e.g. the layout engine) that have
// already validated id against a Database they built themselves -- an
// out-of-range id there is a programmer error, not recoverable input.
func (db *Database) MustTask(id TaskId) *Task {
	t, err := db.Task(id)
	if err != nil {
		panic(err)
	}
	return t
}

// Tasks returns all tasks, indexed by TaskId.  The returned slice aliases
// the Database's internal storage and must not be mutated.
func (db *Database) Tasks() []Task {
	return db.tasks
}

// Name returns the interned string for the given NameId.
func (db *Database) Name(id NameId) (string, error) {
	return db.names.stringByID(id)
}

// NameID returns the NameId for the given string if it has already been
// interned, or false otherwise.  Unlike the loader's interning path, this
// never inserts: it is a read-only lookup.
func (db *Database) NameID(str string) (NameId, bool) {
	db.names.mutex.RLock()
	defer db.names.mutex.RUnlock()
	id, ok := db.names.ids[str]
	return id, ok
}

// Children returns the TaskIds directly introduced by the given task, in
// the order they were added.
func (db *Database) Children(id TaskId) []TaskId {
	return db.children[id]
}

// Roots returns the TaskIds of all thread-root tasks (tasks with no
// parent), sorted by increasing start time.
func (db *Database) Roots() []TaskId {
	var roots []TaskId
	for _, t := range db.tasks {
		if t.IsRoot() {
			roots = append(roots, t.ID)
		}
	}
	sort.Slice(roots, func(a, b int) bool {
		return db.tasks[roots[a]].Span.Begin < db.tasks[roots[b]].Span.Begin
	})
	return roots
}

// Wakes returns the wake edges for which the given task was the waker.
func (db *Database) Wakes(id TaskId) []WakeEdge {
	if int(id) >= len(db.wakes) {
		return nil
	}
	return db.wakes[id]
}

// Parks returns the wake edges for which the given task was the parked
// (woken) task.
func (db *Database) Parks(id TaskId) []WakeEdge {
	if int(id) >= len(db.parks) {
		return nil
	}
	return db.parks[id]
}
