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

import "testing"

func buildDatabaseFixture(t *testing.T) (*Database, TaskId, TaskId) {
	t.Helper()
	b := NewBuilder()
	root1 := b.AddTask(NoTask, b.InternName("thread-a"), 0, false)
	root2 := b.AddTask(NoTask, b.InternName("thread-b"), 5, false)
	if err := b.Close(root1, 100); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(root2, 100); err != nil {
		t.Fatal(err)
	}
	db, err := b.Build(100)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return db, root1, root2
}

func TestDatabaseNameLookup(t *testing.T) {
	db, root1, _ := buildDatabaseFixture(t)
	task, err := db.Task(root1)
	if err != nil {
		t.Fatalf("Task(root1): %v", err)
	}
	name, err := db.Name(task.Name)
	if err != nil {
		t.Fatalf("Name(%s): %v", task.Name, err)
	}
	if name != "thread-a" {
		t.Errorf("Name(task.Name) = %q, want %q", name, "thread-a")
	}
	if id, ok := db.NameID("thread-a"); !ok || id != task.Name {
		t.Errorf("NameID(%q) = (%s, %v), want (%s, true)", "thread-a", id, ok, task.Name)
	}
	if _, ok := db.NameID("no-such-name"); ok {
		t.Errorf("NameID(%q) = (_, true), want false", "no-such-name")
	}
}

func TestDatabaseRootsSortedByStart(t *testing.T) {
	db, root1, root2 := buildDatabaseFixture(t)
	roots := db.Roots()
	if len(roots) != 2 {
		t.Fatalf("len(Roots()) = %d, want 2", len(roots))
	}
	if roots[0] != root1 || roots[1] != root2 {
		t.Errorf("Roots() = %v, want [%s, %s] (sorted by start time)", roots, root1, root2)
	}
}

func TestDatabaseTaskOutOfRange(t *testing.T) {
	db, _, _ := buildDatabaseFixture(t)
	if _, err := db.Task(TaskId(9999)); err == nil {
		t.Error("Task(9999) succeeded, want a not-found error")
	}
}
