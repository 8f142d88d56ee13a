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
	"testing"
)

func TestBuilderBasic(t *testing.T) {
	b := NewBuilder()
	root := b.AddTask(NoTask, b.InternName("main"), 0, false)
	child := b.AddTask(root, b.InternName("work"), 10, true)

	if err := b.OpenOnCPU(child); err != nil {
		t.Fatalf("OpenOnCPU: %v", err)
	}
	if err := b.CloseOnCPU(child, 10, 20); err != nil {
		t.Fatalf("CloseOnCPU: %v", err)
	}
	if err := b.Close(child, 30); err != nil {
		t.Fatalf("Close(child): %v", err)
	}
	if err := b.SetOutcome(child, OutcomeSuccess, ""); err != nil {
		t.Fatalf("SetOutcome: %v", err)
	}
	if err := b.Close(root, 40); err != nil {
		t.Fatalf("Close(root): %v", err)
	}

	db, err := b.Build(100)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	rootTask, err := db.Task(root)
	if err != nil {
		t.Fatalf("Task(root): %v", err)
	}
	if !rootTask.IsRoot() {
		t.Errorf("root task IsRoot() = false, want true")
	}
	childTask, err := db.Task(child)
	if err != nil {
		t.Fatalf("Task(child): %v", err)
	}
	if want := (Span{10, 30}); childTask.Span != want {
		t.Errorf("child span = %s, want %s", childTask.Span, want)
	}
	if got, want := len(childTask.OnCPU), 1; got != want {
		t.Fatalf("len(OnCPU) = %d, want %d", got, want)
	}
	if want := (Span{10, 20}); childTask.OnCPU[0] != want {
		t.Errorf("OnCPU[0] = %s, want %s", childTask.OnCPU[0], want)
	}
	if got := db.Children(root); len(got) != 1 || got[0] != child {
		t.Errorf("Children(root) = %v, want [%s]", got, child)
	}
}

func TestBuilderDoubleClose(t *testing.T) {
	b := NewBuilder()
	id := b.AddTask(NoTask, b.InternName("t"), 0, false)
	if err := b.Close(id, 10); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := b.Close(id, 20); err == nil {
		t.Errorf("second Close succeeded, want error")
	}
}

func TestBuilderDoubleOnCPU(t *testing.T) {
	b := NewBuilder()
	id := b.AddTask(NoTask, b.InternName("t"), 0, true)
	if err := b.OpenOnCPU(id); err != nil {
		t.Fatalf("first OpenOnCPU: %v", err)
	}
	if err := b.OpenOnCPU(id); err == nil {
		t.Errorf("second OpenOnCPU succeeded, want error")
	}
}

func TestBuilderOffCPUWithoutOnCPU(t *testing.T) {
	b := NewBuilder()
	id := b.AddTask(NoTask, b.InternName("t"), 0, true)
	if err := b.CloseOnCPU(id, 0, 10); err == nil {
		t.Errorf("CloseOnCPU without a matching OpenOnCPU succeeded, want error")
	}
}

func TestBuilderOnCPUOnSyncTask(t *testing.T) {
	b := NewBuilder()
	id := b.AddTask(NoTask, b.InternName("t"), 0, false)
	if err := b.OpenOnCPU(id); err == nil {
		t.Errorf("OpenOnCPU on a non-async task succeeded, want error")
	}
}

func TestBuilderFinalizesUnclosedTaskAtMaxTs(t *testing.T) {
	b := NewBuilder()
	id := b.AddTask(NoTask, b.InternName("t"), 5, false)
	db, err := b.Build(50)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	task, err := db.Task(id)
	if err != nil {
		t.Fatalf("Task: %v", err)
	}
	if want := (Span{5, 50}); task.Span != want {
		t.Errorf("span = %s, want %s", task.Span, want)
	}
}

func TestBuilderBuildRejectsDanglingOnCPU(t *testing.T) {
	b := NewBuilder()
	id := b.AddTask(NoTask, b.InternName("t"), 0, true)
	if err := b.OpenOnCPU(id); err != nil {
		t.Fatalf("OpenOnCPU: %v", err)
	}
	if _, err := b.Build(100); err == nil {
		t.Errorf("Build with an open on-CPU bracket succeeded, want error")
	}
}

func TestBuilderTracksOpenAndClosedState(t *testing.T) {
	b := NewBuilder()
	id := b.AddTask(NoTask, b.InternName("t"), 0, true)
	if got, want := b.TaskCount(), 1; got != want {
		t.Errorf("TaskCount() = %d, want %d", got, want)
	}
	if b.HasOpenOnCPU(id) {
		t.Errorf("HasOpenOnCPU(id) = true before OpenOnCPU, want false")
	}
	if b.IsClosed(id) {
		t.Errorf("IsClosed(id) = true before Close, want false")
	}
	if err := b.OpenOnCPU(id); err != nil {
		t.Fatalf("OpenOnCPU: %v", err)
	}
	if !b.HasOpenOnCPU(id) {
		t.Errorf("HasOpenOnCPU(id) = false after OpenOnCPU, want true")
	}
	if err := b.CloseOnCPU(id, 0, 10); err != nil {
		t.Fatalf("CloseOnCPU: %v", err)
	}
	if b.HasOpenOnCPU(id) {
		t.Errorf("HasOpenOnCPU(id) = true after CloseOnCPU, want false")
	}
	if err := b.Close(id, 20); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !b.IsClosed(id) {
		t.Errorf("IsClosed(id) = false after Close, want true")
	}
}

func TestBuilderWakeups(t *testing.T) {
	b := NewBuilder()
	waker := b.AddTask(NoTask, b.InternName("waker"), 0, false)
	parked := b.AddTask(NoTask, b.InternName("parked"), 0, false)
	if err := b.AddWakeup(waker, parked, 15); err != nil {
		t.Fatalf("AddWakeup: %v", err)
	}
	if err := b.Close(waker, 100); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(parked, 100); err != nil {
		t.Fatal(err)
	}
	db, err := b.Build(100)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	wakes := db.Wakes(waker)
	if len(wakes) != 1 || wakes[0].Other != parked || wakes[0].Nanos != 15 {
		t.Errorf("Wakes(waker) = %v, want [{%s 15}]", wakes, parked)
	}
	parks := db.Parks(parked)
	if len(parks) != 1 || parks[0].Other != waker || parks[0].Nanos != 15 {
		t.Errorf("Parks(parked) = %v, want [{%s 15}]", parks, waker)
	}
}
