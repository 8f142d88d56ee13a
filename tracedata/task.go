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

// Outcome describes how an async task's lifetime ended.
type Outcome int

const (
	// OutcomeUnknown is the zero value; sync spans and threads never carry an
	// outcome.
	OutcomeUnknown Outcome = iota
	// OutcomeSuccess means the async task ran to completion.
	OutcomeSuccess
	// OutcomeCancelled means the async task was dropped/cancelled before
	// completion.
	OutcomeCancelled
	// OutcomeError means the async task completed with an error.
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "Success"
	case OutcomeCancelled:
		return "Cancelled"
	case OutcomeError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Task is the unit placed on the timeline: an async future, a synchronous
// region, or a thread root.
type Task struct {
	// ID uniquely identifies this task within its Database.
	ID TaskId
	// Parent is the task that introduced this one, or NoTask for thread
	// roots.
	Parent TaskId
	// Name is the (simplified) interned name of this task.
	Name NameId
	// Span is this task's lifetime.
	Span Span
	// HasOnCPU is true for async tasks -- tasks that have a (possibly empty)
	// on-CPU sub-interval set.  It is false for sync spans and threads, which
	// are considered "foreground" for their entire lifetime.
	HasOnCPU bool
	// OnCPU holds the sorted, non-overlapping on-CPU sub-spans of an async
	// task.  Only meaningful when HasOnCPU is true.
	OnCPU []Span
	// ErrorMessage holds the error text for an async task that ended with
	// OutcomeError.
	ErrorMessage string
	// Outcome describes how an async task's lifetime ended.  Zero value for
	// sync spans and threads.
	Outcome Outcome
}

// IsRoot reports whether this task is a thread root (has no parent).
func (t *Task) IsRoot() bool {
	return !t.Parent.Valid()
}

// WakeEdge cross-references a wake or park event between two tasks: the
// Other task, and the nanosecond timestamp at which the wake occurred.
type WakeEdge struct {
	Other TaskId
	Nanos uint64
}
