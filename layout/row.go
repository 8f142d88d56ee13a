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
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sujayakar/cyclotron/chunk"
	"github.com/sujayakar/cyclotron/tracedata"
)

// LabelChunk carries one (span, name) entry per task placed in a row, for
// the drawing layer to turn into glyph runs. It shares Chunk's sorted,
// non-overlapping representation.
type LabelChunk = chunk.Chunk

// Row is one horizontal slot of a Thread: a Fore chunk (on-CPU/foreground
// segments), a Back chunk (full async-task lifetime, drawn as a backdrop),
// and a Labels chunk.
type Row struct {
	IsThread bool
	Fore     chunk.Chunk
	Back     chunk.Chunk
	Labels   LabelChunk
}

// add places task into the row: its on-CPU sub-spans (if any) into Fore
// plus its full span into Back, or its whole span into Fore alone for a
// sync span or thread. Returns a fatal error if the task's placement
// overlaps the chunk it's not supposed to -- that would mean the packing
// algorithm upstream produced an invalid layout.
func (r *Row) add(task *tracedata.Task) error {
	if task.HasOnCPU {
		if r.Fore.HasOverlap(task.Span) {
			return status.Errorf(codes.Internal, "task %s overlaps an existing foreground span in its own row", task.ID)
		}
		r.Back.Add(task.Span, task.Name, task.ID)
		for _, s := range task.OnCPU {
			r.Fore.Add(s, task.Name, task.ID)
		}
	} else {
		if r.Back.HasOverlap(task.Span) {
			return status.Errorf(codes.Internal, "task %s overlaps an existing background span in its own row", task.ID)
		}
		r.Fore.Add(task.Span, task.Name, task.ID)
	}
	r.Labels.Add(task.Span, task.Name, task.ID)
	return nil
}
