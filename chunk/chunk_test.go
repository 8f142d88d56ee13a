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
package chunk

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sujayakar/cyclotron/tracedata"
)

func span(b, e uint64) tracedata.Span { return tracedata.Span{Begin: b, End: e} }

// fixture reproduces the begins/ends/names/tasks arrays from the reference
// implementation's layout test_has_overlap fixture: begins [1,3,10], ends
// [2,5,15].
func fixture() *Chunk {
	c := New()
	c.Add(span(1, 2), 1, 1)
	c.Add(span(3, 5), 1, 2)
	c.Add(span(10, 15), 1, 3)
	return c
}

func TestChunkHasOverlap(t *testing.T) {
	c := fixture()
	tests := []struct {
		q    tracedata.Span
		want bool
	}{
		{span(0, 20), true},
		{span(2, 3), false},
		{span(2, 4), true},
		{span(4, 5), true},
		{span(4, 6), true},
		{span(6, 7), false},
		{span(17, 30), false},
	}
	for _, tc := range tests {
		if got := c.HasOverlap(tc.q); got != tc.want {
			t.Errorf("HasOverlap(%s) = %v, want %v", tc.q, got, tc.want)
		}
	}
}

func TestChunkAddMaintainsSortedOrder(t *testing.T) {
	c := fixture()
	c.Add(span(2, 3), 2, 5)
	if diff := cmp.Diff([]uint64{1, 2, 3, 10}, c.Begins); diff != "" {
		t.Errorf("Begins mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint64{2, 3, 5, 15}, c.Ends); diff != "" {
		t.Errorf("Ends mismatch (-want +got):\n%s", diff)
	}
}

func TestChunkAddPanicsOnOverlap(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Add did not panic on an overlapping interval")
		}
	}()
	c := fixture()
	c.Add(span(4, 11), 1, 9)
}

func TestChunkFind(t *testing.T) {
	c := fixture()
	tests := []struct {
		t        uint64
		wantIdx  int
		wantOK   bool
	}{
		{1, 0, true},
		{2, 0, false}, // end is exclusive
		{4, 1, true},
		{9, 0, false},
		{14, 2, true},
		{15, 0, false},
	}
	for _, tc := range tests {
		idx, ok := c.Find(tc.t)
		if ok != tc.wantOK || (ok && idx != tc.wantIdx) {
			t.Errorf("Find(%d) = (%d, %v), want (%d, %v)", tc.t, idx, ok, tc.wantIdx, tc.wantOK)
		}
	}
}

func TestChunkAll(t *testing.T) {
	c := fixture()
	var got []tracedata.Span
	c.All()(func(g tracedata.GroupId, n tracedata.NameId, s tracedata.Span) bool {
		got = append(got, s)
		return true
	})
	want := []tracedata.Span{span(1, 2), span(3, 5), span(10, 15)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
}

func TestChunkAllStopsEarly(t *testing.T) {
	c := fixture()
	n := 0
	c.All()(func(g tracedata.GroupId, name tracedata.NameId, s tracedata.Span) bool {
		n++
		return false
	})
	if n != 1 {
		t.Errorf("All() visited %d intervals after yield returned false, want 1", n)
	}
}
