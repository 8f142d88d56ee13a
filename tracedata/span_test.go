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

	"github.com/sujayakar/cyclotron/testhelpers"
)

func TestSpanValid(t *testing.T) {
	tests := []struct {
		s    Span
		want bool
	}{
		{Span{0, 10}, true},
		{Span{5, 5}, false},
		{Span{10, 5}, false},
	}
	for _, tc := range tests {
		if got := tc.s.Valid(); got != tc.want {
			t.Errorf("%s.Valid() = %v, want %v", tc.s, got, tc.want)
		}
	}
}

func TestSpanWidth(t *testing.T) {
	if got, want := (Span{10, 25}).Width(), uint64(15); got != want {
		t.Errorf("Width() = %d, want %d", got, want)
	}
}

func TestSpanIntersects(t *testing.T) {
	tests := []struct {
		a, b Span
		want bool
	}{
		{Span{0, 10}, Span{5, 15}, true},
		{Span{0, 10}, Span{10, 20}, false}, // half-open: touching is not overlap
		{Span{0, 10}, Span{20, 30}, false},
		{Span{5, 15}, Span{0, 10}, true}, // symmetric
	}
	for _, tc := range tests {
		if got := tc.a.Intersects(tc.b); got != tc.want {
			t.Errorf("%s.Intersects(%s) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
		if got := tc.b.Intersects(tc.a); got != tc.want {
			t.Errorf("%s.Intersects(%s) = %v, want %v", tc.b, tc.a, got, tc.want)
		}
	}
}

func TestSpanContains(t *testing.T) {
	s := Span{10, 20}
	if !s.Contains(10) {
		t.Errorf("%s.Contains(10) = false, want true (begin is inclusive)", s)
	}
	if s.Contains(20) {
		t.Errorf("%s.Contains(20) = true, want false (end is exclusive)", s)
	}
	if !s.Contains(19) {
		t.Errorf("%s.Contains(19) = false, want true", s)
	}
}

func TestSpanUnion(t *testing.T) {
	got := (Span{5, 10}).Union(Span{20, 30})
	want := Span{5, 30}
	if diff, equal := testhelpers.Diff(t, got, want); !equal {
		t.Errorf("Union() mismatch (-want +got):\n%s", diff)
	}
}
