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
// Package testhelpers contains helpers for tests.
package testhelpers

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Diff compares two values structurally and returns the diff (empty if
// equal) and whether they are equal. It does not fail the test itself;
// callers decide whether to fail or log.
func Diff(t *testing.T, got, want interface{}, opts ...cmp.Option) (diff string, equal bool) {
	t.Helper()
	diff = cmp.Diff(want, got, opts...)
	return diff, diff == ""
}
