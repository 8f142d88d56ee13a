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
package tracestore

import (
	"os"
	"path/filepath"
	"testing"
)

const fixtureTrace = `{"ThreadStart":{"id":1,"name":"main","ts":{"secs":0,"nanos":0}}}
{"ThreadEnd":{"id":1,"ts":{"secs":1,"nanos":0}}}
`

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "trace.jsonl")
	if err := os.WriteFile(p, []byte(fixtureTrace), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestGetLoadsAndCachesASession(t *testing.T) {
	path := writeFixture(t)
	s, err := New(2)
	if err != nil {
		t.Fatal(err)
	}

	first, err := s.Get(path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first.DB.TaskCount() != 1 {
		t.Errorf("TaskCount() = %d, want 1", first.DB.TaskCount())
	}

	second, err := s.Get(path)
	if err != nil {
		t.Fatalf("Get (cached): %v", err)
	}
	if first != second {
		t.Errorf("Get returned a different Session on the second call, want the cached one")
	}
}

func TestEvictForcesAReload(t *testing.T) {
	path := writeFixture(t)
	s, err := New(2)
	if err != nil {
		t.Fatal(err)
	}

	first, err := s.Get(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Evict(path)
	second, err := s.Get(path)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Errorf("Get after Evict returned the same Session, want a fresh load")
	}
	if first.ID == second.ID {
		t.Errorf("reloaded Session kept the same uuid %s, want a fresh one", first.ID)
	}
}

func TestGetSurfacesLoadErrorsForMissingFiles(t *testing.T) {
	s, err := New(2)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("/no/such/file"); err == nil {
		t.Error("Get(missing file) = nil error, want one")
	}
}
