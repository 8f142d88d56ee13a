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
	"strings"

	"github.com/sujayakar/cyclotron/tracedata"
)

// computeIncluded returns the set of TaskIds to place when building a
// Layout filtered by substr: every task whose (simplified) name contains
// substr, plus all of their ancestors (so the matched tasks remain
// reachable from a thread root, even though non-matching siblings along
// the way are dropped). A nil return means "no filter, include everything."
func computeIncluded(db *tracedata.Database, substr string) map[tracedata.TaskId]bool {
	if substr == "" {
		return nil
	}

	matchingNames := make(map[tracedata.NameId]bool)
	for i := 0; i < db.NameCount(); i++ {
		name, err := db.Name(tracedata.NameId(i))
		if err != nil {
			continue
		}
		if strings.Contains(name, substr) {
			matchingNames[tracedata.NameId(i)] = true
		}
	}

	included := make(map[tracedata.TaskId]bool)
	var ancestorStack []tracedata.TaskId
	for _, task := range db.Tasks() {
		if matchingNames[task.Name] {
			included[task.ID] = true
			if task.Parent.Valid() {
				ancestorStack = append(ancestorStack, task.Parent)
			}
		}
	}
	for len(ancestorStack) > 0 {
		n := len(ancestorStack) - 1
		id := ancestorStack[n]
		ancestorStack = ancestorStack[:n]
		if included[id] {
			continue
		}
		included[id] = true
		if t := db.MustTask(id); t.Parent.Valid() {
			ancestorStack = append(ancestorStack, t.Parent)
		}
	}
	return included
}
