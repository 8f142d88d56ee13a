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
	"sort"

	"github.com/sujayakar/cyclotron/tracedata"
)

// GroupTable assigns a stable coloring GroupId to every distinct task name
// that appears at least once in a Database. GroupId 0 (tracedata.
// UnknownGroup) is reserved for names with no assigned color, which in
// practice means "name never seen" -- every interned name in the Database
// that backs a Layout gets a real group.
type GroupTable struct {
	byName map[tracedata.NameId]tracedata.GroupId
}

// BuildGroupTable counts tasks per NameId across the whole Database and
// assigns each distinct name seen at least once a monotonically increasing
// GroupId, in NameId order (for determinism independent of task order).
func BuildGroupTable(db *tracedata.Database) *GroupTable {
	counts := make(map[tracedata.NameId]int)
	for _, t := range db.Tasks() {
		counts[t.Name]++
	}

	names := make([]tracedata.NameId, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	gt := &GroupTable{byName: make(map[tracedata.NameId]tracedata.GroupId, len(names))}
	next := tracedata.GroupId(1)
	for _, name := range names {
		if counts[name] == 0 {
			continue
		}
		gt.byName[name] = next
		next++
	}
	return gt
}

// Lookup returns the GroupId assigned to name, or tracedata.UnknownGroup if
// none was assigned.
func (gt *GroupTable) Lookup(name tracedata.NameId) tracedata.GroupId {
	if g, ok := gt.byName[name]; ok {
		return g
	}
	return tracedata.UnknownGroup
}

// ApplyGroupTable fills in every row's Fore/Back/Labels chunk Groups array
// by looking each stored name up through gt. Called once after a Layout is
// fully assembled.
func ApplyGroupTable(l *Layout, gt *GroupTable) {
	for ti := range l.Threads {
		for ri := range l.Threads[ti].Rows {
			row := &l.Threads[ti].Rows[ri]
			row.Fore.AssignGroups(gt.Lookup)
			row.Back.AssignGroups(gt.Lookup)
			row.Labels.AssignGroups(gt.Lookup)
		}
	}
}
