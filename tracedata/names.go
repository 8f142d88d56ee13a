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
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// nameTable is the forward id->string half of a name bank: lookup by NameId.
// It does not support concurrent insertion, but concurrent reads are safe.
type nameTable struct {
	names []string
}

func (nt nameTable) stringByID(id NameId) (string, error) {
	if int(id) < 0 || int(id) >= len(nt.names) {
		return "", status.Errorf(codes.NotFound, "name %d not found", id)
	}
	return nt.names[id], nil
}

func (nt *nameTable) pushBack(str string) NameId {
	newID := NameId(len(nt.names))
	nt.names = append(nt.names, str)
	return newID
}

// nameBank compacts a set of often-repeated task names by giving each unique
// string a unique, dense NameId.  Interning is insertion-ordered:  the first
// string seen for a given value keeps that value's id for the lifetime of
// the bank.  nameBank is safe for concurrent lookup and insertion, mirroring
// analysis/string_bank.go's stringBank so that Database construction may be
// hoisted to a worker goroutine (SPEC_FULL.md §5).
type nameBank struct {
	table *nameTable
	ids   map[string]NameId
	mutex sync.RWMutex
}

func newNameBank() *nameBank {
	return &nameBank{
		table: &nameTable{},
		ids:   make(map[string]NameId),
	}
}

// stringByID returns the string stored at the provided NameId, or an error
// if absent.
func (nb *nameBank) stringByID(id NameId) (string, error) {
	nb.mutex.RLock()
	defer nb.mutex.RUnlock()
	return nb.table.stringByID(id)
}

// idByString returns the NameId for the supplied string, interning it (and
// assigning it a fresh id) if it has not been seen before.
func (nb *nameBank) idByString(str string) NameId {
	if id, ok := func() (NameId, bool) {
		nb.mutex.RLock()
		defer nb.mutex.RUnlock()
		id, ok := nb.ids[str]
		return id, ok
	}(); ok {
		return id
	}
	nb.mutex.Lock()
	defer nb.mutex.Unlock()
	// Someone may have inserted this string while we waited for the lock.
	if id, ok := nb.ids[str]; ok {
		return id
	}
	id := nb.table.pushBack(str)
	nb.ids[str] = id
	return id
}

// count returns the number of distinct interned names.
func (nb *nameBank) count() int {
	nb.mutex.RLock()
	defer nb.mutex.RUnlock()
	return len(nb.table.names)
}

// simplifyName truncates a raw task name at the first '(' or '{', whichever
// comes first, collapsing template/generic instantiations (e.g.
// "poll_fn(Future<Output = ()>)" or "Handler{conn}") into a canonical base
// name. Names with no such delimiter are returned unchanged.
func simplifyName(raw string) string {
	cut := -1
	for i, r := range raw {
		if r == '(' || r == '{' {
			cut = i
			break
		}
	}
	if cut < 0 {
		return raw
	}
	return raw[:cut]
}
