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
package view

import (
	"github.com/hashicorp/golang-lru/simplelru"

	"github.com/sujayakar/cyclotron/tracedata"
)

// cacheKey identifies one Derived snapshot: unchanged (span, cursor, mode)
// always recomputes to the same rows/selection, so it's safe to memoize.
type cacheKey struct {
	span   tracedata.Span
	cursor Point
	mode   Mode
}

// deriveCache bounds the number of memoized Derived snapshots kept around,
// exactly mirroring storageservice.storageBase's simplelru.LRU usage.
type deriveCache struct {
	lru *simplelru.LRU
}

func newDeriveCache(size int) *deriveCache {
	lru, err := simplelru.NewLRU(size, nil)
	if err != nil {
		// size is always a positive compile-time constant from this
		// package's call sites; a construction error here is a
		// programmer error.
		panic(err)
	}
	return &deriveCache{lru: lru}
}

func (c *deriveCache) get(key cacheKey) (*derived, bool) {
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*derived), true
}

func (c *deriveCache) add(key cacheKey, d *derived) {
	c.lru.Add(key, d)
}
