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
// Package tracestore bounds the number of concurrently-materialized trace
// sessions kept in memory, mirroring the server package's
// FsStorage/storageBase LRU-backed collection cache.
package tracestore

import (
	"os"
	"sync"

	log "github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/simplelru"

	"github.com/sujayakar/cyclotron/eventstream"
	"github.com/sujayakar/cyclotron/layout"
	"github.com/sujayakar/cyclotron/tracedata"
)

// Session is one loaded trace: its normalized Database, the unfiltered
// Layout built from it, and the color GroupTable. Immutable once built,
// mirroring the Database/Layout lifecycle rules.
type Session struct {
	ID     uuid.UUID
	Path   string
	DB     *tracedata.Database
	Layout *layout.Layout
	Groups *layout.GroupTable
}

// Store is a mutex-guarded, LRU-bounded cache of Sessions keyed by trace
// file path. Concurrent Get calls for the same new path each load and race
// to insert; the loser's Session is simply discarded uncached, trading a
// rare duplicate parse for a simpler lock discipline than the teacher's
// per-collection ready-channel (there, a long network fetch makes that
// cost worth avoiding; here, a local file load is cheap enough not to).
type Store struct {
	mu  sync.Mutex
	lru *simplelru.LRU
}

// New returns a Store that keeps at most cacheSize Sessions resident.
func New(cacheSize int) (*Store, error) {
	lru, err := simplelru.NewLRU(cacheSize, nil)
	if err != nil {
		return nil, err
	}
	return &Store{lru: lru}, nil
}

// Get returns the cached Session for path, loading and building it first
// if necessary.
func (s *Store) Get(path string) (*Session, error) {
	s.mu.Lock()
	if v, ok := s.lru.Get(path); ok {
		s.mu.Unlock()
		return v.(*Session), nil
	}
	s.mu.Unlock()

	sess, err := s.load(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.lru.Get(path); ok {
		return v.(*Session), nil
	}
	if s.lru.Add(path, sess) {
		log.Infof("tracestore: evicted a session to make room for %s", path)
	}
	return sess, nil
}

// Evict drops path's Session from the cache, if present.
func (s *Store) Evict(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lru.Remove(path)
}

func (s *Store) load(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	db, err := eventstream.Load(f)
	if err != nil {
		return nil, err
	}
	l, err := layout.Build(db, "")
	if err != nil {
		return nil, err
	}
	groups := layout.BuildGroupTable(db)
	layout.ApplyGroupTable(l, groups)

	id := uuid.New()
	log.Infof("tracestore: loaded session %s for %s (%d tasks)", id, path, db.TaskCount())

	return &Session{ID: id, Path: path, DB: db, Layout: l, Groups: groups}, nil
}
