// Package casestore keeps analyzed case records in memory.
package casestore

import (
	"errors"
	"sort"
	"sync"

	"github.com/dgallion1/casereport/internal/casefile"
)

// ErrNotFound is returned for unknown record IDs.
var ErrNotFound = errors.New("case not found")

// Store is a thread-safe registry of case records keyed by sequential ID.
type Store struct {
	mu     sync.RWMutex
	nextID int
	recs   map[int]*casefile.Record
	byHash map[string]int
}

func New() *Store {
	return &Store{
		nextID: 1,
		recs:   make(map[int]*casefile.Record),
		byHash: make(map[string]int),
	}
}

// Put stores rec under a fresh ID, which is written to rec.ID and returned.
// Callers must not modify rec afterwards.
func (s *Store) Put(rec *casefile.Record) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	rec.ID = id
	s.recs[id] = rec
	if rec.ContentHash != "" {
		s.byHash[rec.ContentHash] = id
	}
	return id
}

func (s *Store) Get(id int) (*casefile.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

// List returns all records in ID order.
func (s *Store) List() []*casefile.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*casefile.Record, 0, len(s.recs))
	for _, rec := range s.recs {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.recs, id)
	if rec.ContentHash != "" && s.byHash[rec.ContentHash] == id {
		delete(s.byHash, rec.ContentHash)
	}
	return nil
}

// FindByHash returns the ID of a record uploaded with the same content.
func (s *Store) FindByHash(hash string) (int, bool) {
	if hash == "" {
		return 0, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byHash[hash]
	return id, ok
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recs)
}
