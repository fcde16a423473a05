// Package memstore is an in-memory sent-articles log for tests and runs
// with persistent dedup switched off.
package memstore

import (
	"context"
	"sync"

	"github.com/cognicore/topicscan/pkg/topicscan/store"
)

// Store is an in-memory implementation of store.SentStore.
type Store struct {
	mu   sync.RWMutex
	rows []store.SentArticle
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Close implements store.SentStore.
func (s *Store) Close() error { return nil }

func (s *Store) SentHashes(_ context.Context, since string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]struct{})
	for _, r := range s.rows {
		if r.SentDate >= since {
			out[r.URLHash] = struct{}{}
		}
	}
	return out, nil
}

func (s *Store) CountSentOn(_ context.Context, date string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, r := range s.rows {
		if r.SentDate == date {
			n++
		}
	}
	return n, nil
}

func (s *Store) MarkSent(_ context.Context, rows []store.SentArticle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
	return nil
}

// Rows returns a copy of everything recorded.
func (s *Store) Rows() []store.SentArticle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]store.SentArticle(nil), s.rows...)
}
