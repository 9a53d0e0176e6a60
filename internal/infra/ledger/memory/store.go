// Package memory implements an in-process issuance ledger.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"labcert/internal/ledger/core"
)

// Store keeps ledger entries in memory.
type Store struct {
	mu      sync.RWMutex
	entries map[string]core.Entry
	now     func() time.Time
}

// New returns an empty in-memory ledger.
func New() *Store {
	return &Store{entries: make(map[string]core.Entry), now: time.Now}
}

func (s *Store) Driver() core.Driver { return core.DriverMemory }

func (s *Store) Record(ctx context.Context, e core.Entry) (core.Entry, error) {
	if err := ctx.Err(); err != nil {
		return core.Entry{}, err
	}
	e, err := core.Prepare(e, s.now)
	if err != nil {
		return core.Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[e.ID]; exists {
		return core.Entry{}, fmt.Errorf("%w: %s", core.ErrDuplicate, e.ID)
	}
	s.entries[e.ID] = e
	return e, nil
}

func (s *Store) Get(ctx context.Context, id string) (core.Entry, error) {
	if err := ctx.Err(); err != nil {
		return core.Entry{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return core.Entry{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	return e, nil
}

func (s *Store) List(ctx context.Context, q core.Query) ([]core.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]core.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if q.Reference == "" || e.Reference == q.Reference {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].IssuedAt.Equal(out[j].IssuedAt) {
			return out[i].IssuedAt.Before(out[j].IssuedAt)
		}
		return out[i].ID < out[j].ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) Close() error { return nil }
