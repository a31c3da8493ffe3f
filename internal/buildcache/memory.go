package buildcache

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and cache-less runs
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	runs    []*Run
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*Entry),
		runs:    make([]*Run, 0),
	}
}

// Get returns the entry for key or ErrNotFound
func (s *MemoryStore) Get(ctx context.Context, key string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *entry
	return &copied, nil
}

// Put inserts or replaces an entry
func (s *MemoryStore) Put(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Key == "" {
		return errors.New("cache entry without key")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	copied := *entry
	s.entries[entry.Key] = &copied
	return nil
}

// RecordRun appends a run to the log
func (s *MemoryStore) RecordRun(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	s.runs = append(s.runs, run)
	return nil
}

// Runs returns the most recent runs first
func (s *MemoryStore) Runs(ctx context.Context, limit int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*Run, len(s.runs))
	copy(results, s.runs)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

// Stats returns cache statistics
func (s *MemoryStore) Stats(ctx context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var functions, failed, cached int64
	for _, entry := range s.entries {
		functions += int64(len(entry.Functions))
	}
	for _, run := range s.runs {
		if !run.Success {
			failed++
		}
		if run.Cached {
			cached++
		}
	}

	return map[string]interface{}{
		"total_entries":   int64(len(s.entries)),
		"total_functions": functions,
		"total_runs":      int64(len(s.runs)),
		"failed_runs":     failed,
		"cached_runs":     cached,
	}, nil
}

// Ping always succeeds
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Prune removes old entries and runs
func (s *MemoryStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var deleted int64

	for key, entry := range s.entries {
		if entry.CreatedAt.Before(cutoff) {
			delete(s.entries, key)
			deleted++
		}
	}

	kept := make([]*Run, 0, len(s.runs))
	for _, run := range s.runs {
		if run.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, run)
	}
	s.runs = kept

	return deleted, nil
}

// Close is a no-op for memory store
func (s *MemoryStore) Close() error {
	return nil
}
