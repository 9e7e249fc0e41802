package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"mercator-hq/prism/pkg/report"
)

// MemoryStorage implements the Storage interface using in-memory maps.
// This implementation is intended for testing only and should not be
// used in production.
type MemoryStorage struct {
	runs      map[string]*report.RunRecord
	decisions map[string][]*report.Decision
	mu        sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		runs:      make(map[string]*report.RunRecord),
		decisions: make(map[string][]*report.Decision),
	}
}

// StoreRun persists a run record to memory.
func (s *MemoryStorage) StoreRun(ctx context.Context, run *report.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCopy := *run
	s.runs[run.ID] = &runCopy

	return nil
}

// StoreDecisions persists decision records to memory.
func (s *MemoryStorage) StoreDecisions(ctx context.Context, decisions []*report.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range decisions {
		dCopy := *d
		s.decisions[d.RunID] = append(s.decisions[d.RunID], &dCopy)
	}

	return nil
}

// QueryRuns retrieves run records matching the query, newest first.
func (s *MemoryStorage) QueryRuns(ctx context.Context, query *report.Query) ([]*report.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*report.RunRecord
	for _, run := range s.runs {
		if !s.matchesRun(run, query) {
			continue
		}
		runCopy := *run
		results = append(results, &runCopy)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].StartedAt.After(results[j].StartedAt)
	})

	return paginate(results, query), nil
}

// QueryDecisions retrieves decision records matching the query.
func (s *MemoryStorage) QueryDecisions(ctx context.Context, query *report.Query) ([]*report.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*report.Decision
	for runID, decisions := range s.decisions {
		if query.RunID != "" && runID != query.RunID {
			continue
		}
		for _, d := range decisions {
			if query.Unit != "" && d.Unit != query.Unit {
				continue
			}
			dCopy := *d
			results = append(results, &dCopy)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].RecordedAt.Before(results[j].RecordedAt)
	})

	return paginate(results, query), nil
}

// DeleteRunsBefore removes runs that started before the cutoff.
func (s *MemoryStorage) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, run := range s.runs {
		if run.StartedAt.Before(cutoff) {
			delete(s.runs, id)
			delete(s.decisions, id)
			deleted++
		}
	}

	return deleted, nil
}

// CountRuns returns the total number of stored runs.
func (s *MemoryStorage) CountRuns(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.runs)), nil
}

// OldestRuns returns the IDs of the N oldest runs by start time.
func (s *MemoryStorage) OldestRuns(ctx context.Context, n int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]*report.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.Before(runs[j].StartedAt)
	})

	var ids []string
	for i := 0; i < len(runs) && int64(i) < n; i++ {
		ids = append(ids, runs[i].ID)
	}

	return ids, nil
}

// DeleteRuns removes the given runs and their decisions.
func (s *MemoryStorage) DeleteRuns(ctx context.Context, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for _, id := range ids {
		if _, ok := s.runs[id]; ok {
			delete(s.runs, id)
			delete(s.decisions, id)
			deleted++
		}
	}

	return deleted, nil
}

// Close is a no-op for memory storage.
func (s *MemoryStorage) Close() error {
	return nil
}

func (s *MemoryStorage) matchesRun(run *report.RunRecord, query *report.Query) bool {
	if query.RunID != "" && run.ID != query.RunID {
		return false
	}
	if !query.Since.IsZero() && run.StartedAt.Before(query.Since) {
		return false
	}
	if !query.Until.IsZero() && !run.StartedAt.Before(query.Until) {
		return false
	}
	if query.OnlyFailed && run.Success {
		return false
	}
	return true
}

func paginate[T any](results []T, query *report.Query) []T {
	start := query.Offset
	if start > len(results) {
		return []T{}
	}

	end := len(results)
	if query.Limit > 0 && start+query.Limit < end {
		end = start + query.Limit
	}

	return results[start:end]
}
