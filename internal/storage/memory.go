package storage

import (
	"context"
	"errors"
	"sync"

	"langchange/internal/model"
)

var errNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.RunRecord
	tables      map[string]model.FrequencyTable
	hierarchies map[string]model.Hierarchy
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.RunRecord)
	s.tables = make(map[string]model.FrequencyTable)
	s.hierarchies = make(map[string]model.Hierarchy)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	run.Params.Lingueme = append([]string(nil), run.Params.Lingueme...)
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, run)
	}
	sortRuns(out)
	return out, nil
}

func (s *MemoryStore) SaveFrequencyTable(_ context.Context, runID string, table model.FrequencyTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.tables[runID] = cloneTable(table)
	return nil
}

func (s *MemoryStore) GetFrequencyTable(_ context.Context, runID string) (model.FrequencyTable, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	table, ok := s.tables[runID]
	if !ok {
		return model.FrequencyTable{}, false, nil
	}
	return cloneTable(table), true, nil
}

func (s *MemoryStore) SaveHierarchy(_ context.Context, runID string, hierarchy model.Hierarchy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.hierarchies[runID] = cloneHierarchy(hierarchy)
	return nil
}

func (s *MemoryStore) GetHierarchy(_ context.Context, runID string) (model.Hierarchy, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.hierarchies[runID]
	if !ok {
		return model.Hierarchy{}, false, nil
	}
	return cloneHierarchy(h), true, nil
}
