package entities

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"epiaudit/internal/geography"
	"epiaudit/pkg/platform/sentinel"
)

// Memory is an in-memory reference store for tests and single-process runs.
type Memory struct {
	mu      sync.RWMutex
	byLevel map[geography.AbstractionLevel]map[string]geography.Entity
}

func NewMemory() *Memory {
	return &Memory{byLevel: make(map[geography.AbstractionLevel]map[string]geography.Entity)}
}

// Put registers a reference entity, replacing any previous one with the same
// level and key.
func (m *Memory) Put(e geography.Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byKey, ok := m.byLevel[e.Level]
	if !ok {
		byKey = make(map[string]geography.Entity)
		m.byLevel[e.Level] = byKey
	}
	byKey[e.Key] = e
}

func (m *Memory) Find(ctx context.Context, level geography.AbstractionLevel, key string) (geography.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.byLevel[level][key]
	if !ok {
		return geography.Entity{}, fmt.Errorf("entity %s %q: %w", level, key, sentinel.ErrNotFound)
	}
	return e, nil
}

func (m *Memory) List(ctx context.Context, level geography.AbstractionLevel) ([]geography.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]geography.Entity, 0, len(m.byLevel[level]))
	for _, e := range m.byLevel[level] {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
