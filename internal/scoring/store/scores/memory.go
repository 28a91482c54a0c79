package scores

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"epiaudit/internal/scoring"
	"epiaudit/pkg/domain"
	"epiaudit/pkg/platform/sentinel"
)

// Memory is an in-memory Store for tests and local development.
type Memory struct {
	mu      sync.RWMutex
	results map[domain.RegistrationID]*scoring.Result
}

func NewMemory() *Memory {
	return &Memory{results: make(map[domain.RegistrationID]*scoring.Result)}
}

func (m *Memory) Save(_ context.Context, result *scoring.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *result
	cp.Scores = make(map[scoring.MeasureID]scoring.ScoreCode, len(result.Scores))
	for k, v := range result.Scores {
		cp.Scores[k] = v
	}
	m.results[result.RegistrationID] = &cp
	return nil
}

func (m *Memory) Get(_ context.Context, id domain.RegistrationID) (*scoring.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[id]
	if !ok {
		return nil, fmt.Errorf("scorecard %s: %w", id, sentinel.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (m *Memory) ListByCohort(_ context.Context, cohort domain.Cohort) ([]*scoring.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*scoring.Result
	for _, r := range m.results {
		if r.Cohort == cohort {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RegistrationID.String() < out[j].RegistrationID.String()
	})
	return out, nil
}
