package summaries

import (
	"context"
	"sort"
	"sync"

	"epiaudit/internal/geography"
	"epiaudit/internal/scoring"
	"epiaudit/pkg/domain"
)

type closedKey struct {
	level  geography.AbstractionLevel
	entity string
	cohort domain.Cohort
}

// Memory is an in-memory Store for tests and local development. Closed-view
// rows live in a map keyed like the partial unique index; publications are
// an append-only slice.
type Memory struct {
	mu        sync.RWMutex
	closed    map[closedKey]*Row
	published []*Row
}

func NewMemory() *Memory {
	return &Memory{closed: make(map[closedKey]*Row)}
}

// Upsert replaces the closed view's counts for the measures present on the
// row, matching the Postgres store's per-measure rows: a subset run leaves
// the entity's other measures untouched.
func (m *Memory) Upsert(_ context.Context, row *Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := keyOf(row)
	existing, ok := m.closed[k]
	if !ok {
		m.closed[k] = copyRow(row)
		return nil
	}
	existing.EntityName = row.EntityName
	existing.Cases = row.Cases
	existing.LastUpdated = row.LastUpdated
	for id, v := range row.Counts {
		c := *v
		existing.Counts[id] = &c
	}
	return nil
}

func (m *Memory) Publish(_ context.Context, row *Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, copyRow(row))
	return nil
}

func (m *Memory) Seed(_ context.Context, row *Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := keyOf(row)
	if _, exists := m.closed[k]; exists {
		return nil
	}
	m.closed[k] = copyRow(row)
	return nil
}

func (m *Memory) Latest(_ context.Context, level geography.AbstractionLevel, cohort domain.Cohort, openAccess bool) ([]*Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Row
	if openAccess {
		latest := make(map[string]*Row)
		for _, r := range m.published {
			if r.Level == level && r.Cohort == cohort {
				prev, ok := latest[r.EntityKey]
				if !ok || r.LastUpdated.After(prev.LastUpdated) {
					latest[r.EntityKey] = r
				}
			}
		}
		for _, r := range latest {
			out = append(out, copyRow(r))
		}
	} else {
		for k, r := range m.closed {
			if k.level == level && k.cohort == cohort {
				out = append(out, copyRow(r))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityKey < out[j].EntityKey })
	return out, nil
}

// PublishedCount reports how many open-access rows exist for an entity,
// for tests asserting append semantics.
func (m *Memory) PublishedCount(level geography.AbstractionLevel, entityKey string, cohort domain.Cohort) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.published {
		if r.Level == level && r.EntityKey == entityKey && r.Cohort == cohort {
			n++
		}
	}
	return n
}

func keyOf(row *Row) closedKey {
	return closedKey{level: row.Level, entity: row.EntityKey, cohort: row.Cohort}
}

func copyRow(row *Row) *Row {
	cp := *row
	cp.Counts = make(map[scoring.MeasureID]*scoring.MeasureCounts, len(row.Counts))
	for k, v := range row.Counts {
		c := *v
		cp.Counts[k] = &c
	}
	return &cp
}
