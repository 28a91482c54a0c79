package record

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	id "epiaudit/pkg/domain"
	"epiaudit/pkg/platform/sentinel"
)

// Memory holds record views in process, for tests and for deployments where
// the data-entry system pushes snapshots directly.
type Memory struct {
	mu      sync.RWMutex
	records map[id.RegistrationID]*Record
}

func NewMemory() *Memory {
	return &Memory{records: make(map[id.RegistrationID]*Record)}
}

// Put stores or replaces a record view.
func (m *Memory) Put(r *Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.Registration.ID] = r
}

func (m *Memory) Get(ctx context.Context, regID id.RegistrationID) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[regID]
	if !ok {
		return nil, fmt.Errorf("registration %s: %w", regID, sentinel.ErrNotFound)
	}
	return r, nil
}

func (m *Memory) ListEligible(ctx context.Context, cohort id.Cohort, asOf time.Time) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Record
	for _, r := range m.records {
		if !eligible(r, cohort, asOf) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Registration.ID.String() < out[j].Registration.ID.String()
	})
	return out, nil
}

func eligible(r *Record, cohort id.Cohort, asOf time.Time) bool {
	return r.Site.ActivelyInvolvedInCare &&
		r.Site.PrimaryCentreOfCare &&
		r.Registration.Cohort == cohort &&
		!r.Registration.CompletedFirstYearOfCareDate.After(asOf)
}

var sexLabels = map[Sex]string{
	SexNotKnown: "Not known",
	SexMale:     "Male",
	SexFemale:   "Female",
}

var deprivationLabels = map[int]string{
	1: "1st quintile",
	2: "2nd quintile",
	3: "3rd quintile",
	4: "4th quintile",
	5: "5th quintile",
	6: "Not known",
}

func (m *Memory) CasesBySex(ctx context.Context, organisationODS string) ([]Breakdown, error) {
	counts := make(map[string]int)
	m.mu.RLock()
	for _, r := range m.records {
		if r.Site.Organisation.ODSCode != organisationODS {
			continue
		}
		counts[sexLabels[r.Child.Sex]]++
	}
	m.mu.RUnlock()
	return sortedBreakdowns(counts), nil
}

func (m *Memory) CasesByEthnicity(ctx context.Context, organisationODS string) ([]Breakdown, error) {
	counts := make(map[string]int)
	m.mu.RLock()
	for _, r := range m.records {
		if r.Site.Organisation.ODSCode != organisationODS {
			continue
		}
		label := r.Child.Ethnicity
		if label == "" {
			label = "Not known"
		}
		counts[label]++
	}
	m.mu.RUnlock()
	return sortedBreakdowns(counts), nil
}

func (m *Memory) CasesByDeprivation(ctx context.Context, organisationODS string) ([]Breakdown, error) {
	counts := make(map[string]int)
	m.mu.RLock()
	for _, r := range m.records {
		if r.Site.Organisation.ODSCode != organisationODS {
			continue
		}
		quintile := 6 // unknown deprivation sorts last
		if r.Child.DeprivationQuintile != nil {
			quintile = *r.Child.DeprivationQuintile
		}
		counts[deprivationLabels[quintile]]++
	}
	m.mu.RUnlock()
	return sortedBreakdowns(counts), nil
}

func sortedBreakdowns(counts map[string]int) []Breakdown {
	out := make([]Breakdown, 0, len(counts))
	for label, n := range counts {
		out = append(out, Breakdown{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
