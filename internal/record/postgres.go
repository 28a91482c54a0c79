package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	id "epiaudit/pkg/domain"
	"epiaudit/pkg/platform/sentinel"
)

// Postgres reads the clinical_record_view table the data-entry system
// materialises: one JSON snapshot per registration, refreshed whenever the
// underlying forms change. Keeping the view denormalised means one read per
// registration gives scorers a consistent snapshot.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Get(ctx context.Context, regID id.RegistrationID) (*Record, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT payload FROM clinical_record_view WHERE registration_id = $1`,
		regID.String(),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("registration %s: %w", regID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get record view: %w", err)
	}
	return decodeRecord(payload)
}

func (p *Postgres) ListEligible(ctx context.Context, cohort id.Cohort, asOf time.Time) ([]*Record, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT payload FROM clinical_record_view
		WHERE cohort = $1
		  AND site_actively_involved
		  AND site_primary_centre
		  AND completed_first_year_date <= $2
		ORDER BY registration_id`,
		int(cohort), asOf,
	)
	if err != nil {
		return nil, fmt.Errorf("list eligible records: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan record view: %w", err)
		}
		rec, err := decodeRecord(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func decodeRecord(payload []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decode record view: %w", err)
	}
	return &rec, nil
}

func (p *Postgres) CasesBySex(ctx context.Context, organisationODS string) ([]Breakdown, error) {
	return p.breakdown(ctx, `
		SELECT CASE child_sex WHEN 1 THEN 'Male' WHEN 2 THEN 'Female' ELSE 'Not known' END, COUNT(*)
		FROM clinical_record_view
		WHERE organisation_ods = $1
		GROUP BY 1 ORDER BY 1`, organisationODS)
}

func (p *Postgres) CasesByEthnicity(ctx context.Context, organisationODS string) ([]Breakdown, error) {
	return p.breakdown(ctx, `
		SELECT COALESCE(NULLIF(child_ethnicity, ''), 'Not known'), COUNT(*)
		FROM clinical_record_view
		WHERE organisation_ods = $1
		GROUP BY 1 ORDER BY 1`, organisationODS)
}

func (p *Postgres) CasesByDeprivation(ctx context.Context, organisationODS string) ([]Breakdown, error) {
	return p.breakdown(ctx, `
		SELECT CASE COALESCE(deprivation_quintile, 6)
			WHEN 1 THEN '1st quintile' WHEN 2 THEN '2nd quintile'
			WHEN 3 THEN '3rd quintile' WHEN 4 THEN '4th quintile'
			WHEN 5 THEN '5th quintile' ELSE 'Not known' END, COUNT(*)
		FROM clinical_record_view
		WHERE organisation_ods = $1
		GROUP BY 1 ORDER BY 1`, organisationODS)
}

func (p *Postgres) breakdown(ctx context.Context, query, organisationODS string) ([]Breakdown, error) {
	rows, err := p.db.QueryContext(ctx, query, organisationODS)
	if err != nil {
		return nil, fmt.Errorf("breakdown query: %w", err)
	}
	defer rows.Close()

	var out []Breakdown
	for rows.Next() {
		var b Breakdown
		if err := rows.Scan(&b.Label, &b.Count); err != nil {
			return nil, fmt.Errorf("scan breakdown: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
