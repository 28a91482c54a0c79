package summaries

import (
	"context"
	"database/sql"
	"fmt"

	"epiaudit/internal/geography"
	"epiaudit/internal/scoring"
	"epiaudit/pkg/domain"
	"epiaudit/pkg/platform/tx"
)

// levelTables maps each abstraction level to its aggregation table. The
// tables share one schema: one row per entity, cohort, access class and
// measure, with a partial unique index over the closed view that backs
// the ON CONFLICT upsert.
var levelTables = map[geography.AbstractionLevel]string{
	geography.LevelOrganisation:     "organisation_kpi_aggregation",
	geography.LevelTrust:            "trust_kpi_aggregation",
	geography.LevelLocalHealthBoard: "local_health_board_kpi_aggregation",
	geography.LevelICB:              "icb_kpi_aggregation",
	geography.LevelNHSEnglandRegion: "nhs_england_region_kpi_aggregation",
	geography.LevelOpenUKNetwork:    "open_uk_kpi_aggregation",
	geography.LevelCountry:          "country_kpi_aggregation",
	geography.LevelNational:         "national_kpi_aggregation",
}

// Postgres stores aggregation rows, one table per abstraction level.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func tableFor(level geography.AbstractionLevel) (string, error) {
	t, ok := levelTables[level]
	if !ok {
		return "", fmt.Errorf("no aggregation table for level %q", level)
	}
	return t, nil
}

func (p *Postgres) Upsert(ctx context.Context, row *Row) error {
	table, err := tableFor(row.Level)
	if err != nil {
		return err
	}
	stmt := fmt.Sprintf(`
		INSERT INTO %s (entity_key, entity_name, cohort, open_access, measure_id,
		                cases, passed, total_eligible, ineligible, incomplete, last_updated)
		VALUES ($1, $2, $3, FALSE, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (entity_key, cohort, measure_id) WHERE NOT open_access
		DO UPDATE SET entity_name = EXCLUDED.entity_name,
		              cases = EXCLUDED.cases,
		              passed = EXCLUDED.passed,
		              total_eligible = EXCLUDED.total_eligible,
		              ineligible = EXCLUDED.ineligible,
		              incomplete = EXCLUDED.incomplete,
		              last_updated = EXCLUDED.last_updated`, table)

	// Only measures present on the row are written, so a subset run leaves
	// the other measures' stored counts alone.
	return tx.Within(ctx, p.db, func(t *sql.Tx) error {
		for _, id := range scoring.MeasureIDs() {
			c, ok := row.Counts[id]
			if !ok {
				continue
			}
			if _, err := t.ExecContext(ctx, stmt,
				row.EntityKey, row.EntityName, int(row.Cohort), string(id),
				row.Cases, c.Passed, c.TotalEligible, c.Ineligible, c.Incomplete, row.LastUpdated,
			); err != nil {
				return fmt.Errorf("upsert %s row %s/%s: %w", table, row.EntityKey, id, err)
			}
		}
		return nil
	})
}

func (p *Postgres) Publish(ctx context.Context, row *Row) error {
	table, err := tableFor(row.Level)
	if err != nil {
		return err
	}
	stmt := fmt.Sprintf(`
		INSERT INTO %s (entity_key, entity_name, cohort, open_access, measure_id,
		                cases, passed, total_eligible, ineligible, incomplete, last_updated)
		VALUES ($1, $2, $3, TRUE, $4, $5, $6, $7, $8, $9, $10)`, table)

	return tx.Within(ctx, p.db, func(t *sql.Tx) error {
		for _, id := range scoring.MeasureIDs() {
			c, ok := row.Counts[id]
			if !ok {
				continue
			}
			if _, err := t.ExecContext(ctx, stmt,
				row.EntityKey, row.EntityName, int(row.Cohort), string(id),
				row.Cases, c.Passed, c.TotalEligible, c.Ineligible, c.Incomplete, row.LastUpdated,
			); err != nil {
				return fmt.Errorf("publish %s row %s/%s: %w", table, row.EntityKey, id, err)
			}
		}
		return nil
	})
}

func (p *Postgres) Seed(ctx context.Context, row *Row) error {
	table, err := tableFor(row.Level)
	if err != nil {
		return err
	}
	stmt := fmt.Sprintf(`
		INSERT INTO %s (entity_key, entity_name, cohort, open_access, measure_id,
		                cases, passed, total_eligible, ineligible, incomplete, last_updated)
		VALUES ($1, $2, $3, FALSE, $4, 0, 0, 0, 0, 0, $5)
		ON CONFLICT (entity_key, cohort, measure_id) WHERE NOT open_access
		DO NOTHING`, table)

	return tx.Within(ctx, p.db, func(t *sql.Tx) error {
		for _, id := range scoring.MeasureIDs() {
			if _, err := t.ExecContext(ctx, stmt,
				row.EntityKey, row.EntityName, int(row.Cohort), string(id), row.LastUpdated,
			); err != nil {
				return fmt.Errorf("seed %s row %s/%s: %w", table, row.EntityKey, id, err)
			}
		}
		return nil
	})
}

func (p *Postgres) Latest(ctx context.Context, level geography.AbstractionLevel, cohort domain.Cohort, openAccess bool) ([]*Row, error) {
	table, err := tableFor(level)
	if err != nil {
		return nil, err
	}

	// The closed view holds one row per (entity, measure); the open view can
	// hold many publications, so keep only the newest per entity and measure.
	stmt := fmt.Sprintf(`
		SELECT DISTINCT ON (entity_key, measure_id)
		       entity_key, entity_name, measure_id,
		       cases, passed, total_eligible, ineligible, incomplete, last_updated
		FROM %s
		WHERE cohort = $1 AND open_access = $2
		ORDER BY entity_key, measure_id, last_updated DESC`, table)

	rows, err := p.db.QueryContext(ctx, stmt, int(cohort), openAccess)
	if err != nil {
		return nil, fmt.Errorf("latest %s: %w", table, err)
	}
	defer rows.Close()

	byEntity := make(map[string]*Row)
	var order []string
	for rows.Next() {
		var (
			key, name, measure string
			cases              int
			c                  scoring.MeasureCounts
			updated            sql.NullTime
		)
		if err := rows.Scan(&key, &name, &measure,
			&cases, &c.Passed, &c.TotalEligible, &c.Ineligible, &c.Incomplete, &updated,
		); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		r, ok := byEntity[key]
		if !ok {
			r = &Row{
				Level:      level,
				EntityKey:  key,
				EntityName: name,
				Cohort:     cohort,
				OpenAccess: openAccess,
				Cases:      cases,
				Counts:     make(map[scoring.MeasureID]*scoring.MeasureCounts),
			}
			byEntity[key] = r
			order = append(order, key)
		}
		counts := c
		r.Counts[scoring.MeasureID(measure)] = &counts
		if updated.Valid && updated.Time.After(r.LastUpdated) {
			r.LastUpdated = updated.Time
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}

	out := make([]*Row, 0, len(order))
	for _, key := range order {
		out = append(out, byEntity[key])
	}
	return out, nil
}
