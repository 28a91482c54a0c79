package scores

import (
	"context"
	"database/sql"
	"fmt"

	"epiaudit/internal/scoring"
	"epiaudit/pkg/domain"
	"epiaudit/pkg/platform/sentinel"
	"epiaudit/pkg/platform/tx"
)

// Postgres stores scorecards in the kpi_scores table, one narrow row per
// registration and measure. Save replaces the whole scorecard inside a
// transaction so readers never see a half-written run.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Save(ctx context.Context, result *scoring.Result) error {
	return tx.Within(ctx, p.db, func(t *sql.Tx) error {
		if _, err := t.ExecContext(ctx,
			`DELETE FROM kpi_scores WHERE registration_id = $1`,
			result.RegistrationID.String(),
		); err != nil {
			return fmt.Errorf("clear scorecard: %w", err)
		}

		for _, id := range scoring.MeasureIDs() {
			code, ok := result.Scores[id]
			if !ok {
				code = scoring.NotScored
			}
			if _, err := t.ExecContext(ctx,
				`INSERT INTO kpi_scores (registration_id, cohort, measure_id, score, updated_at)
				 VALUES ($1, $2, $3, $4, $5)`,
				result.RegistrationID.String(), int(result.Cohort), string(id), int(code), result.UpdatedAt,
			); err != nil {
				return fmt.Errorf("insert score %s: %w", id, err)
			}
		}
		return nil
	})
}

func (p *Postgres) Get(ctx context.Context, id domain.RegistrationID) (*scoring.Result, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT cohort, measure_id, score, updated_at
		 FROM kpi_scores WHERE registration_id = $1`,
		id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("get scorecard: %w", err)
	}
	defer rows.Close()

	result := &scoring.Result{
		RegistrationID: id,
		Scores:         make(map[scoring.MeasureID]scoring.ScoreCode),
	}
	for rows.Next() {
		var (
			cohort  int
			measure string
			score   int
		)
		if err := rows.Scan(&cohort, &measure, &score, &result.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		result.Cohort = domain.Cohort(cohort)
		result.Scores[scoring.MeasureID(measure)] = scoring.ScoreCode(score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read scorecard: %w", err)
	}
	if len(result.Scores) == 0 {
		return nil, fmt.Errorf("scorecard %s: %w", id, sentinel.ErrNotFound)
	}
	return result, nil
}

func (p *Postgres) ListByCohort(ctx context.Context, cohort domain.Cohort) ([]*scoring.Result, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT registration_id, measure_id, score, updated_at
		 FROM kpi_scores WHERE cohort = $1
		 ORDER BY registration_id`,
		int(cohort),
	)
	if err != nil {
		return nil, fmt.Errorf("list scorecards: %w", err)
	}
	defer rows.Close()

	var (
		out     []*scoring.Result
		current *scoring.Result
	)
	for rows.Next() {
		var (
			rawID   string
			measure string
			score   int
			updated sql.NullTime
		)
		if err := rows.Scan(&rawID, &measure, &score, &updated); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		id, err := domain.ParseRegistrationID(rawID)
		if err != nil {
			return nil, fmt.Errorf("stored registration id: %w", err)
		}
		if current == nil || current.RegistrationID != id {
			current = &scoring.Result{
				RegistrationID: id,
				Cohort:         cohort,
				Scores:         make(map[scoring.MeasureID]scoring.ScoreCode),
			}
			out = append(out, current)
		}
		current.Scores[scoring.MeasureID(measure)] = scoring.ScoreCode(score)
		if updated.Valid {
			current.UpdatedAt = updated.Time
		}
	}
	return out, rows.Err()
}
