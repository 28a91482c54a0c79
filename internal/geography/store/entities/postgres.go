package entities

import (
	"context"
	"database/sql"
	"fmt"

	"epiaudit/internal/geography"
	"epiaudit/pkg/platform/sentinel"
)

// Postgres reads reference geography from the geography_entities table, which
// is seeded and refreshed by the reference-data loader outside this service.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Find(ctx context.Context, level geography.AbstractionLevel, key string) (geography.Entity, error) {
	var e geography.Entity
	e.Level = level
	err := p.db.QueryRowContext(ctx,
		`SELECT natural_key, name FROM geography_entities WHERE level = $1 AND natural_key = $2`,
		level.String(), key,
	).Scan(&e.Key, &e.Name)
	if err == sql.ErrNoRows {
		return geography.Entity{}, fmt.Errorf("entity %s %q: %w", level, key, sentinel.ErrNotFound)
	}
	if err != nil {
		return geography.Entity{}, fmt.Errorf("find entity: %w", err)
	}
	return e, nil
}

func (p *Postgres) List(ctx context.Context, level geography.AbstractionLevel) ([]geography.Entity, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT natural_key, name FROM geography_entities WHERE level = $1 ORDER BY natural_key`,
		level.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()

	var out []geography.Entity
	for rows.Next() {
		e := geography.Entity{Level: level}
		if err := rows.Scan(&e.Key, &e.Name); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
