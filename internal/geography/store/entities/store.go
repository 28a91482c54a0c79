// Package entities resolves geographic reference entities by natural key.
// Reference data is loaded and refreshed independently of live organisation
// data, so lookups can legitimately miss; callers decide how to recover.
package entities

import (
	"context"

	"epiaudit/internal/geography"
)

//go:generate mockgen -source=store.go -destination=../../../aggregation/mocks/entities.go -package=mocks Store

// Store finds geographic entities for linking aggregation rows.
type Store interface {
	// Find returns the entity with the given natural key at the level, or a
	// sentinel.ErrNotFound wrapped error when reference data has no match.
	Find(ctx context.Context, level geography.AbstractionLevel, key string) (geography.Entity, error)
	// List returns every known entity at the level, used to seed empty
	// aggregation rows for geographies with no patients yet.
	List(ctx context.Context, level geography.AbstractionLevel) ([]geography.Entity, error)
}
