// Package tx centralises transaction handling for database/sql stores.
package tx

import (
	"context"
	"database/sql"
	"fmt"
)

// Within runs fn inside a transaction, rolling back when fn fails and
// committing otherwise.
func Within(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	t, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(t); err != nil {
		_ = t.Rollback()
		return err
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
