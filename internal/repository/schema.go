package repository

import (
	"context"
	"fmt"
)

// EnsureSchema creates the extension, tables, constraints and indexes when they are missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, SchemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	return nil
}
