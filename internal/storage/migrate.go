package storage

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Migrate creates the kv_records table. Existing records are kept; the
// till's whole history lives in this one table.
func Migrate(db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*Record)(nil)).
		IfNotExists().
		Exec(context.Background())
	if err != nil {
		return fmt.Errorf("create kv_records: %w", err)
	}
	return nil
}
