package database

import (
	"context"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"

	"github.com/ciaraugasmoy/user-management-api/internal/database/migrations"
)

// RunMigrations applies all pending goose migrations from the embedded FS
func RunMigrations(ctx context.Context, db *bun.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db.DB, ".")
}
