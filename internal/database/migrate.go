package database

import (
	"context"
	"embed"
	"path"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrationFiles embed.FS

func (db *DB) prepareGoose() (string, error) {
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect(string(db.Dialect)); err != nil {
		return "", errors.Wrap(err, "goose dialect")
	}
	return path.Join("migrations", string(db.Dialect)), nil
}

// MigrateUp applies all pending migrations.
func (db *DB) MigrateUp(ctx context.Context) error {
	dir, err := db.prepareGoose()
	if err != nil {
		return err
	}
	return errors.Wrap(goose.UpContext(ctx, db.DB.DB, dir), "migrate up")
}

// MigrateDown rolls back the latest migration.
func (db *DB) MigrateDown(ctx context.Context) error {
	dir, err := db.prepareGoose()
	if err != nil {
		return err
	}
	return errors.Wrap(goose.DownContext(ctx, db.DB.DB, dir), "migrate down")
}

// MigrateStatus logs the applied state of every migration through goose's
// logger.
func (db *DB) MigrateStatus(ctx context.Context) error {
	dir, err := db.prepareGoose()
	if err != nil {
		return err
	}
	return errors.Wrap(goose.StatusContext(ctx, db.DB.DB, dir), "migrate status")
}
