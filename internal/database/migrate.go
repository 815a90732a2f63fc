package database

import (
	"context"
	"database/sql"
	"embed"
	"io"
	"log"
	"os"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// gooseUp is a seam for tests; it defaults to goose.UpContext.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

func setup() error {
	goose.SetBaseFS(migrations)
	return goose.SetDialect("mysql")
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	return gooseUp(ctx, db, "migrations")
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	return goose.DownContext(ctx, db, "migrations")
}

// Status writes the applied/pending state of each migration to w.
func Status(ctx context.Context, db *sql.DB, w io.Writer) error {
	if err := setup(); err != nil {
		return err
	}
	goose.SetLogger(log.New(w, "", 0))
	defer goose.SetLogger(log.New(os.Stderr, "", log.LstdFlags))
	return goose.StatusContext(ctx, db, "migrations")
}
