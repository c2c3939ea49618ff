package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Kiandes/P27-firecard/internal/config"
)

type DB struct {
	*sqlx.DB
}

func Connect(databaseURL string) (*DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(config.DBMaxOpenConns)
	db.SetMaxIdleConns(config.DBMaxIdleConns)
	db.SetConnMaxLifetime(config.DBConnMaxLifetime)

	return &DB{db}, nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// EnsureSchema creates the local tables on startup. The service owns its
// Postgres database exclusively, so idempotent DDL replaces a migration tool.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS exported_events (
			id            TEXT PRIMARY KEY,
			calendar_id   TEXT NOT NULL,
			title         TEXT NOT NULL,
			start_date    TIMESTAMPTZ NOT NULL,
			end_date      TIMESTAMPTZ NOT NULL,
			all_day       BOOLEAN NOT NULL DEFAULT FALSE,
			availability  TEXT NOT NULL,
			status        TEXT NOT NULL,
			exported_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS preferences (
			id                    INT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			calendar_id           TEXT NOT NULL DEFAULT '',
			calendar_sync_enabled BOOLEAN NOT NULL DEFAULT FALSE
		);
	`)
	return err
}
