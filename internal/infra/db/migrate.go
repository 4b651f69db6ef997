package db

import "database/sql"

// MigrateUp creates the crawler's relational schema: one contents table
// holding the metadata row the storage pipeline writes after the object
// store PUT succeeds (spec's two-store write ordering).
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS contents (
    id           SERIAL PRIMARY KEY,
    content_uuid TEXT NOT NULL UNIQUE,
    source       TEXT NOT NULL,
    url          TEXT NOT NULL UNIQUE,
    title        TEXT NOT NULL,
    author       TEXT,
    published_at TIMESTAMPTZ,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    body_ref     TEXT NOT NULL
)`); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_contents_created_at ON contents(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_contents_source ON contents(source)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}

// MigrateDown drops the crawler's relational schema. Use with caution:
// this deletes all stored content metadata rows.
func MigrateDown(db *sql.DB) error {
	_, err := db.Exec(`DROP TABLE IF EXISTS contents CASCADE`)
	return err
}
