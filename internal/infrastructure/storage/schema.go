package storage

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS saved_items (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL,
		url          TEXT NOT NULL,
		status       TEXT NOT NULL,
		title        TEXT,
		content      TEXT,
		og_image     TEXT,
		author       TEXT,
		published_at TIMESTAMPTZ,
		summary      TEXT,
		tags         TEXT NOT NULL DEFAULT '[]',
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS saved_items_user_created_idx ON saved_items (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS saved_items_status_idx ON saved_items (status, created_at)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS saved_items (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL,
		url          TEXT NOT NULL,
		status       TEXT NOT NULL,
		title        TEXT,
		content      TEXT,
		og_image     TEXT,
		author       TEXT,
		published_at DATETIME,
		summary      TEXT,
		tags         TEXT NOT NULL DEFAULT '[]',
		created_at   DATETIME NOT NULL,
		updated_at   DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS saved_items_user_created_idx ON saved_items (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS saved_items_status_idx ON saved_items (status, created_at)`,
}
