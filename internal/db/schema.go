package db

import (
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Times are stored as unix seconds. Phone columns hold AES-GCM sealed bytes
// when PII encryption is on, plain UTF-8 otherwise.

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	phone         BLOB,
	role          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);`

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	token_hash TEXT NOT NULL UNIQUE,
	status     TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);`

const createPropertiesTable = `
CREATE TABLE IF NOT EXISTS properties (
	id                TEXT PRIMARY KEY,
	owner_id          TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title             TEXT NOT NULL,
	description       TEXT NOT NULL DEFAULT '',
	type              TEXT NOT NULL,
	bhk               INTEGER NOT NULL,
	rent              INTEGER NOT NULL,
	deposit           INTEGER NOT NULL,
	area_sqft         INTEGER NOT NULL DEFAULT 0,
	furnishing        TEXT NOT NULL,
	tenant_preference TEXT NOT NULL,
	city              TEXT NOT NULL,
	locality          TEXT NOT NULL DEFAULT '',
	address           TEXT NOT NULL DEFAULT '',
	amenities         TEXT NOT NULL DEFAULT '[]',
	available_from    INTEGER NOT NULL DEFAULT 0,
	status            TEXT NOT NULL,
	views             INTEGER NOT NULL DEFAULT 0,
	created_at        INTEGER NOT NULL,
	updated_at        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_properties_owner ON properties(owner_id);
CREATE INDEX IF NOT EXISTS idx_properties_city ON properties(city COLLATE NOCASE, status);
CREATE INDEX IF NOT EXISTS idx_properties_rent ON properties(status, rent);
CREATE INDEX IF NOT EXISTS idx_properties_created ON properties(status, created_at);`

const createImagesTable = `
CREATE TABLE IF NOT EXISTS property_images (
	id           TEXT PRIMARY KEY,
	property_id  TEXT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
	file_name    TEXT NOT NULL,
	content_type TEXT NOT NULL,
	size         INTEGER NOT NULL,
	hash         TEXT NOT NULL,
	created_at   INTEGER NOT NULL,
	UNIQUE (property_id, hash)
);`

const createShortlistsTable = `
CREATE TABLE IF NOT EXISTS shortlists (
	user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	property_id TEXT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
	created_at  INTEGER NOT NULL,
	PRIMARY KEY (user_id, property_id)
);`

const createLeadsTable = `
CREATE TABLE IF NOT EXISTS leads (
	id          TEXT PRIMARY KEY,
	property_id TEXT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
	owner_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	tenant_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	phone       BLOB,
	message     TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_leads_owner ON leads(owner_id, status);
CREATE INDEX IF NOT EXISTS idx_leads_tenant ON leads(tenant_id);`

const createSearchHistoryTable = `
CREATE TABLE IF NOT EXISTS search_history (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	filter     TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_search_history_user ON search_history(user_id, created_at);`

// migrations[i] moves the schema from version i to i+1.
var migrations = []string{
	createUsersTable + createSessionsTable + createPropertiesTable +
		createImagesTable + createShortlistsTable + createLeadsTable +
		createSearchHistoryTable,
}

// Migrate brings the schema up to date, tracking progress in user_version.
func Migrate(conn *sqlite.Conn) (err error) {
	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}
	defer endTransaction(&err)

	current := SchemaVersion(conn)
	for v := current; v < len(migrations); v++ {
		if err := sqlitex.ExecuteScript(conn, migrations[v], nil); err != nil {
			return fmt.Errorf("db: migration %d: %w", v+1, err)
		}
		if err := sqlitex.ExecuteTransient(conn, fmt.Sprintf("PRAGMA user_version=%d", v+1), nil); err != nil {
			return fmt.Errorf("db: set user_version: %w", err)
		}
	}
	return nil
}

// SchemaVersion reads PRAGMA user_version; 0 on error.
func SchemaVersion(conn *sqlite.Conn) int {
	version := 0
	_ = sqlitex.ExecuteTransient(conn, "PRAGMA user_version", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			version = stmt.ColumnInt(0)
			return nil
		},
	})
	return version
}
