// Package database provides persistence for player accounts and
// durable player records, on SQLite by default or PostgreSQL.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Database wraps the SQL connection and provides persistence operations.
type Database struct {
	db      *sql.DB
	dialect Dialect
	qb      *QueryBuilder
}

// Open opens the database for the given dialect. For SQLite, dsn is the
// database file path (parent directories are created); for PostgreSQL
// it is the connection string.
func Open(dialectType DialectType, dsn string) (*Database, error) {
	dialect := NewDialect(dialectType)

	if dialectType == DialectSQLite {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run init statement: %w", err)
		}
	}

	d := &Database{
		db:      db,
		dialect: dialect,
		qb:      NewQueryBuilder(dialect),
	}

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return d, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// migrate creates the schema if it doesn't exist.
func (d *Database) migrate() error {
	idType := "INTEGER PRIMARY KEY AUTOINCREMENT"
	textType := "TEXT"
	collate := d.dialect.CaseInsensitiveCollation()
	if _, ok := d.dialect.(*PostgresDialect); ok {
		idType = "BIGSERIAL PRIMARY KEY"
		textType = "CITEXT"
		collate = ""
	}

	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS accounts (
			id %s,
			username %s UNIQUE NOT NULL %s,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_login TIMESTAMP,
			last_ip TEXT,
			banned INTEGER NOT NULL DEFAULT 0
		)`, idType, textType, collate),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS players (
			id %s,
			account_id BIGINT UNIQUE NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			name %s UNIQUE NOT NULL %s,
			map_id TEXT NOT NULL DEFAULT 'world',
			x REAL NOT NULL DEFAULT 0,
			y REAL NOT NULL DEFAULT 0,
			direction TEXT NOT NULL DEFAULT 'down',
			level INTEGER NOT NULL DEFAULT 1,
			experience INTEGER NOT NULL DEFAULT 0,
			gold INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_played TIMESTAMP
		)`, idType, textType, collate),

		`CREATE INDEX IF NOT EXISTS idx_players_account_id ON players(account_id)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	return nil
}

// DB returns the underlying sql.DB for advanced operations.
func (d *Database) DB() *sql.DB {
	return d.db
}
