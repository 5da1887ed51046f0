package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

const (
	dialectSQLite   = "sqlite"
	dialectPostgres = "postgres"
)

// DB wraps the SQL connection and the dialect it speaks. Queries are
// written with ? placeholders and rebound for PostgreSQL.
type DB struct {
	connection *sql.DB
	dialect    string
}

// Open connects to the database named by url and runs migrations.
// Supported schemes: sqlite:// (a file path, or :memory: for tests)
// and postgres:// / postgresql://.
func Open(url string) (*DB, error) {
	dialect, driver, dsn, err := resolveURL(url)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if dialect == dialectSQLite {
		// A single connection keeps in-memory databases coherent and
		// sidesteps SQLITE_BUSY on concurrent writes.
		conn.SetMaxOpenConns(1)
	} else {
		// Connection pool tuning
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(10)
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	db := &DB{connection: conn, dialect: dialect}
	if err := db.migrate(context.Background()); err != nil {
		return nil, err
	}
	return db, nil
}

func resolveURL(url string) (dialect, driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		return dialectSQLite, "sqlite", strings.TrimPrefix(url, "sqlite://"), nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return dialectPostgres, "postgres", url, nil
	default:
		return "", "", "", fmt.Errorf("unsupported database URL %q (want sqlite:// or postgres://)", url)
	}
}

// Close releases the underlying connection pool.
func (db *DB) Close() error {
	return db.connection.Close()
}

// rebind rewrites ? placeholders to $1..$N for PostgreSQL.
func (db *DB) rebind(query string) string {
	if db.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// migrate creates the schema if it does not exist. Statements are
// idempotent so startup is safe against an already-populated database.
func (db *DB) migrate(ctx context.Context) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	timestamp := "TIMESTAMP"
	if db.dialect == dialectPostgres {
		idColumn = "BIGSERIAL PRIMARY KEY"
		timestamp = "TIMESTAMPTZ"
	}

	if db.dialect == dialectSQLite {
		// Enforced per connection; the pool is pinned to one.
		if _, err := db.connection.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("enabling foreign keys: %w", err)
		}
	}

	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS resumes (
			id %s,
			candidate_name TEXT NOT NULL DEFAULT '',
			contact_email TEXT NOT NULL DEFAULT '',
			contact_phone TEXT NOT NULL DEFAULT '',
			skills TEXT NOT NULL DEFAULT '[]',
			experience_years REAL,
			education_entries TEXT NOT NULL DEFAULT '[]',
			structured_data TEXT NOT NULL DEFAULT '{}',
			raw_text TEXT NOT NULL,
			created_at %s NOT NULL
		)`, idColumn, timestamp),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS jobs (
			id %s,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			required_skills TEXT NOT NULL DEFAULT '[]',
			created_at %s NOT NULL
		)`, idColumn, timestamp),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS matches (
			id %s,
			resume_id BIGINT NOT NULL REFERENCES resumes(id) ON DELETE CASCADE,
			job_id BIGINT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
			score REAL NOT NULL,
			reasoning TEXT NOT NULL,
			llm_model TEXT NOT NULL DEFAULT '',
			created_at %s NOT NULL,
			updated_at %s NOT NULL,
			UNIQUE (resume_id, job_id)
		)`, idColumn, timestamp, timestamp),
	}

	for _, stmt := range statements {
		if _, err := db.connection.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
