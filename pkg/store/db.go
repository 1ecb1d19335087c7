// Package store persists portfolios, accounts, generation history and
// rendered artifacts.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// DB is the subset of a connection pool the repositories need.
type DB interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Ping(ctx context.Context) error
	Close()
}

// Rows iterates a result set.
type Rows interface {
	Close()
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// Row is a single result row.
type Row interface {
	Scan(dest ...any) error
}

// Pool is a DB backed by pgxpool.
type Pool struct {
	pool *pgxpool.Pool
}

// Connect opens a pool for dsn and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (pool *Pool, err error) {
	var cfg *pgxpool.Config
	cfg, err = pgxpool.ParseConfig(dsn)
	if err != nil {
		err = errors.Wrap(err, "invalid database URL")
		return pool, err
	}

	var p *pgxpool.Pool
	p, err = pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		err = errors.Wrap(err, "failed to create connection pool")
		return pool, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.Ping(pingCtx)
	if err != nil {
		p.Close()
		err = errors.Wrap(err, "database ping failed")
		return pool, err
	}

	pool = &Pool{pool: p}
	return pool, err
}

// Exec runs a statement and returns the affected row count.
func (p *Pool) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := p.pool.Exec(ctx, query, args...)
	return tag.RowsAffected(), err
}

// Query runs a query returning rows.
func (p *Pool) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgxRows{rows: rows}, nil
}

// QueryRow runs a query returning at most one row.
func (p *Pool) QueryRow(ctx context.Context, query string, args ...any) Row {
	return pgxRow{row: p.pool.QueryRow(ctx, query, args...)}
}

// Ping checks connectivity.
func (p *Pool) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close releases all connections.
func (p *Pool) Close() {
	p.pool.Close()
}

type pgxRows struct {
	rows pgx.Rows
}

func (r pgxRows) Close()                 { r.rows.Close() }
func (r pgxRows) Next() bool             { return r.rows.Next() }
func (r pgxRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r pgxRows) Err() error             { return r.rows.Err() }

type pgxRow struct {
	row pgx.Row
}

// Scan maps pgx's no-rows error to ErrNotFound.
func (r pgxRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS portfolios (
	id           UUID PRIMARY KEY,
	user_id      UUID NOT NULL UNIQUE,
	profile_data JSONB NOT NULL,
	html_content TEXT NOT NULL,
	subdomain    TEXT NOT NULL,
	version      INTEGER NOT NULL DEFAULT 1,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS portfolios_subdomain_idx ON portfolios (subdomain);

CREATE TABLE IF NOT EXISTS cover_letters (
	id              UUID PRIMARY KEY,
	user_id         UUID NOT NULL,
	job_hash        TEXT NOT NULL,
	job_description TEXT NOT NULL,
	tone            TEXT NOT NULL,
	content         TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS cover_letters_user_idx ON cover_letters (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS optimizer_runs (
	id              UUID PRIMARY KEY,
	user_id         UUID NOT NULL,
	job_hash        TEXT NOT NULL,
	job_description TEXT NOT NULL,
	score           INTEGER NOT NULL,
	result          JSONB NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS optimizer_runs_user_job_idx ON optimizer_runs (user_id, job_hash, created_at DESC);

CREATE TABLE IF NOT EXISTS resumes (
	id           UUID PRIMARY KEY,
	user_id      UUID NOT NULL,
	portfolio_id UUID NOT NULL,
	version      INTEGER NOT NULL,
	objects      TEXT[] NOT NULL DEFAULT '{}',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS resumes_user_idx ON resumes (user_id, created_at DESC);
`

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, db DB) (err error) {
	_, err = db.Exec(ctx, schema)
	if err != nil {
		err = errors.Wrap(err, "failed to apply schema")
	}
	return err
}
