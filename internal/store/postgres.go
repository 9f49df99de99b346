package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Postgres persists key-value entries in a single kv_entries table:
//
//	CREATE TABLE kv_entries (
//	    key        TEXT PRIMARY KEY,
//	    value      JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
type Postgres struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgres wraps an sqlx connection as a Store.
func NewPostgres(db *sqlx.DB, logger *zap.Logger) *Postgres {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Postgres{db: db, logger: logger}
}

// Get returns the stored value or nil when the key is absent or the read
// fails.
func (p *Postgres) Get(ctx context.Context, key string) []byte {
	const query = `SELECT value FROM kv_entries WHERE key = $1 LIMIT 1`
	var value []byte
	if err := p.db.GetContext(ctx, &value, query, key); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			p.logger.Warn("kv get failed", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	return value
}

// Set upserts the value under key.
func (p *Postgres) Set(ctx context.Context, key string, value []byte) bool {
	const query = `INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := p.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		p.logger.Warn("kv set failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Remove deletes the entry for key.
func (p *Postgres) Remove(ctx context.Context, key string) bool {
	const query = `DELETE FROM kv_entries WHERE key = $1`
	if _, err := p.db.ExecContext(ctx, query, key); err != nil {
		p.logger.Warn("kv remove failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Clear drops every entry owned by the platform.
func (p *Postgres) Clear(ctx context.Context) bool {
	const query = `DELETE FROM kv_entries WHERE key LIKE 'makers:%'`
	if _, err := p.db.ExecContext(ctx, query); err != nil {
		p.logger.Warn("kv clear failed", zap.Error(err))
		return false
	}
	return true
}
