package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key        text PRIMARY KEY,
	value      jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`

const upsertSetting = `
INSERT INTO settings(key, value, updated_at)
VALUES($1, $2, now())
ON CONFLICT(key) DO UPDATE SET
	value=EXCLUDED.value,
	updated_at=EXCLUDED.updated_at`

// PostgresStore keeps one row per setting kind.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// NewPostgresStore connects, pings and ensures the settings table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to settings db: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping settings db: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create settings table: %w", err)
	}

	return &PostgresStore{Pool: pool}, nil
}

// Close releases the pool.
func (p *PostgresStore) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}

// Load assembles the document from all rows. Rows with unknown kinds are skipped.
func (p *PostgresStore) Load(ctx context.Context) (*Settings, error) {
	rows, err := p.Pool.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	s := &Settings{}
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		if err := s.Apply(key, value); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Skipping stored setting")
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return s, nil
}

// Save writes every kind in one transaction. Nil kinds are deleted.
func (p *PostgresStore) Save(ctx context.Context, s *Settings) error {
	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			log.Warn().Err(err).Msg("Failed to rollback settings transaction")
		}
	}()

	for _, kind := range []string{KindJira, KindAI, KindOpenAI} {
		value, _ := s.Get(kind)
		if err := writeKind(ctx, tx, kind, value); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit settings: %w", err)
	}
	return nil
}

// Update validates and writes one kind.
func (p *PostgresStore) Update(ctx context.Context, kind string, raw json.RawMessage) error {
	value, err := decode(kind, raw)
	if err != nil {
		return err
	}
	return writeKind(ctx, p.Pool, kind, value)
}

// dbExecer is satisfied by both the pool and a transaction.
type dbExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func writeKind(ctx context.Context, db dbExecer, kind string, value any) error {
	if value == nil {
		if _, err := db.Exec(ctx, `DELETE FROM settings WHERE key = $1`, kind); err != nil {
			return fmt.Errorf("clear %s setting: %w", kind, err)
		}
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s setting: %w", kind, err)
	}
	if _, err := db.Exec(ctx, upsertSetting, kind, data); err != nil {
		return fmt.Errorf("store %s setting: %w", kind, err)
	}
	return nil
}
