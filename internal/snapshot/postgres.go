package snapshot

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore создает хранилище снапшотов поверх пула PostgreSQL.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema создает таблицу снапшотов, если ее нет.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS plan_snapshots (
			key        TEXT PRIMARY KEY,
			payload    BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	)
	return err
}

// Put сохраняет или перезаписывает снапшот.
func (s *PostgresStore) Put(ctx context.Context, key string, payload []byte) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO plan_snapshots (key, payload, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE
		 SET payload = EXCLUDED.payload,
		     updated_at = NOW()`,
		key, payload,
	)
	return err
}

// Get возвращает снапшот по ключу или ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte

	err := s.db.QueryRow(ctx,
		`SELECT payload
		 FROM plan_snapshots
		 WHERE key = $1`,
		key,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return payload, nil
}

// Delete удаляет снапшот по ключу.
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM plan_snapshots
		 WHERE key = $1`,
		key,
	)
	return err
}
