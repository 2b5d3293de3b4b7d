package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS plan_snapshots (
	key        TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore хранит снапшоты в локальном файле SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite открывает (или создает) файл SQLite и готовит схему.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// single writer keeps the file free of SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Put сохраняет или перезаписывает снапшот.
func (s *SQLiteStore) Put(ctx context.Context, key string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO plan_snapshots (key, payload, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, payload, time.Now().UTC().UnixMilli(),
	)
	return err
}

// Get возвращает снапшот по ключу или ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte

	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM plan_snapshots WHERE key = ?`,
		key,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return payload, nil
}

// Delete удаляет снапшот; отсутствие ключа не считается ошибкой.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM plan_snapshots WHERE key = ?`, key)
	return err
}

// Close закрывает файл базы.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
