package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	// registers the "sqlite" driver.
	_ "modernc.org/sqlite"
)

// SQLiteStorage - embedded key-value store with the same expiry semantics as Redis.
// Expired rows are invisible to reads and removed by PurgeExpired.
type SQLiteStorage struct {
	conn   *sql.DB
	closed atomic.Bool
	now    func() time.Time
}

func NewSQLiteStorage(ctx context.Context, path string) (*SQLiteStorage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite storage path is required")
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	// a single writer keeps in-memory databases shared and avoids SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	if err = conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	storage := &SQLiteStorage{conn: conn, now: time.Now}
	if err = storage.Init(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return storage, nil
}

func (that *SQLiteStorage) Init(ctx context.Context) error {
	db, err := that.db()
	if err != nil {
		return err
	}

	query := `CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	)`

	if _, err = db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("can't create table: %w", err)
	}

	if _, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS kv_expires_at ON kv (expires_at)`); err != nil {
		return fmt.Errorf("can't create index: %w", err)
	}

	return nil
}

func (that *SQLiteStorage) db() (*sql.DB, error) {
	if that == nil || that.conn == nil || that.closed.Load() {
		return nil, ErrNotInitialized
	}

	return that.conn, nil
}

func (that *SQLiteStorage) nowMillis() int64 {
	return that.now().UTC().UnixMilli()
}

func (that *SQLiteStorage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	db, err := that.db()
	if err != nil {
		return err
	}

	if ttl <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTTL, ttl)
	}

	query := `INSERT INTO kv (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`

	expiresAt := that.now().Add(ttl).UTC().UnixMilli()
	if _, err = db.ExecContext(ctx, query, key, value, expiresAt); err != nil {
		return fmt.Errorf("can't set %s: %w", key, err)
	}

	return nil
}

func (that *SQLiteStorage) Get(ctx context.Context, key string) ([]byte, error) {
	db, err := that.db()
	if err != nil {
		return nil, err
	}

	query := `SELECT value FROM kv WHERE key = ? AND expires_at > ?`

	var value []byte
	err = db.QueryRowContext(ctx, query, key, that.nowMillis()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("can't get %s: %w", key, err)
	}

	return value, nil
}

func (that *SQLiteStorage) Delete(ctx context.Context, key string) error {
	db, err := that.db()
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `DELETE FROM kv WHERE key = ? AND expires_at > ?`, key, that.nowMillis())
	if err != nil {
		return fmt.Errorf("can't delete %s: %w", key, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("can't delete %s: %w", key, err)
	}

	if affected == 0 {
		return ErrKeyNotFound
	}

	return nil
}

func (that *SQLiteStorage) ListByPrefix(ctx context.Context, prefix string) ([][]byte, error) {
	db, err := that.db()
	if err != nil {
		return nil, err
	}

	query := `SELECT value FROM kv WHERE key LIKE ? ESCAPE '\' AND expires_at > ? ORDER BY key`

	rows, err := db.QueryContext(ctx, query, escapeLike(prefix)+"%", that.nowMillis())
	if err != nil {
		return nil, fmt.Errorf("can't list %s*: %w", prefix, err)
	}
	defer rows.Close()

	var values [][]byte
	for rows.Next() {
		var value []byte
		if err = rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("can't scan %s*: %w", prefix, err)
		}

		values = append(values, value)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't list %s*: %w", prefix, err)
	}

	return values, nil
}

// PurgeExpired - removes rows whose TTL has passed and returns how many were dropped.
func (that *SQLiteStorage) PurgeExpired(ctx context.Context) (int64, error) {
	db, err := that.db()
	if err != nil {
		return 0, err
	}

	result, err := db.ExecContext(ctx, `DELETE FROM kv WHERE expires_at <= ?`, that.nowMillis())
	if err != nil {
		return 0, fmt.Errorf("can't purge expired keys: %w", err)
	}

	purged, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("can't purge expired keys: %w", err)
	}

	return purged, nil
}

func (that *SQLiteStorage) Ping(ctx context.Context) error {
	db, err := that.db()
	if err != nil {
		return err
	}

	if err = db.PingContext(ctx); err != nil {
		return fmt.Errorf("can't ping database: %w", err)
	}

	return nil
}

func (that *SQLiteStorage) Close() error {
	if that == nil || that.conn == nil || that.closed.Swap(true) {
		return nil
	}

	if err := that.conn.Close(); err != nil {
		return fmt.Errorf("can't close database: %w", err)
	}

	return nil
}

func escapeLike(prefix string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

	return replacer.Replace(prefix)
}
