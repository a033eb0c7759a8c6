// Package storage is the local persistence adapter: a small SQLite-backed
// key-value store holding the ledger snapshot and the sync metadata.
//
// The two records are deliberately separate. The snapshot is rewritten on
// every edit and on import; the sync metadata records only when this device
// last synced successfully and must survive snapshot rewrites, because it is
// what conflict detection compares against.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	keyLedger   = "zakat_ledger"
	keySyncMeta = "zakat_sync_meta"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Get returns the stored value for key, reporting presence separately so an
// empty string is a legal value.
func (r *Repository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (r *Repository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// SaveSnapshot stores the serialized ledger snapshot for offline reload.
func (r *Repository) SaveSnapshot(ctx context.Context, data []byte) error {
	return r.Set(ctx, keyLedger, string(data))
}

// LoadSnapshot returns the stored ledger snapshot, if any.
func (r *Repository) LoadSnapshot(ctx context.Context) ([]byte, bool, error) {
	value, ok, err := r.Get(ctx, keyLedger)
	if err != nil || !ok {
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (r *Repository) DeleteSnapshot(ctx context.Context) error {
	return r.Delete(ctx, keyLedger)
}

type syncMeta struct {
	LastModified string `json:"lastModified"`
}

// SaveSyncMeta records the moment this device last synced successfully.
func (r *Repository) SaveSyncMeta(ctx context.Context, t time.Time) error {
	data, err := json.Marshal(syncMeta{LastModified: t.UTC().Format(time.RFC3339)})
	if err != nil {
		return fmt.Errorf("encode sync meta: %w", err)
	}
	return r.Set(ctx, keySyncMeta, string(data))
}

// LoadSyncMeta returns the last successful sync time. A corrupt record is
// treated as absent: conflict detection then falls back to asking the user,
// which is the safe direction.
func (r *Repository) LoadSyncMeta(ctx context.Context) (time.Time, bool, error) {
	value, ok, err := r.Get(ctx, keySyncMeta)
	if err != nil || !ok {
		return time.Time{}, false, err
	}

	var meta syncMeta
	if err := json.Unmarshal([]byte(value), &meta); err != nil {
		slog.WarnContext(ctx, "Discarding corrupt sync metadata", "error", err)
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, meta.LastModified)
	if err != nil {
		slog.WarnContext(ctx, "Discarding sync metadata with bad timestamp", "value", meta.LastModified)
		return time.Time{}, false, nil
	}
	return t, true, nil
}

func (r *Repository) ClearSyncMeta(ctx context.Context) error {
	return r.Delete(ctx, keySyncMeta)
}
