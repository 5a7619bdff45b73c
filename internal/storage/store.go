package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// QuotaBytes is the storage budget snapshots are measured against. It matches
// the 10 MiB local-storage quota of the browser runtime that feeds visit
// ticks, so usage reports stay comparable with the extension side.
const QuotaBytes = 10 * 1024 * 1024

// KV is the durable key-value store used for time-bucket tree snapshots.
// Values are opaque blobs; a Set always overwrites the full value.
type KV interface {
	Get(ctx context.Context, name string) ([]byte, bool, error)
	Set(ctx context.Context, name string, value []byte) error
	Delete(ctx context.Context, name string) error
	BytesInUse(ctx context.Context, name string) (int64, error)
	Close() error
}

// SQLiteKV implements KV backed by a SQLite database.
type SQLiteKV struct {
	db *sql.DB

	// Prepared statements
	getValue    *sql.Stmt
	setValue    *sql.Stmt
	deleteValue *sql.Stmt
	getSize     *sql.Stmt
}

// NewSQLiteKV creates a new SQLiteKV from an already-opened and migrated database.
func NewSQLiteKV(db *sql.DB) (*SQLiteKV, error) {
	s := &SQLiteKV{db: db}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteKV) prepareStatements() error {
	var err error

	s.getValue, err = s.db.Prepare(`SELECT value FROM kv WHERE name = ?`)
	if err != nil {
		return err
	}

	s.setValue, err = s.db.Prepare(`
		INSERT INTO kv (name, value, byte_size)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value      = excluded.value,
			byte_size  = excluded.byte_size,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return err
	}

	s.deleteValue, err = s.db.Prepare(`DELETE FROM kv WHERE name = ?`)
	if err != nil {
		return err
	}

	s.getSize, err = s.db.Prepare(`SELECT byte_size FROM kv WHERE name = ?`)
	if err != nil {
		return err
	}

	return nil
}

// Get retrieves the value stored under name. An absent name is not an error;
// it is reported through the second return value.
func (s *SQLiteKV) Get(ctx context.Context, name string) ([]byte, bool, error) {
	var value []byte
	err := s.getValue.QueryRowContext(ctx, name).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %s: %w", name, err)
	}
	return value, true, nil
}

// Set overwrites the value stored under name with a full snapshot.
func (s *SQLiteKV) Set(ctx context.Context, name string, value []byte) error {
	if _, err := s.setValue.ExecContext(ctx, name, value, len(value)); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	return nil
}

// Delete removes the value stored under name. Deleting an absent name is a no-op.
func (s *SQLiteKV) Delete(ctx context.Context, name string) error {
	if _, err := s.deleteValue.ExecContext(ctx, name); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// BytesInUse reports the stored size of the value under name, 0 if absent.
func (s *SQLiteKV) BytesInUse(ctx context.Context, name string) (int64, error) {
	var size int64
	err := s.getSize.QueryRowContext(ctx, name).Scan(&size)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("bytes in use for %s: %w", name, err)
	}
	return size, nil
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed — that is the caller's responsibility.
func (s *SQLiteKV) Close() error {
	stmts := []*sql.Stmt{
		s.getValue, s.setValue, s.deleteValue, s.getSize,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
