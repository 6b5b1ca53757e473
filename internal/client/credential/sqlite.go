package credential

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"client-vault/internal/domain/identity"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS credentials (
  role     TEXT PRIMARY KEY,
  identity BLOB NOT NULL
);`

type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the credential database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential db: %w", err)
	}
	// one writer; also keeps ":memory:" on a single database
	db.SetMaxOpenConns(1)

	s, err := NewSQLiteStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create credentials table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, role identity.Role) (*identity.ClientIdentity, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT identity FROM credentials WHERE role = ?`, string(role)).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential[%s]: %w", role, err)
	}

	var id identity.ClientIdentity
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, fmt.Errorf("failed to decode credential[%s]: %w", role, err)
	}
	return &id, nil
}

func (s *SQLiteStore) Set(ctx context.Context, role identity.Role, id identity.ClientIdentity) error {
	if !id.Valid() {
		return ErrInvalidIdentity
	}

	raw, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("failed to encode credential[%s]: %w", role, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (role, identity) VALUES (?, ?)
		ON CONFLICT(role) DO UPDATE SET identity = excluded.identity
	`, string(role), raw)
	if err != nil {
		return fmt.Errorf("failed to set credential[%s]: %w", role, err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context, role identity.Role) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE role = ?`, string(role)); err != nil {
		return fmt.Errorf("failed to clear credential[%s]: %w", role, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
