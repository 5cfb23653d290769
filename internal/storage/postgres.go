package storage

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
)

// PostgresStore keeps objects in the objects table created by db.Migrate.
// Bodies are held in a BYTEA column, so a Put buffers the whole upload;
// pair this driver with GATEWAY_MAX_UPLOAD_BYTES.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const upsertObjectSQL = `INSERT INTO objects (key, content_type, body, size_bytes, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (key) DO UPDATE
SET content_type = EXCLUDED.content_type,
    body = EXCLUDED.body,
    size_bytes = EXCLUDED.size_bytes,
    updated_at = now()`

const selectObjectSQL = `SELECT content_type, body FROM objects WHERE key = $1`

func (s *PostgresStore) Put(ctx context.Context, key string, body io.Reader, meta Metadata) error {
	if key == "" {
		return fmt.Errorf("postgres put: empty key")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("postgres put %q: read body: %w", key, err)
	}

	if _, err := s.db.ExecContext(ctx, upsertObjectSQL, key, meta.ContentType, data, int64(len(data))); err != nil {
		return fmt.Errorf("postgres put %q: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (*Object, error) {
	if key == "" {
		return nil, ErrNotFound
	}

	var (
		contentType string
		data        []byte
	)
	err := s.db.QueryRowContext(ctx, selectObjectSQL, key).Scan(&contentType, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres get %q: %w", key, err)
	}

	return &Object{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

var (
	_ Store  = (*PostgresStore)(nil)
	_ Pinger = (*PostgresStore)(nil)
	_ Closer = (*PostgresStore)(nil)
)
