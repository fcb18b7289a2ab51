package draft

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS drafts (
	user_id   TEXT NOT NULL,
	draft_key TEXT NOT NULL,
	data      BLOB NOT NULL,
	saved_at  INTEGER NOT NULL,
	PRIMARY KEY (user_id, draft_key)
);`

// SQLite keeps drafts in a local SQLite database file
type SQLite struct {
	db *sql.DB
}

var _ Store = &SQLite{}

// NewSQLite opens (and creates if needed) the draft database at path.
// ":memory:" gives a private in-memory database.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open draft database", goerr.V("path", path))
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to create draft schema", goerr.V("path", path))
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Save(ctx context.Context, userID string, key types.DraftKey, data []byte) (*model.Draft, error) {
	if err := validate(userID, key, data); err != nil {
		return nil, err
	}

	savedAt := time.Now().UTC().Truncate(time.Millisecond)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO drafts (user_id, draft_key, data, saved_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, draft_key) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`,
		userID, key.String(), data, savedAt.UnixMilli())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save draft", goerr.V("key", key))
	}

	return &model.Draft{
		Key:     key,
		Data:    append([]byte(nil), data...),
		SavedAt: savedAt,
	}, nil
}

func (s *SQLite) Load(ctx context.Context, userID string, key types.DraftKey) (*model.Draft, error) {
	if err := validateKey(userID, key); err != nil {
		return nil, err
	}

	var (
		data    []byte
		savedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT data, saved_at FROM drafts WHERE user_id = ? AND draft_key = ?`,
		userID, key.String()).Scan(&data, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "draft not found", goerr.V("key", key))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load draft", goerr.V("key", key))
	}

	return &model.Draft{
		Key:     key,
		Data:    data,
		SavedAt: time.UnixMilli(savedAt).UTC(),
	}, nil
}

func (s *SQLite) Delete(ctx context.Context, userID string, key types.DraftKey) error {
	if err := validateKey(userID, key); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM drafts WHERE user_id = ? AND draft_key = ?`, userID, key.String()); err != nil {
		return goerr.Wrap(err, "failed to delete draft", goerr.V("key", key))
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
