// Package prefs persists user preferences in a SQLite key-value table.
package prefs

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// ThemeKey is the preference key of the display theme.
const ThemeKey = "djeve-theme"

// FileName is the database file name inside the data directory.
const FileName = "prefs.db"

// Store is a SQLite-backed preference store.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the database path inside dataDir.
func DefaultPath(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// Open opens (or creates) the preference database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create data directory")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open preference database")
	}

	for _, stmt := range []string{
		"PRAGMA busy_timeout = 5000",
		`CREATE TABLE IF NOT EXISTS prefs (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at INTEGER NOT NULL DEFAULT 0
		)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "failed to initialize preference database")
		}
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key. ok is false when the key is unset.
func (s *Store) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "failed to read preference %s", key)
	}
	return value, true, nil
}

// Set stores value under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO prefs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, value, time.Now().Unix())
	if err != nil {
		return errors.Wrapf(err, "failed to write preference %s", key)
	}
	return nil
}

// Theme returns the stored theme. Missing or unknown values yield DefaultTheme.
func (s *Store) Theme(ctx context.Context) (Theme, error) {
	v, ok, err := s.Get(ctx, ThemeKey)
	if err != nil {
		return DefaultTheme, err
	}
	if !ok {
		return DefaultTheme, nil
	}
	t, err := ParseTheme(v)
	if err != nil {
		zlog.Warn().Msgf("ignoring stored theme: value=%q", v)
		return DefaultTheme, nil
	}
	return t, nil
}

// SetTheme stores the theme preference.
func (s *Store) SetTheme(ctx context.Context, t Theme) error {
	if !t.Valid() {
		return errors.Wrapf(ErrUnknownTheme, "%q", string(t))
	}
	return s.Set(ctx, ThemeKey, string(t))
}
