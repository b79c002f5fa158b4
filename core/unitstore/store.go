// Package unitstore keeps extracted unit rows in SQLite so that repeated
// extraction runs build up a table without duplicating rows.
package unitstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/FocuswithJustin/WikiruKit/core/cas"
	"github.com/FocuswithJustin/WikiruKit/core/errors"
	"github.com/FocuswithJustin/WikiruKit/core/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS unit_rows (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	profile     TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	row         TEXT NOT NULL,
	source      TEXT NOT NULL DEFAULT '',
	UNIQUE (profile, fingerprint)
)`

// Store is a handle on one unit database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	// One connection serializes writers for both drivers.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.NewIO("initialize", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Fingerprint is the key a row is deduplicated on.
func Fingerprint(row string) string {
	return cas.HashString(strings.TrimRight(row, "\r\n"))
}

// Add inserts row under profile unless an identical row is already stored.
// It reports whether the row was new.
func (s *Store) Add(ctx context.Context, profile, row, source string) (bool, error) {
	row = strings.TrimRight(row, "\r\n")
	if profile == "" {
		return false, errors.NewValidation("profile", "must not be empty")
	}
	if row == "" {
		return false, errors.NewValidation("row", "must not be empty")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO unit_rows (profile, fingerprint, row, source) VALUES (?, ?, ?, ?)`,
		profile, Fingerprint(row), row, source)
	if err != nil {
		return false, errors.NewIO("insert into", s.path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.NewIO("insert into", s.path, err)
	}
	return n > 0, nil
}

// Rows returns the rows stored under profile in insertion order.
func (s *Store) Rows(ctx context.Context, profile string) ([]string, error) {
	rs, err := s.db.QueryContext(ctx,
		`SELECT row FROM unit_rows WHERE profile = ? ORDER BY id`, profile)
	if err != nil {
		return nil, errors.NewIO("query", s.path, err)
	}
	defer rs.Close()

	var out []string
	for rs.Next() {
		var row string
		if err := rs.Scan(&row); err != nil {
			return nil, errors.NewIO("scan", s.path, err)
		}
		out = append(out, row)
	}
	if err := rs.Err(); err != nil {
		return nil, errors.NewIO("query", s.path, err)
	}
	return out, nil
}

// Profiles lists the profiles that have stored rows.
func (s *Store) Profiles(ctx context.Context) ([]string, error) {
	rs, err := s.db.QueryContext(ctx, `SELECT DISTINCT profile FROM unit_rows ORDER BY profile`)
	if err != nil {
		return nil, errors.NewIO("query", s.path, err)
	}
	defer rs.Close()

	var out []string
	for rs.Next() {
		var p string
		if err := rs.Scan(&p); err != nil {
			return nil, errors.NewIO("scan", s.path, err)
		}
		out = append(out, p)
	}
	return out, rs.Err()
}

// Export renders the rows of profile as table text, one row per line with a
// trailing newline, in the same shape extract.AppendRow builds.
func (s *Store) Export(ctx context.Context, profile string) (string, error) {
	rows, err := s.Rows(ctx, profile)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	return strings.Join(rows, "\n") + "\n", nil
}
