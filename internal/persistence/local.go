package persistence

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3"
)

// LocalBackend is a single-table key/value store over SQLite (spec
// §4.10's local persistence backend). One process, one file — no
// connection pooling concerns beyond what database/sql already gives
// the driver.
type LocalBackend struct {
	db *sql.DB
}

// OpenLocal opens (creating if absent) a SQLite-backed LocalBackend at
// path. path may be ":memory:" for tests.
func OpenLocal(path string) (*LocalBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	const schema = `CREATE TABLE IF NOT EXISTS saves (
		key  TEXT PRIMARY KEY,
		data BLOB NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &LocalBackend{db: db}, nil
}

func (l *LocalBackend) Close() error { return l.db.Close() }

func (l *LocalBackend) Put(ctx context.Context, key string, data []byte) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO saves(key, data) VALUES(?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data`,
		key, data)
	return err
}

func (l *LocalBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := l.db.QueryRowContext(ctx, `SELECT data FROM saves WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNoSuchKey
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

var errNoSuchKey = errors.New("persistence: no save under that key")
