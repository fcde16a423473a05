// Package sqlite stores the sent-articles log in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/cognicore/topicscan/internal/apperr"
	"github.com/cognicore/topicscan/pkg/topicscan/store"
)

type sqliteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the database and its directory at path
// with WAL mode.
func Open(ctx context.Context, path string) (store.SentStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w: %w", filepath.Dir(path), apperr.ErrStoreUnavailable, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %w: %w", apperr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS sent_articles (
	url_hash TEXT NOT NULL,
	url TEXT,
	title TEXT,
	source TEXT,
	sent_date TEXT NOT NULL,
	cluster_label TEXT
);

CREATE INDEX IF NOT EXISTS idx_sent_articles_date ON sent_articles(sent_date);
CREATE INDEX IF NOT EXISTS idx_sent_articles_hash ON sent_articles(url_hash);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *sqliteStore) SentHashes(ctx context.Context, since string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT url_hash FROM sent_articles WHERE sent_date >= ?`, since)
	if err != nil {
		return nil, fmt.Errorf("query sent hashes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scan sent hash: %w", err)
		}
		out[h] = struct{}{}
	}
	return out, rows.Err()
}

func (s *sqliteStore) CountSentOn(ctx context.Context, date string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sent_articles WHERE sent_date = ?`, date).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sent: %w", err)
	}
	return n, nil
}

func (s *sqliteStore) MarkSent(ctx context.Context, rows []store.SentArticle) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO sent_articles(url_hash, url, title, source, sent_date, cluster_label)
VALUES(?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.URLHash, r.URL, r.Title, r.Source, r.SentDate, r.ClusterLabel); err != nil {
			return fmt.Errorf("insert %s: %w", r.URLHash, err)
		}
	}
	return tx.Commit()
}
