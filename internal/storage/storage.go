package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/spigell/job-ranker/internal/logger"
	"github.com/spigell/job-ranker/internal/postings"
)

// BookmarkStatus is the outcome of ToggleBookmark.
type BookmarkStatus string

const (
	BookmarkAdded   BookmarkStatus = "added"
	BookmarkRemoved BookmarkStatus = "removed"
)

// ErrNotFound is returned when a posting is not stored.
var ErrNotFound = errors.New("posting not found")

// Store keeps the latest batch of postings and the bookmarks in sqlite.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (or creates) the database at path and prepares the schema.
func Open(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("storage: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: init schema: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.WithFields(log, zap.String("component", "storage"), zap.String("database", path)),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS postings (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		platform    TEXT NOT NULL DEFAULT '',
		title       TEXT NOT NULL DEFAULT '',
		company     TEXT NOT NULL DEFAULT '',
		location    TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		url         TEXT NOT NULL,
		created_at  TEXT NOT NULL
	)`)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS bookmarks (
		url        TEXT PRIMARY KEY,
		platform   TEXT NOT NULL DEFAULT '',
		title      TEXT NOT NULL DEFAULT '',
		company    TEXT NOT NULL DEFAULT '',
		location   TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`)
	return err
}

// ReplacePostings drops the previously stored batch and saves v in one transaction.
func (s *Store) ReplacePostings(ctx context.Context, v *postings.Postings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM postings`); err != nil {
		return fmt.Errorf("storage: delete postings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO postings (platform, title, company, location, description, url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage: prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	count := 0
	if v != nil {
		for _, p := range v.Items {
			if p == nil {
				continue
			}
			if _, err := stmt.ExecContext(ctx, p.Platform, p.Title, p.Company, p.Location, p.Description, p.URL, now); err != nil {
				return fmt.Errorf("storage: insert posting %q: %w", p.URL, err)
			}
			count++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}

	s.logger.Debug("stored postings batch", zap.Int("count", count))
	return nil
}

// ListPostings returns the stored batch in insertion order.
func (s *Store) ListPostings(ctx context.Context) (*postings.Postings, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT platform, title, company, location, description, url FROM postings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage: list postings: %w", err)
	}
	defer rows.Close()

	result := &postings.Postings{}
	for rows.Next() {
		p := &postings.Posting{}
		if err := rows.Scan(&p.Platform, &p.Title, &p.Company, &p.Location, &p.Description, &p.URL); err != nil {
			return nil, fmt.Errorf("storage: scan posting: %w", err)
		}
		result.Items = append(result.Items, p)
	}

	return result, rows.Err()
}

// ToggleBookmark bookmarks the stored posting with the given url, or removes
// the bookmark when it already exists.
func (s *Store) ToggleBookmark(ctx context.Context, url string) (BookmarkStatus, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("storage: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `DELETE FROM bookmarks WHERE url = ?`, url)
	if err != nil {
		return "", fmt.Errorf("storage: delete bookmark: %w", err)
	}

	status := BookmarkRemoved
	if removed, _ := res.RowsAffected(); removed == 0 {
		res, err = tx.ExecContext(ctx,
			`INSERT INTO bookmarks (url, platform, title, company, location, created_at)
			 SELECT url, platform, title, company, location, ? FROM postings WHERE url = ? ORDER BY id LIMIT 1`,
			time.Now().UTC().Format(time.RFC3339), url,
		)
		if err != nil {
			return "", fmt.Errorf("storage: insert bookmark: %w", err)
		}
		if added, _ := res.RowsAffected(); added == 0 {
			return "", fmt.Errorf("bookmark %q: %w", url, ErrNotFound)
		}
		status = BookmarkAdded
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage: commit: %w", err)
	}

	s.logger.Info("bookmark toggled", zap.String(logger.FieldURL, url), zap.String("status", string(status)))
	return status, nil
}

// BookmarkedURLs returns the set of bookmarked posting urls.
func (s *Store) BookmarkedURLs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT url FROM bookmarks`)
	if err != nil {
		return nil, fmt.Errorf("storage: list bookmarks: %w", err)
	}
	defer rows.Close()

	urls := make(map[string]struct{})
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("storage: scan bookmark: %w", err)
		}
		urls[url] = struct{}{}
	}

	return urls, rows.Err()
}

// ListBookmarks returns bookmarked postings, oldest bookmark first.
func (s *Store) ListBookmarks(ctx context.Context) (*postings.Postings, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT platform, title, company, location, url FROM bookmarks ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("storage: list bookmarks: %w", err)
	}
	defer rows.Close()

	result := &postings.Postings{}
	for rows.Next() {
		p := &postings.Posting{Bookmarked: true}
		if err := rows.Scan(&p.Platform, &p.Title, &p.Company, &p.Location, &p.URL); err != nil {
			return nil, fmt.Errorf("storage: scan bookmark: %w", err)
		}
		result.Items = append(result.Items, p)
	}

	return result, rows.Err()
}

// MarkBookmarked sets Posting.Bookmarked for every bookmarked posting in items.
func (s *Store) MarkBookmarked(ctx context.Context, items []*postings.Posting) error {
	urls, err := s.BookmarkedURLs(ctx)
	if err != nil {
		return err
	}
	for _, p := range items {
		if p == nil {
			continue
		}
		_, p.Bookmarked = urls[p.URL]
	}
	return nil
}
