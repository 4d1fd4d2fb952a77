// Package store provides the SQLite persistence layer for newsdeck:
// feeds, posts, categories, and the aggregate queries the sidebar and
// smart views are built from.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// GeneralCategory is the fallback category. It always exists and can
// never be deleted; deleting another category reassigns its feeds here.
const GeneralCategory = "General"

// postListLimit bounds every materialized post list except the fresh
// digest merge, which is bounded per category instead.
const postListLimit = 100

// Feed is a subscribed source. Title may be empty until first fetched.
type Feed struct {
	ID       int64
	URL      string
	Title    string
	Category string
}

// Post is a single ingested entry. Published is the zero time when the
// source carried no usable date; such posts sort as oldest everywhere.
type Post struct {
	ID         int64
	FeedID     int64
	Title      string
	URL        string
	Content    string
	Published  time.Time
	Read       bool
	Bookmarked bool
	Archived   bool
	ReadLater  bool
	FeedTitle  string
}

// Filter selects posts by flag. Conditions are ANDed; the zero Filter
// matches everything.
type Filter struct {
	OnlyUnread     bool
	OnlyBookmarked bool
	OnlyArchived   bool
	OnlyReadLater  bool
}

// Store wraps the SQLite handle. A single mutex serializes every
// operation: the interactive loop and background refresh tasks share
// one Store, and each call is short-lived (never held across a fetch).
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	const schema = `
CREATE TABLE IF NOT EXISTS feeds (
  id INTEGER PRIMARY KEY,
  url TEXT NOT NULL UNIQUE,
  title TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT 'General'
);

CREATE TABLE IF NOT EXISTS posts (
  id INTEGER PRIMARY KEY,
  feed_id INTEGER NOT NULL REFERENCES feeds(id),
  title TEXT NOT NULL,
  url TEXT NOT NULL UNIQUE,
  content TEXT NOT NULL DEFAULT '',
  pub_date TEXT,
  is_read INTEGER NOT NULL DEFAULT 0,
  is_bookmarked INTEGER NOT NULL DEFAULT 0,
  is_archived INTEGER NOT NULL DEFAULT 0,
  is_read_later INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS categories (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL UNIQUE
);

CREATE INDEX IF NOT EXISTS idx_posts_pub_date ON posts(pub_date DESC);
CREATE INDEX IF NOT EXISTS idx_posts_feed_id ON posts(feed_id);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO categories (name) VALUES (?)`, GeneralCategory); err != nil {
		return fmt.Errorf("seed general category: %w", err)
	}
	return nil
}

// CheckWritable verifies the database accepts writes before the TUI
// takes over the terminal.
func (s *Store) CheckWritable(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO categories (name) VALUES (?)`, GeneralCategory); err != nil {
		return fmt.Errorf("write check: %w", err)
	}
	return nil
}

// AddFeed inserts a feed if its URL is new and returns the feed id
// either way. An empty category lands in General.
func (s *Store) AddFeed(ctx context.Context, url, title, category string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if category == "" {
		category = GeneralCategory
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO feeds (url, title, category) VALUES (?, ?, ?)`,
		url, title, category); err != nil {
		return 0, fmt.Errorf("insert feed: %w", err)
	}
	var id int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT id FROM feeds WHERE url = ?`, url).Scan(&id); err != nil {
		return 0, fmt.Errorf("select feed id: %w", err)
	}
	return id, nil
}

func (s *Store) ListFeeds(ctx context.Context) ([]Feed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryFeeds(ctx, `SELECT id, url, title, category FROM feeds ORDER BY id`)
}

func (s *Store) ListFeedsByCategory(ctx context.Context, category string) ([]Feed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryFeeds(ctx,
		`SELECT id, url, title, category FROM feeds WHERE category = ? ORDER BY id`, category)
}

func (s *Store) queryFeeds(ctx context.Context, query string, args ...any) ([]Feed, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		var f Feed
		if err := rows.Scan(&f.ID, &f.URL, &f.Title, &f.Category); err != nil {
			return nil, fmt.Errorf("scan feed: %w", err)
		}
		feeds = append(feeds, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return feeds, nil
}

// DeleteFeed removes a feed and every post that belongs to it.
func (s *Store) DeleteFeed(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE feed_id = ?`, id); err != nil {
		return fmt.Errorf("delete feed posts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM feeds WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ListCategories returns every known category name, deduplicated across
// the categories table and the feeds' category column.
func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCategoriesLocked(ctx)
}

func (s *Store) AddCategory(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO categories (name) VALUES (?)`, name); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// DeleteCategory reassigns the category's feeds to General and removes
// the category. Deleting General is rejected.
func (s *Store) DeleteCategory(ctx context.Context, name string) error {
	if name == GeneralCategory {
		return fmt.Errorf("cannot delete %q category", GeneralCategory)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`UPDATE feeds SET category = ? WHERE category = ?`, GeneralCategory, name); err != nil {
		return fmt.Errorf("reassign feeds: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
