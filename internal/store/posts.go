package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"
)

const postColumns = `p.id, p.feed_id, p.title, p.url, p.content, p.pub_date,
  p.is_read, p.is_bookmarked, p.is_archived, p.is_read_later, f.title`

// InsertPostIfAbsent ingests one entry, keyed by URL. A post that
// already exists is left untouched, flags included, so re-fetching a
// feed is idempotent. A zero published time is stored as NULL.
func (s *Store) InsertPostIfAbsent(ctx context.Context, feedID int64, title, url, content string, published time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pubDate any
	if !published.IsZero() {
		pubDate = published.UTC().Format(time.RFC3339)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO posts (feed_id, title, url, content, pub_date) VALUES (?, ?, ?, ?, ?)`,
		feedID, title, url, content, pubDate); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// ListPosts returns posts matching the filter, newest first, capped at
// 100. Posts without a publish date sort last.
func (s *Store) ListPosts(ctx context.Context, filter Filter) ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var conditions []string
	if filter.OnlyUnread {
		conditions = append(conditions, "p.is_read = 0")
	}
	if filter.OnlyBookmarked {
		conditions = append(conditions, "p.is_bookmarked = 1")
	}
	if filter.OnlyArchived {
		conditions = append(conditions, "p.is_archived = 1")
	}
	if filter.OnlyReadLater {
		conditions = append(conditions, "p.is_read_later = 1")
	}

	query := fmt.Sprintf(`SELECT %s FROM posts p JOIN feeds f ON p.feed_id = f.id`, postColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY p.pub_date DESC LIMIT %d", postListLimit)

	return s.queryPosts(ctx, query)
}

func (s *Store) ListPostsByCategory(ctx context.Context, category string) ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := fmt.Sprintf(`SELECT %s FROM posts p JOIN feeds f ON p.feed_id = f.id
WHERE f.category = ? ORDER BY p.pub_date DESC LIMIT %d`, postColumns, postListLimit)
	return s.queryPosts(ctx, query, category)
}

// FreshDigest builds the fair unread digest: for every category,
// independently up to perCategory newest unread posts, then the whole
// set re-merged newest first. Low-volume categories keep their slots no
// matter how noisy the others are; the merged length is deliberately
// not capped.
func (s *Store) FreshDigest(ctx context.Context, perCategory int) ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := s.listCategoriesLocked(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM posts p JOIN feeds f ON p.feed_id = f.id
WHERE f.category = ? AND p.is_read = 0 ORDER BY p.pub_date DESC LIMIT ?`, postColumns)

	var all []Post
	for _, category := range categories {
		posts, err := s.queryPosts(ctx, query, category, perCategory)
		if err != nil {
			return nil, err
		}
		all = append(all, posts...)
	}

	// Zero Published is the earliest possible instant, so undated
	// posts end up at the tail.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Published.After(all[j].Published)
	})
	return all, nil
}

func (s *Store) listCategoriesLocked(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT DISTINCT name FROM (
  SELECT name FROM categories
  UNION
  SELECT category AS name FROM feeds
) ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return names, nil
}

func (s *Store) queryPosts(ctx context.Context, query string, args ...any) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		var pubDate sql.NullString
		if err := rows.Scan(
			&p.ID, &p.FeedID, &p.Title, &p.URL, &p.Content, &pubDate,
			&p.Read, &p.Bookmarked, &p.Archived, &p.ReadLater, &p.FeedTitle,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		if pubDate.Valid {
			if t, err := time.Parse(time.RFC3339, pubDate.String); err == nil {
				p.Published = t.UTC()
			}
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return posts, nil
}

func (s *Store) SetRead(ctx context.Context, id int64, read bool) error {
	return s.setFlag(ctx, "is_read", id, read)
}

func (s *Store) SetBookmarked(ctx context.Context, id int64, bookmarked bool) error {
	return s.setFlag(ctx, "is_bookmarked", id, bookmarked)
}

func (s *Store) SetArchived(ctx context.Context, id int64, archived bool) error {
	return s.setFlag(ctx, "is_archived", id, archived)
}

func (s *Store) SetReadLater(ctx context.Context, id int64, readLater bool) error {
	return s.setFlag(ctx, "is_read_later", id, readLater)
}

func (s *Store) setFlag(ctx context.Context, column string, id int64, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := fmt.Sprintf(`UPDATE posts SET %s = ? WHERE id = ?`, column)
	if _, err := s.db.ExecContext(ctx, query, value, id); err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// CountPosts counts posts matching the filter over the whole library.
func (s *Store) CountPosts(ctx context.Context, filter Filter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var conditions []string
	if filter.OnlyUnread {
		conditions = append(conditions, "is_read = 0")
	}
	if filter.OnlyBookmarked {
		conditions = append(conditions, "is_bookmarked = 1")
	}
	if filter.OnlyArchived {
		conditions = append(conditions, "is_archived = 1")
	}
	if filter.OnlyReadLater {
		conditions = append(conditions, "is_read_later = 1")
	}

	query := `SELECT COUNT(*) FROM posts`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

func (s *Store) CountPostsByCategory(ctx context.Context, category string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	if err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM posts p JOIN feeds f ON p.feed_id = f.id WHERE f.category = ?`,
		category).Scan(&count); err != nil {
		return 0, fmt.Errorf("count category posts: %w", err)
	}
	return count, nil
}

// Stats summarizes the library for the stats subcommand.
type Stats struct {
	TotalPosts     int
	ReadPosts      int
	UnreadPosts    int
	StarredPosts   int
	ArchivedPosts  int
	ReadLaterPosts int
	FeedCount      int
	Categories     []CategoryCount
}

type CategoryCount struct {
	Name  string
	Posts int
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st Stats
	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM posts`, &st.TotalPosts},
		{`SELECT COUNT(*) FROM posts WHERE is_read = 1`, &st.ReadPosts},
		{`SELECT COUNT(*) FROM posts WHERE is_bookmarked = 1`, &st.StarredPosts},
		{`SELECT COUNT(*) FROM posts WHERE is_archived = 1`, &st.ArchivedPosts},
		{`SELECT COUNT(*) FROM posts WHERE is_read_later = 1`, &st.ReadLaterPosts},
		{`SELECT COUNT(*) FROM feeds`, &st.FeedCount},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return Stats{}, fmt.Errorf("count stats: %w", err)
		}
	}
	st.UnreadPosts = st.TotalPosts - st.ReadPosts

	rows, err := s.db.QueryContext(ctx, `
SELECT f.category, COUNT(p.id)
FROM feeds f LEFT JOIN posts p ON f.id = p.feed_id
GROUP BY f.category ORDER BY f.category`)
	if err != nil {
		return Stats{}, fmt.Errorf("query category stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.Name, &cc.Posts); err != nil {
			return Stats{}, fmt.Errorf("scan category stat: %w", err)
		}
		st.Categories = append(st.Categories, cc)
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("rows iteration: %w", err)
	}
	return st, nil
}

// CleanupOldPosts deletes posts published before the cutoff unless
// bookmarked. Returns the number of rows removed.
func (s *Store) CleanupOldPosts(ctx context.Context, days int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM posts WHERE pub_date < ? AND is_bookmarked = 0`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup posts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// Reset wipes feeds, posts, and categories, keeping only General.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`DELETE FROM posts`,
		`DELETE FROM feeds`,
		`DELETE FROM categories`,
		`INSERT INTO categories (name) VALUES ('General')`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
