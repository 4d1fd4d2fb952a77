// Package view materializes the ordered post list for a navigation
// node and keeps list selection indices well-formed.
package view

import (
	"context"

	"github.com/glabrego/newsdeck/internal/nav"
	"github.com/glabrego/newsdeck/internal/store"
)

// FreshPerCategory is how many unread posts each category contributes
// to the fresh digest before the global merge.
const FreshPerCategory = 15

// Store is the slice of the persistence layer materialization reads.
type Store interface {
	ListPosts(ctx context.Context, filter store.Filter) ([]store.Post, error)
	ListPostsByCategory(ctx context.Context, category string) ([]store.Post, error)
	FreshDigest(ctx context.Context, perCategory int) ([]store.Post, error)
}

// Materialize produces the post list for a node. Category and flag
// views are newest-first and capped by the store; the Fresh view uses
// the fair per-category digest unless showRead is set, in which case it
// shows everything unfiltered by read state. showRead has no effect on
// any other node.
func Materialize(ctx context.Context, st Store, node nav.NavNode, showRead bool) ([]store.Post, error) {
	if node.IsCategory() {
		return st.ListPostsByCategory(ctx, node.Category)
	}

	switch node.Smart {
	case nav.SmartStarred:
		return st.ListPosts(ctx, store.Filter{OnlyBookmarked: true})
	case nav.SmartReadLater:
		return st.ListPosts(ctx, store.Filter{OnlyReadLater: true})
	case nav.SmartArchived:
		return st.ListPosts(ctx, store.Filter{OnlyArchived: true})
	default:
		if showRead {
			return st.ListPosts(ctx, store.Filter{})
		}
		return st.FreshDigest(ctx, FreshPerCategory)
	}
}

// ClampIndex forces index into [0, size), or 0 for an empty list.
func ClampIndex(index, size int) int {
	if size <= 0 {
		return 0
	}
	if index >= size {
		return size - 1
	}
	if index < 0 {
		return 0
	}
	return index
}

// IndexOfPost returns the position of the post with the given id, or -1.
func IndexOfPost(posts []store.Post, id int64) int {
	for i, p := range posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Reselect picks the selection index for a freshly materialized list:
// the previously selected post's new position when it survived, the
// clamped old index otherwise.
func Reselect(posts []store.Post, prevID int64, prevIndex int) int {
	if i := IndexOfPost(posts, prevID); i >= 0 {
		return i
	}
	return ClampIndex(prevIndex, len(posts))
}

// RemoveAt drops the post at i, returning the shortened list unchanged
// when i is out of range.
func RemoveAt(posts []store.Post, i int) []store.Post {
	if i < 0 || i >= len(posts) {
		return posts
	}
	return append(posts[:i], posts[i+1:]...)
}
