package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/newsdeck/internal/nav"
	"github.com/glabrego/newsdeck/internal/refresh"
	"github.com/glabrego/newsdeck/internal/store"
	"github.com/glabrego/newsdeck/internal/view"
)

// Store is the persistence surface the interactive loop consumes.
// *store.Store satisfies it; tests substitute fakes.
type Store interface {
	ListPosts(ctx context.Context, filter store.Filter) ([]store.Post, error)
	ListPostsByCategory(ctx context.Context, category string) ([]store.Post, error)
	FreshDigest(ctx context.Context, perCategory int) ([]store.Post, error)
	ListCategories(ctx context.Context) ([]string, error)
	CountPosts(ctx context.Context, filter store.Filter) (int, error)
	CountPostsByCategory(ctx context.Context, category string) (int, error)
	SetRead(ctx context.Context, id int64, read bool) error
	SetBookmarked(ctx context.Context, id int64, bookmarked bool) error
	SetArchived(ctx context.Context, id int64, archived bool) error
	SetReadLater(ctx context.Context, id int64, readLater bool) error
	DeletePost(ctx context.Context, id int64) error
	DeleteFeed(ctx context.Context, id int64) error
	DeleteCategory(ctx context.Context, name string) error
}

// Refresher launches background refreshes and exposes their completion
// queue.
type Refresher interface {
	Request(node nav.NavNode)
	Completions() <-chan refresh.Completion
}

type listLoadedMsg struct {
	node     nav.NavNode
	showRead bool
	posts    []store.Post
}

type listLoadErrorMsg struct {
	err error
}

type refreshDoneMsg refresh.Completion

type refreshTickMsg time.Time

type clearStatusMsg struct {
	id int
}

func loadListCmd(st Store, node nav.NavNode, showRead bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		posts, err := view.Materialize(ctx, st, node, showRead)
		if err != nil {
			return listLoadErrorMsg{err: err}
		}
		return listLoadedMsg{node: node, showRead: showRead, posts: posts}
	}
}

// waitCompletionCmd blocks on the refresh completion queue. The
// returned message handler re-arms it, so the program is always
// waiting on completions and input events at once.
func waitCompletionCmd(completions <-chan refresh.Completion) tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg(<-completions)
	}
}

func refreshTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

func clearStatusCmd(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}
