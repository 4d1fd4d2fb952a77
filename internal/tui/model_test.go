package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/newsdeck/internal/nav"
	"github.com/glabrego/newsdeck/internal/refresh"
	"github.com/glabrego/newsdeck/internal/store"
)

type fakeModelStore struct {
	categories []string
	posts      []store.Post
	flagErr    error

	deletedPosts []int64
	deletedFeeds []int64
	deletedCats  []string
}

func (f *fakeModelStore) ListPosts(context.Context, store.Filter) ([]store.Post, error) {
	return f.posts, nil
}

func (f *fakeModelStore) ListPostsByCategory(context.Context, string) ([]store.Post, error) {
	return f.posts, nil
}

func (f *fakeModelStore) FreshDigest(context.Context, int) ([]store.Post, error) {
	return f.posts, nil
}

func (f *fakeModelStore) ListCategories(context.Context) ([]string, error) {
	return f.categories, nil
}

func (f *fakeModelStore) CountPosts(context.Context, store.Filter) (int, error) {
	return 0, nil
}

func (f *fakeModelStore) CountPostsByCategory(context.Context, string) (int, error) {
	return 0, nil
}

func (f *fakeModelStore) SetRead(context.Context, int64, bool) error { return f.flagErr }

func (f *fakeModelStore) SetBookmarked(context.Context, int64, bool) error { return f.flagErr }

func (f *fakeModelStore) SetArchived(context.Context, int64, bool) error { return f.flagErr }

func (f *fakeModelStore) SetReadLater(context.Context, int64, bool) error { return f.flagErr }

func (f *fakeModelStore) DeletePost(_ context.Context, id int64) error {
	f.deletedPosts = append(f.deletedPosts, id)
	return nil
}

func (f *fakeModelStore) DeleteFeed(_ context.Context, id int64) error {
	f.deletedFeeds = append(f.deletedFeeds, id)
	return nil
}

func (f *fakeModelStore) DeleteCategory(_ context.Context, name string) error {
	f.deletedCats = append(f.deletedCats, name)
	return nil
}

type fakeRefresher struct {
	requests    []nav.NavNode
	completions chan refresh.Completion
}

func newFakeRefresher() *fakeRefresher {
	return &fakeRefresher{completions: make(chan refresh.Completion, 10)}
}

func (f *fakeRefresher) Request(node nav.NavNode) {
	f.requests = append(f.requests, node)
}

func (f *fakeRefresher) Completions() <-chan refresh.Completion {
	return f.completions
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

func pressKey(t *testing.T, m Model, key string) Model {
	t.Helper()
	updated, _ := m.Update(keyMsg(key))
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned unexpected model type %T", updated)
	}
	return next
}

func newTestModel(t *testing.T, st *fakeModelStore, refresher *fakeRefresher) Model {
	t.Helper()
	if st.categories == nil {
		st.categories = []string{store.GeneralCategory, "Tech"}
	}
	var r Refresher
	if refresher != nil {
		r = refresher
	}
	m := NewModel(st, r)
	m.openURLFn = func(string) error { return nil }
	return m
}

func starredPosts() []store.Post {
	return []store.Post{
		{ID: 1, Title: "first", Bookmarked: true},
		{ID: 2, Title: "second", Bookmarked: true},
		{ID: 3, Title: "third", Bookmarked: true},
	}
}

func TestUnstar_RemovesPostFromStarredView(t *testing.T) {
	st := &fakeModelStore{}
	m := newTestModel(t, st, nil)
	m.activeNode = nav.SmartNode(nav.SmartStarred)
	m.posts = starredPosts()
	m.focus = FocusPosts
	m.cursor = 1
	m.syncSelectedID()

	m = pressKey(t, m, "b")

	if len(m.posts) != 2 {
		t.Fatalf("expected unstarred post removed, got %d posts", len(m.posts))
	}
	if m.posts[0].ID != 1 || m.posts[1].ID != 3 {
		t.Fatalf("unexpected posts after unstar: %+v", m.posts)
	}
	if m.cursor != 1 {
		t.Fatalf("expected cursor to land on the next post, got %d", m.cursor)
	}
	if m.selectedID != 3 {
		t.Fatalf("expected post 3 selected, got %d", m.selectedID)
	}
}

func TestFlagToggle_StoreErrorLeavesViewUntouched(t *testing.T) {
	st := &fakeModelStore{flagErr: errors.New("disk full")}
	m := newTestModel(t, st, nil)
	m.activeNode = nav.SmartNode(nav.SmartStarred)
	m.posts = starredPosts()
	m.focus = FocusPosts
	m.cursor = 1
	m.syncSelectedID()

	m = pressKey(t, m, "b")

	if len(m.posts) != 3 {
		t.Fatalf("expected list untouched on store error, got %d posts", len(m.posts))
	}
	if !m.posts[1].Bookmarked {
		t.Fatal("expected in-memory flag untouched on store error")
	}
}

func TestRefreshCompletion_ForOtherNodeKeepsVisibleList(t *testing.T) {
	st := &fakeModelStore{}
	refresher := newFakeRefresher()
	m := newTestModel(t, st, refresher)
	m.activeNode = nav.SmartNode(nav.SmartStarred)
	m.posts = starredPosts()
	m.cursor = 2
	m.syncSelectedID()

	other := nav.CategoryNode("Tech")
	updated, _ := m.Update(refreshDoneMsg(refresh.Completion{Node: other, Entries: 5}))
	m = updated.(Model)

	if len(m.posts) != 3 || m.cursor != 2 {
		t.Fatalf("expected visible list untouched, got %d posts cursor %d", len(m.posts), m.cursor)
	}
	if m.sidebar.IsStale(other, time.Now(), time.Hour) {
		t.Fatal("expected completion recorded for the refreshed node")
	}
}

func TestRefreshCompletion_FailureKeepsNodeStale(t *testing.T) {
	st := &fakeModelStore{}
	refresher := newFakeRefresher()
	m := newTestModel(t, st, refresher)
	m.posts = starredPosts()
	m.cursor = 1
	m.syncSelectedID()

	node := m.activeNode
	updated, _ := m.Update(refreshDoneMsg(refresh.Completion{Node: node, Failed: true}))
	m = updated.(Model)

	if !m.sidebar.IsStale(node, time.Now(), time.Hour) {
		t.Fatal("expected failed refresh to leave the node stale")
	}
	if !strings.Contains(m.status, "failed") {
		t.Fatalf("expected a failure status, got %q", m.status)
	}
	if len(m.posts) != 3 || m.cursor != 1 {
		t.Fatalf("expected visible list untouched, got %d posts cursor %d", len(m.posts), m.cursor)
	}
}

func TestSidebarMovement_StaleNodeRequestsRefresh(t *testing.T) {
	st := &fakeModelStore{}
	refresher := newFakeRefresher()
	m := newTestModel(t, st, refresher)
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	m.nowFn = func() time.Time { return now }
	m.sidebar.MarkFetched(nav.CategoryNode(store.GeneralCategory), now.Add(-2*time.Hour))

	for i := 0; i < len(m.sidebar.SmartViews); i++ {
		m = pressKey(t, m, "j")
	}

	found := false
	for _, node := range refresher.requests {
		if node == nav.CategoryNode(store.GeneralCategory) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected stale category selection to request a refresh, got %v", refresher.requests)
	}
}

func TestListLoaded_StaleNodeIgnored(t *testing.T) {
	st := &fakeModelStore{}
	m := newTestModel(t, st, nil)
	m.activeNode = nav.SmartNode(nav.SmartStarred)
	m.posts = starredPosts()

	stale := listLoadedMsg{
		node:  nav.CategoryNode("Tech"),
		posts: []store.Post{{ID: 99}},
	}
	updated, _ := m.Update(stale)
	m = updated.(Model)

	if len(m.posts) != 3 {
		t.Fatalf("expected stale load ignored, got %d posts", len(m.posts))
	}
}

func TestListLoaded_ShowReadMismatchIgnored(t *testing.T) {
	st := &fakeModelStore{}
	m := newTestModel(t, st, nil)
	m.posts = starredPosts()

	stale := listLoadedMsg{
		node:     m.activeNode,
		showRead: true,
		posts:    []store.Post{{ID: 99}},
	}
	updated, _ := m.Update(stale)
	m = updated.(Model)

	if len(m.posts) != 3 {
		t.Fatalf("expected mismatched load ignored, got %d posts", len(m.posts))
	}
}

func TestListLoaded_ReselectsByIdentity(t *testing.T) {
	st := &fakeModelStore{}
	m := newTestModel(t, st, nil)
	m.posts = starredPosts()
	m.cursor = 1
	m.syncSelectedID()

	reordered := listLoadedMsg{
		node:  m.activeNode,
		posts: []store.Post{{ID: 4}, {ID: 3}, {ID: 2}, {ID: 1}},
	}
	updated, _ := m.Update(reordered)
	m = updated.(Model)

	if m.cursor != 2 {
		t.Fatalf("expected selection to follow post 2 to index 2, got %d", m.cursor)
	}
}

func TestOpenArticle_DefersFreshRemovalUntilClose(t *testing.T) {
	st := &fakeModelStore{}
	m := newTestModel(t, st, nil)
	m.posts = []store.Post{
		{ID: 1, Title: "unread one"},
		{ID: 2, Title: "unread two"},
	}
	m.focus = FocusPosts
	m.cursor = 0
	m.syncSelectedID()

	m = pressKey(t, m, "enter")

	if m.focus != FocusArticle {
		t.Fatalf("expected article focus, got %v", m.focus)
	}
	if !m.posts[0].Read {
		t.Fatal("expected opened post marked read")
	}
	if len(m.posts) != 2 {
		t.Fatal("expected read post to stay visible while the article is open")
	}

	m = pressKey(t, m, "esc")

	if m.focus != FocusPosts {
		t.Fatalf("expected list focus after close, got %v", m.focus)
	}
	if len(m.posts) != 1 || m.posts[0].ID != 2 {
		t.Fatalf("expected read post removed on close, got %+v", m.posts)
	}
	if m.cursor != 0 {
		t.Fatalf("expected cursor clamped, got %d", m.cursor)
	}
}

func TestShowRead_KeepsReadPostsInFresh(t *testing.T) {
	st := &fakeModelStore{}
	m := newTestModel(t, st, nil)
	m.showRead = true
	m.posts = []store.Post{
		{ID: 1, Title: "unread one"},
		{ID: 2, Title: "unread two"},
	}
	m.focus = FocusPosts
	m.cursor = 0
	m.syncSelectedID()

	m = pressKey(t, m, "enter")
	m = pressKey(t, m, "esc")

	if len(m.posts) != 2 {
		t.Fatalf("expected read post kept with show-read on, got %d posts", len(m.posts))
	}
}

func TestDeleteCategory_GeneralRejectedBeforeConfirmation(t *testing.T) {
	st := &fakeModelStore{}
	m := newTestModel(t, st, nil)
	m.sidebar.Section = nav.SectionCategories
	m.sidebar.CategoryIndex = 0 // General

	m = pressKey(t, m, "d")

	if m.confirm.Pending() {
		t.Fatal("expected no confirmation for the General category")
	}
	if m.status == "" {
		t.Fatal("expected a status explaining the rejection")
	}
}

func TestDeleteCategory_ConfirmFlow(t *testing.T) {
	st := &fakeModelStore{}
	m := newTestModel(t, st, nil)
	m.sidebar.Section = nav.SectionCategories
	m.sidebar.CategoryIndex = 1 // Tech

	// Declining leaves the store untouched.
	m = pressKey(t, m, "d")
	if !m.confirm.Pending() {
		t.Fatal("expected pending confirmation")
	}
	m = pressKey(t, m, "n")
	if len(st.deletedCats) != 0 {
		t.Fatalf("expected no deletion after decline, got %v", st.deletedCats)
	}

	// Affirming deletes.
	m = pressKey(t, m, "d")
	m = pressKey(t, m, "y")
	if len(st.deletedCats) != 1 || st.deletedCats[0] != "Tech" {
		t.Fatalf("expected Tech deleted, got %v", st.deletedCats)
	}
}

func TestConfirm_BlocksOtherInput(t *testing.T) {
	st := &fakeModelStore{}
	m := newTestModel(t, st, nil)
	m.posts = starredPosts()
	m.focus = FocusPosts
	m.cursor = 0
	m.syncSelectedID()

	m = pressKey(t, m, "d")
	if !m.confirm.Pending() {
		t.Fatal("expected pending confirmation")
	}

	m = pressKey(t, m, "j")
	if m.cursor != 0 {
		t.Fatalf("expected cursor frozen while confirming, got %d", m.cursor)
	}
	if !m.confirm.Pending() {
		t.Fatal("expected confirmation still pending after a stray key")
	}
}

func TestDeletePost_RemovesAndClamps(t *testing.T) {
	st := &fakeModelStore{}
	m := newTestModel(t, st, nil)
	m.posts = starredPosts()
	m.focus = FocusPosts
	m.cursor = 2
	m.syncSelectedID()

	m = pressKey(t, m, "d")
	m = pressKey(t, m, "y")

	if len(st.deletedPosts) != 1 || st.deletedPosts[0] != 3 {
		t.Fatalf("expected post 3 deleted, got %v", st.deletedPosts)
	}
	if len(m.posts) != 2 {
		t.Fatalf("expected 2 posts left, got %d", len(m.posts))
	}
	if m.cursor != 1 {
		t.Fatalf("expected cursor clamped to 1, got %d", m.cursor)
	}
}

func TestSidebarMovement_ActivatesNodeAndRequestsColdRefresh(t *testing.T) {
	st := &fakeModelStore{}
	refresher := newFakeRefresher()
	m := newTestModel(t, st, refresher)

	// Walk down to the first category, which has never been fetched.
	for i := 0; i < len(m.sidebar.SmartViews); i++ {
		m = pressKey(t, m, "j")
	}

	if m.activeNode != nav.CategoryNode(store.GeneralCategory) {
		t.Fatalf("expected General active, got %+v", m.activeNode)
	}

	found := false
	for _, node := range refresher.requests {
		if node == nav.CategoryNode(store.GeneralCategory) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected cold category selection to request a refresh, got %v", refresher.requests)
	}

	// A second visit must not re-request.
	m.sidebar.MarkFetched(nav.CategoryNode(store.GeneralCategory), time.Now())
	before := len(refresher.requests)
	m = pressKey(t, m, "k")
	m = pressKey(t, m, "j")
	requested := 0
	for _, node := range refresher.requests[before:] {
		if node == nav.CategoryNode(store.GeneralCategory) {
			requested++
		}
	}
	if requested != 0 {
		t.Fatal("expected no refresh request for an already fetched node")
	}
}
