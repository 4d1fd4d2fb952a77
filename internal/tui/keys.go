package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/newsdeck/internal/nav"
	"github.com/glabrego/newsdeck/internal/store"
	tuiview "github.com/glabrego/newsdeck/internal/tui/view"
	"github.com/glabrego/newsdeck/internal/view"
)

const storeOpTimeout = 5 * time.Second

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	// A pending confirmation captures every key until resolved.
	if m.confirm.Pending() {
		action, _ := m.confirm.Resolve(key)
		if action != nil {
			return m.executeAction(*action)
		}
		return m, nil
	}

	if m.focus == FocusArticle {
		return m.handleArticleKey(key)
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "tab":
		if m.focus == FocusSidebar {
			m.focus = FocusPosts
		} else {
			m.focus = FocusSidebar
		}
		return m, nil
	case "up", "k":
		if m.focus == FocusSidebar {
			m.sidebar.Previous()
			return m, m.activateNode()
		}
		m.moveCursorBy(-1)
		return m, nil
	case "down", "j":
		if m.focus == FocusSidebar {
			m.sidebar.Next()
			return m, m.activateNode()
		}
		m.moveCursorBy(1)
		return m, nil
	case "g":
		if m.focus == FocusPosts && len(m.posts) > 0 {
			m.cursor = 0
			m.syncSelectedID()
		}
		return m, nil
	case "G":
		if m.focus == FocusPosts && len(m.posts) > 0 {
			m.cursor = len(m.posts) - 1
			m.syncSelectedID()
		}
		return m, nil
	case "enter":
		if m.focus == FocusSidebar {
			m.focus = FocusPosts
			return m, nil
		}
		return m.openArticle()
	case "r":
		if m.refresher == nil {
			return m, nil
		}
		m.loading = true
		m.setStatus("Refreshing...")
		m.refresher.Request(m.activeNode)
		return m, nil
	case "s":
		m.showRead = !m.showRead
		m.loading = true
		return m, loadListCmd(m.store, m.activeNode, m.showRead)
	case "m", "b", "l", "a":
		if m.focus != FocusPosts {
			return m, nil
		}
		m.toggleCurrent(key)
		return m, nil
	case "o":
		if m.focus != FocusPosts {
			return m, nil
		}
		return m.openCurrentURL()
	case "d":
		return m.requestDelete()
	case "X":
		if m.focus != FocusPosts || m.cursor >= len(m.posts) {
			return m, nil
		}
		p := m.posts[m.cursor]
		m.confirm.Request(PendingAction{
			Kind:   ActionDeleteFeed,
			FeedID: p.FeedID,
			Label:  fmt.Sprintf("feed %q and all its posts", p.FeedTitle),
		})
		return m, nil
	}
	return m, nil
}

func (m Model) handleArticleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		m.focus = FocusPosts
		m.articleTop = 0
		// Removal of posts that no longer belong to the view is
		// deferred while the article is open, so a post marked
		// read on open stays visible until now.
		m.applyMembership()
		return m, nil
	case "up", "k":
		if m.articleTop > 0 {
			m.articleTop--
		}
		return m, nil
	case "down", "j":
		if m.articleTop < tuiview.MaxDetailTop(len(m.articleLines()), m.detailBodyHeight()) {
			m.articleTop++
		}
		return m, nil
	case "o":
		return m.openCurrentURL()
	case "m", "b", "l", "a":
		m.toggleCurrent(key)
		return m, nil
	case "[":
		return m.stepArticle(-1)
	case "]":
		return m.stepArticle(1)
	case "d":
		return m.requestDelete()
	}
	return m, nil
}

func (m Model) openArticle() (tea.Model, tea.Cmd) {
	if m.cursor >= len(m.posts) {
		return m, nil
	}
	m.focus = FocusArticle
	m.articleTop = 0
	m.markCurrentRead()
	return m, nil
}

func (m Model) stepArticle(delta int) (tea.Model, tea.Cmd) {
	next := m.cursor + delta
	if next < 0 || next >= len(m.posts) {
		return m, nil
	}
	m.cursor = next
	m.syncSelectedID()
	m.articleTop = 0
	m.markCurrentRead()
	return m, nil
}

func (m *Model) moveCursorBy(delta int) {
	if len(m.posts) == 0 {
		return
	}
	next := m.cursor + delta
	if next < 0 || next >= len(m.posts) {
		return
	}
	m.cursor = next
	m.syncSelectedID()
}

// markCurrentRead marks the selected post read when opening it. Counts
// update immediately; list membership is reconciled when the article
// closes.
func (m *Model) markCurrentRead() {
	if m.cursor >= len(m.posts) {
		return
	}
	p := &m.posts[m.cursor]
	if p.Read {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeOpTimeout)
	defer cancel()
	if err := m.store.SetRead(ctx, p.ID, true); err != nil {
		return
	}
	p.Read = true
	m.refreshSidebar()
}

// toggleCurrent flips one flag on the selected post. A store failure
// leaves both the store and the screen untouched.
func (m *Model) toggleCurrent(key string) {
	if m.cursor >= len(m.posts) {
		return
	}
	p := &m.posts[m.cursor]
	ctx, cancel := context.WithTimeout(context.Background(), storeOpTimeout)
	defer cancel()

	var err error
	switch key {
	case "m":
		if err = m.store.SetRead(ctx, p.ID, !p.Read); err == nil {
			p.Read = !p.Read
		}
	case "b":
		if err = m.store.SetBookmarked(ctx, p.ID, !p.Bookmarked); err == nil {
			p.Bookmarked = !p.Bookmarked
		}
	case "l":
		if err = m.store.SetReadLater(ctx, p.ID, !p.ReadLater); err == nil {
			p.ReadLater = !p.ReadLater
		}
	case "a":
		if err = m.store.SetArchived(ctx, p.ID, !p.Archived); err == nil {
			p.Archived = !p.Archived
		}
	}
	if err != nil {
		return
	}
	m.refreshSidebar()
	if m.focus != FocusArticle {
		m.applyMembership()
	}
}

// applyMembership drops posts that no longer belong to the active view
// and restores the selection, preferring the same post over the same
// index.
func (m *Model) applyMembership() {
	kept := make([]store.Post, 0, len(m.posts))
	for _, p := range m.posts {
		if postBelongs(m.activeNode, m.showRead, p) {
			kept = append(kept, p)
		}
	}
	m.posts = kept
	m.cursor = view.Reselect(kept, m.selectedID, m.cursor)
	m.syncSelectedID()
}

func postBelongs(node nav.NavNode, showRead bool, p store.Post) bool {
	if node.IsCategory() {
		return true
	}
	switch node.Smart {
	case nav.SmartStarred:
		return p.Bookmarked
	case nav.SmartReadLater:
		return p.ReadLater
	case nav.SmartArchived:
		return p.Archived
	default:
		return showRead || !p.Read
	}
}

func (m Model) openCurrentURL() (tea.Model, tea.Cmd) {
	if m.cursor >= len(m.posts) {
		return m, nil
	}
	url := m.posts[m.cursor].URL
	if url == "" {
		return m, nil
	}
	if err := m.openURLFn(url); err != nil {
		m.setStatus("Could not open browser: " + err.Error())
	} else {
		m.setStatus("Opened in browser")
	}
	return m, clearStatusCmd(m.statusID, 3*time.Second)
}

func (m Model) requestDelete() (tea.Model, tea.Cmd) {
	if m.focus == FocusSidebar {
		node := m.sidebar.SelectedNode()
		if !node.IsCategory() {
			return m, nil
		}
		if node.Category == store.GeneralCategory {
			m.setStatus("The General category cannot be deleted")
			return m, clearStatusCmd(m.statusID, 3*time.Second)
		}
		m.confirm.Request(PendingAction{
			Kind:     ActionDeleteCategory,
			Category: node.Category,
			Label:    fmt.Sprintf("category %q (feeds move to General)", node.Category),
		})
		return m, nil
	}
	if m.cursor >= len(m.posts) {
		return m, nil
	}
	p := m.posts[m.cursor]
	m.confirm.Request(PendingAction{
		Kind:   ActionDeletePost,
		PostID: p.ID,
		Label:  fmt.Sprintf("post %q", p.Title),
	})
	return m, nil
}

func (m Model) executeAction(action PendingAction) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithTimeout(context.Background(), storeOpTimeout)
	defer cancel()

	switch action.Kind {
	case ActionDeletePost:
		if err := m.store.DeletePost(ctx, action.PostID); err != nil {
			m.err = err
			return m, nil
		}
		for i := range m.posts {
			if m.posts[i].ID == action.PostID {
				m.posts = view.RemoveAt(m.posts, i)
				break
			}
		}
		m.cursor = view.ClampIndex(m.cursor, len(m.posts))
		m.syncSelectedID()
		if m.focus == FocusArticle {
			m.focus = FocusPosts
			m.articleTop = 0
		}
		m.refreshSidebar()
		m.setStatus("Post deleted")
		return m, clearStatusCmd(m.statusID, 3*time.Second)
	case ActionDeleteFeed:
		if err := m.store.DeleteFeed(ctx, action.FeedID); err != nil {
			m.err = err
			return m, nil
		}
		m.refreshSidebar()
		m.setStatus("Feed deleted")
		m.loading = true
		return m, tea.Batch(
			loadListCmd(m.store, m.activeNode, m.showRead),
			clearStatusCmd(m.statusID, 3*time.Second),
		)
	case ActionDeleteCategory:
		if err := m.store.DeleteCategory(ctx, action.Category); err != nil {
			m.err = err
			return m, nil
		}
		m.refreshSidebar()
		m.setStatus("Category deleted")
		cmds := []tea.Cmd{clearStatusCmd(m.statusID, 3*time.Second)}
		if m.activeNode == nav.CategoryNode(action.Category) {
			cmds = append(cmds, m.activateNode())
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}
