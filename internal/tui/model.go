// Package tui implements the interactive reader: a sidebar of smart
// views and categories, a post list for the active node, and an
// article detail pane, driven by the Elm-style update loop.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/newsdeck/internal/nav"
	"github.com/glabrego/newsdeck/internal/refresh"
	"github.com/glabrego/newsdeck/internal/render"
	"github.com/glabrego/newsdeck/internal/store"
	"github.com/glabrego/newsdeck/internal/tui/theme"
	"github.com/glabrego/newsdeck/internal/view"
)

// Focus identifies which pane receives navigation keys.
type Focus int

const (
	FocusSidebar Focus = iota
	FocusPosts
	FocusArticle
)

type Model struct {
	store     Store
	refresher Refresher
	renderer  *render.Renderer
	theme     theme.Theme

	sidebar    *nav.Sidebar
	activeNode nav.NavNode
	posts      []store.Post
	cursor     int
	selectedID int64

	focus      Focus
	showRead   bool
	articleTop int

	confirm  Confirm
	status   string
	statusID int
	err      error
	loading  bool

	width  int
	height int

	openURLFn      func(string) error
	nowFn          func() time.Time
	refreshEvery   time.Duration
	startupRefresh bool
}

func NewModel(st Store, refresher Refresher) Model {
	m := Model{
		store:      st,
		refresher:  refresher,
		renderer:   render.NewRenderer(),
		theme:      theme.Default(),
		sidebar:    nav.NewSidebar(),
		activeNode: nav.SmartNode(nav.SmartFresh),
		focus:      FocusSidebar,
		openURLFn:  openURLInBrowser,
		nowFn:      time.Now,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = m.sidebar.Refresh(ctx, st)
	return m
}

// SetRefreshInterval enables periodic background refreshes. Zero
// disables them.
func (m *Model) SetRefreshInterval(d time.Duration) {
	m.refreshEvery = d
}

// SetStartupRefresh makes Init request a full refresh before the first
// frame.
func (m *Model) SetStartupRefresh(on bool) {
	m.startupRefresh = on
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{loadListCmd(m.store, m.activeNode, m.showRead)}
	if m.refresher != nil {
		cmds = append(cmds, waitCompletionCmd(m.refresher.Completions()))
		if m.startupRefresh {
			m.refresher.Request(nav.SmartNode(nav.SmartFresh))
		}
	}
	if m.refreshEvery > 0 {
		cmds = append(cmds, refreshTickCmd(m.refreshEvery))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case listLoadedMsg:
		if msg.node != m.activeNode || msg.showRead != m.showRead {
			return m, nil
		}
		m.loading = false
		m.err = nil
		m.posts = msg.posts
		m.cursor = view.Reselect(msg.posts, m.selectedID, m.cursor)
		m.syncSelectedID()
		return m, nil
	case listLoadErrorMsg:
		m.loading = false
		m.err = msg.err
		return m, nil
	case refreshDoneMsg:
		return m.handleRefreshDone(refresh.Completion(msg))
	case refreshTickMsg:
		if m.refresher != nil {
			m.refresher.Request(nav.SmartNode(nav.SmartFresh))
		}
		return m, refreshTickCmd(m.refreshEvery)
	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil
	}
	return m, nil
}

// handleRefreshDone consumes one completion from the background queue.
// Counts always pick up the new posts; the visible list is reloaded
// only when the completion is for the node the user is still looking
// at, so a stale completion never clobbers another node's list. A
// failed task is never recorded in the staleness map: only successful
// refreshes mark a node fetched.
func (m Model) handleRefreshDone(comp refresh.Completion) (tea.Model, tea.Cmd) {
	m.loading = false

	if comp.Failed {
		m.setStatus("Refresh failed: could not read the feed list")
		return m, tea.Batch(
			waitCompletionCmd(m.refresher.Completions()),
			clearStatusCmd(m.statusID, 4*time.Second),
		)
	}

	m.sidebar.MarkFetched(comp.Node, m.nowFn())
	m.refreshSidebar()

	if comp.FailedFeeds > 0 {
		m.setStatus(fmt.Sprintf("Refreshed: %d new, %d feeds failed", comp.Entries, comp.FailedFeeds))
	} else {
		m.setStatus(fmt.Sprintf("Refreshed: %d new posts", comp.Entries))
	}

	cmds := []tea.Cmd{waitCompletionCmd(m.refresher.Completions()), clearStatusCmd(m.statusID, 4*time.Second)}
	if comp.Node == m.activeNode {
		cmds = append(cmds, loadListCmd(m.store, m.activeNode, m.showRead))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) refreshSidebar() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = m.sidebar.Refresh(ctx, m.store)
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.err = nil
	m.statusID++
}

func (m *Model) syncSelectedID() {
	if m.cursor >= 0 && m.cursor < len(m.posts) {
		m.selectedID = m.posts[m.cursor].ID
	} else {
		m.selectedID = 0
	}
}

// activateNode switches the view to the sidebar's current selection
// and kicks off a background refresh for nodes whose feeds were never
// fetched or whose last successful refresh has gone stale.
func (m *Model) activateNode() tea.Cmd {
	node := m.sidebar.SelectedNode()
	m.activeNode = node
	m.cursor = 0
	m.selectedID = 0
	m.loading = true

	if m.refresher != nil && nodeHasFeeds(node) &&
		m.sidebar.IsStale(node, m.nowFn(), m.staleAfter()) {
		m.refresher.Request(node)
	}
	return loadListCmd(m.store, node, m.showRead)
}

// staleAfter is how old a node's last successful refresh may be before
// selecting it triggers another one.
func (m Model) staleAfter() time.Duration {
	if m.refreshEvery > 0 {
		return m.refreshEvery
	}
	return time.Hour
}

// nodeHasFeeds reports whether refreshing the node would fetch
// anything. Flag-based smart views only re-slice stored posts.
func nodeHasFeeds(node nav.NavNode) bool {
	return node.IsCategory() || node.Smart == nav.SmartFresh
}
