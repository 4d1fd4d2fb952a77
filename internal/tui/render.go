package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/glabrego/newsdeck/internal/render"
	tuiview "github.com/glabrego/newsdeck/internal/tui/view"
)

const sidebarWidth = 26

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("newsdeck"))
	b.WriteString("  ")
	b.WriteString(m.theme.Section.Render(m.activeNode.Title()))
	if m.loading {
		b.WriteString("  ")
		b.WriteString(m.theme.MetaLabel.Render("loading..."))
	}
	b.WriteString("\n\n")

	if m.focus == FocusArticle {
		b.WriteString(tuiview.RenderDetailLines(m.articleLines(), m.articleTop, m.detailBodyHeight()))
	} else {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarPane(), m.listPane()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.messagePanel())
	b.WriteString("\n")
	b.WriteString(m.footer())
	b.WriteString("\n")
	return b.String()
}

func (m Model) sidebarPane() string {
	return tuiview.RenderSidebar(tuiview.SidebarParams{
		Sidebar: m.sidebar,
		Focused: m.focus == FocusSidebar,
		Width:   sidebarWidth,
	}, m.theme)
}

func (m Model) listPane() string {
	if len(m.posts) == 0 {
		if m.loading {
			return " Loading posts..."
		}
		return " No posts here."
	}
	var b strings.Builder
	start, end := tuiview.CenteredWindow(len(m.posts), m.cursor, m.listHeight())
	for i := start; i < end; i++ {
		b.WriteString(tuiview.RenderPostLine(tuiview.PostLineParams{
			Post:   m.posts[i],
			Active: i == m.cursor && m.focus == FocusPosts,
			Width:  m.listWidth(),
		}, m.theme))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) articleLines() []string {
	if m.cursor >= len(m.posts) {
		return []string{"No post selected."}
	}
	post := m.posts[m.cursor]
	lines := tuiview.BuildDetailHeader(post, m.contentWidth(), m.theme)
	body, err := m.renderer.Article(post.Content, m.contentWidth())
	if err != nil {
		body = render.WrapLines(post.Content, m.contentWidth())
	}
	return append(lines, body...)
}

func (m Model) messagePanel() string {
	if m.confirm.Pending() {
		return m.theme.Warn.Render(m.confirm.Prompt())
	}
	if m.err != nil {
		return m.theme.Warn.Render("Error: " + m.err.Error())
	}
	if m.status != "" {
		return m.theme.Notice.Render(m.status)
	}
	return ""
}

func (m Model) footer() string {
	if m.focus == FocusArticle {
		return m.theme.MetaLabel.Render("j/k: scroll | [ ]: prev/next | o: open | m/b/l/a: flags | d: delete | esc: back | q: quit")
	}
	return m.theme.MetaLabel.Render("tab: pane | j/k: move | enter: open | r: refresh | s: show read | m/b/l/a: flags | d/X: delete | q: quit")
}

func (m Model) listWidth() int {
	if m.width <= 0 {
		return 80
	}
	w := m.width - sidebarWidth - 2
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) listHeight() int {
	if m.height <= 0 {
		return 20
	}
	h := m.height - 6
	if h < 5 {
		h = 5
	}
	return h
}

func (m Model) detailBodyHeight() int {
	return m.listHeight()
}
