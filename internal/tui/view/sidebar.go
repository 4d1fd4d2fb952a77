package view

import (
	"fmt"
	"strings"

	"github.com/glabrego/newsdeck/internal/nav"
	tuitheme "github.com/glabrego/newsdeck/internal/tui/theme"
)

type SidebarParams struct {
	Sidebar *nav.Sidebar
	Focused bool
	Width   int
}

// RenderSidebar renders both sidebar sections with per-node count
// badges. The cursor line is highlighted only while the sidebar pane
// has focus.
func RenderSidebar(p SidebarParams, th tuitheme.Theme) string {
	var b strings.Builder

	b.WriteString(th.Section.Render("Smart Views"))
	b.WriteString("\n")
	for i, sv := range p.Sidebar.SmartViews {
		active := p.Focused &&
			p.Sidebar.Section == nav.SectionSmartViews && p.Sidebar.SmartIndex == i
		b.WriteString(renderNodeLine(sv.Title(), p.Sidebar.Count(nav.SmartNode(sv)), p.Width, active, th))
		b.WriteString("\n")
	}

	b.WriteString(th.Section.Render("Categories"))
	b.WriteString("\n")
	for i, name := range p.Sidebar.Categories {
		active := p.Focused &&
			p.Sidebar.Section == nav.SectionCategories && p.Sidebar.CategoryIndex == i
		b.WriteString(renderNodeLine(name, p.Sidebar.Count(nav.CategoryNode(name)), p.Width, active, th))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderNodeLine(label string, count, width int, active bool, th tuitheme.Theme) string {
	left := " " + label
	if count <= 0 {
		return th.RenderActiveLine(active, truncateRunes(left, width))
	}
	right := th.Badge.Render(fmt.Sprintf("%d", count))
	available := width - visibleLen(right) - 1
	if available < 1 {
		available = 1
	}
	left = truncateRunes(left, available)
	gap := width - visibleLen(left) - visibleLen(right)
	if gap < 1 {
		gap = 1
	}
	return th.RenderActiveLine(active, left+strings.Repeat(" ", gap)+right)
}
