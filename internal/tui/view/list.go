// Package view renders the sidebar, post list, and article panes.
package view

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/glabrego/newsdeck/internal/store"
	tuitheme "github.com/glabrego/newsdeck/internal/tui/theme"
)

var reANSICodes = regexp.MustCompile(`\x1b\[[0-9;]*m`)

type PostLineParams struct {
	Post   store.Post
	Active bool
	Width  int
}

// RenderPostLine renders one post row: flag markers, styled title, and
// a right-aligned date column.
func RenderPostLine(p PostLineParams, th tuitheme.Theme) string {
	date := "          "
	if !p.Post.Published.IsZero() {
		date = p.Post.Published.UTC().Format(time.DateOnly)
	}

	cursorMarker := " "
	if p.Active {
		cursorMarker = ">"
	}

	prefix := fmt.Sprintf(" %s %s ", cursorMarker, flagMarkers(p.Post))
	dateLabel := "[" + date + "]"
	available := p.Width - visibleLen(prefix) - 1 - visibleLen(dateLabel)
	if available < 1 {
		available = 1
	}

	label := strings.TrimSpace(p.Post.Title)
	if label == "" {
		label = "(untitled)"
	}
	label = truncateRunes(label, available)
	styled := th.StylePostTitle(p.Post, label)

	gap := p.Width - visibleLen(prefix) - visibleLen(label) - visibleLen(dateLabel)
	if gap < 1 {
		gap = 1
	}
	return th.RenderActiveLine(p.Active, prefix+styled+strings.Repeat(" ", gap)+dateLabel)
}

func flagMarkers(p store.Post) string {
	star := " "
	if p.Bookmarked {
		star = "*"
	}
	later := " "
	if p.ReadLater {
		later = "~"
	}
	archived := " "
	if p.Archived {
		archived = "#"
	}
	return star + later + archived
}

func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return strings.Repeat(".", maxLen)
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}

func visibleLen(s string) int {
	return utf8.RuneCountInString(reANSICodes.ReplaceAllString(s, ""))
}

// CenteredWindow returns the half-open row range [start, end) that keeps
// the cursor near the middle of a viewport of the given height.
func CenteredWindow(total, cursor, height int) (int, int) {
	if total <= 0 {
		return 0, 0
	}
	if height <= 0 || total <= height {
		return 0, total
	}
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= total {
		cursor = total - 1
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > total {
		start = total - height
	}
	return start, start + height
}
