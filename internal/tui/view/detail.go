package view

import (
	"strings"
	"time"

	"github.com/glabrego/newsdeck/internal/store"
	tuitheme "github.com/glabrego/newsdeck/internal/tui/theme"
)

// BuildDetailHeader renders the article header: title, feed, date, URL.
func BuildDetailHeader(post store.Post, width int, th tuitheme.Theme) []string {
	published := "unknown"
	if !post.Published.IsZero() {
		published = post.Published.UTC().Format(time.RFC1123)
	}
	feedTitle := strings.TrimSpace(post.FeedTitle)
	if feedTitle == "" {
		feedTitle = "unknown feed"
	}

	lines := []string{
		th.Title.Render(truncateRunes(strings.TrimSpace(post.Title), width)),
		th.MetaLabel.Render("Feed: ") + th.MetaValue.Render(feedTitle),
		th.MetaLabel.Render("Date: ") + th.MetaValue.Render(published),
		th.MetaLabel.Render("URL:  ") + th.MetaValue.Render(truncateRunes(post.URL, width-6)),
		"",
	}
	return lines
}

// RenderDetailLines shows the window of body lines starting at top.
func RenderDetailLines(lines []string, top, height int) string {
	if height < 1 {
		height = 1
	}
	if top < 0 {
		top = 0
	}
	if top > len(lines) {
		top = len(lines)
	}
	end := top + height
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[top:end], "\n")
}

// MaxDetailTop is the largest valid scroll offset for a body of n
// lines in a window of height h.
func MaxDetailTop(n, h int) int {
	if h < 1 {
		h = 1
	}
	if n <= h {
		return 0
	}
	return n - h
}
