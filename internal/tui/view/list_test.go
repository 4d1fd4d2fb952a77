package view

import (
	"strings"
	"testing"
	"time"

	"github.com/glabrego/newsdeck/internal/store"
	tuitheme "github.com/glabrego/newsdeck/internal/tui/theme"
)

func TestCenteredWindow(t *testing.T) {
	cases := []struct {
		name                  string
		total, cursor, height int
		wantStart, wantEnd    int
	}{
		{"fits entirely", 3, 1, 10, 0, 3},
		{"centered", 20, 10, 5, 8, 13},
		{"clamped at top", 20, 0, 5, 0, 5},
		{"clamped at bottom", 20, 19, 5, 15, 20},
		{"empty", 0, 0, 5, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := CenteredWindow(tc.total, tc.cursor, tc.height)
			if start != tc.wantStart || end != tc.wantEnd {
				t.Fatalf("expected [%d, %d), got [%d, %d)", tc.wantStart, tc.wantEnd, start, end)
			}
		})
	}
}

func TestRenderPostLine(t *testing.T) {
	th := tuitheme.Default()
	post := store.Post{
		ID:         1,
		Title:      "A fine article",
		Bookmarked: true,
		Published:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	line := RenderPostLine(PostLineParams{Post: post, Active: true, Width: 60}, th)
	plain := reANSICodes.ReplaceAllString(line, "")

	if !strings.Contains(plain, "A fine article") {
		t.Fatalf("expected title in line, got %q", plain)
	}
	if !strings.Contains(plain, ">") {
		t.Fatalf("expected cursor marker, got %q", plain)
	}
	if !strings.Contains(plain, "*") {
		t.Fatalf("expected star marker, got %q", plain)
	}
	if !strings.Contains(plain, "[2026-03-01]") {
		t.Fatalf("expected date column, got %q", plain)
	}
}

func TestRenderPostLine_UntitledAndUndated(t *testing.T) {
	th := tuitheme.Default()
	line := RenderPostLine(PostLineParams{Post: store.Post{ID: 2}, Width: 60}, th)
	plain := reANSICodes.ReplaceAllString(line, "")

	if !strings.Contains(plain, "(untitled)") {
		t.Fatalf("expected placeholder title, got %q", plain)
	}
	if strings.Contains(plain, "[2026") {
		t.Fatalf("expected no date for undated post, got %q", plain)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("short", 10); got != "short" {
		t.Fatalf("expected unchanged, got %q", got)
	}
	if got := truncateRunes("a much longer string", 10); got != "a much ..." {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := truncateRunes("abc", 2); got != ".." {
		t.Fatalf("unexpected short truncation: %q", got)
	}
}

func TestDetailScrolling(t *testing.T) {
	lines := []string{"a", "b", "c", "d", "e"}

	if got := RenderDetailLines(lines, 0, 2); got != "a\nb" {
		t.Fatalf("unexpected window: %q", got)
	}
	if got := RenderDetailLines(lines, 3, 2); got != "d\ne" {
		t.Fatalf("unexpected window: %q", got)
	}
	if got := MaxDetailTop(5, 2); got != 3 {
		t.Fatalf("expected max top 3, got %d", got)
	}
	if got := MaxDetailTop(2, 5); got != 0 {
		t.Fatalf("expected max top 0, got %d", got)
	}
}

func TestBuildDetailHeader(t *testing.T) {
	th := tuitheme.Default()
	post := store.Post{
		Title:     "Header Test",
		URL:       "https://example.com/post",
		FeedTitle: "Example Feed",
		Published: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	lines := BuildDetailHeader(post, 80, th)
	joined := reANSICodes.ReplaceAllString(strings.Join(lines, "\n"), "")

	for _, want := range []string{"Header Test", "Example Feed", "https://example.com/post", "Sun, 01 Mar 2026"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in header, got %q", want, joined)
		}
	}
	if lines[len(lines)-1] != "" {
		t.Fatal("expected blank separator line at end of header")
	}
}
