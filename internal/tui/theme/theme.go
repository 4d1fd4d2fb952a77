package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/glabrego/newsdeck/internal/store"
)

type Theme struct {
	Title      lipgloss.Style
	Section    lipgloss.Style
	Badge      lipgloss.Style
	ActiveLine lipgloss.Style
	MetaLabel  lipgloss.Style
	MetaValue  lipgloss.Style
	Notice     lipgloss.Style
	Warn       lipgloss.Style

	TitleUnread  lipgloss.Style
	TitleStarred lipgloss.Style
	TitleRead    lipgloss.Style
	TitleBoth    lipgloss.Style
}

func Default() Theme {
	cpRosewater := lipgloss.Color("#f5e0dc")
	cpMauve := lipgloss.Color("#cba6f7")
	cpRed := lipgloss.Color("#f38ba8")
	cpYellow := lipgloss.Color("#f9e2af")
	cpTeal := lipgloss.Color("#94e2d5")
	cpGreen := lipgloss.Color("#a6e3a1")
	cpLavender := lipgloss.Color("#b4befe")
	cpText := lipgloss.Color("#cdd6f4")
	cpSubtext0 := lipgloss.Color("#a6adc8")
	cpSubtext1 := lipgloss.Color("#bac2de")
	cpOverlay1 := lipgloss.Color("#7f849c")
	cpSurface0 := lipgloss.Color("#313244")

	return Theme{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
		Section:    lipgloss.NewStyle().Bold(true).Foreground(cpTeal),
		Badge:      lipgloss.NewStyle().Foreground(cpYellow).Bold(true),
		ActiveLine: lipgloss.NewStyle().Background(cpSurface0).Foreground(cpText),
		MetaLabel:  lipgloss.NewStyle().Foreground(cpOverlay1),
		MetaValue:  lipgloss.NewStyle().Foreground(cpSubtext1),
		Notice:     lipgloss.NewStyle().Foreground(cpGreen),
		Warn:       lipgloss.NewStyle().Foreground(cpRed),

		TitleUnread:  lipgloss.NewStyle().Bold(true).Foreground(cpText),
		TitleStarred: lipgloss.NewStyle().Italic(true).Foreground(cpLavender),
		TitleRead:    lipgloss.NewStyle().Foreground(cpSubtext0),
		TitleBoth:    lipgloss.NewStyle().Bold(true).Italic(true).Foreground(cpRosewater),
	}
}

func (t Theme) StylePostTitle(post store.Post, title string) string {
	if title == "" {
		return title
	}
	switch {
	case !post.Read && post.Bookmarked:
		return t.TitleBoth.Render(title)
	case !post.Read:
		return t.TitleUnread.Render(title)
	case post.Bookmarked:
		return t.TitleStarred.Render(title)
	default:
		return t.TitleRead.Render(title)
	}
}

func (t Theme) RenderActiveLine(active bool, line string) string {
	if !active {
		return line
	}
	return t.ActiveLine.Render(line)
}
