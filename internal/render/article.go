// Package render turns post bodies into terminal-displayable text.
package render

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// Renderer converts HTML post content to markdown-flavored plain text
// and wraps it to a column width.
type Renderer struct {
	converter *md.Converter
}

func NewRenderer() *Renderer {
	return &Renderer{converter: md.NewConverter("", true, nil)}
}

// Article renders body for display. Non-HTML bodies pass through
// unharmed; the converter leaves plain text alone.
func (r *Renderer) Article(body string, width int) ([]string, error) {
	text, err := r.converter.ConvertString(body)
	if err != nil {
		return nil, fmt.Errorf("convert article body: %w", err)
	}
	return WrapLines(text, width), nil
}

// WrapLines splits text into lines no wider than width runes, breaking
// on spaces. Words longer than the width are hard-split.
func WrapLines(text string, width int) []string {
	if width < 1 {
		width = 1
	}

	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			out = append(out, "")
			continue
		}
		out = append(out, wrapLine(line, width)...)
	}
	return out
}

func wrapLine(line string, width int) []string {
	var out []string
	var current strings.Builder
	currentLen := 0

	for _, word := range strings.Fields(line) {
		runes := []rune(word)
		for len(runes) > width {
			if currentLen > 0 {
				out = append(out, current.String())
				current.Reset()
				currentLen = 0
			}
			out = append(out, string(runes[:width]))
			runes = runes[width:]
		}
		word = string(runes)

		wordLen := len(runes)
		switch {
		case currentLen == 0:
			current.WriteString(word)
			currentLen = wordLen
		case currentLen+1+wordLen <= width:
			current.WriteByte(' ')
			current.WriteString(word)
			currentLen += 1 + wordLen
		default:
			out = append(out, current.String())
			current.Reset()
			current.WriteString(word)
			currentLen = wordLen
		}
	}
	if currentLen > 0 {
		out = append(out, current.String())
	}
	return out
}
