// Package opml imports and exports feed subscriptions as OPML.
package opml

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/glabrego/newsdeck/internal/store"
)

type document struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    head     `xml:"head"`
	Body    body     `xml:"body"`
}

type head struct {
	Title       string `xml:"title,omitempty"`
	DateCreated string `xml:"dateCreated,omitempty"`
}

type body struct {
	Outlines []outline `xml:"outline"`
}

type outline struct {
	Text     string    `xml:"text,attr,omitempty"`
	Title    string    `xml:"title,attr,omitempty"`
	Type     string    `xml:"type,attr,omitempty"`
	XMLUrl   string    `xml:"xmlUrl,attr,omitempty"`
	Category string    `xml:"category,attr,omitempty"`
	Outlines []outline `xml:"outline,omitempty"`
}

// Parse extracts feeds from an OPML document. Outline groups become
// categories for the feeds nested under them.
func Parse(r io.Reader) ([]store.Feed, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse opml: %w", err)
	}
	return extractFeeds(doc.Body.Outlines, ""), nil
}

func extractFeeds(outlines []outline, parentCategory string) []store.Feed {
	var feeds []store.Feed
	for _, o := range outlines {
		if o.XMLUrl != "" {
			f := store.Feed{URL: o.XMLUrl, Title: o.Title}
			if f.Title == "" {
				f.Title = o.Text
			}
			switch {
			case o.Category != "":
				f.Category = o.Category
			case parentCategory != "":
				f.Category = parentCategory
			default:
				f.Category = store.GeneralCategory
			}
			feeds = append(feeds, f)
		}

		if len(o.Outlines) > 0 {
			group := o.Text
			if group == "" {
				group = parentCategory
			}
			feeds = append(feeds, extractFeeds(o.Outlines, group)...)
		}
	}
	return feeds
}

// Generate writes feeds as OPML 2.0, grouped by category.
func Generate(w io.Writer, feeds []store.Feed) error {
	byCategory := make(map[string][]store.Feed)
	for _, f := range feeds {
		category := f.Category
		if category == "" {
			category = store.GeneralCategory
		}
		byCategory[category] = append(byCategory[category], f)
	}

	categories := make([]string, 0, len(byCategory))
	for name := range byCategory {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	doc := document{
		Version: "2.0",
		Head: head{
			Title:       "newsdeck subscriptions",
			DateCreated: time.Now().Format(time.RFC1123),
		},
	}
	for _, category := range categories {
		group := outline{Text: category, Title: category}
		for _, f := range byCategory[category] {
			group.Outlines = append(group.Outlines, outline{
				Type:     "rss",
				Text:     f.Title,
				Title:    f.Title,
				XMLUrl:   f.URL,
				Category: f.Category,
			})
		}
		doc.Body.Outlines = append(doc.Body.Outlines, group)
	}

	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return fmt.Errorf("write xml header: %w", err)
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("encode opml: %w", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write trailing newline: %w", err)
	}
	return nil
}
