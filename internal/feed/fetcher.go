// Package feed fetches and parses RSS/Atom sources into plain entries.
package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
)

// Entry is one parsed feed item. Published is the zero time when the
// source carried neither a published nor an updated timestamp.
type Entry struct {
	Title     string
	Link      string
	Content   string
	Published time.Time
}

// Fetcher wraps a gofeed parser. Safe for use from a single goroutine;
// the refresh coordinator visits feeds sequentially within a task.
type Fetcher struct {
	parser *gofeed.Parser
}

func NewFetcher() *Fetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = "newsdeck/0.1"
	return &Fetcher{parser: parser}
}

// Fetch retrieves and parses the feed at url. The caller bounds the
// request with ctx; a timeout surfaces as an ordinary error.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]Entry, error) {
	_, entries, err := f.FetchFeed(ctx, url)
	return entries, err
}

// FetchFeed is Fetch plus the feed's own title, for subscribing.
func (f *Fetcher) FetchFeed(ctx context.Context, url string) (string, []Entry, error) {
	parsed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return "", nil, fmt.Errorf("fetch feed %s: %w", url, err)
	}
	return parsed.Title, convertItems(parsed.Items), nil
}

// Parse parses feed content from a string, for tests and offline use.
func (f *Fetcher) Parse(content string) ([]Entry, error) {
	parsed, err := f.parser.ParseString(content)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return convertItems(parsed.Items), nil
}

func convertItems(items []*gofeed.Item) []Entry {
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, convertItem(item))
	}
	return entries
}

func convertItem(item *gofeed.Item) Entry {
	entry := Entry{
		Title: item.Title,
		Link:  item.Link,
	}

	// Full content when present, summary otherwise.
	if item.Content != "" {
		entry.Content = item.Content
	} else {
		entry.Content = item.Description
	}

	// Published wins over updated; neither leaves the zero time.
	if item.PublishedParsed != nil {
		entry.Published = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		entry.Published = item.UpdatedParsed.UTC()
	}

	return entry
}
