// Package refresh runs background feed fetches and reports their
// completion back to the interactive loop over a bounded queue.
//
// Tasks never touch view or navigation state: they write fetched
// entries to the store and send one Completion per request. The
// interactive loop is the queue's only consumer and decides what, if
// anything, to re-materialize.
package refresh

import (
	"context"
	"time"

	"github.com/glabrego/newsdeck/internal/feed"
	"github.com/glabrego/newsdeck/internal/nav"
	"github.com/glabrego/newsdeck/internal/store"
)

const (
	// fetchTimeout bounds each individual feed fetch, turning a hung
	// source into a per-feed failure.
	fetchTimeout = 10 * time.Second

	// completionQueueSize bounds the completion channel.
	completionQueueSize = 10
)

// Fetcher retrieves and parses one feed URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]feed.Entry, error)
}

// Store is the slice of the persistence layer refresh tasks touch.
type Store interface {
	ListFeeds(ctx context.Context) ([]store.Feed, error)
	ListFeedsByCategory(ctx context.Context, category string) ([]store.Feed, error)
	InsertPostIfAbsent(ctx context.Context, feedID int64, title, url, content string, published time.Time) error
}

// Completion reports that one refresh request finished. FailedFeeds
// counts sources that errored mid-batch; Failed marks a task that
// could not run at all because the feed snapshot failed. The consumer
// needs the distinction: a failed task must not count as a successful
// refresh, while an empty clean one does.
type Completion struct {
	Node        nav.NavNode
	Entries     int
	FailedFeeds int
	Failed      bool
}

// Coordinator launches one goroutine per refresh request. Requests for
// the same node are not deduplicated: a redundant task just re-applies
// idempotent inserts. Once launched, a task runs to completion; there
// is no cancellation.
type Coordinator struct {
	store       Store
	fetcher     Fetcher
	completions chan Completion
}

func NewCoordinator(st Store, fetcher Fetcher) *Coordinator {
	return &Coordinator{
		store:       st,
		fetcher:     fetcher,
		completions: make(chan Completion, completionQueueSize),
	}
}

// Completions is the single-consumer completion queue. The interactive
// loop must receive from it alongside input events.
func (c *Coordinator) Completions() <-chan Completion {
	return c.completions
}

// Request launches a background refresh for a node. A category node
// refreshes that category's feeds; any smart view refreshes the whole
// library.
func (c *Coordinator) Request(node nav.NavNode) {
	go c.run(node)
}

func (c *Coordinator) run(node nav.NavNode) {
	ctx := context.Background()

	// Snapshot the feed list at launch; mid-flight subscription
	// changes are picked up by the next request.
	feeds, err := c.snapshotFeeds(ctx, node)
	if err != nil {
		c.completions <- Completion{Node: node, Failed: true}
		return
	}

	done := Completion{Node: node}
	for _, f := range feeds {
		fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		entries, err := c.fetcher.Fetch(fetchCtx, f.URL)
		cancel()
		if err != nil {
			done.FailedFeeds++
			continue
		}

		for _, entry := range entries {
			if entry.Link == "" {
				continue
			}
			if err := c.store.InsertPostIfAbsent(ctx, f.ID, entry.Title, entry.Link, entry.Content, entry.Published); err != nil {
				continue
			}
			done.Entries++
		}
	}

	c.completions <- done
}

func (c *Coordinator) snapshotFeeds(ctx context.Context, node nav.NavNode) ([]store.Feed, error) {
	if node.IsCategory() {
		return c.store.ListFeedsByCategory(ctx, node.Category)
	}
	return c.store.ListFeeds(ctx)
}
