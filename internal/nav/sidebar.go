package nav

import (
	"context"
	"time"

	"github.com/glabrego/newsdeck/internal/store"
)

// Section identifies which half of the sidebar the cursor is in.
type Section int

const (
	SectionSmartViews Section = iota
	SectionCategories
)

// Store is the slice of the persistence layer the sidebar reads.
type Store interface {
	ListCategories(ctx context.Context) ([]string, error)
	CountPosts(ctx context.Context, filter store.Filter) (int, error)
	CountPostsByCategory(ctx context.Context, category string) (int, error)
}

// Sidebar holds the navigable node list, the selection cursor, and the
// per-node aggregates. Counts are pull-based snapshots: Refresh must
// run after any mutation that could change them, before the next
// render.
type Sidebar struct {
	SmartViews    []SmartView
	Categories    []string
	Section       Section
	SmartIndex    int
	CategoryIndex int

	counts      map[NavNode]int
	lastFetched map[NavNode]time.Time
}

func NewSidebar() *Sidebar {
	return &Sidebar{
		SmartViews:  SmartViews(),
		counts:      make(map[NavNode]int),
		lastFetched: make(map[NavNode]time.Time),
	}
}

// SelectedNode returns the node under the cursor. An out-of-range
// category cursor falls back to Fresh rather than panicking.
func (s *Sidebar) SelectedNode() NavNode {
	switch s.Section {
	case SectionCategories:
		if s.CategoryIndex < len(s.Categories) {
			return CategoryNode(s.Categories[s.CategoryIndex])
		}
		return SmartNode(SmartFresh)
	default:
		return SmartNode(s.SmartViews[s.SmartIndex])
	}
}

// Next moves the cursor down. Past the last smart view it enters the
// category section at index 0; at the bottom of a section with no
// sibling to fall through to, it stays put.
func (s *Sidebar) Next() {
	switch s.Section {
	case SectionSmartViews:
		if s.SmartIndex < len(s.SmartViews)-1 {
			s.SmartIndex++
		} else if len(s.Categories) > 0 {
			s.Section = SectionCategories
			s.CategoryIndex = 0
		}
	case SectionCategories:
		if s.CategoryIndex < len(s.Categories)-1 {
			s.CategoryIndex++
		}
	}
}

// Previous moves the cursor up, re-entering the smart views at their
// last index when moving before the first category.
func (s *Sidebar) Previous() {
	switch s.Section {
	case SectionSmartViews:
		if s.SmartIndex > 0 {
			s.SmartIndex--
		}
	case SectionCategories:
		if s.CategoryIndex > 0 {
			s.CategoryIndex--
		} else {
			s.Section = SectionSmartViews
			s.SmartIndex = len(s.SmartViews) - 1
		}
	}
}

// Refresh reloads the category list and recomputes every node's count
// from the store. The count and staleness maps are rebuilt against the
// current node set, so nodes for deleted categories drop out.
func (s *Sidebar) Refresh(ctx context.Context, st Store) error {
	categories, err := st.ListCategories(ctx)
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		categories = []string{store.GeneralCategory}
	}
	s.Categories = categories
	if s.CategoryIndex >= len(s.Categories) {
		s.CategoryIndex = len(s.Categories) - 1
	}

	counts := make(map[NavNode]int, len(s.SmartViews)+len(categories))

	smartFilters := map[SmartView]store.Filter{
		SmartFresh:     {OnlyUnread: true},
		SmartStarred:   {OnlyBookmarked: true},
		SmartReadLater: {OnlyReadLater: true},
		SmartArchived:  {OnlyArchived: true},
	}
	for view, filter := range smartFilters {
		n, err := st.CountPosts(ctx, filter)
		if err != nil {
			return err
		}
		counts[SmartNode(view)] = n
	}

	for _, category := range categories {
		n, err := st.CountPostsByCategory(ctx, category)
		if err != nil {
			return err
		}
		counts[CategoryNode(category)] = n
	}
	s.counts = counts

	for node := range s.lastFetched {
		if _, ok := counts[node]; !ok {
			delete(s.lastFetched, node)
		}
	}
	return nil
}

func (s *Sidebar) Count(node NavNode) int {
	return s.counts[node]
}

// MarkFetched records now as the node's last successful refresh. Only
// staleness queries read this; counts do not depend on it.
func (s *Sidebar) MarkFetched(node NavNode, now time.Time) {
	s.lastFetched[node] = now
}

// IsStale reports whether the node has never been refreshed or was last
// refreshed longer than maxAge ago.
func (s *Sidebar) IsStale(node NavNode, now time.Time, maxAge time.Duration) bool {
	fetched, ok := s.lastFetched[node]
	if !ok {
		return true
	}
	return now.Sub(fetched) > maxAge
}
