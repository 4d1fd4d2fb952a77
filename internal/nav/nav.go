// Package nav defines the navigable node space: the four fixed smart
// views, the dynamic category list, and the sidebar cursor over both.
package nav

// SmartView is one of the fixed system-wide filtered views.
type SmartView string

const (
	SmartFresh     SmartView = "fresh"
	SmartStarred   SmartView = "starred"
	SmartReadLater SmartView = "read-later"
	SmartArchived  SmartView = "archived"
)

// SmartViews returns the smart views in sidebar order.
func SmartViews() []SmartView {
	return []SmartView{SmartFresh, SmartStarred, SmartReadLater, SmartArchived}
}

func (v SmartView) Title() string {
	switch v {
	case SmartFresh:
		return "Fresh"
	case SmartStarred:
		return "Starred"
	case SmartReadLater:
		return "Read Later"
	case SmartArchived:
		return "Archived"
	}
	return string(v)
}

// NavNode is a selectable navigation target: either a smart view or a
// named category. Exactly one field is set. The struct is comparable,
// so nodes key the count and staleness maps directly and two nodes are
// equal iff they name the same target.
type NavNode struct {
	Smart    SmartView
	Category string
}

func SmartNode(v SmartView) NavNode {
	return NavNode{Smart: v}
}

func CategoryNode(name string) NavNode {
	return NavNode{Category: name}
}

func (n NavNode) IsCategory() bool {
	return n.Category != ""
}

func (n NavNode) Title() string {
	if n.IsCategory() {
		return n.Category
	}
	return n.Smart.Title()
}
