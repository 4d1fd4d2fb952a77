package tui

import "fmt"

// ActionKind identifies what a pending confirmation would delete.
type ActionKind int

const (
	ActionDeletePost ActionKind = iota
	ActionDeleteFeed
	ActionDeleteCategory
)

// PendingAction is a destructive action awaiting confirmation.
type PendingAction struct {
	Kind     ActionKind
	PostID   int64
	FeedID   int64
	Category string
	Label    string
}

// Confirm gates destructive actions. While an action is pending, only
// yes/no/escape are accepted; everything else is swallowed so a stray
// keystroke cannot delete anything.
type Confirm struct {
	pending *PendingAction
}

func (c *Confirm) Pending() bool {
	return c.pending != nil
}

func (c *Confirm) Request(action PendingAction) {
	c.pending = &action
}

// Resolve consumes a key while a confirmation is pending. It returns
// the action to execute when the key affirms it, and handled=true for
// every key, affirming or not: pending-state input never reaches the
// normal key map.
func (c *Confirm) Resolve(key string) (action *PendingAction, handled bool) {
	if c.pending == nil {
		return nil, false
	}
	switch key {
	case "y", "Y":
		action = c.pending
		c.pending = nil
		return action, true
	case "n", "N", "esc":
		c.pending = nil
		return nil, true
	default:
		return nil, true
	}
}

// Prompt is the confirmation question for the status line.
func (c *Confirm) Prompt() string {
	if c.pending == nil {
		return ""
	}
	return fmt.Sprintf("Delete %s? (y/n)", c.pending.Label)
}
