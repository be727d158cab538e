// Package checklist tracks the ordered review tasks of a proposal.
package checklist

import (
	"errors"
	"fmt"
)

// Errors returned by the tracker.
var (
	ErrUnknownItem       = errors.New("unknown checklist item")
	ErrDisabled          = errors.New("checklist is disabled")
	ErrInvalidDefinition = errors.New("invalid checklist definition")
)

// Tracker holds the checked state of one proposal's checklist.
// Items start disabled and unchecked.
type Tracker struct {
	checked map[string]bool
	items   []Item
	enabled bool
}

// NewTracker creates a tracker over items in display order.
func NewTracker(items []Item) *Tracker {
	t := &Tracker{
		items:   append([]Item(nil), items...),
		checked: make(map[string]bool, len(items)),
	}
	for _, item := range items {
		t.checked[item.Key] = false
	}
	return t
}

// Items returns the items in display order.
func (t *Tracker) Items() []Item {
	return append([]Item(nil), t.items...)
}

// Enabled reports whether items may be toggled.
func (t *Tracker) Enabled() bool {
	return t.enabled
}

// Enable allows toggling.
func (t *Tracker) Enable() {
	t.enabled = true
}

// Reset unchecks every item and disables the tracker.
func (t *Tracker) Reset() {
	for key := range t.checked {
		t.checked[key] = false
	}
	t.enabled = false
}

// Toggle flips the item with the given key and returns its new state.
func (t *Tracker) Toggle(key string) (bool, error) {
	if !t.enabled {
		return false, ErrDisabled
	}
	current, ok := t.checked[key]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownItem, key)
	}
	t.checked[key] = !current
	return !current, nil
}

// IsChecked reports whether the item is checked. Unknown keys are unchecked.
func (t *Tracker) IsChecked(key string) bool {
	return t.checked[key]
}

// AllComplete is true only when every item is checked.
func (t *Tracker) AllComplete() bool {
	if len(t.items) == 0 {
		return false
	}
	for _, done := range t.checked {
		if !done {
			return false
		}
	}
	return true
}

// Progress returns the number of checked items and the total.
func (t *Tracker) Progress() (done, total int) {
	for _, c := range t.checked {
		if c {
			done++
		}
	}
	return done, len(t.items)
}

// Snapshot returns a copy of the checked state keyed by item key.
func (t *Tracker) Snapshot() map[string]bool {
	out := make(map[string]bool, len(t.checked))
	for k, v := range t.checked {
		out[k] = v
	}
	return out
}
