package workflow

import (
	"fmt"
	"sync"

	"github.com/Veraticus/proposal-desk/internal/model"
)

// Tab identifies a desk tab: one per proposal type plus the history tab.
type Tab string

// TabHistory is the read-only history tab. It is never locked.
const TabHistory Tab = "historico"

// TabFor returns the tab hosting proposals of type t.
func TabFor(t model.ProposalType) Tab {
	return Tab(t)
}

// TabLock guarantees at most one proposal type is in progress at a time.
// The lock is advisory and process-local.
type TabLock struct {
	holder model.ProposalType
	mu     sync.Mutex
}

// NewTabLock creates an unheld lock.
func NewTabLock() *TabLock {
	return &TabLock{}
}

// Acquire takes the lock for t. Re-acquiring by the holder is a no-op.
func (l *TabLock) Acquire(t model.ProposalType) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.holder != "" && l.holder != t {
		return fmt.Errorf("%w: %s", ErrTabLocked, l.holder.DisplayName())
	}
	l.holder = t
	return nil
}

// Release frees the lock if t holds it.
func (l *TabLock) Release(t model.ProposalType) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.holder == t {
		l.holder = ""
	}
}

// Holder returns the type holding the lock.
func (l *TabLock) Holder() (model.ProposalType, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holder, l.holder != ""
}

// Available reports whether t could acquire the lock now.
func (l *TabLock) Available(t model.ProposalType) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holder == "" || l.holder == t
}

// TabEnabled reports whether tab can be selected.
func (l *TabLock) TabEnabled(tab Tab) bool {
	if tab == TabHistory {
		return true
	}
	return l.Available(model.ProposalType(tab))
}
