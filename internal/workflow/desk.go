package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/proposal-desk/internal/checklist"
	"github.com/Veraticus/proposal-desk/internal/common"
	"github.com/Veraticus/proposal-desk/internal/contract"
	"github.com/Veraticus/proposal-desk/internal/filters"
	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/Veraticus/proposal-desk/internal/service"
)

// DeskConfig wires the desk to its collaborators.
type DeskConfig struct {
	Store      service.ProposalStore
	Catalog    service.Catalog
	Clock      func() time.Time
	Matcher    *contract.Matcher
	Checklists checklist.Definitions
	Analyst    string
}

// Desk holds one controller per proposal type, sharing a single tab lock.
type Desk struct {
	controllers map[model.ProposalType]*Controller
	lock        *TabLock
	resolver    *Resolver
	loader      *filters.Loader
	store       service.ProposalStore
}

// NewDesk builds every controller eagerly.
func NewDesk(cfg DeskConfig) (*Desk, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("%w: desk requires a proposal store", common.ErrMissingConfig)
	}
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("%w: desk requires a catalog", common.ErrMissingConfig)
	}
	if cfg.Matcher == nil {
		cfg.Matcher = contract.MustDefaultMatcher()
	}
	defs := checklist.DefaultDefinitions().Merge(cfg.Checklists)
	if err := defs.Validate(); err != nil {
		return nil, err
	}

	d := &Desk{
		controllers: make(map[model.ProposalType]*Controller),
		lock:        NewTabLock(),
		resolver:    NewResolver(cfg.Store),
		loader:      filters.NewLoader(cfg.Catalog),
		store:       cfg.Store,
	}

	for _, t := range model.AllProposalTypes() {
		c, err := NewController(Config{
			Type:      t,
			Analyst:   cfg.Analyst,
			Matcher:   cfg.Matcher,
			Lock:      d.lock,
			Checklist: defs[t],
			Clock:     cfg.Clock,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build %s controller: %w", t, err)
		}
		d.controllers[t] = c
	}

	return d, nil
}

// Controller returns the controller of type t.
func (d *Desk) Controller(t model.ProposalType) (*Controller, error) {
	c, ok := d.controllers[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return c, nil
}

// Lock returns the shared tab lock.
func (d *Desk) Lock() *TabLock { return d.lock }

// Loader returns the catalog loader used to feed filter events.
func (d *Desk) Loader() *filters.Loader { return d.loader }

// Active returns the controller currently holding the tab lock.
func (d *Desk) Active() (*Controller, bool) {
	t, ok := d.lock.Holder()
	if !ok {
		return nil, false
	}
	return d.controllers[t], true
}

// Resolve runs the duplicate check for number without touching any controller,
// so it may run off the UI loop.
func (d *Desk) Resolve(ctx context.Context, t model.ProposalType, number string) Resolution {
	return d.resolver.Check(ctx, t, number)
}

// Persist writes a submission. It blocks on the store.
func (d *Desk) Persist(ctx context.Context, sub model.Submission) (*model.Record, error) {
	return d.store.CreateAndFinalize(ctx, sub)
}

// History lists stored records matching filter, newest first.
func (d *Desk) History(ctx context.Context, filter service.RecordFilter) ([]model.Record, error) {
	return d.store.ListWithFilters(ctx, filter)
}
