// Package workflow drives a proposal from number entry to persisted decision.
//
// A Controller exists per proposal type. Its methods are synchronous and are
// meant to be called from a single goroutine; I/O (duplicate lookups, catalog
// fetches, persistence) happens outside and is fed back through ApplyLookup,
// ApplyFilter and FinishConclude.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/proposal-desk/internal/checklist"
	"github.com/Veraticus/proposal-desk/internal/common"
	"github.com/Veraticus/proposal-desk/internal/contract"
	"github.com/Veraticus/proposal-desk/internal/decision"
	"github.com/Veraticus/proposal-desk/internal/duration"
	"github.com/Veraticus/proposal-desk/internal/filters"
	"github.com/Veraticus/proposal-desk/internal/model"
)

// State is the lifecycle state of a controller.
type State int

// Lifecycle states. There is no terminal state: a concluded proposal returns to Idle.
const (
	StateIdle State = iota
	StateNumberPending
	StateDuplicateCheck
	StateInProgress
	StateConcluding
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateNumberPending:
		return "number_pending"
	case StateDuplicateCheck:
		return "duplicate_check"
	case StateInProgress:
		return "in_progress"
	case StateConcluding:
		return "concluding"
	}
	return "unknown"
}

// Outcome tells the caller what to do after an input.
type Outcome int

// Outcomes of number edits and duplicate choices.
const (
	// OutcomeNone requires no follow-up.
	OutcomeNone Outcome = iota
	// OutcomeLookup asks the caller to run a duplicate lookup for PendingNumber.
	OutcomeLookup
	// OutcomeDuplicate means the number exists and a choice must be made.
	OutcomeDuplicate
	// OutcomeStarted means the proposal entered review; regions should be loaded.
	OutcomeStarted
	// OutcomeCleared means the proposal was discarded.
	OutcomeCleared
)

// Config configures a controller.
type Config struct {
	Clock     func() time.Time
	Matcher   *contract.Matcher
	Lock      *TabLock
	Type      model.ProposalType
	Analyst   string
	Checklist []checklist.Item
}

// Controller is the lifecycle state machine of one proposal type.
type Controller struct {
	createdAt     time.Time
	matcher       *contract.Matcher
	lock          *TabLock
	checklist     *checklist.Tracker
	timer         *duration.Tracker
	existing      *model.Record
	lastErr       error
	typ           model.ProposalType
	analyst       string
	number        string
	pendingNumber string
	extra         model.ExtraFields
	chain         filters.Chain
	gate          decision.Gate
	state         State
	validity      contract.Validity
	filterTicket  uint64
	reanalysis    bool
}

// NewController creates an idle controller.
func NewController(cfg Config) (*Controller, error) {
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, cfg.Type)
	}
	if cfg.Matcher == nil {
		cfg.Matcher = contract.MustDefaultMatcher()
	}
	if cfg.Lock == nil {
		cfg.Lock = NewTabLock()
	}
	if cfg.Checklist == nil {
		cfg.Checklist = checklist.DefaultDefinitions()[cfg.Type]
	}

	return &Controller{
		typ:       cfg.Type,
		analyst:   cfg.Analyst,
		matcher:   cfg.Matcher,
		lock:      cfg.Lock,
		checklist: checklist.NewTracker(cfg.Checklist),
		timer:     duration.NewTracker(cfg.Clock),
		chain:     filters.New(),
	}, nil
}

// Type returns the proposal type of the controller.
func (c *Controller) Type() model.ProposalType { return c.typ }

// State returns the lifecycle state.
func (c *Controller) State() State { return c.state }

// Number returns the number field text.
func (c *Controller) Number() string { return c.number }

// Validity is the inline signal for the number field.
func (c *Controller) Validity() contract.Validity { return c.validity }

// PendingNumber is the number awaiting a duplicate lookup or choice.
func (c *Controller) PendingNumber() string { return c.pendingNumber }

// Existing is the previously stored record while a duplicate choice is pending.
func (c *Controller) Existing() *model.Record { return c.existing }

// Reanalysis reports whether the proposal in progress is a reanalysis.
func (c *Controller) Reanalysis() bool { return c.reanalysis }

// Chain returns the filter cascade.
func (c *Controller) Chain() filters.Chain { return c.chain }

// Checklist returns the checklist tracker. Mutate it through ToggleItem.
func (c *Controller) Checklist() *checklist.Tracker { return c.checklist }

// Extra returns the free-form fields.
func (c *Controller) Extra() model.ExtraFields { return c.extra }

// Gate returns the current decision enablement.
func (c *Controller) Gate() decision.Gate { return c.gate }

// LastError is the error of the last failed conclusion, if any.
func (c *Controller) LastError() error { return c.lastErr }

// CreatedAt is when the proposal entered review.
func (c *Controller) CreatedAt() time.Time { return c.createdAt }

// Elapsed is the ticking timer text.
func (c *Controller) Elapsed() string { return c.timer.Display() }

// Timing reports whether the elapsed-time display should keep ticking.
func (c *Controller) Timing() bool { return c.timer.Running() }

// TickGeneration identifies the current timer session.
func (c *Controller) TickGeneration() uint64 { return c.timer.Generation() }

// InputsEnabled reports whether filters, checklist and extra fields accept input.
func (c *Controller) InputsEnabled() bool { return c.state == StateInProgress }

// EditNumber handles every change of the number field.
func (c *Controller) EditNumber(raw string) (Outcome, error) {
	validity := c.matcher.Match(raw, c.typ)
	trimmed := strings.TrimSpace(raw)

	switch c.state {
	case StateConcluding:
		return OutcomeNone, ErrConcluding

	case StateDuplicateCheck:
		return OutcomeNone, ErrAwaitingChoice

	case StateInProgress:
		if trimmed == strings.TrimSpace(c.number) {
			c.number = raw
			return OutcomeNone, nil
		}
		if validity == contract.Complete {
			return OutcomeNone, ErrNumberLocked
		}
		c.reset()
		c.setNumber(raw, validity)
		return OutcomeCleared, nil
	}

	c.setNumber(raw, validity)
	c.pendingNumber = ""
	if validity != contract.Complete {
		return OutcomeNone, nil
	}
	if !c.lock.Available(c.typ) {
		holder, _ := c.lock.Holder()
		return OutcomeNone, fmt.Errorf("%w: %s", ErrTabLocked, holder.DisplayName())
	}

	c.pendingNumber = trimmed
	if c.typ.ChecksDuplicates() {
		return OutcomeLookup, nil
	}
	if err := c.start(false); err != nil {
		return OutcomeNone, err
	}
	return OutcomeStarted, nil
}

func (c *Controller) setNumber(raw string, validity contract.Validity) {
	c.number = raw
	c.validity = validity
	if validity == contract.Untouched {
		c.state = StateIdle
	} else {
		c.state = StateNumberPending
	}
}

// ApplyLookup feeds the duplicate lookup result back. Results for a number
// that is no longer pending are ignored.
func (c *Controller) ApplyLookup(res Resolution) (Outcome, error) {
	if c.state != StateNumberPending || res.Number != c.pendingNumber || c.pendingNumber == "" {
		return OutcomeNone, nil
	}
	if res.Existing != nil {
		c.existing = res.Existing
		c.state = StateDuplicateCheck
		return OutcomeDuplicate, nil
	}
	if err := c.start(false); err != nil {
		return OutcomeNone, err
	}
	return OutcomeStarted, nil
}

// ChooseReanalyze starts the pending number as a reanalysis.
func (c *Controller) ChooseReanalyze() (Outcome, error) {
	if c.state != StateDuplicateCheck {
		return OutcomeNone, ErrNoDuplicate
	}
	if err := c.start(true); err != nil {
		return OutcomeNone, err
	}
	return OutcomeStarted, nil
}

// ChooseDifferentNumber empties the number field so another can be typed.
func (c *Controller) ChooseDifferentNumber() (Outcome, error) {
	if c.state != StateDuplicateCheck {
		return OutcomeNone, ErrNoDuplicate
	}
	c.reset()
	return OutcomeCleared, nil
}

// ChooseCancel abandons the pending number.
func (c *Controller) ChooseCancel() (Outcome, error) {
	if c.state != StateDuplicateCheck {
		return OutcomeNone, ErrNoDuplicate
	}
	c.reset()
	return OutcomeCleared, nil
}

func (c *Controller) start(reanalysis bool) error {
	if err := c.lock.Acquire(c.typ); err != nil {
		return err
	}

	c.state = StateInProgress
	c.reanalysis = reanalysis
	c.existing = nil
	c.lastErr = nil
	c.createdAt = c.timer.Start()
	c.checklist.Reset()
	c.checklist.Enable()
	c.chain, _ = filters.Apply(filters.New(), filters.NumberCompleted{})
	c.extra = model.ExtraFields{}
	c.reevaluate()

	common.LogInfo("Proposal started", common.Fields{
		"number":     c.pendingNumber,
		"type":       string(c.typ),
		"reanalysis": reanalysis,
	})
	return nil
}

// RequestFilter opens a catalog load for the filter chain and returns its
// ticket. Only the answer carrying the latest ticket is applied.
func (c *Controller) RequestFilter() uint64 {
	c.filterTicket++
	return c.filterTicket
}

// FilterCurrent reports whether ticket belongs to the latest catalog load.
func (c *Controller) FilterCurrent(ticket uint64) bool {
	return ticket == c.filterTicket
}

// ApplyFilter feeds the catalog answer for ticket into the chain. Answers to
// superseded loads return ErrStaleFilter and leave the chain untouched.
func (c *Controller) ApplyFilter(ticket uint64, ev filters.Event) error {
	if err := c.requireInProgress(); err != nil {
		return err
	}
	if !c.FilterCurrent(ticket) {
		return ErrStaleFilter
	}
	return c.applyFilter(ev)
}

func (c *Controller) applyFilter(ev filters.Event) error {
	next, err := filters.Apply(c.chain, ev)
	if err != nil {
		return err
	}
	c.chain = next
	c.reevaluate()
	return nil
}

// ToggleItem flips a checklist item.
func (c *Controller) ToggleItem(key string) (bool, error) {
	if err := c.requireInProgress(); err != nil {
		return false, err
	}
	checked, err := c.checklist.Toggle(key)
	if err != nil {
		return false, err
	}
	c.reevaluate()
	return checked, nil
}

// SetExtraFields replaces the free-form fields. The CPF is normalised to its display mask.
func (c *Controller) SetExtraFields(extra model.ExtraFields) error {
	if err := c.requireInProgress(); err != nil {
		return err
	}
	extra.CPF = common.FormatCPF(extra.CPF)
	c.extra = extra
	c.reevaluate()
	return nil
}

// MissingFields lists the mandatory fields still blocking a decision.
func (c *Controller) MissingFields() []decision.Field {
	return decision.MissingFields(c.gateInput())
}

func (c *Controller) gateInput() decision.Input {
	return decision.Input{
		Type:              c.typ,
		Troco:             c.extra.TrocoAmount,
		Filters:           c.chain.Selection(),
		ChecklistComplete: c.checklist.AllComplete(),
	}
}

func (c *Controller) reevaluate() {
	if c.state != StateInProgress {
		c.gate = decision.Gate{}
		return
	}
	c.gate = decision.Evaluate(c.gateInput())
}

// Precheck runs the conclusion checks without changing state. The UI calls it
// before opening the rejection reason picker.
func (c *Controller) Precheck(approve bool) error {
	if err := c.requireInProgress(); err != nil {
		return err
	}
	if !c.matcher.IsComplete(c.number, c.typ) {
		return common.NewUserError(c.matcher.InvalidNumberMessage(c.typ), ErrInvalidNumber)
	}
	return decision.Check(c.gateInput(), approve)
}

// BeginApprove re-validates the proposal and returns the submission to persist.
func (c *Controller) BeginApprove() (model.Submission, error) {
	return c.begin(model.StatusApproved, nil)
}

// BeginReject re-validates the proposal with the given reason code and returns
// the submission to persist.
func (c *Controller) BeginReject(reasonCode string) (model.Submission, error) {
	reason, err := decision.LookupReason(reasonCode)
	if err != nil {
		return model.Submission{}, err
	}
	return c.begin(model.StatusRejected, &reason)
}

func (c *Controller) begin(status model.Status, reason *model.RejectionReason) (model.Submission, error) {
	if err := c.Precheck(status == model.StatusApproved); err != nil {
		return model.Submission{}, err
	}

	concludedAt, elapsed := c.timer.Snapshot()
	c.state = StateConcluding
	c.gate = decision.Gate{}

	return model.Submission{
		CreatedAt:   c.createdAt,
		ConcludedAt: concludedAt,
		Checklist:   c.checklist.Snapshot(),
		Number:      strings.TrimSpace(c.number),
		Analyst:     c.analyst,
		Duration:    elapsed,
		Status:      status,
		Type:        c.typ,
		Reanalysis:  c.reanalysis,
		Filters:     model.NewFilterData(c.typ, c.chain.Selection(), c.extra, reason),
	}, nil
}

// FinishConclude applies the persistence result. On failure the proposal stays
// in progress with its state intact.
func (c *Controller) FinishConclude(err error) error {
	if c.state != StateConcluding {
		return ErrNotConcluding
	}
	if err != nil {
		c.state = StateInProgress
		c.lastErr = err
		c.reevaluate()
		return common.NewUserError("Erro ao salvar a proposta", err)
	}

	common.LogInfo("Proposal concluded", common.Fields{
		"number": strings.TrimSpace(c.number),
		"type":   string(c.typ),
	})
	c.reset()
	return nil
}

// Clear discards everything and releases the tab lock. It is idempotent and
// has no effect while a conclusion is being persisted.
func (c *Controller) Clear() {
	if c.state == StateConcluding {
		return
	}
	c.reset()
}

func (c *Controller) reset() {
	c.lock.Release(c.typ)
	c.filterTicket++
	c.timer.Stop()
	c.checklist.Reset()
	c.chain = filters.New()
	c.gate = decision.Gate{}
	c.extra = model.ExtraFields{}
	c.existing = nil
	c.lastErr = nil
	c.reanalysis = false
	c.createdAt = time.Time{}
	c.number = ""
	c.pendingNumber = ""
	c.validity = contract.Untouched
	c.state = StateIdle
}

func (c *Controller) requireInProgress() error {
	switch c.state {
	case StateInProgress:
		return nil
	case StateConcluding:
		return ErrConcluding
	}
	return ErrNotInProgress
}
