package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/proposal-desk/internal/contract"
	"github.com/Veraticus/proposal-desk/internal/decision"
	"github.com/Veraticus/proposal-desk/internal/filters"
	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validNumber = "50-12345678900"

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

type harness struct {
	desk  *Desk
	store *mockStore
	clock *testClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store: newMockStore(),
		clock: &testClock{now: time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC)},
	}
	desk, err := NewDesk(DeskConfig{
		Store:   h.store,
		Catalog: mockCatalog{},
		Clock:   h.clock.Now,
		Analyst: "ana.souza",
	})
	require.NoError(t, err)
	h.desk = desk
	return h
}

func (h *harness) controller(t *testing.T, typ model.ProposalType) *Controller {
	t.Helper()
	c, err := h.desk.Controller(typ)
	require.NoError(t, err)
	return c
}

// lookup runs the duplicate check the way the UI does, off the controller.
func (h *harness) lookup(c *Controller) Resolution {
	return h.desk.Resolve(context.Background(), c.Type(), c.PendingNumber())
}

// apply feeds ev as the answer to a fresh catalog request.
func apply(t *testing.T, c *Controller, ev filters.Event) {
	t.Helper()
	require.NoError(t, c.ApplyFilter(c.RequestFilter(), ev))
}

// conclude persists sub and hands the result back to c.
func (h *harness) conclude(c *Controller, sub model.Submission) (*model.Record, error) {
	rec, err := h.desk.Persist(context.Background(), sub)
	if finishErr := c.FinishConclude(err); finishErr != nil {
		return nil, finishErr
	}
	return rec, nil
}

// begin types a valid number, runs the lookup when requested and loads regions.
func (h *harness) begin(t *testing.T, typ model.ProposalType, number string) *Controller {
	t.Helper()
	c := h.controller(t, typ)

	out, err := c.EditNumber(number)
	require.NoError(t, err)
	if out == OutcomeLookup {
		out, err = c.ApplyLookup(h.lookup(c))
		require.NoError(t, err)
	}
	require.Equal(t, OutcomeStarted, out)
	h.loadRegions(t, c)
	return c
}

func (h *harness) loadRegions(t *testing.T, c *Controller) {
	t.Helper()
	ev, err := h.desk.Loader().NumberCompleted(context.Background())
	require.NoError(t, err)
	apply(t, c, ev)
}

// fillFilters walks the cascade the way the UI does.
func (h *harness) fillFilters(t *testing.T, c *Controller) {
	t.Helper()
	ctx := context.Background()
	loader := h.desk.Loader()

	agreements, err := loader.RegionSelected(ctx, "Norte")
	require.NoError(t, err)
	apply(t, c, agreements)

	products, err := loader.AgreementSelected(ctx, "GOV-AM")
	require.NoError(t, err)
	apply(t, c, products)

	status, err := loader.ProductSelected(ctx, "GOV-AM", "Consignado")
	require.NoError(t, err)
	apply(t, c, status)
}

func checkAll(t *testing.T, c *Controller) {
	t.Helper()
	for _, item := range c.Checklist().Items() {
		checked, err := c.ToggleItem(item.Key)
		require.NoError(t, err)
		require.True(t, checked)
	}
}

func assertCleared(t *testing.T, h *harness, c *Controller) {
	t.Helper()
	assert.Equal(t, StateIdle, c.State())
	assert.Empty(t, c.Number())
	assert.Equal(t, contract.Untouched, c.Validity())
	assert.False(t, c.Chain().Region.Enabled)
	assert.False(t, c.Checklist().Enabled())
	assert.False(t, c.InputsEnabled())
	assert.Equal(t, decision.Gate{}, c.Gate())
	assert.Equal(t, model.ExtraFields{}, c.Extra())
	assert.False(t, c.Reanalysis())
	assert.Nil(t, c.Existing())
	_, held := h.desk.Lock().Holder()
	assert.False(t, held, "lock must be released")
}

func TestController_ApproveEnabledWhenEverythingFilled(t *testing.T) {
	h := newHarness(t)
	c := h.begin(t, model.TypeSaqueFacil, validNumber)

	assert.Equal(t, contract.Complete, c.Validity())
	assert.Equal(t, StateInProgress, c.State())
	assert.True(t, c.Chain().Region.Enabled)
	assert.Equal(t, []string{"Norte", "Sul"}, c.Chain().Region.Options)

	agreements, err := h.desk.Loader().RegionSelected(context.Background(), "Norte")
	require.NoError(t, err)
	apply(t, c, agreements)
	assert.Equal(t, []string{"GOV-AM", "GOV-PA"}, c.Chain().Agreement.Options)

	h.fillFilters(t, c)
	checkAll(t, c)

	assert.True(t, c.Gate().ApproveEnabled)
	assert.True(t, c.Gate().RejectEnabled)
}

func TestController_UncheckedItemBlocksApproveOnly(t *testing.T) {
	h := newHarness(t)
	c := h.begin(t, model.TypeSaqueFacil, validNumber)
	h.fillFilters(t, c)
	checkAll(t, c)

	_, err := c.ToggleItem("tarefa_5")
	require.NoError(t, err)

	assert.False(t, c.Gate().ApproveEnabled)
	assert.True(t, c.Gate().RejectEnabled)

	_, err = c.BeginApprove()
	require.ErrorIs(t, err, decision.ErrChecklistIncomplete)
	assert.Equal(t, StateInProgress, c.State())
}

func TestController_RefinNeedsNonZeroTroco(t *testing.T) {
	h := newHarness(t)
	c := h.begin(t, model.TypeRefin, validNumber)
	h.fillFilters(t, c)
	checkAll(t, c)

	for _, troco := range []string{"", "0,00"} {
		require.NoError(t, c.SetExtraFields(model.ExtraFields{TrocoAmount: troco}))
		assert.False(t, c.Gate().ApproveEnabled, "troco %q", troco)
		assert.False(t, c.Gate().RejectEnabled, "troco %q", troco)
		assert.Equal(t, []decision.Field{decision.FieldTroco}, c.MissingFields())
	}

	require.NoError(t, c.SetExtraFields(model.ExtraFields{TrocoAmount: "150,00"}))
	assert.True(t, c.Gate().ApproveEnabled)
	assert.True(t, c.Gate().RejectEnabled)
}

func TestController_DuplicateThenDifferentNumber(t *testing.T) {
	h := newHarness(t)
	h.store.existing[validNumber] = &model.Record{
		Number:    validNumber,
		Analyst:   "bruno",
		TypeLabel: "Saque Fácil",
		Status:    model.StatusApproved,
		Duration:  "00:12:00",
	}
	c := h.controller(t, model.TypeSaqueFacil)

	out, err := c.EditNumber(validNumber)
	require.NoError(t, err)
	require.Equal(t, OutcomeLookup, out)

	out, err = c.ApplyLookup(h.lookup(c))
	require.NoError(t, err)
	require.Equal(t, OutcomeDuplicate, out)
	assert.Equal(t, StateDuplicateCheck, c.State())
	assert.Contains(t, DuplicatePrompt(c.Existing()), "Analista: bruno")

	_, err = c.EditNumber("50-1")
	require.ErrorIs(t, err, ErrAwaitingChoice)

	out, err = c.ChooseDifferentNumber()
	require.NoError(t, err)
	assert.Equal(t, OutcomeCleared, out)
	assertCleared(t, h, c)
}

func TestController_RejectPersistsReasonAndResets(t *testing.T) {
	h := newHarness(t)
	c := h.begin(t, model.TypeSaqueDirecionado, validNumber)
	h.fillFilters(t, c)

	_, err := c.BeginReject("")
	require.ErrorIs(t, err, decision.ErrUnknownReason)
	_, err = c.BeginReject("999")
	require.ErrorIs(t, err, decision.ErrUnknownReason)
	assert.Equal(t, StateInProgress, c.State())

	h.clock.now = h.clock.now.Add(4*time.Minute + 2*time.Second)
	sub, err := c.BeginReject("101")
	require.NoError(t, err)
	assert.Equal(t, StateConcluding, c.State())
	assert.Equal(t, model.StatusRejected, sub.Status)
	assert.Equal(t, "101", sub.Filters.RejectionReasonID)
	assert.Equal(t, "MARGEM", sub.Filters.RejectionReasonDesc)
	assert.Equal(t, "101 - MARGEM", sub.Filters.RejectionType)
	assert.Equal(t, "00:04:02", sub.Duration)
	assert.Equal(t, "ana.souza", sub.Analyst)
	assert.Equal(t, "Saque Direcionado", sub.TypeLabel())

	rec, err := h.conclude(c, sub)
	require.NoError(t, err)
	assert.Equal(t, validNumber, rec.Number)
	assert.Equal(t, 1, h.store.createdCount())
	assertCleared(t, h, c)
}

func TestApprove_ProducesSubmission(t *testing.T) {
	h := newHarness(t)
	c := h.begin(t, model.TypeRefin, validNumber)
	h.fillFilters(t, c)
	checkAll(t, c)
	require.NoError(t, c.SetExtraFields(model.ExtraFields{
		CPF:            "12345678901",
		AmountReleased: "5.000,00",
		TermMonths:     "84",
		TrocoAmount:    "320,10",
	}))
	assert.Equal(t, "123.456.789-01", c.Extra().CPF)

	sub, err := c.BeginApprove()
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, sub.Status)
	assert.Equal(t, "320,10", sub.Filters.Troco)
	assert.Equal(t, model.CurrencyBRL, sub.Filters.TrocoCurrency)
	assert.Empty(t, sub.Filters.RejectionType)
	assert.Len(t, sub.Checklist, 8)
	assert.Equal(t, "GOV-AM", sub.Filters.Agreement)
	assert.Equal(t, "Ativo", sub.Filters.Status)

	// Inputs are frozen while concluding.
	_, err = c.ToggleItem("tarefa_1")
	require.ErrorIs(t, err, ErrConcluding)
	_, err = c.EditNumber("")
	require.ErrorIs(t, err, ErrConcluding)
	c.Clear()
	assert.Equal(t, StateConcluding, c.State())
}

func TestFinishConclude_FailureKeepsState(t *testing.T) {
	h := newHarness(t)
	h.store.createErr = errors.New("write refused")
	c := h.begin(t, model.TypeSaqueFacil, validNumber)
	h.fillFilters(t, c)
	checkAll(t, c)

	sub, err := c.BeginApprove()
	require.NoError(t, err)

	_, err = h.conclude(c, sub)
	require.Error(t, err)
	assert.ErrorIs(t, err, h.store.createErr)
	assert.Equal(t, StateInProgress, c.State())
	assert.Equal(t, validNumber, c.Number())
	assert.True(t, c.Checklist().AllComplete())
	assert.True(t, c.Gate().ApproveEnabled)
	assert.ErrorIs(t, c.LastError(), h.store.createErr)

	holder, held := h.desk.Lock().Holder()
	assert.True(t, held)
	assert.Equal(t, model.TypeSaqueFacil, holder)

	require.ErrorIs(t, c.FinishConclude(nil), ErrNotConcluding)
}

func TestClear_Idempotent(t *testing.T) {
	h := newHarness(t)
	c := h.begin(t, model.TypeRefin, validNumber)
	h.fillFilters(t, c)
	require.NoError(t, c.SetExtraFields(model.ExtraFields{TrocoAmount: "10,00"}))

	c.Clear()
	assertCleared(t, h, c)
	gen := c.TickGeneration()

	c.Clear()
	assertCleared(t, h, c)
	assert.Equal(t, gen, c.TickGeneration())
}

func TestRegionChangeClearsDownstream(t *testing.T) {
	h := newHarness(t)
	c := h.begin(t, model.TypeSaqueFacil, validNumber)
	h.fillFilters(t, c)
	checkAll(t, c)
	require.True(t, c.Gate().ApproveEnabled)

	apply(t, c, filters.RegionSelected{Region: "Sul", Agreements: []string{"GOV-RS"}})

	chain := c.Chain()
	assert.Empty(t, chain.Agreement.Selected)
	assert.Empty(t, chain.Product.Selected)
	assert.False(t, chain.Product.Enabled)
	assert.Empty(t, chain.Status)
	assert.False(t, c.Gate().ApproveEnabled)
	assert.False(t, c.Gate().RejectEnabled)
}

func TestEditNumber_WhileInProgress(t *testing.T) {
	h := newHarness(t)
	c := h.begin(t, model.TypeSaqueFacil, validNumber)
	h.fillFilters(t, c)

	out, err := c.EditNumber(" " + validNumber + " ")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, out)
	assert.Equal(t, StateInProgress, c.State())

	_, err = c.EditNumber("51-12345678900")
	require.ErrorIs(t, err, ErrNumberLocked)
	assert.Equal(t, StateInProgress, c.State())
	assert.True(t, c.Chain().Complete())

	out, err = c.EditNumber("50-1234567890")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCleared, out)
	assert.Equal(t, StateNumberPending, c.State())
	assert.Equal(t, contract.Incomplete, c.Validity())
	assert.False(t, c.Chain().Region.Enabled)
	assert.False(t, c.Checklist().Enabled())
	_, held := h.desk.Lock().Holder()
	assert.False(t, held)
}

func TestEditNumber_IncompleteKeepsInputsDisabled(t *testing.T) {
	h := newHarness(t)
	c := h.controller(t, model.TypeSaqueFacil)

	out, err := c.EditNumber("50-123")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, out)
	assert.Equal(t, StateNumberPending, c.State())
	assert.False(t, c.InputsEnabled())

	_, err = c.ToggleItem("tarefa_1")
	require.ErrorIs(t, err, ErrNotInProgress)
	require.ErrorIs(t, c.ApplyFilter(c.RequestFilter(), filters.RegionSelected{Region: "Norte"}), ErrNotInProgress)

	out, err = c.EditNumber("")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, out)
	assert.Equal(t, StateIdle, c.State())
}

func TestSolicitacaoInterna_SkipsDuplicateCheck(t *testing.T) {
	h := newHarness(t)
	h.store.existing["A00-1234567890"] = &model.Record{Number: "A00-1234567890"}
	c := h.controller(t, model.TypeSolicitacaoInterna)

	out, err := c.EditNumber("A00-1234567890")
	require.NoError(t, err)
	assert.Equal(t, OutcomeStarted, out)
	assert.Equal(t, StateInProgress, c.State())
	assert.Len(t, c.Checklist().Items(), 10)
}

func TestReanalysis(t *testing.T) {
	h := newHarness(t)
	h.store.existing[validNumber] = &model.Record{Number: validNumber, Status: model.StatusRejected}
	c := h.controller(t, model.TypeRefin)

	_, err := c.EditNumber(validNumber)
	require.NoError(t, err)
	out, err := c.ApplyLookup(h.lookup(c))
	require.NoError(t, err)
	require.Equal(t, OutcomeDuplicate, out)

	out, err = c.ChooseReanalyze()
	require.NoError(t, err)
	assert.Equal(t, OutcomeStarted, out)
	assert.True(t, c.Reanalysis())
	h.loadRegions(t, c)
	h.fillFilters(t, c)
	require.NoError(t, c.SetExtraFields(model.ExtraFields{TrocoAmount: "1,00"}))

	sub, err := c.BeginReject("120")
	require.NoError(t, err)
	assert.Equal(t, "Refin - Reanalise", sub.TypeLabel())
}

func TestChooseCancel(t *testing.T) {
	h := newHarness(t)
	h.store.existing[validNumber] = &model.Record{Number: validNumber}
	c := h.controller(t, model.TypeSaqueFacil)

	_, err := c.ChooseCancel()
	require.ErrorIs(t, err, ErrNoDuplicate)

	_, err = c.EditNumber(validNumber)
	require.NoError(t, err)
	_, err = c.ApplyLookup(h.lookup(c))
	require.NoError(t, err)

	out, err := c.ChooseCancel()
	require.NoError(t, err)
	assert.Equal(t, OutcomeCleared, out)
	assertCleared(t, h, c)
}

func TestLookupFailure_ProceedsAsNew(t *testing.T) {
	h := newHarness(t)
	h.store.findErr = errors.New("store offline")
	c := h.controller(t, model.TypeSaqueFacil)

	_, err := c.EditNumber(validNumber)
	require.NoError(t, err)

	res := h.lookup(c)
	assert.True(t, res.LookupFailed)
	assert.Nil(t, res.Existing)

	out, err := c.ApplyLookup(res)
	require.NoError(t, err)
	assert.Equal(t, OutcomeStarted, out)
	assert.False(t, c.Reanalysis())
}

func TestApplyLookup_IgnoresStaleResults(t *testing.T) {
	h := newHarness(t)
	c := h.controller(t, model.TypeSaqueFacil)

	_, err := c.EditNumber(validNumber)
	require.NoError(t, err)
	res := h.lookup(c)

	_, err = c.EditNumber("50-1")
	require.NoError(t, err)

	out, err := c.ApplyLookup(res)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, out)
	assert.Equal(t, StateNumberPending, c.State())
}

func TestTabLock_OneProposalAtATime(t *testing.T) {
	h := newHarness(t)
	h.begin(t, model.TypeSaqueFacil, validNumber)
	lock := h.desk.Lock()

	assert.True(t, lock.TabEnabled(TabFor(model.TypeSaqueFacil)))
	assert.False(t, lock.TabEnabled(TabFor(model.TypeRefin)))
	assert.False(t, lock.TabEnabled(TabFor(model.TypeSolicitacaoInterna)))
	assert.True(t, lock.TabEnabled(TabHistory))

	refin := h.controller(t, model.TypeRefin)
	_, err := refin.EditNumber(validNumber)
	require.ErrorIs(t, err, ErrTabLocked)

	active, ok := h.desk.Active()
	require.True(t, ok)
	assert.Equal(t, model.TypeSaqueFacil, active.Type())
}

func TestTabLock(t *testing.T) {
	l := NewTabLock()

	require.NoError(t, l.Acquire(model.TypeRefin))
	require.NoError(t, l.Acquire(model.TypeRefin))
	require.ErrorIs(t, l.Acquire(model.TypeSaqueFacil), ErrTabLocked)

	l.Release(model.TypeSaqueFacil)
	holder, held := l.Holder()
	assert.True(t, held)
	assert.Equal(t, model.TypeRefin, holder)

	l.Release(model.TypeRefin)
	_, held = l.Holder()
	assert.False(t, held)
	require.NoError(t, l.Acquire(model.TypeSaqueFacil))
}

func TestInvalidNumberAtConclusion(t *testing.T) {
	h := newHarness(t)
	c := h.begin(t, model.TypeSaqueFacil, validNumber)
	h.fillFilters(t, c)
	checkAll(t, c)

	// Simulate a number that drifted out of shape without passing through EditNumber.
	c.number = "50-1"
	_, err := c.BeginApprove()
	require.ErrorIs(t, err, ErrInvalidNumber)
	assert.Contains(t, err.Error(), "50-12345678900")
	assert.Equal(t, StateInProgress, c.State())
}

func TestNewDesk_Validation(t *testing.T) {
	_, err := NewDesk(DeskConfig{Catalog: mockCatalog{}})
	require.Error(t, err)

	_, err = NewDesk(DeskConfig{Store: newMockStore()})
	require.Error(t, err)

	h := newHarness(t)
	_, err = h.desk.Controller("unknown")
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestPrecheck_DoesNotChangeState(t *testing.T) {
	h := newHarness(t)
	c := h.begin(t, model.TypeSaqueFacil, validNumber)

	err := c.Precheck(false)
	var missing *decision.MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []decision.Field{decision.FieldRegion, decision.FieldAgreement, decision.FieldProduct}, missing.Fields)

	h.fillFilters(t, c)
	require.NoError(t, c.Precheck(false), "reject ignores the checklist")
	require.ErrorIs(t, c.Precheck(true), decision.ErrChecklistIncomplete)

	checkAll(t, c)
	require.NoError(t, c.Precheck(true))
	assert.Equal(t, StateInProgress, c.State())

	c.Clear()
	assert.ErrorIs(t, c.Precheck(true), ErrNotInProgress)
}

func TestApplyFilter_DropsSupersededAnswers(t *testing.T) {
	h := newHarness(t)
	c := h.begin(t, model.TypeSaqueFacil, validNumber)

	norte := c.RequestFilter()
	sul := c.RequestFilter()
	assert.False(t, c.FilterCurrent(norte))
	assert.True(t, c.FilterCurrent(sul))

	require.NoError(t, c.ApplyFilter(sul, filters.RegionSelected{Region: "Sul", Agreements: []string{"GOV-RS"}}))
	err := c.ApplyFilter(norte, filters.RegionSelected{Region: "Norte", Agreements: []string{"GOV-AM"}})
	require.ErrorIs(t, err, ErrStaleFilter)

	assert.Equal(t, "Sul", c.Chain().Region.Selected)
	assert.Equal(t, []string{"GOV-RS"}, c.Chain().Agreement.Options)
}

func TestClear_InvalidatesPendingFilterLoads(t *testing.T) {
	h := newHarness(t)
	c := h.begin(t, model.TypeSaqueFacil, validNumber)
	ticket := c.RequestFilter()

	c.Clear()
	h.begin(t, model.TypeSaqueFacil, validNumber)

	assert.False(t, c.FilterCurrent(ticket))
	require.ErrorIs(t, c.ApplyFilter(ticket, filters.RegionSelected{Region: "Norte"}), ErrStaleFilter)
	assert.Empty(t, c.Chain().Region.Selected)
}

func TestController_TimingFollowsLifecycle(t *testing.T) {
	h := newHarness(t)
	c := h.controller(t, model.TypeSaqueFacil)
	assert.False(t, c.Timing())

	h.begin(t, model.TypeSaqueFacil, validNumber)
	h.fillFilters(t, c)
	checkAll(t, c)
	assert.True(t, c.Timing())

	_, err := c.BeginApprove()
	require.NoError(t, err)
	assert.True(t, c.Timing(), "the timer keeps running while the decision is saved")

	require.NoError(t, c.FinishConclude(nil))
	assert.False(t, c.Timing())
}
