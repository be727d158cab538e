package tui

import (
	"errors"
	"fmt"

	"github.com/Veraticus/proposal-desk/internal/common"
	"github.com/Veraticus/proposal-desk/internal/decision"
	"github.com/Veraticus/proposal-desk/internal/filters"
	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/Veraticus/proposal-desk/internal/tui/components"
	"github.com/Veraticus/proposal-desk/internal/tui/themes"
	"github.com/Veraticus/proposal-desk/internal/workflow"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// stageRegions marks the initial region load in filterLoadedMsg.
const stageRegions filters.Stage = -1

// Dialog ids.
const (
	dialogDuplicate     = "duplicate"
	dialogConfirmReject = "confirm-reject"
	dialogError         = "error"
)

// FlashKind picks the colour of the status line.
type FlashKind int

// Flash kinds.
const (
	FlashInfo FlashKind = iota
	FlashSuccess
	FlashWarning
	FlashError
)

// Model holds the desk UI state.
type Model struct {
	theme         themes.Theme
	desk          *workflow.Desk
	dialog        *components.DialogModel
	reasons       *components.ReasonPickerModel
	pendingReason *model.RejectionReason
	duplicateFor  model.ProposalType
	forms         map[model.ProposalType]*form
	user          model.User
	flash         string
	keymap        KeyMap
	tabs          []workflow.Tab
	spinner       spinner.Model
	history       components.HistoryModel
	config        Config
	flashID       int
	flashKind     FlashKind
	active        int
	width         int
	height        int
	historyLoaded bool
	showHelp      bool
	quitting      bool
}

// newModel creates a model over cfg.Desk. The desk must be set.
func newModel(cfg Config) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Model{
		theme:   cfg.Theme,
		desk:    cfg.Desk,
		user:    cfg.User,
		config:  cfg,
		keymap:  DefaultKeyMap(),
		forms:   make(map[model.ProposalType]*form),
		spinner: s,
		history: components.NewHistory(cfg.Theme),
		width:   cfg.Width,
		height:  cfg.Height,
	}

	for _, t := range model.AllProposalTypes() {
		c, err := cfg.Desk.Controller(t)
		if err != nil {
			continue
		}
		m.forms[t] = newForm(c, cfg.Theme)
		m.tabs = append(m.tabs, workflow.TabFor(t))
	}
	m.tabs = append(m.tabs, workflow.TabHistory)
	m.handleResize()

	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		f := m.forms[msg.typ]
		if f == nil || f.ctrl.TickGeneration() != msg.generation || !f.ctrl.Timing() {
			return m, nil
		}
		return m, m.config.Ticker(msg.typ, msg.generation)

	case flashExpiredMsg:
		if msg.id == m.flashID {
			m.flash = ""
		}
		return m, nil

	case lookupDoneMsg:
		return m.handleLookup(msg)

	case filterLoadedMsg:
		return m.handleFilterLoaded(msg)

	case concludedMsg:
		return m.handleConcluded(msg)

	case historyLoadedMsg:
		if msg.err != nil {
			m.history.SetLoading(false)
			next := m.setFlash("Erro ao carregar histórico: "+msg.err.Error(), FlashError)
			return m, next
		}
		m.history.SetRecords(msg.records)
		return m, nil

	case components.HistoryFilterChangedMsg:
		m.history.SetLoading(true)
		return m, m.loadHistory(msg.Filter)

	case components.OptionChosenMsg:
		return m.handleOptionChosen(msg)

	case components.ItemToggledMsg:
		f := m.activeForm()
		if f == nil {
			return m, nil
		}
		if _, err := f.ctrl.ToggleItem(msg.Key); err != nil {
			next := m.setFlash(err.Error(), FlashWarning)
			return m, next
		}
		return m, nil

	case components.ChoiceMadeMsg:
		return m.handleChoice(msg)

	case components.ReasonPickedMsg:
		m.reasons = nil
		reason := msg.Reason
		m.pendingReason = &reason
		d := components.NewDialog(dialogConfirmReject, "Confirmar Recusa",
			decision.ConfirmRejectText(reason), []string{"Sim", "Não"}, components.DialogWarning, m.theme)
		d.Resize(m.width)
		m.dialog = &d
		return m, nil

	case components.ReasonCancelledMsg:
		m.reasons = nil
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	// Modals take every other key.
	if m.dialog != nil {
		d, cmd := m.dialog.Update(msg)
		m.dialog = &d
		return m, cmd
	}
	if m.reasons != nil {
		r, cmd := m.reasons.Update(msg)
		m.reasons = &r
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keymap.NextTab):
		return m.switchTab(1)
	case key.Matches(msg, m.keymap.PrevTab):
		return m.switchTab(-1)
	}

	if m.showHelp {
		if msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	f := m.activeForm()
	if f == nil {
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keymap.NextField):
		f.move(1)
		return m, nil
	case key.Matches(msg, m.keymap.PrevField):
		f.move(-1)
		return m, nil
	case key.Matches(msg, m.keymap.Approve):
		return m.approve(f)
	case key.Matches(msg, m.keymap.Reject):
		return m.reject(f)
	case key.Matches(msg, m.keymap.Clear):
		return m.clear(f)
	}

	if f.focus != fieldNumber && !f.ctrl.InputsEnabled() {
		if isEditKey(msg) {
			next := m.setFlash("Informe um número de contrato válido primeiro.", FlashWarning)
			return m, next
		}
		return m, nil
	}

	before := f.input(f.focus)
	var prev string
	if before != nil {
		prev = before.Value()
	}
	cmd := f.update(msg)

	if in := f.input(f.focus); in != nil && in.Value() != prev {
		if f.focus == fieldNumber {
			next := tea.Batch(cmd, m.numberChanged(f))
			return m, next
		}
		next := tea.Batch(cmd, m.extraChanged(f))
		return m, next
	}
	return m, cmd
}

func isEditKey(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace || msg.Type == tea.KeyBackspace || msg.Type == tea.KeyEnter
}

// numberChanged feeds the number field to the controller.
func (m *Model) numberChanged(f *form) tea.Cmd {
	out, err := f.ctrl.EditNumber(f.number.Value())
	if err != nil {
		switch {
		case errors.Is(err, workflow.ErrTabLocked):
			return m.setFlash("Já existe uma proposta em andamento: "+err.Error(), FlashWarning)
		case errors.Is(err, workflow.ErrNumberLocked):
			setValue(&f.number, f.ctrl.Number())
			return m.setFlash("Conclua ou limpe a proposta atual antes de informar outro número.", FlashWarning)
		default:
			setValue(&f.number, f.ctrl.Number())
			return nil
		}
	}

	switch out {
	case workflow.OutcomeLookup:
		f.pending = "Verificando se a proposta já foi analisada..."
		return tea.Batch(m.lookupNumber(f.ctrl.Type(), f.ctrl.PendingNumber()), m.spinner.Tick)
	case workflow.OutcomeStarted:
		return m.started(f)
	case workflow.OutcomeCleared:
		f.pending = ""
		f.checklist.Reset()
		f.sync()
		return m.setFlash("Número alterado: a proposta em andamento foi descartada.", FlashWarning)
	}
	return nil
}

// started wires a freshly started proposal: regions, timer and focus.
func (m *Model) started(f *form) tea.Cmd {
	f.pending = "Carregando regiões..."
	f.checklist.Reset()
	f.sync()
	f.setFocus(fieldRegion)

	gen := f.ctrl.TickGeneration()
	label := "Proposta iniciada."
	if f.ctrl.Reanalysis() {
		label = "Reanálise iniciada."
	}
	return tea.Batch(
		m.loadFilter(f.ctrl.Type(), f.ctrl.RequestFilter(), stageRegions, "", ""),
		m.config.Ticker(f.ctrl.Type(), gen),
		m.spinner.Tick,
		m.setFlash(label, FlashInfo),
	)
}

func (m *Model) extraChanged(f *form) tea.Cmd {
	if err := f.ctrl.SetExtraFields(f.extra()); err != nil {
		return m.setFlash(err.Error(), FlashWarning)
	}
	f.sync()
	return nil
}

func (m Model) handleLookup(msg lookupDoneMsg) (tea.Model, tea.Cmd) {
	f := m.forms[msg.typ]
	if f == nil {
		return m, nil
	}
	f.pending = ""

	out, err := f.ctrl.ApplyLookup(msg.res)
	if err != nil {
		next := m.setFlash(err.Error(), FlashError)
		return m, next
	}

	switch out {
	case workflow.OutcomeDuplicate:
		m.duplicateFor = msg.typ
		m.focusType(msg.typ)
		d := components.NewDialog(dialogDuplicate, "Proposta já analisada",
			workflow.DuplicatePrompt(f.ctrl.Existing()),
			[]string{workflow.ChoiceReanalyze, workflow.ChoiceDifferentNumber, workflow.ChoiceCancel},
			components.DialogQuestion, m.theme)
		d.Resize(m.width)
		m.dialog = &d
		return m, nil
	case workflow.OutcomeStarted:
		m.focusType(msg.typ)
		cmd := m.started(f)
		if msg.res.LookupFailed {
			next := tea.Batch(cmd, m.setFlash("Não foi possível verificar duplicidade; seguindo como nova proposta.", FlashWarning))
			return m, next
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) handleFilterLoaded(msg filterLoadedMsg) (tea.Model, tea.Cmd) {
	f := m.forms[msg.typ]
	// Answers to superseded requests are dropped, errors included.
	if f == nil || !f.ctrl.InputsEnabled() || !f.ctrl.FilterCurrent(msg.ticket) {
		return m, nil
	}
	f.pending = ""

	if msg.err != nil {
		next := m.setFlash("Erro ao consultar o catálogo: "+msg.err.Error(), FlashError)
		return m, next
	}
	if err := f.ctrl.ApplyFilter(msg.ticket, msg.event); err != nil {
		next := m.setFlash(err.Error(), FlashWarning)
		return m, next
	}
	f.sync()

	// Advance to the next stage once its options arrived.
	switch msg.stage {
	case filters.StageRegion:
		f.setFocus(fieldAgreement)
	case filters.StageAgreement:
		f.setFocus(fieldProduct)
	case filters.StageProduct:
		f.setFocus(fieldChecklist)
	}
	return m, nil
}

func (m Model) handleOptionChosen(msg components.OptionChosenMsg) (tea.Model, tea.Cmd) {
	f := m.activeForm()
	if f == nil || !f.ctrl.InputsEnabled() {
		return m, nil
	}

	typ := f.ctrl.Type()
	switch msg.Menu {
	case menuRegion:
		f.pending = "Carregando convênios..."
		return m, tea.Batch(m.loadFilter(typ, f.ctrl.RequestFilter(), filters.StageRegion, "", msg.Value), m.spinner.Tick)
	case menuAgreement:
		f.pending = "Carregando produtos..."
		return m, tea.Batch(m.loadFilter(typ, f.ctrl.RequestFilter(), filters.StageAgreement, "", msg.Value), m.spinner.Tick)
	case menuProduct:
		f.pending = "Consultando status..."
		agreement := f.ctrl.Chain().Agreement.Selected
		return m, tea.Batch(m.loadFilter(typ, f.ctrl.RequestFilter(), filters.StageProduct, agreement, msg.Value), m.spinner.Tick)
	}
	return m, nil
}

func (m Model) approve(f *form) (tea.Model, tea.Cmd) {
	sub, err := f.ctrl.BeginApprove()
	if err != nil {
		next := m.showError(err)
		return m, next
	}
	f.pending = "Salvando proposta..."
	return m, tea.Batch(m.conclude(sub), m.spinner.Tick)
}

func (m Model) reject(f *form) (tea.Model, tea.Cmd) {
	if err := f.ctrl.Precheck(false); err != nil {
		next := m.showError(err)
		return m, next
	}
	picker := components.NewReasonPicker(decision.Reasons(), m.theme)
	picker.Resize(m.height - 10)
	m.reasons = &picker
	return m, nil
}

func (m Model) clear(f *form) (tea.Model, tea.Cmd) {
	if f.ctrl.State() == workflow.StateConcluding {
		next := m.setFlash("Aguarde: a proposta está sendo salva.", FlashWarning)
		return m, next
	}
	f.ctrl.Clear()
	f.reset()
	next := m.setFlash("Formulário limpo.", FlashInfo)
	return m, next
}

func (m Model) handleChoice(msg components.ChoiceMadeMsg) (tea.Model, tea.Cmd) {
	m.dialog = nil

	switch msg.Dialog {
	case dialogDuplicate:
		// The answer belongs to the type whose lookup opened the dialog.
		f := m.forms[m.duplicateFor]
		m.duplicateFor = ""
		if f == nil {
			return m, nil
		}
		var (
			out workflow.Outcome
			err error
		)
		switch msg.Index {
		case 0:
			out, err = f.ctrl.ChooseReanalyze()
		case 1:
			out, err = f.ctrl.ChooseDifferentNumber()
		default:
			out, err = f.ctrl.ChooseCancel()
		}
		if err != nil {
			next := m.setFlash(err.Error(), FlashError)
			return m, next
		}
		if out == workflow.OutcomeStarted {
			next := m.started(f)
			return m, next
		}
		f.reset()
		return m, nil

	case dialogConfirmReject:
		reason := m.pendingReason
		m.pendingReason = nil
		if reason == nil || msg.Index != 0 {
			return m, nil
		}
		active, ok := m.desk.Active()
		if !ok {
			return m, nil
		}
		f := m.forms[active.Type()]
		sub, err := f.ctrl.BeginReject(reason.Code)
		if err != nil {
			next := m.showError(err)
			return m, next
		}
		f.pending = "Salvando proposta..."
		return m, tea.Batch(m.conclude(sub), m.spinner.Tick)
	}
	return m, nil
}

func (m Model) handleConcluded(msg concludedMsg) (tea.Model, tea.Cmd) {
	f := m.forms[msg.typ]
	if f == nil {
		return m, nil
	}
	f.pending = ""

	number := f.ctrl.Number()
	if err := f.ctrl.FinishConclude(msg.err); err != nil {
		next := m.showError(err)
		return m, next
	}
	f.reset()

	verb := "aprovada"
	if msg.status == model.StatusRejected {
		verb = "recusada"
	}
	cmds := []tea.Cmd{m.setFlash(fmt.Sprintf("Proposta %s %s com sucesso!", number, verb), FlashSuccess)}
	if m.historyLoaded {
		m.history.SetLoading(true)
		cmds = append(cmds, m.loadHistory(m.history.Filter()))
	}
	return m, tea.Batch(cmds...)
}

// showError opens a blocking modal for err.
func (m *Model) showError(err error) tea.Cmd {
	title := "Erro"
	text := err.Error()

	var missing *decision.MissingFieldsError
	var userErr *common.UserError
	switch {
	case errors.As(err, &missing):
		title = "Campos obrigatórios"
	case errors.Is(err, decision.ErrChecklistIncomplete):
		title = "Checklist incompleto"
		text = "Conclua todos os itens do checklist antes de aprovar."
	case errors.Is(err, workflow.ErrInvalidNumber) && errors.As(err, &userErr):
		title = "Número inválido"
		text = userErr.UserMessage
	}

	d := components.NewDialog(dialogError, title, text, nil, components.DialogError, m.theme)
	d.Resize(m.width)
	m.dialog = &d
	return nil
}

func (m *Model) setFlash(text string, kind FlashKind) tea.Cmd {
	m.flashID++
	m.flash = text
	m.flashKind = kind
	if m.config.FlashTimeout <= 0 {
		return nil
	}
	return expireFlash(m.flashID, m.config.FlashTimeout)
}

func (m Model) switchTab(delta int) (tea.Model, tea.Cmd) {
	n := len(m.tabs)
	for step := 1; step < n; step++ {
		idx := (m.active + delta*step + n*step) % n
		if !m.desk.Lock().TabEnabled(m.tabs[idx]) {
			continue
		}
		if active, ok := m.desk.Active(); ok && step > 1 {
			flash := m.setFlash(fmt.Sprintf("Abas bloqueadas: proposta de %s em andamento.", active.Type().DisplayName()), FlashInfo)
			updated, cmd := m.selectTab(idx)
			return updated, tea.Batch(flash, cmd)
		}
		return m.selectTab(idx)
	}
	next := m.setFlash("Conclua ou limpe a proposta em andamento antes de trocar de aba.", FlashWarning)
	return m, next
}

func (m Model) selectTab(idx int) (tea.Model, tea.Cmd) {
	m.active = idx
	m.showHelp = false
	if m.tabs[idx] == workflow.TabHistory && !m.historyLoaded {
		m.historyLoaded = true
		m.history.SetLoading(true)
		return m, m.loadHistory(m.history.Filter())
	}
	return m, nil
}

// focusType brings the tab of typ to the front when the tab lock allows it.
func (m *Model) focusType(typ model.ProposalType) {
	tab := workflow.TabFor(typ)
	if !m.desk.Lock().TabEnabled(tab) {
		return
	}
	for i, t := range m.tabs {
		if t == tab {
			m.active = i
			m.showHelp = false
			return
		}
	}
}

// activeForm returns the form of the active tab, or nil on the history tab.
func (m Model) activeForm() *form {
	tab := m.tabs[m.active]
	if tab == workflow.TabHistory {
		return nil
	}
	return m.forms[model.ProposalType(tab)]
}

func (m Model) busy() bool {
	for _, f := range m.forms {
		if f.pending != "" {
			return true
		}
	}
	return false
}

func (m *Model) handleResize() {
	m.history.Resize(m.width-4, m.height-6)
	for _, f := range m.forms {
		f.checklist.Resize(m.height - 14)
	}
}
