package tui

import (
	"github.com/Veraticus/proposal-desk/internal/common"
	"github.com/Veraticus/proposal-desk/internal/decision"
	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/Veraticus/proposal-desk/internal/tui/components"
	"github.com/Veraticus/proposal-desk/internal/tui/themes"
	"github.com/Veraticus/proposal-desk/internal/workflow"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// field is one focusable element of a proposal tab.
type field int

const (
	fieldNumber field = iota
	fieldRegion
	fieldAgreement
	fieldProduct
	fieldChecklist
	fieldCPF
	fieldAmount
	fieldTerm
	fieldTroco
	fieldNotes
)

// Menu ids, used to route OptionChosenMsg.
const (
	menuRegion    = "region"
	menuAgreement = "agreement"
	menuProduct   = "product"
)

// form holds the widgets of one proposal tab. The controller is the source of
// truth; the widgets mirror it after every mutation.
type form struct {
	ctrl      *workflow.Controller
	pending   string
	number    textinput.Model
	cpf       textinput.Model
	amount    textinput.Model
	term      textinput.Model
	troco     textinput.Model
	notes     textinput.Model
	region    components.MenuModel
	agreement components.MenuModel
	product   components.MenuModel
	checklist components.ChecklistModel
	focus     field
}

func newInput(prompt, placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func newForm(ctrl *workflow.Controller, theme themes.Theme) *form {
	f := &form{
		ctrl:      ctrl,
		number:    newInput("Número do contrato: ", "50-12345678900", 40),
		cpf:       newInput("CPF: ", "000.000.000-00", 14),
		amount:    newInput("Valor liberado (R$): ", "0,00", 18),
		term:      newInput("Prazo (meses): ", "84", 3),
		troco:     newInput("Valor de troco (R$): ", "0,00", 18),
		notes:     newInput("Observações: ", "", 500),
		region:    components.NewMenu(menuRegion, "Região", theme),
		agreement: components.NewMenu(menuAgreement, "Convênio", theme),
		product:   components.NewMenu(menuProduct, "Produto", theme),
		checklist: components.NewChecklist(ctrl.Checklist(), theme),
	}
	f.number.Focus()
	return f
}

// fields lists the focus order. Troco only exists for types that require it.
func (f *form) fields() []field {
	order := []field{fieldNumber, fieldRegion, fieldAgreement, fieldProduct, fieldChecklist, fieldCPF, fieldAmount, fieldTerm}
	if f.ctrl.Type().RequiresTroco() {
		order = append(order, fieldTroco)
	}
	return append(order, fieldNotes)
}

func (f *form) move(delta int) {
	order := f.fields()
	idx := 0
	for i, fl := range order {
		if fl == f.focus {
			idx = i
			break
		}
	}
	f.setFocus(order[(idx+delta+len(order))%len(order)])
}

func (f *form) input(fl field) *textinput.Model {
	switch fl {
	case fieldNumber:
		return &f.number
	case fieldCPF:
		return &f.cpf
	case fieldAmount:
		return &f.amount
	case fieldTerm:
		return &f.term
	case fieldTroco:
		return &f.troco
	case fieldNotes:
		return &f.notes
	}
	return nil
}

func (f *form) menu(fl field) *components.MenuModel {
	switch fl {
	case fieldRegion:
		return &f.region
	case fieldAgreement:
		return &f.agreement
	case fieldProduct:
		return &f.product
	}
	return nil
}

func (f *form) setFocus(fl field) {
	if in := f.input(f.focus); in != nil {
		in.Blur()
	}
	if mn := f.menu(f.focus); mn != nil {
		mn.Blur()
	}
	f.checklist.Blur()

	f.focus = fl
	switch {
	case f.input(fl) != nil:
		f.input(fl).Focus()
	case f.menu(fl) != nil:
		f.menu(fl).Focus()
	case fl == fieldChecklist:
		f.checklist.Focus()
	}
}

// update routes a key to the focused widget.
func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case f.input(f.focus) != nil:
		in := f.input(f.focus)
		*in, cmd = in.Update(msg)
	case f.menu(f.focus) != nil:
		mn := f.menu(f.focus)
		*mn, cmd = mn.Update(msg)
	case f.focus == fieldChecklist:
		f.checklist, cmd = f.checklist.Update(msg)
	}
	return cmd
}

// extra reads the free-form inputs, sanitising the amounts.
func (f *form) extra() model.ExtraFields {
	return model.ExtraFields{
		CPF:            f.cpf.Value(),
		AmountReleased: decision.SanitizeAmountInput(f.amount.Value()),
		TermMonths:     common.DigitsOnly(f.term.Value()),
		Notes:          f.notes.Value(),
		TrocoAmount:    decision.SanitizeAmountInput(f.troco.Value()),
	}
}

// sync mirrors the controller into the widgets.
func (f *form) sync() {
	chain := f.ctrl.Chain()
	f.region.SetOptions(chain.Region.Options, chain.Region.Selected, chain.Region.Enabled)
	f.agreement.SetOptions(chain.Agreement.Options, chain.Agreement.Selected, chain.Agreement.Enabled)
	f.product.SetOptions(chain.Product.Options, chain.Product.Selected, chain.Product.Enabled)

	extra := f.ctrl.Extra()
	setValue(&f.cpf, extra.CPF)
	setValue(&f.amount, extra.AmountReleased)
	setValue(&f.term, extra.TermMonths)
	setValue(&f.troco, extra.TrocoAmount)
	setValue(&f.notes, extra.Notes)
}

// reset mirrors a cleared controller and puts the focus back on the number.
func (f *form) reset() {
	f.pending = ""
	setValue(&f.number, f.ctrl.Number())
	f.checklist.Reset()
	f.sync()
	f.setFocus(fieldNumber)
}

func setValue(in *textinput.Model, v string) {
	if in.Value() == v {
		return
	}
	in.SetValue(v)
	in.CursorEnd()
}
