package components

import "github.com/Veraticus/proposal-desk/internal/model"

// OptionChosenMsg is sent when an option of a menu is confirmed.
type OptionChosenMsg struct {
	Menu  string
	Value string
}

// ItemToggledMsg is sent when a checklist item is toggled.
type ItemToggledMsg struct {
	Key string
}

// ChoiceMadeMsg is sent when a dialog button is pressed.
type ChoiceMadeMsg struct {
	Dialog string
	Choice string
	Index  int
}

// ReasonPickedMsg is sent when a rejection reason is picked.
type ReasonPickedMsg struct {
	Reason model.RejectionReason
}

// ReasonCancelledMsg is sent when the reason picker is dismissed.
type ReasonCancelledMsg struct{}
