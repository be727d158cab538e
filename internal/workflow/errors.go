package workflow

import "errors"

// Errors returned by the workflow.
var (
	ErrTabLocked      = errors.New("another proposal type is in progress")
	ErrNotInProgress  = errors.New("no proposal in progress")
	ErrNumberLocked   = errors.New("contract number is locked while the proposal is in progress")
	ErrInvalidNumber  = errors.New("invalid contract number")
	ErrConcluding     = errors.New("proposal is being concluded")
	ErrNotConcluding  = errors.New("no conclusion pending")
	ErrAwaitingChoice = errors.New("duplicate proposal awaiting a choice")
	ErrNoDuplicate    = errors.New("no duplicate pending")
	ErrUnknownType    = errors.New("unknown proposal type")
	ErrStaleFilter    = errors.New("catalog answer superseded by a newer selection")
)
