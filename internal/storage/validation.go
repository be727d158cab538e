// Package storage provides the data persistence layer for the proposal desk.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/proposal-desk/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidStatus    = errors.New("invalid proposal status")
	ErrInvalidType      = errors.New("invalid proposal type")
	ErrInvalidRecord    = errors.New("invalid proposal record")
	ErrInvalidUser      = errors.New("invalid user")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateSubmission checks a concluded proposal before it is written.
func validateSubmission(sub model.Submission) error {
	if !sub.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, sub.Type)
	}
	if !sub.Status.IsConcluded() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, sub.Status)
	}
	if strings.TrimSpace(sub.Number) == "" {
		return fmt.Errorf("%w: missing number", ErrInvalidRecord)
	}
	if strings.TrimSpace(sub.Analyst) == "" {
		return fmt.Errorf("%w: missing analyst", ErrInvalidRecord)
	}
	if sub.CreatedAt.IsZero() || sub.ConcludedAt.IsZero() {
		return fmt.Errorf("%w: missing timestamps", ErrInvalidRecord)
	}
	if sub.ConcludedAt.Before(sub.CreatedAt) {
		return fmt.Errorf("%w: concluded before created", ErrInvalidRecord)
	}
	if sub.Status == model.StatusRejected && sub.Filters.RejectionReasonID == "" {
		return fmt.Errorf("%w: rejection without reason", ErrInvalidRecord)
	}
	return nil
}

// validateUser validates a directory entry.
func validateUser(user *model.User) error {
	if user == nil {
		return fmt.Errorf("%w: user", ErrNilParameter)
	}
	if strings.TrimSpace(user.Login) == "" {
		return fmt.Errorf("%w: missing login", ErrInvalidUser)
	}
	return nil
}
