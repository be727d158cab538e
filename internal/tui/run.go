package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/proposal-desk/internal/common"
	tea "github.com/charmbracelet/bubbletea"
)

// New builds the desk model. It fails when no desk was provided.
func New(opts ...Option) (Model, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Desk == nil {
		return Model{}, fmt.Errorf("%w: the review desk requires a workflow desk", common.ErrMissingConfig)
	}
	if cfg.Ticker == nil {
		cfg.Ticker = secondTicker
	}
	return newModel(cfg), nil
}

// Run starts the desk and blocks until the analyst quits or ctx is done.
func Run(ctx context.Context, opts ...Option) error {
	m, err := New(opts...)
	if err != nil {
		return err
	}

	common.LogInfo("Starting review desk", common.Fields{"analyst": m.user.Login})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("review desk failed: %w", err)
	}

	for _, f := range m.forms {
		// Open proposals are discarded on exit.
		f.ctrl.Clear()
	}
	return nil
}
