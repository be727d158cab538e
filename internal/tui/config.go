// Package tui is the terminal review desk: one tab per proposal type plus the
// history tab, driven by the workflow controllers.
package tui

import (
	"time"

	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/Veraticus/proposal-desk/internal/tui/themes"
	"github.com/Veraticus/proposal-desk/internal/workflow"
	tea "github.com/charmbracelet/bubbletea"
)

// Config holds TUI configuration.
type Config struct {
	Theme        themes.Theme
	Desk         *workflow.Desk
	Ticker       func(typ model.ProposalType, generation uint64) tea.Cmd
	User         model.User
	Width        int
	Height       int
	CallTimeout  time.Duration
	FlashTimeout time.Duration
	HistoryLimit int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:        themes.Default,
		Width:        100,
		Height:       32,
		CallTimeout:  30 * time.Second,
		FlashTimeout: 5 * time.Second,
		HistoryLimit: 200,
		Ticker:       secondTicker,
	}
}

// WithDesk sets the workflow desk.
func WithDesk(desk *workflow.Desk) Option {
	return func(c *Config) {
		c.Desk = desk
	}
}

// WithUser sets the signed-in analyst.
func WithUser(user model.User) Option {
	return func(c *Config) {
		c.User = user
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithCallTimeout bounds every store and catalog call.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.CallTimeout = d
	}
}

// WithHistoryLimit caps the rows loaded into the history tab.
func WithHistoryLimit(n int) Option {
	return func(c *Config) {
		c.HistoryLimit = n
	}
}

// WithTicker replaces the one-second timer used for the elapsed-time display.
func WithTicker(ticker func(typ model.ProposalType, generation uint64) tea.Cmd) Option {
	return func(c *Config) {
		c.Ticker = ticker
	}
}

// WithFlashTimeout sets how long status messages stay on screen. Zero keeps
// them until the next one.
func WithFlashTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.FlashTimeout = d
	}
}
