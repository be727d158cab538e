// Package themes holds the colour palettes of the desk.
package themes

import (
	"github.com/Veraticus/proposal-desk/internal/contract"
	"github.com/Veraticus/proposal-desk/internal/filters"
	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of colours a theme is derived from.
type Palette struct {
	Primary    lipgloss.Color
	OnPrimary  lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Info       lipgloss.Color
}

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Selected      lipgloss.Style
	Highlighted   lipgloss.Style
	BorderedBox   lipgloss.Style
	RoundedBox    lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusPending lipgloss.Style
	Primary       lipgloss.Color
	Secondary     lipgloss.Color
	Foreground    lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Success       lipgloss.Color
	Warning       lipgloss.Color
	Error         lipgloss.Color
}

// New derives every style of a theme from p.
func New(p Palette) Theme {
	text := lipgloss.NewStyle().Foreground(p.Foreground)
	status := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	box := func(b lipgloss.Border) lipgloss.Style {
		return lipgloss.NewStyle().Border(b).BorderForeground(p.Border).Padding(1, 2)
	}

	return Theme{
		Primary:    p.Primary,
		Secondary:  p.Secondary,
		Foreground: p.Foreground,
		Muted:      p.Muted,
		Border:     p.Border,
		Success:    p.Success,
		Warning:    p.Warning,
		Error:      p.Error,

		Title:       text.Bold(true).MarginBottom(1),
		Normal:      text,
		Bold:        text.Bold(true),
		Selected:    lipgloss.NewStyle().Background(p.Primary).Foreground(p.OnPrimary).Bold(true),
		Highlighted: text.Background(p.Border),
		BorderedBox: box(lipgloss.NormalBorder()),
		RoundedBox:  box(lipgloss.RoundedBorder()),

		StatusSuccess: status(p.Success),
		StatusWarning: status(p.Warning),
		StatusError:   status(p.Error),
		StatusInfo:    status(p.Info),
		StatusPending: lipgloss.NewStyle().Foreground(p.Muted).Italic(true),
	}
}

var (
	// Default is the bank's teal on slate.
	Default = New(Palette{
		Primary:    "#0f766e",
		OnPrimary:  "#f8fafc",
		Secondary:  "#5eead4",
		Foreground: "#f8fafc",
		Muted:      "#64748b",
		Border:     "#334155",
		Success:    "#22c55e",
		Warning:    "#eab308",
		Error:      "#dc2626",
		Info:       "#0ea5e9",
	})

	// CatppuccinMocha follows the Catppuccin Mocha palette.
	CatppuccinMocha = New(Palette{
		Primary:    "#cba6f7",
		OnPrimary:  "#1e1e2e",
		Secondary:  "#f5c2e7",
		Foreground: "#cdd6f4",
		Muted:      "#6c7086",
		Border:     "#45475a",
		Success:    "#a6e3a1",
		Warning:    "#f9e2af",
		Error:      "#f38ba8",
		Info:       "#89dceb",
	})

	// Light suits terminals with a white background.
	Light = New(Palette{
		Primary:    "#0f766e",
		OnPrimary:  "#ffffff",
		Secondary:  "#0d9488",
		Foreground: "#0f172a",
		Muted:      "#64748b",
		Border:     "#cbd5e1",
		Success:    "#15803d",
		Warning:    "#a16207",
		Error:      "#b91c1c",
		Info:       "#0369a1",
	})
)

var byName = map[string]Theme{
	"default":          Default,
	"catppuccin-mocha": CatppuccinMocha,
	"mocha":            CatppuccinMocha,
	"light":            Light,
	"claro":            Light,
}

// GetTheme returns the named theme. Unknown names fall back to Default.
func GetTheme(name string) Theme {
	if t, ok := byName[name]; ok {
		return t
	}
	return Default
}

// ToneStyle returns the style used for a catalog status of the given tone.
func (t Theme) ToneStyle(tone filters.Tone) lipgloss.Style {
	switch tone {
	case filters.TonePositive:
		return t.StatusSuccess
	case filters.ToneNegative:
		return t.StatusError
	}
	return t.StatusInfo
}

// Validity returns the style of the number-field indicator.
func (t Theme) Validity(v contract.Validity) lipgloss.Style {
	switch v {
	case contract.Complete:
		return t.StatusSuccess
	case contract.Incomplete:
		return t.StatusWarning
	}
	return t.StatusPending
}
