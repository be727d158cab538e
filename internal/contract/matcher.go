// Package contract validates contract numbers against the shapes accepted per proposal type.
package contract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/proposal-desk/internal/model"
)

// ErrNoPatterns is returned when a proposal type ends up with an empty pattern set.
var ErrNoPatterns = errors.New("no contract number patterns configured")

// Validity is the inline signal shown next to the number field.
type Validity int

const (
	// Untouched means the field is empty.
	Untouched Validity = iota
	// Incomplete means something was typed but it matches no accepted shape.
	Incomplete
	// Complete means the value matches one of the accepted shapes exactly.
	Complete
)

func (v Validity) String() string {
	switch v {
	case Untouched:
		return "untouched"
	case Incomplete:
		return "incomplete"
	case Complete:
		return "complete"
	}
	return "unknown"
}

// Pattern is one accepted number shape.
type Pattern struct {
	Expr    string `yaml:"expr"`
	Example string `yaml:"example"`
}

// Patterns maps each proposal type to its accepted shapes.
type Patterns map[model.ProposalType][]Pattern

// Standard shape shared by the loan types: 2 digits, hyphen, 11 digits.
var standardShape = Pattern{Expr: `^\d{2}-\d{11}$`, Example: "50-12345678900"}

// DefaultPatterns returns the shapes accepted out of the box.
func DefaultPatterns() Patterns {
	return Patterns{
		model.TypeSaqueFacil:       {standardShape},
		model.TypeRefin:            {standardShape},
		model.TypeSaqueDirecionado: {standardShape},
		model.TypeSolicitacaoInterna: {
			standardShape,
			{Expr: `^\d{2}-\d{10}$`, Example: "50-1234567890"},
			{Expr: `^[A-Za-z]\d{2}-\d{10,11}$`, Example: "A00-1234567890"},
			{Expr: `^[A-Za-z0-9]{8}-[A-Za-z0-9]{4}-[A-Za-z0-9]$`, Example: "AB12CD34-EF56-7"},
		},
	}
}

// Merge returns a copy of p with the types present in overrides replaced.
func (p Patterns) Merge(overrides Patterns) Patterns {
	out := make(Patterns, len(p))
	for t, set := range p {
		out[t] = append([]Pattern(nil), set...)
	}
	for t, set := range overrides {
		if len(set) > 0 {
			out[t] = append([]Pattern(nil), set...)
		}
	}
	return out
}

type compiledPattern struct {
	re      *regexp.Regexp
	example string
}

// Matcher evaluates raw numbers against precompiled shapes.
type Matcher struct {
	compiled map[model.ProposalType][]compiledPattern
}

// NewMatcher compiles the pattern table. Every known proposal type must have at least one shape.
func NewMatcher(patterns Patterns) (*Matcher, error) {
	m := &Matcher{compiled: make(map[model.ProposalType][]compiledPattern)}

	for _, t := range model.AllProposalTypes() {
		set := patterns[t]
		if len(set) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoPatterns, t)
		}
		for _, p := range set {
			re, err := regexp.Compile(anchor(p.Expr))
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q for %s: %w", p.Expr, t, err)
			}
			m.compiled[t] = append(m.compiled[t], compiledPattern{re: re, example: p.Example})
		}
	}

	return m, nil
}

// MustDefaultMatcher builds a matcher over DefaultPatterns.
func MustDefaultMatcher() *Matcher {
	m, err := NewMatcher(DefaultPatterns())
	if err != nil {
		panic(err)
	}
	return m
}

// Match classifies raw for the given proposal type.
func (m *Matcher) Match(raw string, t model.ProposalType) Validity {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Untouched
	}

	for _, p := range m.compiled[t] {
		if p.re.MatchString(text) {
			return Complete
		}
	}
	return Incomplete
}

// IsComplete reports whether raw exactly matches one of the shapes for t.
func (m *Matcher) IsComplete(raw string, t model.ProposalType) bool {
	return m.Match(raw, t) == Complete
}

// Examples lists one example per accepted shape, for the invalid-number message.
func (m *Matcher) Examples(t model.ProposalType) []string {
	examples := make([]string, 0, len(m.compiled[t]))
	for _, p := range m.compiled[t] {
		if p.example != "" {
			examples = append(examples, p.example)
		}
	}
	return examples
}

// InvalidNumberMessage is the text of the blocking modal shown for a bad number at conclusion.
func (m *Matcher) InvalidNumberMessage(t model.ProposalType) string {
	examples := m.Examples(t)
	if len(examples) == 0 {
		return "Número do contrato inválido!"
	}
	return "Número do contrato inválido!\nFormatos aceitos:\n• " + strings.Join(examples, "\n• ")
}

// anchor forces whole-string matching so configured shapes cannot match a substring.
func anchor(expr string) string {
	if !strings.HasPrefix(expr, "^") {
		expr = "^" + expr
	}
	if !strings.HasSuffix(expr, "$") {
		expr += "$"
	}
	return expr
}
