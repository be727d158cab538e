package decision

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for text that is not a pt-BR money amount.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount parses a pt-BR amount such as "1.234,56" or "R$ 10,00".
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, model.CurrencyBRL)
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	s = strings.ReplaceAll(s, ".", "")
	if strings.Count(s, ",") > 1 {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	s = strings.Replace(s, ",", ".", 1)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative %q", ErrInvalidAmount, raw)
	}
	return d, nil
}

// TrocoSatisfied reports whether the troco condition holds for t.
// Types without troco always pass; the others need a parseable non-zero amount.
func TrocoSatisfied(t model.ProposalType, troco string) bool {
	if !t.RequiresTroco() {
		return true
	}
	d, err := ParseAmount(troco)
	if err != nil {
		return false
	}
	return !d.IsZero()
}

// FormatAmount renders d in pt-BR notation with two decimals.
func FormatAmount(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String() + "," + frac
}

// DisplayAmount renders stored amount text as "R$ 1.234,56". Empty text stays
// empty and text that does not parse is returned unchanged.
func DisplayAmount(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	d, err := ParseAmount(raw)
	if err != nil {
		return raw
	}
	return model.CurrencyBRL + " " + FormatAmount(d)
}

// SanitizeAmountInput keeps digits and the first comma, with at most two decimals.
func SanitizeAmountInput(raw string) string {
	var b strings.Builder
	comma := false
	decimals := 0
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			if comma {
				if decimals == 2 {
					continue
				}
				decimals++
			}
			b.WriteRune(r)
		case r == ',' && !comma:
			comma = true
			b.WriteRune(r)
		}
	}
	return b.String()
}
