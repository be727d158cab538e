package common

import "strings"

// DigitsOnly strips everything but ASCII digits.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCPF renders the digits of s progressively as 000.000.000-00.
// Input longer than 11 digits is truncated.
func FormatCPF(s string) string {
	d := DigitsOnly(s)
	if len(d) > 11 {
		d = d[:11]
	}

	var b strings.Builder
	for i, r := range d {
		switch i {
		case 3, 6:
			b.WriteByte('.')
		case 9:
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return b.String()
}
