package model

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// dateLayouts are the accepted work date notations. A single digit day or
// month is accepted by the layouts as well.
var dateLayouts = []string{
	"2.1.2006",
	"2/1/2006",
}

// ParseDate parses DD.MM.YYYY or DD/MM/YYYY text. Surrounding whitespace is ignored.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseNumber parses locale formatted numeric text: all whitespace is
// removed and a comma is read as the decimal separator. Only plain
// [+-]digits[.digits] text is accepted; exponents are rejected.
func ParseNumber(s string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		if r == ',' {
			return '.'
		}
		return r
	}, s)
	if !isPlainNumber(cleaned) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// isPlainNumber reports whether s is an optionally signed decimal number
// without exponent, e.g. "-12.5", "3." or ".75".
func isPlainNumber(s string) bool {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	digits, separators := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			separators++
		default:
			return false
		}
	}
	return digits > 0 && separators <= 1
}

// ParseMeasure parses a duration for summation. Text that is not numeric
// contributes zero; it never fails.
func ParseMeasure(s string) decimal.Decimal {
	d, _ := ParseNumber(s)
	return d
}
