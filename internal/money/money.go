// Package money parses monetary amounts as they appear on receipts and in
// bank exports.
package money

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for text that is not a monetary amount.
var ErrInvalidAmount = errors.New("invalid amount")

var currencyTokens = []string{
	"руб.", "руб", "р.", "₽", "rub", "rur",
	"usd", "$", "eur", "€", "kzt", "тг", "₸", "gbp", "£",
}

// Parse reads a signed amount. It accepts space, apostrophe, or separator
// thousands grouping, comma or dot decimals, unicode minus signs,
// accounting parentheses, currency symbols, and CR/DR suffixes (CR positive,
// DR negative).
func Parse(s string) (decimal.Decimal, error) {
	orig := s
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	negative := false
	switch {
	case strings.HasSuffix(s, "dr"):
		negative = true
		s = strings.TrimSuffix(s, "dr")
	case strings.HasSuffix(s, "cr"):
		s = strings.TrimSuffix(s, "cr")
	}

	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = !negative
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '-' || r == '−' || r == '–' || r == '—':
			if b.Len() == 0 {
				negative = !negative
			}
		case r == '+':
		case unicode.IsDigit(r), r == '.', r == ',':
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '\'', r == '’':
		default:
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, orig)
		}
	}

	digits := normalizeSeparators(b.String())
	if digits == "" || digits == "." {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, orig)
	}

	d, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, orig)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// normalizeSeparators decides which of ',' and '.' is the decimal point and
// removes grouping separators.
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')

	decimalAt := -1
	switch {
	case lastDot >= 0 && lastComma >= 0:
		decimalAt = max(lastDot, lastComma)
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 != 3 {
			decimalAt = lastComma
		}
	case lastDot >= 0:
		if strings.Count(s, ".") == 1 {
			decimalAt = lastDot
		}
	}

	var b strings.Builder
	for i, r := range s {
		switch {
		case i == decimalAt:
			b.WriteByte('.')
		case r == '.' || r == ',':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Cents rounds an amount to two decimal places.
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// InRange reports whether min <= d <= max.
func InRange(d, lo, hi decimal.Decimal) bool {
	return d.GreaterThanOrEqual(lo) && d.LessThanOrEqual(hi)
}
