// Package extract pulls line items out of selected receipt text.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-extract/internal/money"
)

const (
	// leadExpr keeps a price from starting inside a date or a longer number.
	leadExpr   = `(?:^|[^\d.,])`
	priceExpr  = `(\d+[.,]\d{2})`
	qtyExpr    = `(\d+(?:[.,]\d+)?)`
	timesExpr  = `\s*[xхXХ×*]\s*`
	markerExpr = `(?:\s*[-_*=]\s*|\s+)[AАБB]\s*$`
	// currencyExpr is matched case-insensitively.
	currencyExpr = `(?:руб\.?|р\.|₽|rub|rur|тг|kzt|₸|usd|eur|€|\$)`
)

// PriceMatch is a price found on a line.
type PriceMatch struct {
	Amount   decimal.Decimal
	Rule     string
	Quantity int
	// Start and End delimit the price expression within the line.
	Start, End int
}

// PriceRule is one alternative of the price grammar.
type PriceRule interface {
	Name() string
	Match(line string) (PriceMatch, bool)
}

// regexRule matches a line with re and turns the submatches into a price.
type regexRule struct {
	re    *regexp.Regexp
	build func(groups []string) (decimal.Decimal, int, bool)
	name  string
}

func (r regexRule) Name() string { return r.name }

func (r regexRule) Match(line string) (PriceMatch, bool) {
	loc := r.re.FindStringSubmatchIndex(line)
	if loc == nil {
		return PriceMatch{}, false
	}
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = line[loc[2*i]:loc[2*i+1]]
		}
	}
	amount, qty, ok := r.build(groups)
	if !ok {
		return PriceMatch{}, false
	}
	return PriceMatch{Amount: amount, Quantity: qty, Rule: r.name, Start: loc[2], End: loc[1]}, true
}

// DefaultRules returns the price grammar in evaluation order.
func DefaultRules() []PriceRule {
	return []PriceRule{
		regexRule{
			name:  "qty-total-marked",
			re:    regexp.MustCompile(leadExpr + priceExpr + timesExpr + qtyExpr + `\s*=\s*` + priceExpr + markerExpr),
			build: explicitTotal,
		},
		regexRule{
			name:  "qty-total",
			re:    regexp.MustCompile(leadExpr + priceExpr + timesExpr + qtyExpr + `(?:\s*=\s*` + priceExpr + `)?`),
			build: multiplied,
		},
		regexRule{
			name:  "marked",
			re:    regexp.MustCompile(leadExpr + priceExpr + markerExpr),
			build: single(1),
		},
		regexRule{
			name:  "currency",
			re:    regexp.MustCompile(`(?i)` + leadExpr + priceExpr + `\s*` + currencyExpr),
			build: single(1),
		},
		regexRule{
			name:  "trailing",
			re:    regexp.MustCompile(leadExpr + priceExpr + `\s*$`),
			build: single(1),
		},
	}
}

func parsePrice(s string) (decimal.Decimal, bool) {
	d, err := money.Parse(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// parseQuantity returns the item count. Fractional quantities are weights
// and count as a single item.
func parseQuantity(s string) (decimal.Decimal, int, bool) {
	q, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil || !q.IsPositive() {
		return decimal.Zero, 0, false
	}
	if !q.IsInteger() {
		return q, 1, true
	}
	n, err := strconv.Atoi(q.String())
	if err != nil || n < 1 {
		return decimal.Zero, 0, false
	}
	return q, n, true
}

func explicitTotal(g []string) (decimal.Decimal, int, bool) {
	_, n, ok := parseQuantity(g[2])
	if !ok {
		return decimal.Zero, 0, false
	}
	total, ok := parsePrice(g[3])
	return total, n, ok
}

func multiplied(g []string) (decimal.Decimal, int, bool) {
	q, n, ok := parseQuantity(g[2])
	if !ok {
		return decimal.Zero, 0, false
	}
	if g[3] != "" {
		total, ok := parsePrice(g[3])
		return total, n, ok
	}
	unit, ok := parsePrice(g[1])
	if !ok {
		return decimal.Zero, 0, false
	}
	return money.Cents(unit.Mul(q)), n, true
}

func single(group int) func([]string) (decimal.Decimal, int, bool) {
	return func(g []string) (decimal.Decimal, int, bool) {
		d, ok := parsePrice(g[group])
		return d, 1, ok
	}
}

// Grammar evaluates price rules in order; the first rule that matches a
// line decides its price.
type Grammar struct {
	rules    []PriceRule
	min, max decimal.Decimal
}

// NewGrammar creates a grammar that rejects prices outside [min, max].
func NewGrammar(rules []PriceRule, min, max decimal.Decimal) *Grammar {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Grammar{rules: rules, min: min, max: max}
}

// Price finds the price of a line. A price outside the plausible bounds
// means the line has no price; later rules are not consulted.
func (g *Grammar) Price(line string) (PriceMatch, bool) {
	for _, r := range g.rules {
		m, ok := r.Match(line)
		if !ok {
			continue
		}
		if !money.InRange(m.Amount, g.min, g.max) {
			return PriceMatch{}, false
		}
		return m, true
	}
	return PriceMatch{}, false
}
