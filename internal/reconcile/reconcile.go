// Package reconcile decides a document's total from competing signals.
package reconcile

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-extract/internal/model"
	"github.com/Veraticus/spice-extract/internal/money"
)

// amountExpr admits thousands grouped by spaces, which totals often use.
var reAmount = regexp.MustCompile(`(?:^|[^\d.,])(\d{1,3}(?:[ \x{00A0}]\d{3})+[.,]\d{2}|\d+[.,]\d{2})`)

// Input is what strategies inspect.
type Input struct {
	Text    string
	Records []model.ExtractedRecord
}

// Strategy proposes a total, or nothing.
type Strategy interface {
	Name() string
	Total(in Input) (decimal.Decimal, bool)
}

// Bounds is the plausible range of a document total.
type Bounds struct {
	Min, Max decimal.Decimal
}

func (b Bounds) contains(d decimal.Decimal) bool {
	return money.InRange(d, b.Min, b.Max)
}

// Reconciler evaluates strategies in order. A proposal smaller than the
// largest record is implausible and skipped.
type Reconciler struct {
	strategies []Strategy
}

// New creates a reconciler over an ordered strategy list.
func New(strategies ...Strategy) *Reconciler {
	return &Reconciler{strategies: strategies}
}

// ForReceipts is the standard chain: labeled total, largest number, sum of items.
func ForReceipts(labels []*regexp.Regexp, b Bounds) *Reconciler {
	return New(Labeled{Labels: labels, Bounds: b}, LargestNumber{Bounds: b}, ItemsSum{})
}

// ForStatements totals statement rows by summing them.
func ForStatements() *Reconciler {
	return New(ItemsSum{})
}

// Reconcile returns the total and the name of the strategy that produced
// it. Zero with an empty name means nothing usable was found.
func (r *Reconciler) Reconcile(in Input) (decimal.Decimal, string) {
	floor := largestRecord(in.Records)
	for _, s := range r.strategies {
		total, ok := s.Total(in)
		if !ok || !total.IsPositive() || total.LessThan(floor) {
			continue
		}
		return total, s.Name()
	}
	return decimal.Zero, ""
}

func largestRecord(records []model.ExtractedRecord) decimal.Decimal {
	largest := decimal.Zero
	for _, r := range records {
		if r.Amount.GreaterThan(largest) {
			largest = r.Amount
		}
	}
	return largest
}

// amounts returns every money-like value in s, in order.
func amounts(s string) []decimal.Decimal {
	var out []decimal.Decimal
	for _, m := range reAmount.FindAllStringSubmatch(s, -1) {
		if d, err := money.Parse(m[1]); err == nil {
			out = append(out, d)
		}
	}
	return out
}

// Labeled takes the largest in-range amount that follows a total keyword.
type Labeled struct {
	Labels []*regexp.Regexp
	Bounds Bounds
}

// Name implements Strategy.
func (Labeled) Name() string { return "labeled" }

// Total implements Strategy.
func (l Labeled) Total(in Input) (decimal.Decimal, bool) {
	best, found := decimal.Zero, false
	for _, line := range strings.Split(in.Text, "\n") {
		for _, re := range l.Labels {
			loc := re.FindStringIndex(line)
			if loc == nil {
				continue
			}
			for _, d := range amounts(line[loc[1]:]) {
				if l.Bounds.contains(d) && d.GreaterThan(best) {
					best, found = d, true
				}
			}
		}
	}
	return best, found
}

// LargestNumber takes the largest in-range amount anywhere in the text.
type LargestNumber struct {
	Bounds Bounds
}

// Name implements Strategy.
func (LargestNumber) Name() string { return "largest-number" }

// Total implements Strategy.
func (l LargestNumber) Total(in Input) (decimal.Decimal, bool) {
	best, found := decimal.Zero, false
	for _, d := range amounts(in.Text) {
		if l.Bounds.contains(d) && d.GreaterThan(best) {
			best, found = d, true
		}
	}
	return best, found
}

// ItemsSum adds up record amounts.
type ItemsSum struct{}

// Name implements Strategy.
func (ItemsSum) Name() string { return "items-sum" }

// Total implements Strategy.
func (ItemsSum) Total(in Input) (decimal.Decimal, bool) {
	if len(in.Records) == 0 {
		return decimal.Zero, false
	}
	sum := decimal.Zero
	for _, r := range in.Records {
		sum = sum.Add(r.Amount)
	}
	return sum, true
}
