package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Veraticus/spice-extract/internal/model"
)

var (
	reBarcode    = regexp.MustCompile(`\d{5,}`)
	reLineNumber = regexp.MustCompile(`^\s*(?:№\s*)?\d{1,3}\s*[.):]\s*`)
	reDiscount   = regexp.MustCompile(`(?i)(?:скидка|скидки|акция|discount|promo|sale)\s*:?\s*-?\d*(?:[.,]\d+)?\s*%?|-\d+(?:[.,]\d+)?\s*%`)
	reCount      = regexp.MustCompile(`(?i)\d+\s*(?:шт|pcs|ea)\.?`)
	reLeftover   = regexp.MustCompile(`\d+[.,]\d{2}`)
	reArticle    = regexp.MustCompile(`^[#*]?\s*[A-ZА-Я]{0,2}\d{3,}\s+`)
	reSpaceRun   = regexp.MustCompile(`\s+`)
)

const edgeJunk = " \t*-=:#.,;_|/\\\"'`~+<>()[]{}"

// SplitLines breaks text into positioned lines, dropping blank ones.
func SplitLines(text string) []model.RawLine {
	var lines []model.RawLine
	for i, ln := range strings.Split(text, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, model.RawLine{Index: i, Text: ln})
		}
	}
	return lines
}

// ServiceLines recognizes receipt boilerplate: payment, terminal, cashier,
// tax, and total lines.
type ServiceLines struct {
	patterns []*regexp.Regexp
}

// NewServiceLines wraps compiled service-line patterns.
func NewServiceLines(patterns []*regexp.Regexp) *ServiceLines {
	return &ServiceLines{patterns: patterns}
}

// Match reports whether line is boilerplate.
func (s *ServiceLines) Match(line string) bool {
	for _, re := range s.patterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// CleanName strips the price expression and receipt noise from a line and
// returns what remains as the item name. The result is empty when nothing
// resembling a name survives.
func CleanName(line string, price PriceMatch) string {
	name := line
	if price.End > price.Start {
		name = line[:price.Start] + " " + line[price.End:]
	}

	name = reLineNumber.ReplaceAllString(name, "")
	name = reArticle.ReplaceAllString(name, "")
	name = reBarcode.ReplaceAllString(name, " ")
	name = reDiscount.ReplaceAllString(name, " ")
	name = reCount.ReplaceAllString(name, " ")
	name = reLeftover.ReplaceAllString(name, " ")
	name = reSpaceRun.ReplaceAllString(name, " ")
	name = strings.Trim(name, edgeJunk)

	if !hasLetters(name, 2) {
		return ""
	}
	return name
}

// hasLetters reports whether s contains at least n letters.
func hasLetters(s string, n int) bool {
	count := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			count++
			if count >= n {
				return true
			}
		}
	}
	return false
}

// priceOnly reports whether a line carries a price and nothing that looks
// like a separate item name.
func priceOnly(line string, price PriceMatch) bool {
	return CleanName(line, price) == ""
}
