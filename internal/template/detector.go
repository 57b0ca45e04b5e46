package template

import (
	"log/slog"
	"unicode/utf8"

	"github.com/Veraticus/spice-extract/internal/common"
	"github.com/Veraticus/spice-extract/internal/model"
)

// Selection is the text chosen for extraction and the template it matched.
// An unrecognized selection carries a zero Template and only generic
// extraction applies.
type Selection struct {
	Template   Template
	Strategy   string
	Candidate  model.TextCandidate
	Recognized bool
}

// Strategy is one step of the detection fallback chain.
type Strategy interface {
	Name() string
	Select(set *Set, ranked []model.TextCandidate, hint string) (Selection, bool)
}

// Detector evaluates strategies in order; the first to select wins.
type Detector struct {
	set        *Set
	logger     *slog.Logger
	strategies []Strategy
}

// DefaultStrategies is the standard chain: declared origin, pattern match,
// then longest text.
func DefaultStrategies() []Strategy {
	return []Strategy{HintStrategy{}, PatternStrategy{}, LongestStrategy{}}
}

// NewDetector creates a detector over set.
func NewDetector(set *Set, strategies []Strategy, logger *slog.Logger) *Detector {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Detector{set: set, strategies: strategies, logger: common.LoggerOrDefault(logger)}
}

// Set returns the templates the detector recognizes.
func (d *Detector) Set() *Set {
	return d.set
}

// Select picks the text and template for extraction. It reports false only
// when there are no candidates at all.
func (d *Detector) Select(cands []model.TextCandidate, hint string) (Selection, bool) {
	if len(cands) == 0 {
		return Selection{}, false
	}
	ranked := d.set.Rank(cands)

	for _, s := range d.strategies {
		sel, ok := s.Select(d.set, ranked, hint)
		if !ok {
			continue
		}
		sel.Strategy = s.Name()
		d.logger.Debug("Selected text candidate",
			"strategy", sel.Strategy,
			"template", sel.Template.Name,
			"recognized", sel.Recognized,
			"variant", sel.Candidate.Variant,
			"profile", sel.Candidate.Profile)
		return sel, true
	}
	return Selection{}, false
}

// HintStrategy trusts a declared origin that names a known template.
type HintStrategy struct{}

// Name implements Strategy.
func (HintStrategy) Name() string { return "hint" }

// Select implements Strategy.
func (HintStrategy) Select(set *Set, ranked []model.TextCandidate, hint string) (Selection, bool) {
	if hint == "" {
		return Selection{}, false
	}
	t, ok := set.Lookup(hint)
	if !ok {
		return Selection{}, false
	}
	for _, c := range ranked {
		if t.Matches(c.Text) {
			return Selection{Template: t, Candidate: c, Recognized: true}, true
		}
	}
	return Selection{Template: t, Candidate: longest(ranked), Recognized: true}, true
}

// PatternStrategy scans templates in specificity order and takes the first
// ranked candidate matching any of a template's patterns.
type PatternStrategy struct{}

// Name implements Strategy.
func (PatternStrategy) Name() string { return "pattern" }

// Select implements Strategy.
func (PatternStrategy) Select(set *Set, ranked []model.TextCandidate, _ string) (Selection, bool) {
	for _, t := range set.templates {
		for _, c := range ranked {
			if t.Matches(c.Text) {
				return Selection{Template: t, Candidate: c, Recognized: true}, true
			}
		}
	}
	return Selection{}, false
}

// LongestStrategy falls back to the longest candidate in generic mode.
type LongestStrategy struct{}

// Name implements Strategy.
func (LongestStrategy) Name() string { return "longest" }

// Select implements Strategy.
func (LongestStrategy) Select(_ *Set, ranked []model.TextCandidate, _ string) (Selection, bool) {
	if len(ranked) == 0 {
		return Selection{}, false
	}
	return Selection{Candidate: longest(ranked)}, true
}

func longest(cands []model.TextCandidate) model.TextCandidate {
	best := cands[0]
	bestLen := utf8.RuneCountInString(best.Text)
	for _, c := range cands[1:] {
		if n := utf8.RuneCountInString(c.Text); n > bestLen {
			best, bestLen = c, n
		}
	}
	return best
}
