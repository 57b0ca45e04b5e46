package template

import (
	"sort"
	"unicode/utf8"

	"github.com/Veraticus/spice-extract/internal/model"
)

// Score rates a candidate text: total template pattern hits, with length as
// the tie-breaker when nothing matches.
func (s *Set) Score(text string) model.Quality {
	q := model.Quality{Length: utf8.RuneCountInString(text)}
	for _, t := range s.templates {
		q.TemplateMatches += t.MatchCount(text)
	}
	return q
}

// Rank scores candidates and orders them best first. Equal scores keep
// their generation order.
func (s *Set) Rank(cands []model.TextCandidate) []model.TextCandidate {
	ranked := make([]model.TextCandidate, len(cands))
	copy(ranked, cands)
	for i := range ranked {
		ranked[i].Quality = s.Score(ranked[i].Text)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Quality.Score() > ranked[j].Quality.Score()
	})
	return ranked
}
