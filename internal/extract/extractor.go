package extract

import (
	"log/slog"
	"regexp"

	"github.com/Veraticus/spice-extract/internal/common"
	"github.com/Veraticus/spice-extract/internal/model"
)

// Entity is a known product of a template, with the canonical name and
// category assigned when one of its patterns is found.
type Entity struct {
	Name     string
	Category string
	Patterns []*regexp.Regexp
}

// LayerDictionary marks records categorized by the known-entity dictionary.
const LayerDictionary = "dictionary"

// Extractor runs the known-entity and generic passes over receipt text.
type Extractor struct {
	grammar  *Grammar
	service  *ServiceLines
	entities map[string][]Entity
	logger   *slog.Logger
}

// NewExtractor creates an extractor. entities is keyed by template name.
func NewExtractor(grammar *Grammar, service *ServiceLines, entities map[string][]Entity, logger *slog.Logger) *Extractor {
	return &Extractor{
		grammar:  grammar,
		service:  service,
		entities: entities,
		logger:   common.LoggerOrDefault(logger),
	}
}

// Grammar returns the price grammar used for line items.
func (e *Extractor) Grammar() *Grammar {
	return e.grammar
}

// Receipt extracts line items from text. An empty template name means the
// source was not recognized and only the generic pass runs. Known-entity
// records come first, followed by generic records in line order.
func (e *Extractor) Receipt(text, templateName string) []model.ExtractedRecord {
	lines := SplitLines(text)
	consumed := make([]bool, len(lines))

	var records []model.ExtractedRecord
	if templateName != "" {
		records = append(records, e.knownEntities(lines, consumed, e.entities[templateName])...)
	}
	known := len(records)
	records = append(records, e.generic(lines, consumed)...)

	e.logger.Debug("Extracted receipt items",
		"template", templateName,
		"lines", len(lines),
		"known", known,
		"generic", len(records)-known)

	return records
}

// knownEntities finds each entity's first line and takes its price from the
// line itself or an immediate neighbour that carries only a price.
func (e *Extractor) knownEntities(lines []model.RawLine, consumed []bool, entities []Entity) []model.ExtractedRecord {
	var records []model.ExtractedRecord

	for _, ent := range entities {
		at := -1
		for i, ln := range lines {
			if !consumed[i] && common.MatchAny(ent.Patterns, ln.Text) {
				at = i
				break
			}
		}
		if at < 0 {
			continue
		}

		priceAt, price, ok := e.neighbourPrice(lines, consumed, at)
		if !ok {
			e.logger.Debug("Known entity without price", "entity", ent.Name, "line", lines[at].Index)
			continue
		}

		consumed[at] = true
		consumed[priceAt] = true
		records = append(records, model.ExtractedRecord{
			Name:       ent.Name,
			Amount:     price.Amount,
			Quantity:   price.Quantity,
			Category:   ent.Category,
			Confidence: 1.0,
			Layer:      LayerDictionary,
			SourceKind: model.SourceReceipt,
			Direction:  model.DirectionExpense,
		})
	}
	return records
}

func (e *Extractor) neighbourPrice(lines []model.RawLine, consumed []bool, at int) (int, PriceMatch, bool) {
	if p, ok := e.grammar.Price(lines[at].Text); ok {
		return at, p, true
	}
	for _, i := range []int{at + 1, at - 1} {
		if i < 0 || i >= len(lines) || consumed[i] {
			continue
		}
		if e.service.Match(lines[i].Text) {
			continue
		}
		if p, ok := e.grammar.Price(lines[i].Text); ok && priceOnly(lines[i].Text, p) {
			return i, p, true
		}
	}
	return 0, PriceMatch{}, false
}

// generic scans the remaining lines for anything with a price and a name.
func (e *Extractor) generic(lines []model.RawLine, consumed []bool) []model.ExtractedRecord {
	var records []model.ExtractedRecord
	for i, ln := range lines {
		if consumed[i] || e.service.Match(ln.Text) {
			continue
		}
		price, ok := e.grammar.Price(ln.Text)
		if !ok {
			continue
		}
		name := CleanName(ln.Text, price)
		if name == "" {
			continue
		}
		consumed[i] = true
		records = append(records, model.ExtractedRecord{
			Name:       name,
			Amount:     price.Amount,
			Quantity:   price.Quantity,
			SourceKind: model.SourceReceipt,
			Direction:  model.DirectionExpense,
		})
	}
	return records
}
