// Package dedupe removes records that two extraction passes found twice.
package dedupe

import (
	"unicode/utf8"

	"github.com/Veraticus/spice-extract/internal/common"
	"github.com/Veraticus/spice-extract/internal/model"
)

// ByName keeps the first record per folded name. Records whose folded name
// is shorter than minLen runes are dropped, since such fragments are OCR
// debris rather than products. Identical products bought on separate lines
// collapse into one record.
func ByName(records []model.ExtractedRecord, minLen int) []model.ExtractedRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]model.ExtractedRecord, 0, len(records))

	for _, r := range records {
		key := common.FoldName(r.Name)
		if utf8.RuneCountInString(key) < minLen {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// ByKey keeps the first statement record per (date, name, amount, direction).
// Rows that repeat the same description on different days are distinct
// transactions and survive.
func ByKey(records []model.ExtractedRecord) []model.ExtractedRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]model.ExtractedRecord, 0, len(records))

	for _, r := range records {
		key := r.GenerateHash()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
