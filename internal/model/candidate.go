package model

// Quality is the explicit score of an OCR text candidate.
type Quality struct {
	TemplateMatches int
	Length          int
}

// Score collapses the quality into a single comparable number.
// Any template hit outranks any amount of unrecognized text.
func (q Quality) Score() float64 {
	return float64(q.TemplateMatches)*1e6 + float64(q.Length)
}

// TextCandidate is the text produced by one (image variant, OCR profile) pair.
type TextCandidate struct {
	Variant string
	Profile string
	Text    string
	Quality Quality
}

// RawLine is one line of selected text, with its position.
type RawLine struct {
	Text  string
	Index int
}
