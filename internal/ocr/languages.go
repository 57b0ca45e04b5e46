package ocr

import "strings"

// splitLanguages turns tesseract's "rus+eng" form into a list.
func splitLanguages(s string) []string {
	var langs []string
	for _, l := range strings.Split(s, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}
