package extract

import (
	"regexp"
	"time"

	"github.com/Veraticus/spice-extract/internal/common"
)

var reReceiptDate = regexp.MustCompile(`\b(\d{2}[./-]\d{2}[./-](?:\d{4}|\d{2})|\d{4}-\d{2}-\d{2})\b`)

// DateFromText returns the first parsable date printed on a receipt.
func DateFromText(text string) (time.Time, bool) {
	for _, m := range reReceiptDate.FindAllString(text, -1) {
		if t, ok := common.ParseDate(m); ok {
			return t, true
		}
	}
	return time.Time{}, false
}
