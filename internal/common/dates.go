package common

import (
	"strings"
	"time"
)

// dateLayouts to try when parsing dates from receipts and statements.
var dateLayouts = []string{
	"02.01.2006",          // DD.MM.YYYY
	"02.01.2006 15:04",    // DD.MM.YYYY HH:MM
	"02.01.2006 15:04:05", // DD.MM.YYYY HH:MM:SS
	"2006-01-02",          // YYYY-MM-DD
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006", // DD/MM/YYYY
	"2/1/2006",
	"02-01-2006",
	"2006/01/02",
	"02.01.06", // DD.MM.YY
	"02/01/06",
	"02 Jan 2006",
	"Jan 02, 2006",
	"Jan 2, 2006",
}

// ParseDate parses a date in any of the layouts seen on receipts and bank
// exports. Day-first layouts win over month-first ones.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() < 100 {
				t = t.AddDate(2000, 0, 0)
			}
			return t, true
		}
	}
	return time.Time{}, false
}
