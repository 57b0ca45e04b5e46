package ocr

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Veraticus/spice-extract/internal/common"
)

var (
	reSpaces    = regexp.MustCompile(`[ \t\f\v]+`)
	reBlankRuns = regexp.MustCompile(`\n{3,}`)
	// "12 ,50" and "12. 50" are split decimals.
	reSplitDecimal = regexp.MustCompile(`(\d) *([.,]) *(\d{2})\b`)
	// Box-drawing and leader noise from receipt separators.
	reBoxNoise = regexp.MustCompile(`[│┃┆┇┊┋|]{2,}|[_=~]{4,}`)
)

// Normalize cleans raw engine output without discarding content.
func Normalize(s string) string {
	s = common.SanitizeUTF8(s)
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = reBoxNoise.ReplaceAllString(s, " ")
	s = reSplitDecimal.ReplaceAllString(s, "$1$2$3")

	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimSpace(reSpaces.ReplaceAllString(ln, " "))
	}
	s = strings.Join(lines, "\n")
	s = reBlankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
