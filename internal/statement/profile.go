package statement

import "regexp"

// Profile captures what differs between banks: header vocabulary, sign
// conventions, rows to ignore, and the PDF line layout.
type Profile struct {
	// Line matches one PDF statement row with date, description, amount,
	// and an optional running balance.
	Line    *regexp.Regexp
	Dialect Dialect
	// Headers are extra synonyms tried before the common ones.
	Headers map[Role][]string
	// SkipStatuses lists status column values of rows that never settled.
	SkipStatuses []string
	// UnsignedIsDebit treats amounts without an explicit plus sign as
	// spending, as banks that print "+" only on incoming money do.
	UnsignedIsDebit bool
}

const (
	pdfDate   = `(\d{2}[./]\d{2}[./]\d{2,4})(?:\s+\d{2}:\d{2}(?::\d{2})?)?`
	pdfAmount = `([+\-−–]?\s?\d{1,3}(?:[ \x{00a0}]?\d{3})*[.,]\d{2})`
	pdfCcy    = `(?:\s*(?:₽|руб\.?|RUB|USD|EUR|\$|€))?`
)

var genericLine = regexp.MustCompile(`^` + pdfDate + `\s+(.+?)\s+` + pdfAmount + pdfCcy + `(?:\s+` + pdfAmount + pdfCcy + `)?$`)

// Profiles returns the built-in dialect profiles, generic first.
func Profiles() []Profile {
	return []Profile{
		{
			Dialect: DialectGeneric,
			Line:    genericLine,
		},
		{
			Dialect: DialectTinkoff,
			Line:    genericLine,
			Headers: map[Role][]string{
				RoleDate:        {"дата операции"},
				RoleAmount:      {"сумма операции"},
				RoleDescription: {"описание"},
				RoleStatus:      {"статус"},
			},
			SkipStatuses: []string{"failed", "отклонена"},
		},
		{
			Dialect: DialectSberbank,
			// Sberbank prints the posting date twice and the category
			// before the description.
			Line: regexp.MustCompile(`^` + pdfDate + `(?:\s+\d{2}\.\d{2}\.\d{4})?\s+(.+?)\s+` + pdfAmount + pdfCcy + `(?:\s+` + pdfAmount + pdfCcy + `)?$`),
			Headers: map[Role][]string{
				RoleDate:        {"дата операции"},
				RoleAmount:      {"сумма в валюте счёта", "сумма в валюте счета"},
				RoleDescription: {"описание операции"},
			},
			UnsignedIsDebit: true,
		},
		{
			Dialect: DialectAlfa,
			Line:    genericLine,
			Headers: map[Role][]string{
				RoleDate:        {"дата операции"},
				RoleDescription: {"описание", "назначение платежа"},
				RoleDebit:       {"расход"},
				RoleCredit:      {"приход"},
			},
		},
	}
}

// ProfileFor returns the built-in profile of d, or the generic one.
func ProfileFor(d Dialect) Profile {
	ps := Profiles()
	for _, p := range ps {
		if p.Dialect == d {
			return p
		}
	}
	return ps[0]
}
