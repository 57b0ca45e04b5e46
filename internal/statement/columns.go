package statement

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/spice-extract/internal/common"
	"github.com/Veraticus/spice-extract/internal/model"
	"github.com/Veraticus/spice-extract/internal/money"
)

// Role is the meaning of a statement column.
type Role string

// Column roles.
const (
	RoleDate        Role = "date"
	RoleDescription Role = "description"
	RoleAmount      Role = "amount"
	RoleDebit       Role = "debit"
	RoleCredit      Role = "credit"
	RoleStatus      Role = "status"
)

// Split columns are checked before amount so "Сумма расхода" is a debit.
var roleOrder = []Role{RoleStatus, RoleDebit, RoleCredit, RoleDate, RoleDescription, RoleAmount}

var synonyms = map[Role][]string{
	RoleDate:        {"дата", "date", "posted", "время"},
	RoleDescription: {"описание", "назначение", "наименование", "контрагент", "получатель", "description", "details", "memo", "payee", "narrative"},
	RoleAmount:      {"сумма", "amount", "sum", "value"},
	RoleDebit:       {"расход", "списание", "дебет", "debit", "withdrawal", "outflow", "paid out"},
	RoleCredit:      {"приход", "зачисление", "поступление", "кредит", "credit", "deposit", "inflow", "paid in"},
}

// Columns maps roles to column indexes; -1 means absent.
type Columns struct {
	Date        int
	Description int
	Amount      int
	Debit       int
	Credit      int
	Status      int
}

// Positional is the layout assumed when no header is recognized.
func Positional() Columns {
	return Columns{Date: 0, Description: 1, Amount: 2, Debit: -1, Credit: -1, Status: -1}
}

// DetectColumns matches header cells against the profile's synonyms and the
// common ones. The first column claiming a role keeps it.
func DetectColumns(header []string, p Profile) (Columns, bool) {
	cols := Columns{Date: -1, Description: -1, Amount: -1, Debit: -1, Credit: -1, Status: -1}
	slot := map[Role]*int{
		RoleDate: &cols.Date, RoleDescription: &cols.Description, RoleAmount: &cols.Amount,
		RoleDebit: &cols.Debit, RoleCredit: &cols.Credit, RoleStatus: &cols.Status,
	}

	folded := make([]string, len(header))
	for i, h := range header {
		folded[i] = common.FoldName(h)
	}

	// Dialect synonyms are exact header names and claim columns first.
	for _, role := range roleOrder {
		for _, syn := range p.Headers[role] {
			syn = common.FoldName(syn)
			for i, h := range folded {
				if *slot[role] < 0 && h == syn && !cols.claimed(i) {
					*slot[role] = i
				}
			}
		}
	}

	for i, h := range folded {
		if h == "" || cols.claimed(i) {
			continue
		}
		for _, role := range roleOrder {
			if *slot[role] >= 0 || !containsAny(h, synonyms[role]) {
				continue
			}
			*slot[role] = i
			break
		}
	}

	hasMoney := cols.Amount >= 0 || cols.Debit >= 0 || cols.Credit >= 0
	return cols, cols.Date >= 0 && cols.Description >= 0 && hasMoney
}

func (c Columns) claimed(i int) bool {
	return i == c.Date || i == c.Description || i == c.Amount || i == c.Debit || i == c.Credit || i == c.Status
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Row reads one data row. It fails on rows without a date, description, or
// non-zero amount.
func (c Columns) Row(row []string, p Profile) (model.StatementRow, error) {
	if c.Status >= 0 {
		status := common.FoldName(cell(row, c.Status))
		for _, s := range p.SkipStatuses {
			if status == common.FoldName(s) {
				return model.StatementRow{}, fmt.Errorf("status %q", status)
			}
		}
	}

	date, ok := parseCellDate(cell(row, c.Date))
	if !ok {
		return model.StatementRow{}, fmt.Errorf("bad date %q", cell(row, c.Date))
	}

	desc := strings.Join(strings.Fields(cell(row, c.Description)), " ")
	if desc == "" {
		return model.StatementRow{}, fmt.Errorf("empty description")
	}

	if c.Debit >= 0 || c.Credit >= 0 {
		if v := cell(row, c.Debit); v != "" {
			if amt, err := money.Parse(v); err == nil && !amt.IsZero() {
				return model.NewStatementRow(date, desc, amt, true), nil
			}
		}
		if v := cell(row, c.Credit); v != "" {
			if amt, err := money.Parse(v); err == nil && !amt.IsZero() {
				return model.NewStatementRow(date, desc, amt.Abs(), false), nil
			}
		}
		if c.Amount < 0 {
			return model.StatementRow{}, fmt.Errorf("no debit or credit amount")
		}
	}

	raw := cell(row, c.Amount)
	amt, err := money.Parse(raw)
	if err != nil {
		return model.StatementRow{}, err
	}
	if amt.IsZero() {
		return model.StatementRow{}, fmt.Errorf("zero amount")
	}
	debit := p.UnsignedIsDebit && !strings.HasPrefix(raw, "+")
	return model.NewStatementRow(date, desc, amt, debit), nil
}

// parseCellDate also accepts spreadsheet serial dates.
func parseCellDate(s string) (time.Time, bool) {
	if t, ok := common.ParseDate(s); ok {
		return t, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 20000 && f < 80000 {
		if t, err := excelize.ExcelDateToTime(f, false); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
