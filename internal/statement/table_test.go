package statement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/Veraticus/spice-extract/internal/model"
)

func parseCSV(t *testing.T, data string, p Profile) []model.StatementRow {
	t.Helper()
	doc := model.NewSourceDocument("stmt.csv", []byte(data), model.KindDelimited, "")
	rows, err := NewTableAdapter(FormatCSV, p, ReadCSV, nil).Parse(context.Background(), doc)
	require.NoError(t, err)
	return rows
}

func TestCSVSingleExpenseRow(t *testing.T) {
	rows := parseCSV(t, "Date,Description,Amount\n2025-06-01,\"Grocery Store\",-450.50\n", ProfileFor(DialectGeneric))

	require.Len(t, rows, 1)
	assert.Equal(t, "Grocery Store", rows[0].Description)
	assert.Equal(t, "450.50", rows[0].Amount.StringFixed(2))
	assert.Equal(t, model.DirectionExpense, rows[0].Direction)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), rows[0].Date)
}

func TestCSVSkipsBadRows(t *testing.T) {
	data := "Date,Description,Amount\n" +
		"N/A,Broken,-10.00\n" +
		"2025-06-02,Salary,1500.00\n" +
		"2025-06-03,,-3.00\n" +
		"2025-06-04,Coffee,abc\n" +
		"2025-06-05,Coffee,-3.50\n"

	rows := parseCSV(t, data, ProfileFor(DialectGeneric))
	require.Len(t, rows, 2)
	assert.Equal(t, "Salary", rows[0].Description)
	assert.Equal(t, model.DirectionIncome, rows[0].Direction)
	assert.Equal(t, "Coffee", rows[1].Description)
	assert.Equal(t, model.DirectionExpense, rows[1].Direction)
}

func TestCSVNoValidRowsIsEmpty(t *testing.T) {
	rows := parseCSV(t, "Date,Description,Amount\nN/A,Broken,-10.00\n", ProfileFor(DialectGeneric))
	assert.Empty(t, rows)
}

func TestCSVWindows1251Semicolons(t *testing.T) {
	src := "Выписка по счёту\n\nДата;Описание;Сумма\n01.06.2025;Пятёрочка;-1 250,50\n02.06.2025;Зарплата;90 000,00\n"
	encoded, err := charmap.Windows1251.NewEncoder().String(src)
	require.NoError(t, err)

	rows := parseCSV(t, encoded, ProfileFor(DialectGeneric))
	require.Len(t, rows, 2)
	assert.Equal(t, "Пятёрочка", rows[0].Description)
	assert.Equal(t, "1250.50", rows[0].Amount.StringFixed(2))
	assert.Equal(t, model.DirectionExpense, rows[0].Direction)
	assert.Equal(t, "90000.00", rows[1].Amount.StringFixed(2))
	assert.Equal(t, model.DirectionIncome, rows[1].Direction)
}

func TestCSVPositionalFallback(t *testing.T) {
	rows := parseCSV(t, "\ufeff01.06.2025,Taxi,-300.00\n02.06.2025,Refund,120.00\n", ProfileFor(DialectGeneric))
	require.Len(t, rows, 2)
	assert.Equal(t, "Taxi", rows[0].Description)
	assert.Equal(t, model.DirectionIncome, rows[1].Direction)
}

func TestCSVSplitDebitCredit(t *testing.T) {
	data := "Дата операции;Назначение платежа;Приход;Расход\n" +
		"01.06.2025;Оплата услуг связи;;500,00\n" +
		"02.06.2025;Возврат покупки;120,00;\n"

	rows := parseCSV(t, data, ProfileFor(DialectAlfa))
	require.Len(t, rows, 2)
	assert.Equal(t, model.DirectionExpense, rows[0].Direction)
	assert.Equal(t, "500.00", rows[0].Amount.StringFixed(2))
	assert.Equal(t, model.DirectionIncome, rows[1].Direction)
	assert.Equal(t, "120.00", rows[1].Amount.StringFixed(2))
}

func TestCSVTinkoffSkipsFailed(t *testing.T) {
	data := "Дата операции;Дата платежа;Номер карты;Статус;Сумма операции;Валюта операции;Категория;Описание\n" +
		"01.06.2025 12:30:00;01.06.2025;*1234;OK;-450,50;RUB;Супермаркеты;Пятёрочка\n" +
		"01.06.2025 13:00:00;01.06.2025;*1234;FAILED;-99,00;RUB;Кафе;Кофейня\n"

	rows := parseCSV(t, data, ProfileFor(DialectTinkoff))
	require.Len(t, rows, 1)
	assert.Equal(t, "Пятёрочка", rows[0].Description)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC), rows[0].Date)
}

func TestCSVSberbankUnsignedIsDebit(t *testing.T) {
	data := "Дата операции;Категория;Описание операции;Сумма в валюте счёта\n" +
		"01.06.2025;Супермаркеты;MAGNIT MM;450,50\n" +
		"02.06.2025;Перевод;Иван И.;+1 000,00\n"

	rows := parseCSV(t, data, ProfileFor(DialectSberbank))
	require.Len(t, rows, 2)
	assert.Equal(t, "MAGNIT MM", rows[0].Description)
	assert.Equal(t, model.DirectionExpense, rows[0].Direction)
	assert.Equal(t, model.DirectionIncome, rows[1].Direction)
}

func TestDetectColumns(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   Columns
		ok     bool
	}{
		{
			name:   "english",
			header: []string{"Date", "Description", "Amount"},
			want:   Columns{Date: 0, Description: 1, Amount: 2, Debit: -1, Credit: -1, Status: -1},
			ok:     true,
		},
		{
			name:   "split columns",
			header: []string{"Posted", "Payee", "Paid out", "Paid in", "Balance"},
			want:   Columns{Date: 0, Description: 1, Amount: -1, Debit: 2, Credit: 3, Status: -1},
			ok:     true,
		},
		{
			name:   "no money column",
			header: []string{"Дата", "Описание"},
			want:   Columns{Date: 0, Description: 1, Amount: -1, Debit: -1, Credit: -1, Status: -1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectColumns(tt.header, ProfileFor(DialectGeneric))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestXLSXAdapter(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Bank statement"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"Дата", "Описание", "Сумма"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{"01.06.2025", "Пятёрочка", -450.5}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A5", &[]any{time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), "Cashback", 12.3}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A6", &[]any{"итого", "", -438.2}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	doc := model.NewSourceDocument("stmt.xlsx", buf.Bytes(), model.KindSpreadsheet, "")
	rows, err := NewTableAdapter(FormatXLSX, ProfileFor(DialectGeneric), ReadXLSX, nil).Parse(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "Пятёрочка", rows[0].Description)
	assert.Equal(t, "450.50", rows[0].Amount.StringFixed(2))
	assert.Equal(t, model.DirectionExpense, rows[0].Direction)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), rows[1].Date.UTC())
	assert.Equal(t, model.DirectionIncome, rows[1].Direction)
}

func TestReadXLSRejectsGarbage(t *testing.T) {
	_, err := ReadXLS([]byte("not a workbook"))
	assert.Error(t, err)
}

func TestPDFAdapterParseText(t *testing.T) {
	text := "АО «Тинькофф Банк» выписка\n" +
		"Дата Описание Сумма\n" +
		"01.06.2025 12:30 Пятёрочка 1234 - 1 250.50 ₽\n" +
		"02.06.2025 Зарплата + 90 000.00 ₽\n" +
		"Итого за период 88 749.50\n"

	rows := NewPDFAdapter(ProfileFor(DialectTinkoff), nil).ParseText(text)
	require.Len(t, rows, 2)
	assert.Equal(t, "Пятёрочка 1234", rows[0].Description)
	assert.Equal(t, "1250.50", rows[0].Amount.StringFixed(2))
	assert.Equal(t, model.DirectionExpense, rows[0].Direction)
	assert.Equal(t, "90000.00", rows[1].Amount.StringFixed(2))
	assert.Equal(t, model.DirectionIncome, rows[1].Direction)
}

func TestPDFAdapterSberbankBalance(t *testing.T) {
	text := "01.06.2025 01.06.2025 Супермаркеты MAGNIT 450,50 10 000,00\n"

	rows := NewPDFAdapter(ProfileFor(DialectSberbank), nil).ParseText(text)
	require.Len(t, rows, 1)
	assert.Equal(t, "Супермаркеты MAGNIT", rows[0].Description)
	assert.Equal(t, "450.50", rows[0].Amount.StringFixed(2))
	assert.Equal(t, model.DirectionExpense, rows[0].Direction)
}

func TestPDFTextRejectsGarbage(t *testing.T) {
	_, err := PDFText([]byte("%PDF-1.4 truncated"))
	assert.Error(t, err)
}
