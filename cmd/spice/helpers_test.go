package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-extract/internal/model"
	"github.com/Veraticus/spice-extract/internal/testutil"
)

func TestExpandFiles(t *testing.T) {
	tmpDir := t.TempDir()
	for _, file := range []string{
		"receipt.jpg",
		"june.csv",
		"notes.md",
		"banks/alfa.xlsx",
		"banks/nested/chase.QFX",
	} {
		path := filepath.Join(tmpDir, file)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("test"), 0o644))
	}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "glob",
			args: []string{filepath.Join(tmpDir, "*.csv")},
			want: []string{"june.csv"},
		},
		{
			name: "plain file of any extension",
			args: []string{filepath.Join(tmpDir, "notes.md")},
			want: []string{"notes.md"},
		},
		{
			name: "directory keeps known kinds only",
			args: []string{tmpDir},
			want: []string{"june.csv", "receipt.jpg", "banks/alfa.xlsx", "banks/nested/chase.QFX"},
		},
		{
			name: "duplicates collapse",
			args: []string{filepath.Join(tmpDir, "june.csv"), filepath.Join(tmpDir, "*.csv")},
			want: []string{"june.csv"},
		},
		{
			name: "missing pattern",
			args: []string{filepath.Join(tmpDir, "*.pdf")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandFiles(tt.args)
			require.NoError(t, err)
			rel := make([]string, 0, len(got))
			for _, g := range got {
				r, err := filepath.Rel(tmpDir, g)
				require.NoError(t, err)
				rel = append(rel, filepath.ToSlash(r))
			}
			assert.ElementsMatch(t, tt.want, rel)
		})
	}
}

func TestParseFlags(t *testing.T) {
	kind, err := parseKind("")
	require.NoError(t, err)
	assert.Empty(t, kind)

	kind, err = parseKind(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, model.KindPDF, kind)

	_, err = parseKind("fax")
	assert.Error(t, err)

	typ, err := parseType("Income")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryTypeIncome, typ)

	_, err = parseType("transfer")
	assert.Error(t, err)
}

func TestSaveResultSkipsImportedRows(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestDB(t)
	june1 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	may := testutil.NewResult(t, "may.csv").Statement("csv/tinkoff").On(june1).
		Expense("Перекресток", "512.40", "Groceries").
		Build()
	saved, dropped, err := saveResult(ctx, store, may)
	require.NoError(t, err)
	assert.Equal(t, 0, dropped)
	assert.Same(t, may, saved)

	june := testutil.NewResult(t, "june.csv").Statement("csv/tinkoff").On(june1).
		Expense("Перекресток", "512.40", "Groceries").
		Expense("Магнит", "100.00", "Groceries").
		Build()
	saved, dropped, err = saveResult(ctx, store, june)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	require.Len(t, saved.Records, 1)
	assert.Equal(t, "Магнит", saved.Records[0].Name)
	assert.Equal(t, "100.00", saved.TotalAmount.StringFixed(2))
	assert.Len(t, june.Records, 2, "input result is not modified")

	again := testutil.NewResult(t, "may-copy.csv").Statement("csv/tinkoff").On(june1).
		Expense("Перекресток", "512.40", "Groceries").
		Build()
	saved, dropped, err = saveResult(ctx, store, again)
	require.NoError(t, err)
	assert.Nil(t, saved)
	assert.Equal(t, 1, dropped)

	receipt := testutil.NewResult(t, "receipt.jpg").On(june1).
		Expense("Перекресток", "512.40", "Groceries").
		Build()
	saved, dropped, err = saveResult(ctx, store, receipt)
	require.NoError(t, err)
	assert.Equal(t, 0, dropped, "receipts are never filtered")
	assert.Same(t, receipt, saved)
}

func TestCommands(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SPICE_DATABASE_PATH", filepath.Join(home, "spice.db"))
	t.Setenv("SPICE_CLASSIFIER_MODEL_DIR", filepath.Join(home, "models"))

	run := func(t *testing.T, args ...string) string {
		t.Helper()
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)
		rootCmd.SetArgs(args)
		require.NoError(t, rootCmd.ExecuteContext(context.Background()))
		return out.String()
	}

	t.Run("categorize", func(t *testing.T) {
		out := run(t, "categorize", "Молоко 3.2%", "Зарплата за июнь")
		assert.Contains(t, out, "Dairy")
		assert.Contains(t, out, "keyword")
	})

	t.Run("categorize income", func(t *testing.T) {
		out := run(t, "categorize", "--type", "income", "Зарплата за июнь")
		assert.Contains(t, out, "Salary")
	})

	t.Run("templates", func(t *testing.T) {
		out := run(t, "templates")
		assert.Contains(t, out, "pyaterochka")
		assert.Contains(t, out, "tinkoff")
		assert.Contains(t, out, "csv/generic")
	})

	t.Run("extract statement with save", func(t *testing.T) {
		csvPath := filepath.Join(home, "june.csv")
		data := "Дата операции;Описание;Сумма\n01.06.2025;Перекресток;-512,40\n02.06.2025;Зарплата;100000,00\n"
		require.NoError(t, os.WriteFile(csvPath, []byte(data), 0o644))

		out := run(t, "extract", "--save", "--json", csvPath)
		assert.Contains(t, out, "Перекресток")
		assert.Contains(t, out, `"source_kind": "statement"`)
	})

	t.Run("migrate status", func(t *testing.T) {
		out := run(t, "migrate", "--status")
		assert.Contains(t, out, "Latest version")
	})
}
