package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-extract/internal/categorize"
	"github.com/Veraticus/spice-extract/internal/common"
	"github.com/Veraticus/spice-extract/internal/config"
	"github.com/Veraticus/spice-extract/internal/dictionary"
	"github.com/Veraticus/spice-extract/internal/model"
	"github.com/Veraticus/spice-extract/internal/ocr"
	"github.com/Veraticus/spice-extract/internal/preprocess"
)

// profileEngine answers by profile name, whatever the image.
type profileEngine map[string]string

func (e profileEngine) Recognize(_ context.Context, _ image.Image, p ocr.Profile) (string, error) {
	return e[p.Name], nil
}

func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 120, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 120; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testContext(t *testing.T, engine ocr.Engine) *Context {
	t.Helper()
	dict, err := dictionary.Default().Compile()
	require.NoError(t, err)

	opts := preprocess.DefaultOptions()
	opts.MinWidth, opts.TargetWidth = 0, 0

	c, err := NewContext(Deps{
		Dictionary: dict,
		Engine:     engine,
		Extraction: config.Default().Extraction,
		Preprocess: opts,
		OCRWorkers: 2,
	})
	require.NoError(t, err)
	return c
}

const genericReceipt = "SHOP\nPRODUCT A 10.00 -A\nPRODUCT B 5.00 x 2 = 10.00 -A\nTOTAL 20.00\nCARD PAYMENT VISA ****1234"

func TestProcessImageReceipt(t *testing.T) {
	engine := profileEngine{
		ocr.ProfileWholePage: "SH0P\nPR0DUCT A",
		ocr.ProfileSparse:    genericReceipt,
	}
	p := New(testContext(t, engine), nil)

	res, err := p.Process(context.Background(), model.NewSourceDocument("receipt.png", testImage(t), model.KindImage, ""))
	require.NoError(t, err)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "PRODUCT A", res.Records[0].Name)
	assert.Equal(t, "10.00", res.Records[0].Amount.StringFixed(2))
	assert.Equal(t, "PRODUCT B", res.Records[1].Name)
	assert.Equal(t, "10.00", res.Records[1].Amount.StringFixed(2))
	assert.Equal(t, 2, res.Records[1].Quantity)
	assert.Equal(t, "20.00", res.TotalAmount.StringFixed(2))
	assert.Equal(t, "labeled", res.TotalStrategy)

	assert.False(t, res.Recognized, "no store template in the text")
	assert.Empty(t, res.Template)
	assert.Equal(t, "receipt.png", res.SourceName)
	assert.Equal(t, model.DocumentID(testImage(t)), res.ID)
	for _, r := range res.Records {
		assert.True(t, r.Valid())
		assert.Equal(t, model.OtherCategory, r.Category)
	}
}

func TestProcessKnownTemplateText(t *testing.T) {
	text := "ПЯТЁРОЧКА\n" +
		"МОЛОКО ПРОСТОКВАШИНО 2.5% 89.90\n" +
		"БАТОН НАРЕЗНОЙ\n" +
		"45.00\n" +
		"ШОКОЛАД АЛЕНКА 79.99\n" +
		"ИТОГ 214.89\n" +
		"01.06.2025 12:30"
	p := New(testContext(t, nil), nil)

	res, err := p.Process(context.Background(), model.NewSourceDocument("receipt.txt", []byte(text), model.KindText, ""))
	require.NoError(t, err)

	assert.True(t, res.Recognized)
	assert.Equal(t, "pyaterochka", res.Template)
	assert.Equal(t, "214.89", res.TotalAmount.StringFixed(2))
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), res.TransactionDate)

	require.Len(t, res.Records, 3)
	assert.Equal(t, "Молоко", res.Records[0].Name)
	assert.Equal(t, "Dairy", res.Records[0].Category)
	assert.Equal(t, categorize.LayerDictionary, res.Records[0].Layer)
	assert.Equal(t, "Хлеб", res.Records[1].Name)
	assert.Equal(t, "45.00", res.Records[1].Amount.StringFixed(2))
	assert.Equal(t, "ШОКОЛАД АЛЕНКА", res.Records[2].Name)
	assert.Equal(t, res.TransactionDate, res.Records[2].Date)
}

func TestProcessStatementCSV(t *testing.T) {
	data := "Date,Description,Amount\n" +
		"2025-06-01,\"Grocery Store\",-450.50\n" +
		"N/A,Broken,-1.00\n" +
		"2025-06-03,Salary June,1500.00\n" +
		"2025-06-01,\"Grocery Store\",-450.50\n"
	p := New(testContext(t, nil), nil)

	res, err := p.Process(context.Background(), model.NewSourceDocument("bank.csv", []byte(data), "", ""))
	require.NoError(t, err)

	assert.Equal(t, model.SourceStatement, res.SourceKind)
	assert.Equal(t, "csv/generic", res.Template)
	assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), res.TransactionDate)
	assert.Equal(t, "items-sum", res.TotalStrategy)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "Grocery Store", res.Records[0].Name)
	assert.Equal(t, "450.50", res.Records[0].Amount.StringFixed(2))
	assert.Equal(t, model.DirectionExpense, res.Records[0].Direction)
	assert.Equal(t, "Groceries", res.Records[0].Category)
	assert.Equal(t, model.DirectionIncome, res.Records[1].Direction)
	assert.Equal(t, "Salary", res.Records[1].Category)
}

func TestProcessNotRecognized(t *testing.T) {
	tests := []struct {
		name  string
		doc   model.SourceDocument
		eng   ocr.Engine
		cause error
	}{
		{
			name:  "corrupt image",
			doc:   model.NewSourceDocument("x.jpg", []byte("not an image"), model.KindImage, ""),
			eng:   profileEngine{},
			cause: common.ErrUnreadableInput,
		},
		{
			name:  "ocr finds nothing",
			doc:   model.NewSourceDocument("x.png", testImage(t), model.KindImage, ""),
			eng:   profileEngine{},
			cause: common.ErrNoTextCandidates,
		},
		{
			name:  "no engine",
			doc:   model.NewSourceDocument("x.png", testImage(t), model.KindImage, ""),
			cause: common.ErrMissingConfig,
		},
		{
			name:  "text without prices",
			doc:   model.NewSourceDocument("x.txt", []byte("hello world"), model.KindText, ""),
			cause: common.ErrNothingExtractable,
		},
		{
			name:  "statement without rows",
			doc:   model.NewSourceDocument("x.csv", []byte("Date,Description,Amount\nN/A,x,1\n"), model.KindDelimited, ""),
			cause: common.ErrNothingExtractable,
		},
		{
			name:  "unknown kind",
			doc:   model.NewSourceDocument("x.bin", []byte{0x00, 0x01}, "", ""),
			cause: common.ErrUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(testContext(t, tt.eng), nil)
			res, err := p.Process(context.Background(), tt.doc)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, common.ErrNotRecognized)
			assert.ErrorIs(t, err, tt.cause)
		})
	}
}

func TestProcessCancelled(t *testing.T) {
	p := New(testContext(t, profileEngine{ocr.ProfileSparse: genericReceipt}), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Process(ctx, model.NewSourceDocument("r.png", testImage(t), model.KindImage, ""))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessDeterministic(t *testing.T) {
	p := New(testContext(t, profileEngine{
		ocr.ProfileWholePage: genericReceipt,
		ocr.ProfileSparse:    genericReceipt,
		ocr.ProfileColumn:    "PRODUCT A 10.00",
	}), nil)
	doc := model.NewSourceDocument("r.png", testImage(t), model.KindImage, "")

	first, err := p.Process(context.Background(), doc)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*model.DocumentResult, 4)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := p.Process(context.Background(), doc)
			assert.NoError(t, err)
			results[i] = res
		}()
	}
	wg.Wait()

	for _, res := range results {
		assert.Equal(t, first, res)
	}
}

func TestSwapModels(t *testing.T) {
	p := New(testContext(t, nil), nil)
	doc := model.NewSourceDocument("r.txt", []byte("ZOOPLA DEPOSIT 120.00\nTOTAL 120.00"), model.KindText, "")

	res, err := p.Process(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, model.OtherCategory, res.Records[0].Category)

	m, err := categorize.Train([]categorize.Example{
		{Text: "zoopla deposit", Category: "Housing"},
		{Text: "zoopla rent", Category: "Housing"},
		{Text: "spotify premium", Category: "Subscriptions"},
	})
	require.NoError(t, err)

	old := p.Swap(p.Context().WithModels(categorize.ModelSet{Expense: m}))
	assert.Nil(t, old.Models().Expense, "previous context untouched")

	res, err = p.Process(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Housing", res.Records[0].Category)
	assert.Equal(t, categorize.LayerClassifier, res.Records[0].Layer)
}

func TestNewContextValidation(t *testing.T) {
	dict, err := dictionary.Default().Compile()
	require.NoError(t, err)

	_, err = NewContext(Deps{Extraction: config.Default().Extraction})
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	bad := config.Default().Extraction
	bad.ItemMax = bad.ItemMin.Neg()
	_, err = NewContext(Deps{Dictionary: dict, Extraction: bad})
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}
