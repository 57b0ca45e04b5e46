package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Veraticus/spice-extract/internal/common"
	"github.com/Veraticus/spice-extract/internal/dedupe"
	"github.com/Veraticus/spice-extract/internal/extract"
	"github.com/Veraticus/spice-extract/internal/model"
	"github.com/Veraticus/spice-extract/internal/ocr"
	"github.com/Veraticus/spice-extract/internal/preprocess"
	"github.com/Veraticus/spice-extract/internal/reconcile"
	"github.com/Veraticus/spice-extract/internal/statement"
)

// Pipeline processes documents against the current Context. It is safe
// for concurrent use.
type Pipeline struct {
	current atomic.Pointer[Context]
	logger  *slog.Logger
}

// New creates a pipeline running on c.
func New(c *Context, logger *slog.Logger) *Pipeline {
	p := &Pipeline{logger: common.LoggerOrDefault(logger)}
	p.current.Store(c)
	return p
}

// Context returns the context new calls will use.
func (p *Pipeline) Context() *Context {
	return p.current.Load()
}

// Swap installs c for subsequent calls and returns the previous context.
// Calls already running finish on the context they started with.
func (p *Pipeline) Swap(c *Context) *Context {
	return p.current.Swap(c)
}

// Process extracts a DocumentResult from doc. Failures to find anything
// usable are reported as common.ErrNotRecognized wrapping the cause;
// cancellation returns the context's error.
func (p *Pipeline) Process(ctx context.Context, doc model.SourceDocument) (*model.DocumentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := p.current.Load()
	start := time.Now()

	res, err := c.process(ctx, doc)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err == nil && !res.Usable() {
		err = common.NewExtractionError(common.CodeExtract, "nothing usable extracted", common.ErrNothingExtractable)
	}
	if err != nil {
		p.logger.Info("Document not recognized", "document", doc.Name, "error", err)
		if errors.Is(err, common.ErrNotRecognized) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", common.ErrNotRecognized, err)
	}

	res.ID = model.DocumentID(doc.Bytes())
	res.SourceName = doc.Name
	p.logger.Info("Processed document",
		"document", doc.Name,
		"template", res.Template,
		"recognized", res.Recognized,
		"records", len(res.Records),
		"total", res.TotalAmount.StringFixed(2),
		"total_strategy", res.TotalStrategy,
		"duration", time.Since(start))
	return res, nil
}

func (c *Context) process(ctx context.Context, doc model.SourceDocument) (*model.DocumentResult, error) {
	kind, err := resolveKind(doc)
	if err != nil {
		return nil, common.NewExtractionError(common.CodeDecode, "unknown document kind", err)
	}

	switch kind {
	case model.KindImage:
		return c.fromImage(ctx, doc)
	case model.KindText:
		return c.fromCandidates(doc, []model.TextCandidate{textCandidate("text", string(doc.Bytes()))})
	case model.KindPDF:
		return c.fromPDF(ctx, doc)
	case model.KindSpreadsheet, model.KindDelimited, model.KindOFX:
		parsed, err := c.registry.Parse(ctx, doc)
		if err != nil {
			return nil, common.NewExtractionError(common.CodeAdapter, "statement not readable", err)
		}
		return c.fromStatement(parsed), nil
	}
	return nil, common.NewExtractionError(common.CodeDecode, string(kind), common.ErrUnsupportedFormat)
}

var (
	magicPNG  = []byte("\x89PNG")
	magicJPEG = []byte{0xFF, 0xD8, 0xFF}
	magicGIF  = []byte("GIF8")
)

// resolveKind trusts the declared kind, then the extension, then magic bytes.
func resolveKind(doc model.SourceDocument) (model.DocumentKind, error) {
	if doc.Kind != "" {
		return doc.Kind, nil
	}
	if k, ok := model.KindFromExtension(doc.Ext()); ok {
		return k, nil
	}
	data := doc.Bytes()
	switch {
	case bytes.HasPrefix(data, magicPNG), bytes.HasPrefix(data, magicJPEG), bytes.HasPrefix(data, magicGIF):
		return model.KindImage, nil
	}
	f, err := statement.SniffFormat(doc)
	if err != nil {
		return "", err
	}
	switch f {
	case statement.FormatPDF:
		return model.KindPDF, nil
	case statement.FormatOFX:
		return model.KindOFX, nil
	case statement.FormatCSV:
		return model.KindDelimited, nil
	}
	return model.KindSpreadsheet, nil
}

func textCandidate(variant, text string) model.TextCandidate {
	return model.TextCandidate{Variant: variant, Profile: "none", Text: ocr.Normalize(text)}
}

func (c *Context) fromImage(ctx context.Context, doc model.SourceDocument) (*model.DocumentResult, error) {
	if c.ocr == nil {
		return nil, common.NewExtractionError(common.CodeOCR, "no OCR engine configured", common.ErrMissingConfig)
	}

	variants := preprocess.FromBytes(doc.Bytes(), c.deps.Preprocess, c.logger)
	if len(variants) == 0 {
		return nil, common.NewExtractionError(common.CodeDecode, "image not readable", common.ErrUnreadableInput)
	}

	cands, err := c.ocr.Extract(ctx, variants)
	if err != nil {
		return nil, err
	}
	return c.fromCandidates(doc, cands)
}

// fromPDF tries the statement adapters first. A PDF without statement rows
// whose text matches a receipt template is read as an e-receipt.
func (c *Context) fromPDF(ctx context.Context, doc model.SourceDocument) (*model.DocumentResult, error) {
	parsed, perr := c.registry.Parse(ctx, doc)
	if perr == nil && len(parsed.Rows) > 0 {
		return c.fromStatement(parsed), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, err := statement.PDFText(doc.Bytes())
	if err != nil {
		return nil, common.NewExtractionError(common.CodeDecode, "pdf not readable", err)
	}
	if _, ok := c.dict.Templates.Detect(text); ok {
		c.logger.Debug("PDF has no statement rows, reading it as a receipt", "document", doc.Name)
		return c.fromCandidates(doc, []model.TextCandidate{textCandidate("pdf", text)})
	}
	if perr != nil {
		return nil, common.NewExtractionError(common.CodeAdapter, "statement not readable", perr)
	}
	return c.fromStatement(parsed), nil
}

func (c *Context) fromCandidates(doc model.SourceDocument, cands []model.TextCandidate) (*model.DocumentResult, error) {
	sel, ok := c.detector.Select(cands, doc.OriginHint)
	if !ok || sel.Candidate.Text == "" {
		return nil, common.NewExtractionError(common.CodeDetect, "no text recognized", common.ErrNoTextCandidates)
	}

	tmpl := ""
	if sel.Recognized {
		tmpl = sel.Template.Name
	}
	text := sel.Candidate.Text

	records := c.extractor.Receipt(text, tmpl)
	records = dedupe.ByName(records, c.deps.Extraction.MinNameLength)
	records = valid(c.categorizer.Apply(records))

	total, strategy := c.receipts.Reconcile(reconcile.Input{Text: text, Records: records})
	date, _ := extract.DateFromText(text)
	for i := range records {
		records[i].Date = date
	}

	return &model.DocumentResult{
		TransactionDate: date,
		TotalAmount:     total,
		Template:        tmpl,
		TotalStrategy:   strategy,
		DiagnosticText:  text,
		Records:         records,
		SourceKind:      model.SourceReceipt,
		Recognized:      sel.Recognized,
	}, nil
}

func (c *Context) fromStatement(parsed statement.Parsed) *model.DocumentResult {
	records := make([]model.ExtractedRecord, 0, len(parsed.Rows))
	var latest time.Time
	for _, row := range parsed.Rows {
		records = append(records, model.ExtractedRecord{
			Date:       row.Date,
			Amount:     row.Amount,
			Name:       row.Description,
			SourceKind: model.SourceStatement,
			Direction:  row.Direction,
			Quantity:   1,
		})
		if row.Date.After(latest) {
			latest = row.Date
		}
	}

	records = dedupe.ByKey(records)
	records = valid(c.categorizer.Apply(records))
	total, strategy := c.statements.Reconcile(reconcile.Input{Records: records})

	return &model.DocumentResult{
		TransactionDate: latest,
		TotalAmount:     total,
		Template:        string(parsed.Format) + "/" + string(parsed.Dialect),
		TotalStrategy:   strategy,
		Records:         records,
		SourceKind:      model.SourceStatement,
		Recognized:      parsed.Dialect != statement.DialectGeneric,
	}
}

// valid drops records that are not fit for output.
func valid(records []model.ExtractedRecord) []model.ExtractedRecord {
	out := records[:0]
	for _, r := range records {
		if r.Valid() {
			out = append(out, r)
		}
	}
	return out
}
