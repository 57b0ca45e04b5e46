// Package statement reads bank statement exports into statement rows. Each
// file format and bank dialect pair is served by an Adapter registered in a
// Registry.
package statement

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Veraticus/spice-extract/internal/common"
	"github.com/Veraticus/spice-extract/internal/model"
	"github.com/Veraticus/spice-extract/internal/template"
)

// Format is a statement file format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatPDF  Format = "pdf"
	FormatOFX  Format = "ofx"
)

// Dialect is a bank's flavour of a format.
type Dialect string

// Known dialects. Dialect names match the statement templates of the
// dictionary.
const (
	DialectGeneric  Dialect = "generic"
	DialectTinkoff  Dialect = "tinkoff"
	DialectSberbank Dialect = "sberbank"
	DialectAlfa     Dialect = "alfa"
)

// Adapter turns one statement document into rows. Rows that cannot be read
// are skipped; a document without readable rows yields an empty slice.
type Adapter interface {
	Format() Format
	Dialect() Dialect
	Parse(ctx context.Context, doc model.SourceDocument) ([]model.StatementRow, error)
}

// Parsed is the outcome of Registry.Parse.
type Parsed struct {
	Format  Format
	Dialect Dialect
	Rows    []model.StatementRow
}

type key struct {
	format  Format
	dialect Dialect
}

// Registry maps format and dialect to adapters.
type Registry struct {
	adapters map[key]Adapter
	dialects *template.Set
	logger   *slog.Logger
}

// NewRegistry creates an empty registry. dialects recognizes banks from
// document content; it may be nil.
func NewRegistry(dialects *template.Set, logger *slog.Logger) *Registry {
	if dialects == nil {
		dialects = template.NewSet()
	}
	return &Registry{
		adapters: make(map[key]Adapter),
		dialects: dialects,
		logger:   common.LoggerOrDefault(logger),
	}
}

// DefaultRegistry registers every built-in adapter.
func DefaultRegistry(dialects *template.Set, logger *slog.Logger) *Registry {
	r := NewRegistry(dialects, logger)
	for _, p := range Profiles() {
		r.Register(NewTableAdapter(FormatCSV, p, ReadCSV, logger))
		r.Register(NewTableAdapter(FormatXLSX, p, ReadXLSX, logger))
		r.Register(NewTableAdapter(FormatXLS, p, ReadXLS, logger))
		r.Register(NewPDFAdapter(p, logger))
	}
	r.Register(NewOFXAdapter(logger))
	return r
}

// Register adds or replaces the adapter for its format and dialect.
func (r *Registry) Register(a Adapter) {
	r.adapters[key{a.Format(), a.Dialect()}] = a
}

// Lookup finds the adapter for format and dialect, falling back to the
// format's generic adapter.
func (r *Registry) Lookup(format Format, dialect Dialect) (Adapter, error) {
	if a, ok := r.adapters[key{format, dialect}]; ok {
		return a, nil
	}
	if a, ok := r.adapters[key{format, DialectGeneric}]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: no adapter for %s", common.ErrUnsupportedFormat, format)
}

// Entries lists registered format and dialect pairs in stable order.
func (r *Registry) Entries() []string {
	out := make([]string, 0, len(r.adapters))
	for k := range r.adapters {
		out = append(out, string(k.format)+"/"+string(k.dialect))
	}
	sort.Strings(out)
	return out
}

// Parse sniffs the document and runs the matching adapter.
func (r *Registry) Parse(ctx context.Context, doc model.SourceDocument) (Parsed, error) {
	format, dialect, err := r.Sniff(doc)
	if err != nil {
		return Parsed{}, err
	}
	a, err := r.Lookup(format, dialect)
	if err != nil {
		return Parsed{}, err
	}

	rows, err := a.Parse(ctx, doc)
	if err != nil {
		return Parsed{}, err
	}
	r.logger.Debug("Parsed statement",
		"document", doc.Name,
		"format", format,
		"dialect", a.Dialect(),
		"rows", len(rows))
	return Parsed{Format: format, Dialect: a.Dialect(), Rows: rows}, nil
}

var (
	magicZip = []byte("PK\x03\x04")
	magicOLE = []byte{0xD0, 0xCF, 0x11, 0xE0}
	magicPDF = []byte("%PDF")
)

// SniffFormat picks the format from magic bytes, then extension, then the
// declared kind.
func SniffFormat(doc model.SourceDocument) (Format, error) {
	data := doc.Bytes()
	head := bytes.TrimLeft(data[:min(len(data), 512)], " \t\r\n\ufeff")
	switch {
	case bytes.HasPrefix(data, magicPDF):
		return FormatPDF, nil
	case bytes.HasPrefix(data, magicZip):
		return FormatXLSX, nil
	case bytes.HasPrefix(data, magicOLE):
		return FormatXLS, nil
	case bytes.HasPrefix(head, []byte("OFXHEADER")), bytes.Contains(bytes.ToUpper(head), []byte("<OFX>")):
		return FormatOFX, nil
	}

	switch doc.Ext() {
	case ".csv", ".tsv":
		return FormatCSV, nil
	case ".ofx", ".qfx":
		return FormatOFX, nil
	}

	switch doc.Kind {
	case model.KindDelimited:
		return FormatCSV, nil
	case model.KindOFX:
		return FormatOFX, nil
	case model.KindPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: cannot tell statement format of %q", common.ErrUnsupportedFormat, doc.Name)
}

// Sniff picks format and dialect. The origin hint names the dialect when it
// is a known one; otherwise the dialect templates are run over a text
// sample of the document.
func (r *Registry) Sniff(doc model.SourceDocument) (Format, Dialect, error) {
	format, err := SniffFormat(doc)
	if err != nil {
		return "", "", err
	}

	if doc.OriginHint != "" {
		if t, ok := r.dialects.Lookup(doc.OriginHint); ok {
			return format, Dialect(t.Name), nil
		}
	}

	sample, err := textSample(format, doc.Bytes())
	if err != nil {
		r.logger.Debug("No text sample for dialect detection", "format", format, "error", err)
		return format, DialectGeneric, nil
	}
	if t, ok := r.dialects.Detect(sample); ok {
		return format, Dialect(t.Name), nil
	}
	return format, DialectGeneric, nil
}

const sampleRows = 30

func textSample(format Format, data []byte) (string, error) {
	switch format {
	case FormatPDF:
		return PDFText(data)
	case FormatOFX:
		return string(data[:min(len(data), 4096)]), nil
	}

	var read TableReader
	switch format {
	case FormatCSV:
		read = ReadCSV
	case FormatXLSX:
		read = ReadXLSX
	case FormatXLS:
		read = ReadXLS
	default:
		return "", fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, format)
	}
	rows, err := read(data)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i, row := range rows {
		if i == sampleRows {
			break
		}
		b.WriteString(strings.Join(row, " "))
		b.WriteByte('\n')
	}
	return b.String(), nil
}
