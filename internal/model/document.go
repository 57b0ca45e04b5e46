package model

import (
	"path/filepath"
	"strings"
)

// DocumentKind is the declared kind of a source document.
type DocumentKind string

const (
	// KindImage is a photographed or scanned receipt.
	KindImage DocumentKind = "image"
	// KindPDF is a PDF export, usually a bank statement.
	KindPDF DocumentKind = "pdf"
	// KindSpreadsheet is an Excel workbook (.xlsx or .xls).
	KindSpreadsheet DocumentKind = "spreadsheet"
	// KindDelimited is a CSV or other delimited text export.
	KindDelimited DocumentKind = "delimited"
	// KindOFX is an OFX/QFX statement download.
	KindOFX DocumentKind = "ofx"
	// KindText is text that was already recognized elsewhere.
	KindText DocumentKind = "text"
)

// SourceDocument is the raw input of a single pipeline run.
type SourceDocument struct {
	Name       string
	OriginHint string
	Kind       DocumentKind
	data       []byte
}

// NewSourceDocument creates a document from a copy of data.
func NewSourceDocument(name string, data []byte, kind DocumentKind, originHint string) SourceDocument {
	buf := make([]byte, len(data))
	copy(buf, data)
	return SourceDocument{
		Name:       name,
		OriginHint: strings.TrimSpace(originHint),
		Kind:       kind,
		data:       buf,
	}
}

// Bytes returns the document content. Callers must not modify the returned slice.
func (d SourceDocument) Bytes() []byte {
	return d.data
}

// Ext returns the lower-cased file extension of the document name.
func (d SourceDocument) Ext() string {
	return strings.ToLower(filepath.Ext(d.Name))
}

// KindFromExtension guesses the document kind from a file extension.
func KindFromExtension(ext string) (DocumentKind, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg", "png", "gif", "bmp", "tif", "tiff", "webp":
		return KindImage, true
	case "pdf":
		return KindPDF, true
	case "xlsx", "xlsm", "xls":
		return KindSpreadsheet, true
	case "csv", "tsv":
		return KindDelimited, true
	case "ofx", "qfx":
		return KindOFX, true
	case "txt":
		return KindText, true
	}
	return "", false
}

// ParseDocumentKind validates a kind supplied by the user.
func ParseDocumentKind(s string) (DocumentKind, bool) {
	k := DocumentKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindImage, KindPDF, KindSpreadsheet, KindDelimited, KindOFX, KindText:
		return k, true
	}
	return "", false
}
