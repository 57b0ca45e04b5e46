package statement

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var bom = []byte("\ufeff")

// ReadCSV reads a delimited export. The delimiter is sniffed from the opening
// lines; non-UTF-8 input is decoded as Windows-1251, the usual encoding of
// Russian bank exports.
func ReadCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, bom)
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1251.NewDecoder().Bytes(data)
		if err != nil {
			return nil, err
		}
		data = decoded
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

const sniffLines = 10

// sniffDelimiter counts candidates over the first lines; exports often open
// with a title line that has no delimiter at all.
func sniffDelimiter(data []byte) rune {
	lines := bytes.SplitN(data, []byte{'\n'}, sniffLines+1)
	if len(lines) > sniffLines {
		lines = lines[:sniffLines]
	}
	sample := bytes.Join(lines, nil)

	best, count := ',', bytes.Count(sample, []byte{','})
	for _, d := range []rune{';', '\t', '|'} {
		if n := bytes.Count(sample, []byte(string(d))); n > count {
			best, count = d, n
		}
	}
	return best
}
