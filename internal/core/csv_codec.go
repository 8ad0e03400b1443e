package core

// csv_codec.go turns raw CSV text into typed records.
//
// The pipeline:
//  1. Normalize input: strip a UTF-8 BOM, replace invalid UTF-8 with U+FFFD
//  2. Split into lines (\n, \r\n or \r) and drop blank lines
//  3. Resolve every declared header to a column index (case-insensitive, trimmed)
//  4. Tokenize each data line, project the declared columns into a Row and
//     hand it to the caller's transform
//
// A missing header fails the whole parse. Once the header is accepted, a bad
// row is recorded as "Error on row N: ..." and the remaining rows continue.
//
// Lines are split before tokenizing, so a quoted field cannot span lines.

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrEmptyInput is reported when the text has no non-blank line.
var ErrEmptyInput = errors.New("empty file: no rows found")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ColumnMapping binds an external CSV header to a target record field.
type ColumnMapping struct {
	Header string // Header text expected in the file
	Field  string // Record field the column feeds
}

// Row holds one data line's cells keyed by the declared external header.
type Row map[string]string

// RowTransform converts and validates one row.
type RowTransform[T any] func(row Row) (T, error)

// ParseResult is the outcome of ParseCSV.
type ParseResult[T any] struct {
	Records []T
	Lines   []int // file line of each record, parallel to Records
	Errors  []string

	// HeaderFailed is set when the parse stopped before reading data rows.
	HeaderFailed bool
}

// ParseCSV parses raw CSV text with the given header mapping and row transform.
func ParseCSV[T any](raw string, mapping []ColumnMapping, transform RowTransform[T]) ParseResult[T] {
	lines := splitLines(normalizeInput(raw))
	if len(lines) == 0 {
		return ParseResult[T]{Errors: []string{ErrEmptyInput.Error()}, HeaderFailed: true}
	}

	positions, missing := resolveHeaders(tokenizeLine(lines[0]), mapping)
	if len(missing) > 0 {
		errs := make([]string, len(missing))
		for i, h := range missing {
			errs[i] = fmt.Sprintf("missing required column %q", h)
		}
		return ParseResult[T]{Errors: errs, HeaderFailed: true}
	}

	result := ParseResult[T]{
		Records: make([]T, 0, len(lines)-1),
		Lines:   make([]int, 0, len(lines)-1),
	}
	for i, line := range lines[1:] {
		lineNum := i + 2 // 1-based, header is line 1

		cells := tokenizeLine(line)
		row := make(Row, len(mapping))
		for _, m := range mapping {
			if pos := positions[m.Header]; pos < len(cells) {
				row[m.Header] = cells[pos]
			} else {
				row[m.Header] = ""
			}
		}

		rec, err := transform(row)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Error on row %d: %s", lineNum, err.Error()))
			continue
		}
		result.Records = append(result.Records, rec)
		result.Lines = append(result.Lines, lineNum)
	}

	return result
}

// Rows is the number of data lines read, valid or not. Not meaningful
// when HeaderFailed is set.
func (r ParseResult[T]) Rows() int {
	return len(r.Records) + len(r.Errors)
}

// resolveHeaders maps each declared header to its column position.
// The second return lists declared headers absent from the file, in mapping order.
func resolveHeaders(header []string, mapping []ColumnMapping) (map[string]int, []string) {
	idx := makeHeaderIndex(header)
	positions := make(map[string]int, len(mapping))
	var missing []string

	for _, m := range mapping {
		pos, ok := idx[headerKey(m.Header)]
		if !ok {
			missing = append(missing, m.Header)
			continue
		}
		positions[m.Header] = pos
	}
	return positions, missing
}

// makeHeaderIndex indexes header cells by their normalized key. The first
// occurrence of a repeated header wins.
func makeHeaderIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := headerKey(h)
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

func headerKey(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// tokenizeLine splits one line into trimmed cells. A double quote toggles
// quoted state, "" inside quotes is a literal quote, and a comma outside
// quotes ends the cell.
func tokenizeLine(line string) []string {
	var (
		cells    []string
		cell     strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && inQuotes && i+1 < len(line) && line[i+1] == '"':
			cell.WriteByte('"')
			i++
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteByte(c)
		}
	}

	return append(cells, strings.TrimSpace(cell.String()))
}

// splitLines splits on any newline convention and drops blank lines.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	parts := strings.Split(text, "\n")
	lines := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			lines = append(lines, p)
		}
	}
	return lines
}

// normalizeInput strips a leading BOM and replaces invalid UTF-8.
func normalizeInput(raw string) string {
	return string(sanitizeUTF8(stripBOM([]byte(raw))))
}

func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

// sanitizeUTF8 replaces each invalid byte with U+FFFD.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune(utf8.RuneError)
		} else {
			buf.WriteRune(r)
		}
		data = data[size:]
	}

	return buf.Bytes()
}
