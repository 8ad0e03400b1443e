package core

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ExportColumn is one output column: the record field to read and the header label.
type ExportColumn struct {
	Field string `json:"field"`
	Label string `json:"label"`
}

// ExportRecord is a record flattened to field -> display value.
type ExportRecord map[string]string

// ExportCSV writes the labels as the header row, then one row per record with
// the columns in the given order. Missing fields are written as empty cells.
func ExportCSV(w io.Writer, columns []ExportColumn, records []ExportRecord) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Label
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(columns))
	for n, rec := range records {
		for i, c := range columns {
			row[i] = rec[c.Field]
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record %d: %w", n+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// TemplateCSV writes a header-only file for an import mapping.
func TemplateCSV(w io.Writer, mapping []ColumnMapping) error {
	return ExportCSV(w, ColumnsFromMapping(mapping), nil)
}

// ColumnsFromMapping derives export columns whose labels are the import headers,
// so an exported file can be imported back.
func ColumnsFromMapping(mapping []ColumnMapping) []ExportColumn {
	cols := make([]ExportColumn, len(mapping))
	for i, m := range mapping {
		cols[i] = ExportColumn{Field: m.Field, Label: m.Header}
	}
	return cols
}
