package table

import (
	"fmt"
	"strconv"
	"time"
)

// RawTable is untyped tabular input as decoded by a loader.
// Header holds labels a loader already consumed; nil means the columns are
// only known by position and Rows[0] may or may not be the real header.
type RawTable struct {
	Header []string `json:"header,omitempty"`
	Rows   [][]any  `json:"rows"`
}

// Width returns the widest row length (or header length if wider)
func (t RawTable) Width() int {
	width := len(t.Header)
	for _, row := range t.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// ColumnType is the resolved storage type of a column
type ColumnType string

const (
	ColumnUnknown  ColumnType = "unknown"
	ColumnNumeric  ColumnType = "numeric"
	ColumnTemporal ColumnType = "temporal"
	ColumnText     ColumnType = "text"
)

// Value is a single typed cell. Missing cells keep the column's Type.
type Value struct {
	Type     ColumnType `json:"type"`
	Numeric  float64    `json:"numeric,omitempty"`
	Temporal time.Time  `json:"temporal,omitzero"`
	Text     string     `json:"text,omitempty"`
	Missing  bool       `json:"missing,omitempty"`
}

// NewNumericValue creates a numeric value
func NewNumericValue(n float64) Value {
	return Value{Type: ColumnNumeric, Numeric: n}
}

// NewTemporalValue creates a temporal value
func NewTemporalValue(t time.Time) Value {
	return Value{Type: ColumnTemporal, Temporal: t}
}

// NewTextValue creates a text value
func NewTextValue(s string) Value {
	return Value{Type: ColumnText, Text: s}
}

// NewMissingValue creates a missing cell of the given column type
func NewMissingValue(t ColumnType) Value {
	return Value{Type: t, Missing: true}
}

// Interface returns the Go scalar for the value, nil when missing.
func (v Value) Interface() any {
	if v.Missing {
		return nil
	}
	switch v.Type {
	case ColumnNumeric:
		return v.Numeric
	case ColumnTemporal:
		return v.Temporal
	case ColumnText:
		return v.Text
	}
	return nil
}

// String returns the string representation of the value
func (v Value) String() string {
	if v.Missing {
		return ""
	}
	switch v.Type {
	case ColumnNumeric:
		return strconv.FormatFloat(v.Numeric, 'f', -1, 64)
	case ColumnTemporal:
		return FormatTime(v.Temporal)
	case ColumnText:
		return v.Text
	}
	return fmt.Sprintf("<%s>", v.Type)
}

// FormatTime renders dates without a clock as YYYY-MM-DD and everything else as RFC3339
func FormatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

// Column is a named, homogeneously typed column
type Column struct {
	Name   string     `json:"name"`
	Type   ColumnType `json:"type"`
	Values []Value    `json:"values"`
}

// NormalizedTable is the fully typed output of the normalizer
type NormalizedTable struct {
	Columns []Column `json:"columns"`
}

// NumRows returns the row count (all columns share it)
func (t *NormalizedTable) NumRows() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// NumColumns returns the column count
func (t *NormalizedTable) NumColumns() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Names returns the column names in order
func (t *NormalizedTable) Names() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// Column looks up a column by name
func (t *NormalizedTable) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// Row returns the scalars of row i in column order
func (t *NormalizedTable) Row(i int) []any {
	row := make([]any, len(t.Columns))
	for j, col := range t.Columns {
		row[j] = col.Values[i].Interface()
	}
	return row
}

// ToRaw turns the table back into raw input with the names as the first row,
// so that it can be fed through the normalizer again.
func (t *NormalizedTable) ToRaw() RawTable {
	rows := make([][]any, 0, t.NumRows()+1)
	header := make([]any, len(t.Columns))
	for j, col := range t.Columns {
		header[j] = col.Name
	}
	rows = append(rows, header)
	for i := 0; i < t.NumRows(); i++ {
		rows = append(rows, t.Row(i))
	}
	return RawTable{Rows: rows}
}

// Records returns the table as a 2-D array, header first, values as strings
func (t *NormalizedTable) Records() [][]string {
	records := make([][]string, 0, t.NumRows()+1)
	records = append(records, t.Names())
	for i := 0; i < t.NumRows(); i++ {
		record := make([]string, len(t.Columns))
		for j, col := range t.Columns {
			record[j] = col.Values[i].String()
		}
		records = append(records, record)
	}
	return records
}
