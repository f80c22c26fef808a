package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"findash/ai"
	"findash/domain/table"
)

// writeJSON prints the table as the 2-D array sent to the backend
func writeJSON(w io.Writer, t *table.NormalizedTable) error {
	formatted, err := ai.FormatTable(t)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, formatted)
	return err
}

func writeCSV(w io.Writer, t *table.NormalizedTable) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// writeMarkdown prints a pipe table; numeric columns are right aligned
func writeMarkdown(w io.Writer, t *table.NormalizedTable) error {
	if t.NumColumns() == 0 {
		_, err := fmt.Fprintln(w, "(empty table)")
		return err
	}

	records := t.Records()
	var b strings.Builder
	writeRow(&b, records[0])

	b.WriteString("|")
	for _, col := range t.Columns {
		if col.Type == table.ColumnNumeric {
			b.WriteString(" ---: |")
		} else {
			b.WriteString(" --- |")
		}
	}
	b.WriteString("\n")

	for _, record := range records[1:] {
		writeRow(&b, record)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, cell := range cells {
		cell = strings.ReplaceAll(cell, "|", `\|`)
		cell = strings.ReplaceAll(cell, "\n", " ")
		b.WriteString(" " + cell + " |")
	}
	b.WriteString("\n")
}
