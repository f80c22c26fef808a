package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"findash/domain/table"
	"findash/internal/profiling"
)

// FormatTable renders t as an indented JSON 2-D array, header row first.
// Numbers stay numbers, dates become YYYY-MM-DD (or RFC3339 with a clock)
// and missing cells become null.
func FormatTable(t *table.NormalizedTable) (string, error) {
	rows := make([][]any, 0, t.NumRows()+1)
	header := make([]any, t.NumColumns())
	for j, name := range t.Names() {
		header[j] = name
	}
	rows = append(rows, header)

	for i := 0; i < t.NumRows(); i++ {
		row := t.Row(i)
		for j, col := range t.Columns {
			if col.Type == table.ColumnTemporal && row[j] != nil {
				row[j] = col.Values[i].String()
			}
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return "", fmt.Errorf("failed to format table: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// CompileColumnSummary turns a table profile into prompt lines that anchor
// the model to the actual figures.
func CompileColumnSummary(profile *profiling.TableProfile) []string {
	if profile == nil {
		return nil
	}

	out := []string{fmt.Sprintf("ROWS: %d", profile.Rows)}
	for _, col := range profile.Columns {
		switch {
		case col.Numeric != nil:
			s := col.Numeric
			out = append(out, fmt.Sprintf(
				"%s (numeric): count=%d mean=%s std=%s min=%s q25=%s median=%s q75=%s max=%s",
				col.Name, col.Count, num(s.Mean), num(s.StdDev), num(s.Min), num(s.Q25),
				num(s.Median), num(s.Q75), num(s.Max),
			))
			if s.Outliers > 0 {
				out = append(out, fmt.Sprintf("CAUTION: %s has %d outlier value(s) outside 1.5 IQR.", col.Name, s.Outliers))
			}
		case col.Temporal != nil:
			s := col.Temporal
			out = append(out, fmt.Sprintf("%s (date): %s to %s (%d days, %d missing)",
				col.Name, table.FormatTime(s.Earliest), table.FormatTime(s.Latest), s.SpanDays, col.Missing))
		case col.Text != nil:
			s := col.Text
			out = append(out, fmt.Sprintf("%s (text): %d distinct, most frequent %q (%d)",
				col.Name, s.Distinct, s.Top, s.TopCount))
		default:
			out = append(out, fmt.Sprintf("%s (%s): no values", col.Name, col.Type))
		}
	}
	return out
}

// CompileTablePrompt renders the option's template with the formatted table.
// A non-nil profile appends the column summary after the table.
func (pm *PromptManager) CompileTablePrompt(option string, t *table.NormalizedTable, profile *profiling.TableProfile) (string, error) {
	formatted, err := FormatTable(t)
	if err != nil {
		return "", err
	}

	if lines := CompileColumnSummary(profile); len(lines) > 0 {
		formatted += "\n\nColumn summary:\n" + strings.Join(lines, "\n")
	}

	return pm.RenderPrompt(option, map[string]string{TablePlaceholder: formatted})
}

func num(f float64) string {
	return fmt.Sprintf("%.4g", f)
}
