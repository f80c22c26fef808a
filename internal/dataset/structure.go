package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"findash/domain/table"
)

// grid is the working table between the structural stages.
// labels == nil means the columns are only known by position.
type grid struct {
	labels []string
	rows   [][]any
}

func (g grid) width() int {
	if len(g.rows) > 0 {
		return len(g.rows[0])
	}
	return len(g.labels)
}

// load copies the raw input into a rectangular grid, padding ragged rows
// with blanks. The input is never modified.
func (n *Normalizer) load(raw table.RawTable) grid {
	width := raw.Width()

	var labels []string
	if raw.Header != nil {
		labels = make([]string, width)
		copy(labels, raw.Header)
	}

	rows := make([][]any, len(raw.Rows))
	for i, src := range raw.Rows {
		row := make([]any, width)
		copy(row, src)
		rows[i] = row
	}
	return grid{labels: labels, rows: rows}
}

// prune removes all-blank rows, then all-blank columns. Only empty,
// whitespace and missing-marker cells are blank here; a symbol-only cell such
// as "$" survives and becomes missing during coercion.
func (n *Normalizer) prune(g grid) grid {
	rows := make([][]any, 0, len(g.rows))
	for _, row := range g.rows {
		for _, cell := range row {
			if !n.coercer.IsBlank(cell) {
				rows = append(rows, row)
				break
			}
		}
	}

	width := g.width()
	keep := make([]int, 0, width)
	for j := 0; j < width; j++ {
		for _, row := range rows {
			if !n.coercer.IsBlank(row[j]) {
				keep = append(keep, j)
				break
			}
		}
	}

	if dropped := len(g.rows) - len(rows); dropped > 0 || len(keep) < width {
		n.logger.Debug("pruned %d blank rows and %d blank columns", dropped, width-len(keep))
	}

	out := grid{rows: make([][]any, len(rows))}
	for i, row := range rows {
		kept := make([]any, len(keep))
		for k, j := range keep {
			kept[k] = row[j]
		}
		out.rows[i] = kept
	}
	if g.labels != nil {
		out.labels = make([]string, len(keep))
		for k, j := range keep {
			out.labels[k] = g.labels[j]
		}
	}
	return out
}

// repairHeader promotes the first row to the header when none of the current
// labels (positional indices if the loader gave none) contains a letter.
// Labels always come out as trimmed strings.
func (n *Normalizer) repairHeader(g grid) grid {
	labels := g.labels
	if labels == nil {
		labels = make([]string, g.width())
		for j := range labels {
			labels[j] = strconv.Itoa(j)
		}
	}

	if len(g.rows) > 0 && !anyAlphabetic(labels) {
		promoted := make([]string, len(g.rows[0]))
		for j, cell := range g.rows[0] {
			promoted[j] = n.coercer.Render(cell)
		}
		labels = promoted
		g.rows = g.rows[1:]
		n.logger.Debug("promoted first row to header: %v", labels)
	}

	trimmed := make([]string, len(labels))
	for j, label := range labels {
		trimmed[j] = strings.TrimSpace(label)
	}
	g.labels = trimmed
	return g
}

func anyAlphabetic(labels []string) bool {
	for _, label := range labels {
		for _, r := range label {
			if unicode.IsLetter(r) {
				return true
			}
		}
	}
	return false
}

// uniqueNames fills blank names with "Unnamed: <i>" and suffixes repeats with
// .1, .2, ... skipping any suffix that is already taken by another column.
func uniqueNames(labels []string) []string {
	names := make([]string, len(labels))
	taken := make(map[string]bool, len(labels))
	for j, label := range labels {
		if label == "" {
			label = fmt.Sprintf("Unnamed: %d", j)
		}
		names[j] = label
		taken[label] = true
	}

	used := make(map[string]bool, len(names))
	for j, name := range names {
		if !used[name] {
			used[name] = true
			continue
		}
		for k := 1; ; k++ {
			candidate := fmt.Sprintf("%s.%d", name, k)
			if !used[candidate] && !taken[candidate] {
				names[j] = candidate
				used[candidate] = true
				break
			}
		}
	}
	return names
}
