package dataset

import (
	"strings"

	"findash/domain/table"
)

// columnWork carries one column through the per-column stages
type columnWork struct {
	name     string
	state    table.ColumnType
	rendered []string
	cleaned  []string
	blank    []bool
}

// cleanColumn renders and text-cleans every cell of column j
func (n *Normalizer) cleanColumn(name string, g grid, j int) *columnWork {
	work := &columnWork{
		name:     name,
		state:    table.ColumnUnknown,
		rendered: make([]string, len(g.rows)),
		cleaned:  make([]string, len(g.rows)),
		blank:    make([]bool, len(g.rows)),
	}
	for i, row := range g.rows {
		work.rendered[i] = n.coercer.Render(row[j])
		work.cleaned[i] = n.coercer.CleanCell(row[j])
		work.blank[i] = n.coercer.IsBlankString(work.cleaned[i])
	}
	return work
}

// resolveColumn walks unknown -> numeric -> temporal -> text. Each candidate
// either takes every non-blank cell or is abandoned for the next one.
func (n *Normalizer) resolveColumn(work *columnWork) table.Column {
	if values, ok := n.coerceNumeric(work); ok {
		work.state = table.ColumnNumeric
		imputeNumeric(values)
		n.logger.Debug("column %q resolved as numeric", work.name)
		return table.Column{Name: work.name, Type: work.state, Values: values}
	}

	if values, ok := n.coerceTemporal(work); ok {
		work.state = table.ColumnTemporal
		n.logger.Debug("column %q resolved as temporal", work.name)
		return table.Column{Name: work.name, Type: work.state, Values: values}
	}

	work.state = table.ColumnText
	n.logger.Debug("column %q kept as text", work.name)
	return table.Column{Name: work.name, Type: work.state, Values: n.trimText(work)}
}

func (n *Normalizer) coerceNumeric(work *columnWork) ([]table.Value, bool) {
	values := make([]table.Value, len(work.cleaned))
	for i, s := range work.cleaned {
		if work.blank[i] {
			values[i] = table.NewMissingValue(table.ColumnNumeric)
			continue
		}
		f, ok := n.coercer.ParseNumeric(s)
		if !ok {
			return nil, false
		}
		values[i] = table.NewNumericValue(f)
	}
	return values, true
}

func (n *Normalizer) coerceTemporal(work *columnWork) ([]table.Value, bool) {
	values := make([]table.Value, len(work.cleaned))
	for i, s := range work.cleaned {
		if work.blank[i] {
			values[i] = table.NewMissingValue(table.ColumnTemporal)
			continue
		}
		t, ok := n.coercer.ParseTemporal(s)
		if !ok {
			return nil, false
		}
		values[i] = table.NewTemporalValue(t)
	}
	return values, true
}

// imputeNumeric fills missing cells forward, then backward, then with zero
func imputeNumeric(values []table.Value) {
	last := -1
	for i := range values {
		if !values[i].Missing {
			last = i
			continue
		}
		if last >= 0 {
			values[i] = table.NewNumericValue(values[last].Numeric)
		}
	}

	next := -1
	for i := len(values) - 1; i >= 0; i-- {
		if !values[i].Missing {
			next = i
			continue
		}
		if next >= 0 {
			values[i] = table.NewNumericValue(values[next].Numeric)
		}
	}

	for i := range values {
		if values[i].Missing {
			values[i] = table.NewNumericValue(0)
		}
	}
}

func (n *Normalizer) trimText(work *columnWork) []table.Value {
	source := work.cleaned
	if n.preserveText {
		source = work.rendered
	}

	values := make([]table.Value, len(source))
	for i, s := range source {
		if work.blank[i] {
			values[i] = table.NewMissingValue(table.ColumnText)
			continue
		}
		values[i] = table.NewTextValue(strings.TrimSpace(s))
	}
	return values
}
