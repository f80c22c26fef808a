// Package dataset turns messy spreadsheet-like tables into typed tables.
//
// Normalization is a fixed pipeline. Every stage consumes the previous
// stage's output:
//
//  1. structural prune: drop all-blank rows, then all-blank columns
//  2. header repair: promote row 0 when no label contains a letter
//  3. textual cleaning: drop thousands commas, (x) -> -x, strip symbols
//  4. numeric coercion, whole column or not at all
//  5. temporal coercion (day-first) for columns that are not numeric
//  6. forward/backward/zero fill of numeric columns
//  7. whitespace trimming of text columns
//  8. column names made unique
//
// A Normalizer has no mutable state; one instance can serve any number of
// goroutines.
package dataset

import (
	"findash/adapters/datareadiness/coercer"
	"findash/domain/table"
	"findash/internal"
)

// Options tune the normalizer
type Options struct {
	Coercion coercer.CoercionConfig
	// PreserveText keeps the rendered original in text columns instead of
	// the symbol-stripped form used for coercion.
	PreserveText bool
	Logger       *internal.Logger
}

// DefaultOptions returns the default parsing rules
func DefaultOptions() Options {
	return Options{Coercion: coercer.DefaultCoercionConfig()}
}

// Normalizer runs the normalization pipeline
type Normalizer struct {
	coercer      *coercer.TypeCoercer
	preserveText bool
	logger       *internal.Logger
}

// NewNormalizer creates a normalizer with the given options
func NewNormalizer(opts Options) *Normalizer {
	logger := opts.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Normalizer{
		coercer:      coercer.NewTypeCoercer(opts.Coercion),
		preserveText: opts.PreserveText,
		logger:       logger.Named("Normalizer"),
	}
}

// NewDefaultNormalizer creates a normalizer with DefaultOptions
func NewDefaultNormalizer() *Normalizer {
	return NewNormalizer(DefaultOptions())
}

// Coercer exposes the cell rules, e.g. for loaders that need the blank test
func (n *Normalizer) Coercer() *coercer.TypeCoercer {
	return n.coercer
}

// Normalize runs the full pipeline. It never fails: cells that do not fit a
// column's type demote that column to text, and an input that prunes down to
// nothing yields an empty table.
func (n *Normalizer) Normalize(raw table.RawTable) *table.NormalizedTable {
	g := n.load(raw)
	g = n.prune(g)
	g = n.repairHeader(g)

	out := &table.NormalizedTable{Columns: make([]table.Column, 0, len(g.labels))}
	for j, label := range g.labels {
		work := n.cleanColumn(label, g, j)
		out.Columns = append(out.Columns, n.resolveColumn(work))
	}

	names := uniqueNames(g.labels)
	for j := range out.Columns {
		out.Columns[j].Name = names[j]
	}

	n.logger.Debug("normalized %d rows x %d columns", out.NumRows(), out.NumColumns())
	return out
}
