package profiling

import (
	"sort"

	"findash/domain/table"
	"findash/internal/errors"
)

// DataProfiler builds per-column summaries of normalized tables
type DataProfiler struct {
	numeric *DistributionAnalyzer
}

// NewDataProfiler creates a new data profiler
func NewDataProfiler() *DataProfiler {
	return &DataProfiler{numeric: NewDistributionAnalyzer()}
}

// ProfileTable summarizes every column of t
func (dp *DataProfiler) ProfileTable(t *table.NormalizedTable) (*TableProfile, error) {
	profile := &TableProfile{Rows: t.NumRows(), Columns: make([]ColumnProfile, 0, t.NumColumns())}
	for i := range t.Columns {
		col, err := dp.ProfileColumn(&t.Columns[i])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to profile column %q", t.Columns[i].Name)
		}
		profile.Columns = append(profile.Columns, col)
	}
	return profile, nil
}

// ProfileColumn summarizes a single column according to its type
func (dp *DataProfiler) ProfileColumn(col *table.Column) (ColumnProfile, error) {
	profile := ColumnProfile{Name: col.Name, Type: col.Type}
	for _, v := range col.Values {
		if v.Missing {
			profile.Missing++
		} else {
			profile.Count++
		}
	}
	if profile.Count == 0 {
		return profile, nil
	}

	switch col.Type {
	case table.ColumnNumeric:
		data := make([]float64, 0, profile.Count)
		for _, v := range col.Values {
			if !v.Missing {
				data = append(data, v.Numeric)
			}
		}
		summary, err := dp.numeric.Summarize(data)
		if err != nil {
			return profile, err
		}
		profile.Numeric = summary

	case table.ColumnTemporal:
		profile.Temporal = summarizeTemporal(col.Values)

	case table.ColumnText:
		profile.Text = summarizeText(col.Values)
	}
	return profile, nil
}

func summarizeTemporal(values []table.Value) *TemporalSummary {
	var summary *TemporalSummary
	for _, v := range values {
		if v.Missing {
			continue
		}
		if summary == nil {
			summary = &TemporalSummary{Earliest: v.Temporal, Latest: v.Temporal}
			continue
		}
		if v.Temporal.Before(summary.Earliest) {
			summary.Earliest = v.Temporal
		}
		if v.Temporal.After(summary.Latest) {
			summary.Latest = v.Temporal
		}
	}
	if summary != nil {
		summary.SpanDays = int(summary.Latest.Sub(summary.Earliest).Hours() / 24)
	}
	return summary
}

// summarizeText counts distinct values; the most frequent one wins, ties
// broken alphabetically.
func summarizeText(values []table.Value) *TextSummary {
	counts := make(map[string]int)
	for _, v := range values {
		if !v.Missing {
			counts[v.Text]++
		}
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	summary := &TextSummary{Distinct: len(counts)}
	for _, k := range keys {
		if counts[k] > summary.TopCount {
			summary.Top, summary.TopCount = k, counts[k]
		}
	}
	return summary
}
