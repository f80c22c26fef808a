package profiling

import (
	"time"

	"findash/domain/table"
)

// NumericSummary holds summary statistics of a numeric column
type NumericSummary struct {
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std"`
	Min      float64 `json:"min"`
	Q25      float64 `json:"q25"`
	Median   float64 `json:"median"`
	Q75      float64 `json:"q75"`
	Max      float64 `json:"max"`
	Sum      float64 `json:"sum"`
	Skewness float64 `json:"skewness"`
	Outliers int     `json:"outliers"`
	IsNormal bool    `json:"is_normal"`
}

// TemporalSummary holds the covered date range of a temporal column
type TemporalSummary struct {
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
	SpanDays int       `json:"span_days"`
}

// TextSummary holds cardinality information for a text column
type TextSummary struct {
	Distinct int    `json:"distinct"`
	Top      string `json:"top"`
	TopCount int    `json:"top_count"`
}

// ColumnProfile describes one normalized column
type ColumnProfile struct {
	Name     string           `json:"name"`
	Type     table.ColumnType `json:"type"`
	Count    int              `json:"count"`
	Missing  int              `json:"missing"`
	Numeric  *NumericSummary  `json:"numeric,omitempty"`
	Temporal *TemporalSummary `json:"temporal,omitempty"`
	Text     *TextSummary     `json:"text,omitempty"`
}

// TableProfile describes a whole normalized table
type TableProfile struct {
	Rows    int             `json:"rows"`
	Columns []ColumnProfile `json:"columns"`
}
