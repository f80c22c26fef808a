package dataset

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/domain/table"
)

func numericValues(t *testing.T, col *table.Column) []float64 {
	t.Helper()
	require.Equal(t, table.ColumnNumeric, col.Type, "column %q", col.Name)
	out := make([]float64, len(col.Values))
	for i, v := range col.Values {
		require.False(t, v.Missing, "column %q row %d is missing", col.Name, i)
		out[i] = v.Numeric
	}
	return out
}

func textValues(col *table.Column) []string {
	out := make([]string, len(col.Values))
	for i, v := range col.Values {
		out[i] = v.Text
	}
	return out
}

func rows(cells ...[]any) table.RawTable {
	return table.RawTable{Rows: cells}
}

func TestNormalize_Scenarios(t *testing.T) {
	n := NewDefaultNormalizer()

	t.Run("separators and accounting negatives", func(t *testing.T) {
		out := n.Normalize(rows(
			[]any{"A", "B"},
			[]any{"1,000", "(50)"},
			[]any{"2,000", "75"},
		))

		require.Equal(t, []string{"A", "B"}, out.Names())
		a, _ := out.Column("A")
		b, _ := out.Column("B")
		assert.Equal(t, []float64{1000, 2000}, numericValues(t, a))
		assert.Equal(t, []float64{-50, 75}, numericValues(t, b))
	})

	t.Run("numeric header row is promoted", func(t *testing.T) {
		out := n.Normalize(rows(
			[]any{"100", "200"},
			[]any{"300", "400"},
		))

		require.Equal(t, []string{"100", "200"}, out.Names())
		require.Equal(t, 1, out.NumRows())
		assert.Equal(t, []any{300.0, 400.0}, out.Row(0))
	})

	t.Run("currency with a gap is forward filled", func(t *testing.T) {
		out := n.Normalize(rows(
			[]any{"Amount", "Name"},
			[]any{"$1,234.50", "a"},
			[]any{"", "b"},
			[]any{"$2,000", "c"},
		))

		col, ok := out.Column("Amount")
		require.True(t, ok)
		assert.Equal(t, []float64{1234.5, 1234.5, 2000}, numericValues(t, col))
	})

	t.Run("one word blocks numeric coercion", func(t *testing.T) {
		out := n.Normalize(rows(
			[]any{"Fruit"},
			[]any{"apple"},
			[]any{"12"},
			[]any{"banana"},
		))

		col, ok := out.Column("Fruit")
		require.True(t, ok)
		assert.Equal(t, table.ColumnText, col.Type)
		assert.Equal(t, []string{"apple", "12", "banana"}, textValues(col))
	})

	t.Run("ambiguous dates are day first", func(t *testing.T) {
		out := n.Normalize(rows(
			[]any{"Date"},
			[]any{"03/04/2024"},
			[]any{"15/04/2024"},
		))

		col, ok := out.Column("Date")
		require.True(t, ok)
		require.Equal(t, table.ColumnTemporal, col.Type)
		assert.Equal(t, time.Date(2024, time.April, 3, 0, 0, 0, 0, time.UTC), col.Values[0].Temporal)
		assert.Equal(t, time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC), col.Values[1].Temporal)
	})
}

func messyTable() table.RawTable {
	return rows(
		[]any{"", "", nil, "", "", ""},
		[]any{" Name ", "Amount", "Date", "Pct", "", "Amount"},
		[]any{"Alpha, Inc", "1,000", "03/04/2024", "12%", nil, "x"},
		[]any{"  Beta ", "(50)", "", "", nil, "y"},
		[]any{nil, nil, nil, nil, nil, nil},
		[]any{"Gamma", "", "15/04/2024", "7.5%", "", "z"},
		[]any{"Name", "$2,000", "2024-05-01", "n/a", nil, "w"},
	)
}

func TestNormalize_MessyTable(t *testing.T) {
	out := NewDefaultNormalizer().Normalize(messyTable())

	require.Equal(t, []string{"Name", "Amount", "Date", "Pct", "Amount.1"}, out.Names())
	require.Equal(t, 4, out.NumRows())

	name, _ := out.Column("Name")
	assert.Equal(t, table.ColumnText, name.Type)
	assert.Equal(t, []string{"Alpha Inc", "Beta", "Gamma", "Name"}, textValues(name))

	amount, _ := out.Column("Amount")
	assert.Equal(t, []float64{1000, -50, -50, 2000}, numericValues(t, amount))

	pct, _ := out.Column("Pct")
	assert.Equal(t, []float64{12, 12, 7.5, 7.5}, numericValues(t, pct))

	date, _ := out.Column("Date")
	require.Equal(t, table.ColumnTemporal, date.Type)
	assert.False(t, date.Values[0].Missing)
	assert.True(t, date.Values[1].Missing, "temporal gaps are not imputed")
	assert.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), date.Values[3].Temporal)
}

func TestNormalize_Idempotent(t *testing.T) {
	n := NewDefaultNormalizer()

	inputs := map[string]table.RawTable{
		"messy":          messyTable(),
		"numeric header": rows([]any{"100", "200"}, []any{"300", "400"}),
		"timestamps": rows(
			[]any{"When", "Qty"},
			[]any{"2024-04-03T10:30:00+02:00", 1.5},
			[]any{"2024-04-04 08:00", nil},
		),
		"all text": rows([]any{"Note"}, []any{" (x) "}, []any{"$ 5 apples"}),
		"symbols around accounting negatives": rows(
			[]any{"A", "B"},
			[]any{"$(50)", "₹(1,234)"},
			[]any{"(1,234.5)", "(₹10) "},
		),
	}

	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			first := n.Normalize(raw)
			second := n.Normalize(first.ToRaw())
			assert.Equal(t, first, second)
		})
	}
}

func TestNormalize_WholeColumnAtomicity(t *testing.T) {
	out := NewDefaultNormalizer().Normalize(rows(
		[]any{"Mixed", "Dates"},
		[]any{"1", "03/04/2024"},
		[]any{"2", "not a date"},
		[]any{"x", "15/04/2024"},
	))

	for _, col := range out.Columns {
		assert.Equal(t, table.ColumnText, col.Type, "column %q", col.Name)
		for _, v := range col.Values {
			assert.Equal(t, table.ColumnText, v.Type)
		}
	}
	mixed, _ := out.Column("Mixed")
	assert.Equal(t, []string{"1", "2", "x"}, textValues(mixed))
}

func TestNormalize_Density(t *testing.T) {
	out := NewDefaultNormalizer().Normalize(rows(
		[]any{"Lead", "Trail", "Empty", "Label"},
		[]any{"", "5", nil, "a"},
		[]any{"", "", "N/A", "b"},
		[]any{"7", "", "", "c"},
	))

	lead, _ := out.Column("Lead")
	assert.Equal(t, []float64{7, 7, 7}, numericValues(t, lead))
	trail, _ := out.Column("Trail")
	assert.Equal(t, []float64{5, 5, 5}, numericValues(t, trail))
	empty, _ := out.Column("Empty")
	assert.Equal(t, []float64{0, 0, 0}, numericValues(t, empty))
}

func TestNormalize_Pruning(t *testing.T) {
	out := NewDefaultNormalizer().Normalize(rows(
		[]any{"A", nil, "B", "  "},
		[]any{"1", "", "x", nil},
		[]any{"", "  ", nil, "null"},
		[]any{"2", nil, "y", ""},
	))

	assert.Equal(t, []string{"A", "B"}, out.Names())
	assert.Equal(t, 2, out.NumRows())
}

func TestNormalize_SymbolsAroundAccountingNegatives(t *testing.T) {
	out := NewDefaultNormalizer().Normalize(rows(
		[]any{"A"},
		[]any{"$(50)"},
		[]any{"(1,234.5)"},
		[]any{"₹(2,000)"},
	))

	a, _ := out.Column("A")
	assert.Equal(t, []float64{-50, -1234.5, -2000}, numericValues(t, a))
}

func TestNormalize_SymbolOnlyRowIsKept(t *testing.T) {
	out := NewDefaultNormalizer().Normalize(rows(
		[]any{"A", "B"},
		[]any{"$", "%"},
		[]any{"1", "2"},
	))

	require.Equal(t, 2, out.NumRows())
	a, _ := out.Column("A")
	assert.Equal(t, []float64{1, 1}, numericValues(t, a))
	b, _ := out.Column("B")
	assert.Equal(t, []float64{2, 2}, numericValues(t, b))
}

func TestNormalize_EmptyInput(t *testing.T) {
	n := NewDefaultNormalizer()

	for name, raw := range map[string]table.RawTable{
		"nil rows":      {},
		"blank cells":   rows([]any{"", nil}, []any{"   "}),
		"header only":   {Header: []string{"A", "B"}},
		"missing marks": rows([]any{"NaN", "null"}),
	} {
		t.Run(name, func(t *testing.T) {
			out := n.Normalize(raw)
			require.NotNil(t, out)
			assert.Equal(t, 0, out.NumColumns())
			assert.Equal(t, 0, out.NumRows())
		})
	}
}

func TestNormalize_LoaderHeader(t *testing.T) {
	n := NewDefaultNormalizer()

	t.Run("alphabetic labels are kept", func(t *testing.T) {
		out := n.Normalize(table.RawTable{
			Header: []string{" Ticker ", "Units"},
			Rows:   [][]any{{"AAPL", 10.0}, {"MSFT", 5.0}},
		})
		assert.Equal(t, []string{"Ticker", "Units"}, out.Names())
		assert.Equal(t, 2, out.NumRows())
	})

	t.Run("numeric labels are replaced by the first row", func(t *testing.T) {
		out := n.Normalize(table.RawTable{
			Header: []string{"1", "2"},
			Rows:   [][]any{{"Ticker", "Units"}, {"AAPL", 10.0}},
		})
		assert.Equal(t, []string{"Ticker", "Units"}, out.Names())
		assert.Equal(t, 1, out.NumRows())
	})
}

func TestNormalize_RaggedRows(t *testing.T) {
	out := NewDefaultNormalizer().Normalize(rows(
		[]any{"A", "B", "C"},
		[]any{"1"},
		[]any{"2", "3"},
	))

	require.Equal(t, []string{"A", "B", "C"}, out.Names())
	b, _ := out.Column("B")
	assert.Equal(t, []float64{3, 3}, numericValues(t, b))
	c, _ := out.Column("C")
	assert.Equal(t, []float64{0, 0}, numericValues(t, c))
}

func TestNormalize_ColumnNames(t *testing.T) {
	out := NewDefaultNormalizer().Normalize(rows(
		[]any{"A", "A", "", "A.1", 2024.0},
		[]any{"1", "2", "3", "4", "5"},
	))

	assert.Equal(t, []string{"A", "A.2", "Unnamed: 2", "A.1", "2024"}, out.Names())
}

func TestNormalize_PreserveText(t *testing.T) {
	opts := DefaultOptions()
	opts.PreserveText = true
	out := NewNormalizer(opts).Normalize(rows(
		[]any{"Holder", "Amount"},
		[]any{" Smith, John ", "$1,000"},
		[]any{"50% Partners", "(20)"},
	))

	holder, _ := out.Column("Holder")
	assert.Equal(t, []string{"Smith, John", "50% Partners"}, textValues(holder))
	amount, _ := out.Column("Amount")
	assert.Equal(t, []float64{1000, -20}, numericValues(t, amount))
}

func TestNormalize_TypedCells(t *testing.T) {
	when := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	out := NewDefaultNormalizer().Normalize(rows(
		[]any{"Date", "Value", "Flag"},
		[]any{when, 12.5, true},
		[]any{when.AddDate(0, 1, 0), 3, false},
	))

	date, _ := out.Column("Date")
	assert.Equal(t, table.ColumnTemporal, date.Type)
	assert.True(t, date.Values[0].Temporal.Equal(when))
	value, _ := out.Column("Value")
	assert.Equal(t, []float64{12.5, 3}, numericValues(t, value))
	flag, _ := out.Column("Flag")
	assert.Equal(t, []string{"true", "false"}, textValues(flag))
}

func TestNormalize_DoesNotModifyInput(t *testing.T) {
	raw := rows([]any{" A "}, []any{"1,000"}, []any{""})
	NewDefaultNormalizer().Normalize(raw)

	assert.Equal(t, []any{" A "}, raw.Rows[0])
	assert.Equal(t, []any{"1,000"}, raw.Rows[1])
	assert.Equal(t, []any{""}, raw.Rows[2])
}

func TestNormalize_ConcurrentCallsAreIndependent(t *testing.T) {
	n := NewDefaultNormalizer()
	want := n.Normalize(messyTable())

	var wg sync.WaitGroup
	results := make([]*table.NormalizedTable, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = n.Normalize(messyTable())
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}
