package ai

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/domain/table"
	"findash/internal/profiling"
)

func sampleTable() *table.NormalizedTable {
	return &table.NormalizedTable{Columns: []table.Column{
		{Name: "Date", Type: table.ColumnTemporal, Values: []table.Value{
			table.NewTemporalValue(time.Date(2024, time.April, 3, 0, 0, 0, 0, time.UTC)),
			table.NewMissingValue(table.ColumnTemporal),
		}},
		{Name: "Amount", Type: table.ColumnNumeric, Values: []table.Value{
			table.NewNumericValue(1234.5),
			table.NewNumericValue(-50),
		}},
		{Name: "Note", Type: table.ColumnText, Values: []table.Value{
			table.NewTextValue("R&D <core>"),
			table.NewMissingValue(table.ColumnText),
		}},
	}}
}

func TestFormatTable(t *testing.T) {
	got, err := FormatTable(sampleTable())
	require.NoError(t, err)

	want := `[
  [
    "Date",
    "Amount",
    "Note"
  ],
  [
    "2024-04-03",
    1234.5,
    "R&D <core>"
  ],
  [
    null,
    -50,
    null
  ]
]`
	assert.Equal(t, want, got)
}

func TestFormatTable_Empty(t *testing.T) {
	got, err := FormatTable(&table.NormalizedTable{})
	require.NoError(t, err)
	assert.Equal(t, "[\n  []\n]", got)
}

func TestCompileTablePrompt(t *testing.T) {
	pm := NewPromptManager("")

	for _, option := range pm.Options() {
		t.Run(option, func(t *testing.T) {
			prompt, err := pm.CompileTablePrompt(option, sampleTable(), nil)
			require.NoError(t, err)
			assert.NotContains(t, prompt, "{table}")
			assert.Contains(t, prompt, `"Amount"`)
		})
	}

	_, err := pm.CompileTablePrompt("haiku", sampleTable(), nil)
	assert.Error(t, err)
}

func TestCompileTablePrompt_WithProfile(t *testing.T) {
	tbl := sampleTable()
	profile, err := profiling.NewDataProfiler().ProfileTable(tbl)
	require.NoError(t, err)

	prompt, err := NewPromptManager("").CompileTablePrompt("risk", tbl, profile)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "Assess the portfolio's risk exposure"))
	assert.Contains(t, prompt, "Column summary:\nROWS: 2")
	assert.Contains(t, prompt, "Amount (numeric): count=2 mean=")
	assert.Contains(t, prompt, "Date (date): 2024-04-03 to 2024-04-03 (0 days, 1 missing)")
	assert.Contains(t, prompt, `Note (text): 1 distinct, most frequent "R&D <core>" (1)`)
}

func TestPromptManager_Options(t *testing.T) {
	pm := NewPromptManager("")
	assert.Equal(t, []string{
		"allocation", "benchmark", "cashflow", "forecast", "improvements", "kpi",
		"performance", "ratios", "risk", "summary", "trend", "valuation",
	}, pm.Options())
	assert.True(t, pm.Has("kpi"))
	assert.False(t, pm.Has("joke"))
}

func TestPromptManager_DirectoryOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kpi.txt"), []byte("KPIs please:\n{table}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unknown.txt"), []byte("{table}"), 0o600))
	pm := NewPromptManager(dir)

	got, err := pm.RenderPrompt("kpi", map[string]string{"table": "[]"})
	require.NoError(t, err)
	assert.Equal(t, "KPIs please:\n[]", got)

	got, err = pm.RenderPrompt("trend", map[string]string{"table": "[]"})
	require.NoError(t, err)
	assert.Equal(t, "Perform a trend analysis on the following dataset:\n[]", got)

	assert.False(t, pm.Has("unknown"))
}
