package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/domain/table"
	"findash/internal/config"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func sampleTable() *table.NormalizedTable {
	return &table.NormalizedTable{Columns: []table.Column{
		{Name: "Fund | Class", Type: table.ColumnText, Values: []table.Value{
			table.NewTextValue("Alpha"), table.NewTextValue("Beta"),
		}},
		{Name: "NAV", Type: table.ColumnNumeric, Values: []table.Value{
			table.NewNumericValue(101.5), table.NewMissingValue(table.ColumnNumeric),
		}},
	}}
}

func TestWriters(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"csv", "Fund | Class,NAV\nAlpha,101.5\nBeta,\n"},
		{"markdown", "| Fund \\| Class | NAV |\n| --- | ---: |\n| Alpha | 101.5 |\n| Beta |  |\n"},
		{"json", "[\n  [\n    \"Fund | Class\",\n    \"NAV\"\n  ],\n  [\n    \"Alpha\",\n    101.5\n  ],\n  [\n    \"Beta\",\n    null\n  ]\n]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			write, err := writerFor(tt.format)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, write(&buf, sampleTable()))
			assert.Equal(t, tt.want, buf.String())
		})
	}

	_, err := writerFor("xml")
	assert.Error(t, err)
}

func TestLoadTables_KeepsInputOrder(t *testing.T) {
	paths := []string{
		writeFixture(t, "a.csv", "Name,Amount\nA,\"1,000\"\n"),
		writeFixture(t, "b.csv", "Date;Price\n03/04/2024;10\n04/04/2024;11\n"),
		writeFixture(t, "c.tsv", "Item\tQty\nX\t1\nY\t2\nZ\t3\n"),
	}

	tables, err := loadTables(context.Background(), config.LoadWithoutValidation(), paths, 2)
	require.NoError(t, err)
	require.Len(t, tables, 3)

	assert.Equal(t, paths[0], tables[0].path)
	assert.Equal(t, 1, tables[0].table.NumRows())
	assert.Equal(t, []string{"Date", "Price"}, tables[1].table.Names())
	assert.Equal(t, 3, tables[2].table.NumRows())
}

func TestLoadTables_MissingFile(t *testing.T) {
	_, err := loadTables(context.Background(), config.LoadWithoutValidation(),
		[]string{filepath.Join(t.TempDir(), "nope.csv")}, 1)
	assert.Error(t, err)
}

func TestNormalizeCommand(t *testing.T) {
	path := writeFixture(t, "flows.csv", "Month,Net\n01/01/2024,(100)\n01/02/2024,250\n")
	cmd := newNormalizeCmd(config.LoadWithoutValidation())

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--format", "csv", path})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Equal(t, "Month,Net\n2024-01-01,-100\n2024-02-01,250\n", out.String())
}

func TestPromptCommand(t *testing.T) {
	path := writeFixture(t, "holdings.csv", "Asset,Weight\nEquity,60%\nBonds,40%\n")
	cmd := newPromptCmd(config.LoadWithoutValidation())

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--option", "allocation", "--profile=false", path})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "Analyze the asset allocation")
	assert.Contains(t, out.String(), "60")
	assert.NotContains(t, out.String(), "Column summary:")

	cmd = newPromptCmd(config.LoadWithoutValidation())
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--option", "astrology", path})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestDescribeCommand(t *testing.T) {
	path := writeFixture(t, "prices.csv", "Ticker,Close\nAAA,10\nBBB,20\nCCC,30\n")
	cmd := newDescribeCmd(config.LoadWithoutValidation())

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "ROWS: 3")
	assert.Contains(t, out.String(), "Close (numeric): count=3 mean=20")
	assert.Contains(t, out.String(), "Ticker (text): 3 distinct")
}
