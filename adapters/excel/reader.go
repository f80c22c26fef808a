package excel

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"findash/domain/table"
	"findash/internal"
	"findash/internal/errors"

	"github.com/xuri/excelize/v2"
)

var formatLiterals = regexp.MustCompile(`\[[^\]]*\]|"[^"]*"|\\.`)

// DataReader decodes uploaded workbooks and delimited text into raw tables
type DataReader struct {
	config ReaderConfig
	logger *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV input
func NewDataReader(config ReaderConfig) *DataReader {
	if len(config.Delimiters) == 0 {
		config.Delimiters = DefaultReaderConfig().Delimiters
	}
	if config.SniffLines <= 0 {
		config.SniffLines = DefaultReaderConfig().SniffLines
	}
	return &DataReader{config: config, logger: internal.DefaultLogger.Named("DataReader")}
}

// ReadFile reads a workbook or delimited file from disk
func (r *DataReader) ReadFile(ctx context.Context, path string) (table.RawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return table.RawTable{}, errors.Wrapf(errors.WithCode(errors.CodeInvalidInput, err), "failed to open %s", path)
	}
	return r.ReadBytes(ctx, filepath.Base(path), data)
}

// Read consumes src fully and decodes it
func (r *DataReader) Read(ctx context.Context, name string, src io.Reader) (table.RawTable, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return table.RawTable{}, errors.Wrapf(errors.WithCode(errors.CodeInvalidInput, err), "failed to read %s", name)
	}
	return r.ReadBytes(ctx, name, data)
}

// ReadBytes decodes data as a workbook, falling back to delimited text.
// The returned table never has a Header: header detection belongs to the
// normalizer.
func (r *DataReader) ReadBytes(ctx context.Context, name string, data []byte) (table.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return table.RawTable{}, err
	}
	startTime := time.Now()

	if len(bytes.TrimSpace(data)) == 0 {
		r.logger.Info("%s is empty", name)
		return table.RawTable{Rows: [][]any{}}, nil
	}

	// Every input is tried as a workbook first, whatever its name says
	raw, workbookErr := r.readWorkbook(ctx, data)
	if workbookErr == nil {
		r.logger.Info("%s read as workbook in %.2fms (%d rows)", name, msSince(startTime), len(raw.Rows))
		return raw, nil
	}
	if ctx.Err() != nil {
		return table.RawTable{}, ctx.Err()
	}
	r.logger.Debug("%s is not a workbook (%v), trying delimited text", name, workbookErr)

	raw, err := r.readDelimited(data)
	if err != nil {
		err = fmt.Errorf("workbook: %v; delimited: %w", workbookErr, err)
		return table.RawTable{}, &errors.AppError{
			Code:    errors.CodeInvalidInput,
			Message: fmt.Sprintf("could not decode %s", name),
			Cause:   table.NewDecodeError(name, err),
		}
	}
	r.logger.Info("%s read as delimited text in %.2fms (%d rows)", name, msSince(startTime), len(raw.Rows))
	return raw, nil
}

// readWorkbook reads the configured (or first) sheet. Cells are taken raw so
// that number formats cannot reorder day and month; date-formatted numbers
// are converted to time.Time from their serial value.
func (r *DataReader) readWorkbook(ctx context.Context, data []byte) (table.RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return table.RawTable{}, err
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return table.RawTable{}, table.ErrNoSheets
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return table.RawTable{}, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	dates := &dateStyles{file: f, known: make(map[int]bool)}

	out := make([][]any, len(rows))
	for i, row := range rows {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return table.RawTable{}, err
			}
		}
		cells := make([]any, len(row))
		for j, value := range row {
			cells[j] = value
			if value == "" {
				continue
			}
			serial, err := strconv.ParseFloat(value, 64)
			if err != nil {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil || !dates.isDate(sheet, ref) {
				continue
			}
			if t, err := excelize.ExcelDateToTime(serial, date1904); err == nil {
				cells[j] = t.UTC()
			}
		}
		out[i] = cells
	}
	return table.RawTable{Rows: out}, nil
}

// dateStyles caches which cell style ids carry a date number format
type dateStyles struct {
	file  *excelize.File
	known map[int]bool
}

func (d *dateStyles) isDate(sheet, ref string) bool {
	styleID, err := d.file.GetCellStyle(sheet, ref)
	if err != nil || styleID == 0 {
		return false
	}
	if isDate, ok := d.known[styleID]; ok {
		return isDate
	}

	isDate := false
	if style, err := d.file.GetStyle(styleID); err == nil && style != nil {
		isDate = excelDateFormats[style.NumFmt]
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		}
	}
	d.known[styleID] = isDate
	return isDate
}

// isDateFormatCode reports whether a custom number format renders a date,
// ignoring colour/locale brackets and quoted literals.
func isDateFormatCode(code string) bool {
	code = strings.ToLower(formatLiterals.ReplaceAllString(code, ""))
	return strings.ContainsAny(code, "yd")
}

// readDelimited parses text with a sniffed delimiter. Quotes are lenient and
// rows may have different lengths.
func (r *DataReader) readDelimited(data []byte) (table.RawTable, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return table.RawTable{}, fmt.Errorf("content is not text")
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = r.sniffDelimiter(data)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return table.RawTable{}, fmt.Errorf("failed to parse delimited text: %w", err)
	}

	rows := make([][]any, len(records))
	for i, record := range records {
		row := make([]any, len(record))
		for j, cell := range record {
			row[j] = cell
		}
		rows[i] = row
	}
	return table.RawTable{Rows: rows}, nil
}

// sniffDelimiter picks the candidate that appears most consistently across
// the first lines, ignoring quoted text. Ties go to the earlier candidate.
func (r *DataReader) sniffDelimiter(data []byte) rune {
	lines := make([]string, 0, r.config.SniffLines)
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == r.config.SniffLines {
			break
		}
	}

	best, bestScore := r.config.Delimiters[0], 0
	for _, delim := range r.config.Delimiters {
		minCount := -1
		for _, line := range lines {
			n := countUnquoted(line, delim)
			if minCount < 0 || n < minCount {
				minCount = n
			}
		}
		if minCount > bestScore {
			best, bestScore = delim, minCount
		}
	}
	return best
}

func countUnquoted(line string, delim rune) int {
	count := 0
	quoted := false
	for _, c := range line {
		switch {
		case c == '"':
			quoted = !quoted
		case c == delim && !quoted:
			count++
		}
	}
	return count
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Nanoseconds()) / 1e6
}
