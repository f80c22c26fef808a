package coercer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"findash/domain/table"

	"golang.org/x/text/unicode/norm"
)

// numericRegex validates that a cleaned string is a plain decimal or scientific number.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)


// CoercionConfig defines the static parsing rules
type CoercionConfig struct {
	CurrencySymbols   []string `json:"currency_symbols"`     // stripped wherever they occur
	MissingMarkers    []string `json:"missing_markers"`      // case-insensitive blank markers
	TwoDigitYearPivot int      `json:"two_digit_year_pivot"` // years this far past now roll back a century
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		CurrencySymbols:   []string{"%", "₹", "$", "€", "£", "¥"},
		MissingMarkers:    []string{"nan", "nat", "null", "none", "n/a", "na", "#n/a"},
		TwoDigitYearPivot: 20,
	}
}

// TypeCoercer applies the cleaning and parsing rules to single cells.
// It holds no mutable state and is safe for concurrent use.
type TypeCoercer struct {
	config   CoercionConfig
	missing  map[string]struct{}
	symbols  *strings.Replacer
	negative *regexp.Regexp // one pair of parentheses, only whitespace and symbols outside
	now      func() time.Time
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	missing := make(map[string]struct{}, len(config.MissingMarkers))
	for _, marker := range config.MissingMarkers {
		missing[strings.ToLower(strings.TrimSpace(marker))] = struct{}{}
	}

	pairs := make([]string, 0, 2*len(config.CurrencySymbols))
	outside := []string{`\s`}
	for _, symbol := range config.CurrencySymbols {
		if symbol == "" {
			continue
		}
		// cells are NFKC folded before the symbols are matched
		folded := norm.NFKC.String(symbol)
		pairs = append(pairs, folded, "")
		outside = append(outside, regexp.QuoteMeta(folded))
	}
	wrap := "(?:" + strings.Join(outside, "|") + ")*"

	return &TypeCoercer{
		config:   config,
		missing:  missing,
		symbols:  strings.NewReplacer(pairs...),
		negative: regexp.MustCompile(`^` + wrap + `\(([^()]*)\)` + wrap + `$`),
		now:      time.Now,
	}
}

// Config returns the rules this coercer was built with
func (c *TypeCoercer) Config() CoercionConfig {
	return c.config
}

// Render converts a raw cell to its string form. nil and NaN render as "".
func (c *TypeCoercer) Render(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if math.IsNaN(v) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		if math.IsNaN(float64(v)) {
			return ""
		}
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return table.FormatTime(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// IsBlank reports whether a raw cell is empty, whitespace or a missing marker
func (c *TypeCoercer) IsBlank(val any) bool {
	return c.IsBlankString(c.Render(val))
}

// IsBlankString reports whether a rendered cell counts as missing
func (c *TypeCoercer) IsBlankString(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	_, ok := c.missing[strings.ToLower(s)]
	return ok
}

// CleanCell applies the textual cleaning steps in order: render, fold
// full-width and compatibility forms (NFKC), drop thousands commas,
// (x) -> -x (symbols may sit outside the parentheses), strip currency and
// percent symbols.
func (c *TypeCoercer) CleanCell(val any) string {
	s := norm.NFKC.String(c.Render(val))
	s = strings.ReplaceAll(s, ",", "")
	s = c.negative.ReplaceAllString(s, "-$1")
	return c.symbols.Replace(s)
}

// ParseNumeric parses a cleaned cell as a finite float
func (c *TypeCoercer) ParseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !numericRegex.MatchString(s) {
		return 0, false
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}
