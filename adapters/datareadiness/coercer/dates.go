package coercer

import (
	"strings"
	"time"
)

// Layouts are tried in order. Unambiguous ISO forms first, then day-first
// numeric forms, then month-first as a fallback for values like 04/15/2024
// that cannot be read day-first.
var (
	isoLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		"2006/01/02 15:04:05",
		"2006/01/02",
		"2006.01.02",
	}
	dayFirstLayouts = []string{
		"2/1/2006 15:04:05", "2/1/2006 15:04", "2/1/2006",
		"2-1-2006 15:04:05", "2-1-2006 15:04", "2-1-2006",
		"2.1.2006",
	}
	monthFirstLayouts = []string{
		"1/2/2006 15:04:05", "1/2/2006 15:04", "1/2/2006",
		"1-2-2006",
		"1.2.2006",
	}
	monthNameLayouts = []string{
		"2 Jan 2006", "2 January 2006", "2-Jan-2006", "2 Jan 2006 15:04",
		"Jan 2 2006", "January 2 2006", "Jan 2, 2006", "January 2, 2006",
		"Jan 2006", "January 2006", "Jan-2006",
		"Mon 2 Jan 2006", "Monday 2 January 2006",
	}

	// 2-digit year layouts - require pivot year adjustment
	twoDigitDayFirstLayouts   = []string{"2/1/06", "2-1-06", "2.1.06", "2-Jan-06", "2 Jan 06"}
	twoDigitMonthFirstLayouts = []string{"1/2/06", "1-2-06", "1.2.06"}
)

// ParseTemporal parses a cell as a calendar date or timestamp, preferring
// day-before-month when the numeric form is ambiguous. Results are UTC.
func (c *TypeCoercer) ParseTemporal(s string) (time.Time, bool) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return time.Time{}, false
	}

	for _, group := range [][]string{isoLayouts, dayFirstLayouts, monthFirstLayouts, monthNameLayouts} {
		if t, ok := parseAny(group, s); ok {
			return t, true
		}
	}

	for _, group := range [][]string{twoDigitDayFirstLayouts, twoDigitMonthFirstLayouts} {
		if t, ok := parseAny(group, s); ok {
			return c.applyPivot(t), true
		}
	}

	return time.Time{}, false
}

func parseAny(layouts []string, s string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// applyPivot moves two-digit years that land too far in the future back a century
func (c *TypeCoercer) applyPivot(t time.Time) time.Time {
	pivotYear := c.now().Year() + c.config.TwoDigitYearPivot
	if t.Year() > pivotYear {
		return t.AddDate(-100, 0, 0)
	}
	return t
}
