package coercer

import (
	"math"
	"testing"
	"time"
)

func TestCleanCell(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"thousands separators", "1,234,567", "1234567"},
		{"accounting negative", "(1234.5)", "-1234.5"},
		{"accounting negative with separators", "(1,234.5)", "-1234.5"},
		{"accounting negative with currency", "($50)", "-50"},
		{"currency before accounting negative", "$(50)", "-50"},
		{"rupee inside accounting negative", "(₹1,234)", "-1234"},
		{"rupee before accounting negative", "₹(1,234)", "-1234"},
		{"currency and decimals before accounting negative", "$(1,234.50)", "-1234.50"},
		{"percent after accounting negative", " (12.5) %", "-12.5"},
		{"text before parentheses untouched", "USD (50)", "USD (50)"},
		{"dollar", "$1,234.50", "1234.50"},
		{"rupee", "₹ 2,000", " 2000"},
		{"percent", "12.5%", "12.5"},
		{"euro and pound", "€10 £20", "10 20"},
		{"full-width digits", "１,２３４", "1234"},
		{"full-width accounting negative", "（５０）", "-50"},
		{"full-width yen", "￥1,000", "1000"},
		{"partial parentheses untouched", "Revenue (USD)", "Revenue (USD)"},
		{"nested parentheses untouched", "((5))", "((5))"},
		{"float cell", 1000.0, "1000"},
		{"int cell", 42, "42"},
		{"nil cell", nil, ""},
		{"bool cell", true, "true"},
		{"date cell", time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), "2024-04-03"},
		{"nan cell", math.NaN(), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.CleanCell(tt.in); got != tt.want {
				t.Errorf("CleanCell(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanCellIsIdempotent(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	for _, in := range []string{"(1,234.5)", "$1,234.50", "12%", "apple, inc", "(x)", " (50) ", "$(50)", "₹(1,234)"} {
		once := c.CleanCell(in)
		twice := c.CleanCell(once)
		if once != twice {
			t.Errorf("cleaning %q is not idempotent: %q then %q", in, once, twice)
		}
	}
}

func TestParseNumeric(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"1000", 1000, true},
		{" -50 ", -50, true},
		{"1234.50", 1234.5, true},
		{".5", 0.5, true},
		{"1e3", 1000, true},
		{"+7", 7, true},
		{"apple", 0, false},
		{"", 0, false},
		{"Inf", 0, false},
		{"NaN", 0, false},
		{"0x10", 0, false},
		{"--50", 0, false},
		{"1 000", 0, false},
		{"1e400", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := c.ParseNumeric(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ParseNumeric(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseNumeric(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsBlank(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	blanks := []any{nil, "", "   ", "\t\n", "NaN", "null", "N/A", "#N/A", "None", math.NaN()}
	for _, v := range blanks {
		if !c.IsBlank(v) {
			t.Errorf("IsBlank(%#v) = false, want true", v)
		}
	}

	nonBlanks := []any{"0", 0.0, "apple", "-", false}
	for _, v := range nonBlanks {
		if c.IsBlank(v) {
			t.Errorf("IsBlank(%#v) = true, want false", v)
		}
	}
}

func TestParseTemporal(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())
	c.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	date := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		in     string
		want   time.Time
		wantOK bool
	}{
		{"03/04/2024", date(2024, time.April, 3), true},
		{"15/04/2024", date(2024, time.April, 15), true},
		{"3/4/2024", date(2024, time.April, 3), true},
		{"03-04-2024", date(2024, time.April, 3), true},
		{"03.04.2024", date(2024, time.April, 3), true},
		{"04/15/2024", date(2024, time.April, 15), true},
		{"2024-04-03", date(2024, time.April, 3), true},
		{"2024/04/03", date(2024, time.April, 3), true},
		{"2024-04-03T10:30:00Z", time.Date(2024, 4, 3, 10, 30, 0, 0, time.UTC), true},
		{"3 Apr 2024", date(2024, time.April, 3), true},
		{"Apr 3 2024", date(2024, time.April, 3), true},
		{"April 3, 2024", date(2024, time.April, 3), true},
		{"03-Apr-2024", date(2024, time.April, 3), true},
		{"Apr 2024", date(2024, time.April, 1), true},
		{"03/04/24", date(2024, time.April, 3), true},
		{"03/04/60", date(1960, time.April, 3), true},
		{"  03/04/2024  ", date(2024, time.April, 3), true},
		{"apple", time.Time{}, false},
		{"32/13/2024", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := c.ParseTemporal(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ParseTemporal(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseTemporal(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCustomSymbols(t *testing.T) {
	config := DefaultCoercionConfig()
	config.CurrencySymbols = []string{"CHF", "%"}
	c := NewTypeCoercer(config)

	got := c.CleanCell("CHF 1,200")
	if v, ok := c.ParseNumeric(got); !ok || v != 1200 {
		t.Errorf("CHF 1,200 cleaned to %q, parsed %v %v", got, v, ok)
	}
	if got := c.CleanCell("CHF (75)"); got != "-75" {
		t.Errorf("CHF (75) cleaned to %q, want -75", got)
	}
	if got := c.CleanCell("$(5)"); got != "$(5)" {
		t.Errorf("parentheses behind an unconfigured symbol should be kept, got %q", got)
	}
	if got := c.CleanCell("$5"); got != "$5" {
		t.Errorf("dollar should be kept when not configured, got %q", got)
	}
}
