package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// parseIntStrict parses a base-10 integer, rejecting signs and whitespace
// that strconv.Atoi would otherwise tolerate inside date components.
func parseIntStrict(s string) (int, error) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("not a digit: %q", r)
		}
	}
	return strconv.Atoi(s)
}

// coerceFloat converts a raw cell to float64. JSON decoding gives float64
// for numbers; spreadsheet parsers sometimes leave numeric strings behind.
func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// coerceString converts a raw cell to a string. Integral floats render
// without a fractional part so numeric AWB and PIN columns keep their
// original digits.
func coerceString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		if s == math.Trunc(s) && math.Abs(s) < 1e15 {
			return strconv.FormatFloat(s, 'f', 0, 64)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

// stringField resolves the first present, non-empty alias in order.
func stringField(r RawRecord, aliases ...string) string {
	for _, name := range aliases {
		if v, found := r[name]; found {
			if s := coerceString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// floatField resolves the first alias that coerces to a number, else 0.
func floatField(r RawRecord, aliases ...string) float64 {
	f, _ := lookupFloat(r, aliases...)
	return f
}

// lookupFloat is floatField plus a presence flag, for fields whose absence
// triggers a default chain rather than a plain zero.
func lookupFloat(r RawRecord, aliases ...string) (float64, bool) {
	for _, name := range aliases {
		if v, found := r[name]; found {
			if f, ok := coerceFloat(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

// intFieldOr resolves an integer field, falling back to def when the field
// is missing or unparseable.
func intFieldOr(r RawRecord, def int, aliases ...string) int {
	if f, found := lookupFloat(r, aliases...); found {
		return int(f)
	}
	return def
}
