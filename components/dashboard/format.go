package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Placeholder is rendered wherever an optional value is absent.
const Placeholder = "N/A"

const displayDateLayout = "Jan 2, 2006"

// FormatCurrency formats a dollar amount with B/M/K suffixes (1250000000 -> "$1.25B").
func FormatCurrency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "$" + abbreviate(v, func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64)
	})
}

// FormatNumber abbreviates large counts (87358900 -> "87.36M").
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + abbreviate(v, formatPlain)
}

// FormatPercent renders a signed percentage with two decimals.
func FormatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	if v >= 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

// FormatDate renders YYYY-MM-DD or RFC 3339 input as "Jan 2, 2006".
func FormatDate(s string) string {
	t, ok := parseDate(s)
	if !ok {
		return Placeholder
	}
	return t.Format(displayDateLayout)
}

// FormatClock renders the last-updated stamp.
func FormatClock(t time.Time) string {
	return t.Format("15:04")
}

// FormatFixed renders v with the given number of decimals.
func FormatFixed(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// ChangeClass maps a signed change onto the positive/negative styling classes.
func ChangeClass(v float64) string {
	if v >= 0 {
		return "positive"
	}
	return "negative"
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) > 3 {
		var b strings.Builder
		start := len(s) % 3
		if start > 0 {
			b.WriteString(s[:start])
		}
		for i := start; i < len(s); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(s[i : i+3])
		}
		s = b.String()
	}
	if neg {
		return "-" + s
	}
	return s
}

func abbreviate(v float64, small func(float64) string) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.2fK", v/1e3)
	default:
		return small(v)
	}
}

func formatPlain(v float64) string {
	if v == math.Trunc(v) {
		return FormatInt(int64(v))
	}
	rounded := math.Round(v*1000) / 1000
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339, displayDateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// helpers for optional scalars

func orPlaceholder(v *float64, format func(float64) string) string {
	if v == nil {
		return Placeholder
	}
	return format(*v)
}

func fixed(decimals int) func(float64) string {
	return func(v float64) string { return FormatFixed(v, decimals) }
}

func percentOf(decimals int) func(float64) string {
	return func(v float64) string { return FormatFixed(v*100, decimals) + "%" }
}
