// shape.go - Turns raw result rows into JSON-friendly, human-readable values

package queryengine

import (
	"strconv"
	"strings"
	"time"
)

// moneyKeywords drive a name-based heuristic: a column whose name contains
// one of these is treated as a dollar amount. Known limitation: a column like
// "total_count" is formatted as money too.
var moneyKeywords = []string{"total", "spent", "price", "cost", "amount", "sum", "subtotal", "tax", "tip"}

func isMoneyColumn(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range moneyKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// formatMoney renders 1234.5 as "$1,234.50".
func formatMoney(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	dot := strings.Index(s, ".")
	intPart, frac := s[:dot], s[dot:]
	for i := len(intPart) - 3; i > 0; i -= 3 {
		intPart = intPart[:i] + "," + intPart[i:]
	}
	out := "$" + intPart + frac
	if neg {
		out = "-" + out
	}
	return out
}

// shapeValue converts one scanned cell into its presentation form. Money
// columns become formatted strings, with NULL aggregates surfacing as "$0.00"
// rather than null.
func shapeValue(column string, v any) any {
	money := isMoneyColumn(column)
	switch val := v.(type) {
	case nil:
		if money {
			return "$0.00"
		}
		return nil
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339)
	case []byte:
		s := string(val)
		if money {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return formatMoney(f)
			}
		}
		return s
	case float64:
		if money {
			return formatMoney(val)
		}
		return val
	case float32:
		if money {
			return formatMoney(float64(val))
		}
		return val
	case int64:
		if money {
			return formatMoney(float64(val))
		}
		return val
	case int:
		if money {
			return formatMoney(float64(val))
		}
		return val
	default:
		return v
	}
}

// hasAggregate reports whether the query computes a summary value, which is
// when an empty result set should be replaced by an explicit zero row. TOTAL
// is matched as a bare substring so that queries selecting or ordering by the
// total column also answer "$0.00" rather than nothing.
func hasAggregate(sqlText string) bool {
	upper := strings.ToUpper(sqlText)
	if strings.Contains(upper, "TOTAL") {
		return true
	}
	for _, fn := range []string{"SUM(", "COUNT(", "AVG(", "MIN(", "MAX("} {
		if strings.Contains(upper, fn) {
			return true
		}
	}
	return false
}

// synthesizeZeroRow builds the single row returned for an aggregate query
// that matched nothing, so "how much did I spend" answers "$0.00" instead of
// coming back empty.
func synthesizeZeroRow(columns []string) map[string]any {
	row := make(map[string]any, len(columns))
	for _, col := range columns {
		if isMoneyColumn(col) {
			row[col] = "$0.00"
		} else {
			row[col] = 0
		}
	}
	return row
}

// friendlyError maps database error text to a message safe to show the user.
func friendlyError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such column") || (strings.Contains(msg, "column") && strings.Contains(msg, "does not exist")):
		return "The query referenced a column that doesn't exist. Try rephrasing your question."
	case strings.Contains(msg, "no such table") || (strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")):
		return "The query referenced a table that doesn't exist. Try rephrasing your question."
	case strings.Contains(msg, "syntax error"):
		return "The generated query had a syntax error. Try rephrasing your question."
	case strings.Contains(msg, "invalid input syntax") || strings.Contains(msg, "type mismatch") || strings.Contains(msg, "datatype mismatch"):
		return "The query compared incompatible values. Try rephrasing your question."
	default:
		raw := err.Error()
		if len(raw) > 200 {
			raw = raw[:200]
		}
		return "Query failed: " + raw
	}
}
