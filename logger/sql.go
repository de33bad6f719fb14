package logger

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
	"unicode"
)

const tmFmtWithMS = "2006-01-02 15:04:05.999"

func isPrintable(s []byte) bool {
	for _, r := range s {
		if !unicode.IsPrint(rune(r)) {
			return false
		}
	}
	return true
}

// ExplainSQL inlines vars into the "?" placeholders of sql for logging, quoting text with escaper.
// It is not safe for execution.
func ExplainSQL(sql string, escaper string, vars ...interface{}) string {
	formatted := make([]string, len(vars))
	for idx, v := range vars {
		formatted[idx] = explainVar(v, escaper)
	}

	var (
		builder strings.Builder
		idx     int
	)
	for _, r := range sql {
		if r == '?' && idx < len(formatted) {
			builder.WriteString(formatted[idx])
			idx++
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

func explainVar(v interface{}, escaper string) string {
	if valuer, ok := v.(driver.Valuer); ok {
		v, _ = valuer.Value()
	}

	switch v := v.(type) {
	case nil:
		return "NULL"
	case bool:
		return fmt.Sprint(v)
	case time.Time:
		return escaper + v.Format(tmFmtWithMS) + escaper
	case *time.Time:
		if v == nil {
			return "NULL"
		}
		return escaper + v.Format(tmFmtWithMS) + escaper
	case []byte:
		if isPrintable(v) {
			return escaper + strings.ReplaceAll(string(v), escaper, escaper+escaper) + escaper
		}
		return escaper + "<binary>" + escaper
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float64, float32:
		return fmt.Sprintf("%.6f", v)
	case string:
		return escaper + strings.ReplaceAll(v, escaper, escaper+escaper) + escaper
	default:
		return escaper + strings.ReplaceAll(fmt.Sprint(v), escaper, escaper+escaper) + escaper
	}
}
