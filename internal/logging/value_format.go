package logging

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
)

// plainValue renders v without quoting; the console uses it for the
// component, source and stage labels.
func plainValue(v slog.Value) string {
	v = v.Resolve()
	if v.Kind() == slog.KindString {
		return v.String()
	}
	return renderValue(v)
}

// formatValue renders v as the value half of a console key=value pair.
func formatValue(v slog.Value) string {
	v = v.Resolve()
	if v.Kind() == slog.KindTime {
		return v.Time().In(time.Local).Format(logTimestampLayout)
	}
	s := renderValue(v)
	if needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

func renderValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(roundScore(v.Float64()), 'f', -1, 64)
	case slog.KindDuration:
		return roundDuration(v.Duration()).String()
	case slog.KindAny:
		switch value := v.Any().(type) {
		case error:
			return value.Error()
		case []string:
			// Lists such as unknown platform names.
			return strings.Join(value, ",")
		default:
			return fmt.Sprint(value)
		}
	default:
		return v.String()
	}
}

// roundScore keeps three decimals, enough to tell similarity scores apart.
func roundScore(f float64) float64 {
	return math.Round(f*1000) / 1000
}

func roundDuration(d time.Duration) time.Duration {
	if d >= time.Second {
		return d.Round(time.Millisecond)
	}
	return d.Round(time.Microsecond)
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return true
		}
	}
	return false
}
