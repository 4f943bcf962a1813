package logging

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// newRunLogHandler writes the JSON lines the logs command reads back: ts in
// RFC 3339 UTC, lowercase level, durations as Go duration strings and
// similarity scores rounded for reading.
func newRunLogHandler(w io.Writer, lvl slog.Leveler, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   addSource,
		ReplaceAttr: replaceRunLogAttr,
	})
}

func replaceRunLogAttr(_ []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		attr.Key = "ts"
		if attr.Value.Kind() == slog.KindTime {
			attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
		}
		return attr
	case slog.LevelKey:
		attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
		return attr
	case slog.SourceKey:
		if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
			return slog.String("caller", fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
		}
		return attr
	}
	switch attr.Value.Kind() {
	case slog.KindDuration:
		attr.Value = slog.StringValue(roundDuration(attr.Value.Duration()).String())
	case slog.KindFloat64:
		if attr.Key == FieldSimilarity || attr.Key == FieldThreshold {
			attr.Value = slog.Float64Value(roundScore(attr.Value.Float64()))
		}
	}
	return attr
}
