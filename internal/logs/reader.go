package logs

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gamecal/internal/logging"
)

// Entry is one decoded log line.
type Entry struct {
	Time      time.Time
	Level     string
	Message   string
	Component string
	Source    string
	Stage     string
	RunID     string
	EventType string
	// Fields holds every other attribute, as decoded from JSON.
	Fields    map[string]any
}

// Filter selects entries. The zero Filter matches every entry at info level
// or above.
type Filter struct {
	MinLevel  slog.Level
	Source    string
	RunID     string
	EventType string
}

func (f Filter) match(e Entry) bool {
	if levelOf(e.Level) < f.MinLevel {
		return false
	}
	if f.Source != "" && !strings.EqualFold(f.Source, e.Source) {
		return false
	}
	if f.RunID != "" && f.RunID != e.RunID {
		return false
	}
	if f.EventType != "" && f.EventType != e.EventType {
		return false
	}
	return true
}

// TailOptions controls Tail.
type TailOptions struct {
	// Limit caps the number of entries returned. Zero or less means all.
	Limit  int
	Filter Filter
}

// TailResult carries the matching entries and the number of lines that
// could not be decoded.
type TailResult struct {
	Entries []Entry
	Skipped int
}

// Tail returns the last entries of the log at path that match opts.Filter,
// oldest first. A missing file yields an empty result.
func Tail(path string, opts TailOptions) (TailResult, error) {
	var result TailResult

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return result, nil
		}
		return result, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return result, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("log path %q is a directory", path)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	limit := opts.Limit
	var ring []Entry
	idx := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entry, err := Parse(line)
		if err != nil {
			result.Skipped++
			continue
		}
		if !opts.Filter.match(entry) {
			continue
		}
		if limit <= 0 || len(ring) < limit {
			ring = append(ring, entry)
			continue
		}
		ring[idx] = entry
		idx = (idx + 1) % limit
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("read log file: %w", err)
	}

	if limit > 0 && len(ring) == limit && idx > 0 {
		ring = append(ring[idx:], ring[:idx]...)
	}
	result.Entries = ring
	return result, nil
}

// LastRunID returns the run identifier of the newest entry carrying one.
func LastRunID(path string) (string, error) {
	result, err := Tail(path, TailOptions{})
	if err != nil {
		return "", err
	}
	for i := len(result.Entries) - 1; i >= 0; i-- {
		if id := result.Entries[i].RunID; id != "" {
			return id, nil
		}
	}
	return "", nil
}

// Parse decodes one JSON log line.
func Parse(line string) (Entry, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return Entry{}, fmt.Errorf("decode log line: %w", err)
	}
	entry := Entry{
		Level:     take(fields, slog.LevelKey),
		Message:   take(fields, slog.MessageKey),
		Component: take(fields, logging.FieldComponent),
		Source:    take(fields, logging.FieldSource),
		Stage:     take(fields, logging.FieldStage),
		RunID:     take(fields, logging.FieldRunID),
		EventType: take(fields, logging.FieldEventType),
	}
	if ts := take(fields, "ts"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			entry.Time = parsed
		}
	}
	delete(fields, "caller")
	if len(fields) > 0 {
		entry.Fields = fields
	}
	return entry, nil
}

// ParseLevel maps a level name to its slog level. Unknown names map to
// debug so nothing is hidden.
func ParseLevel(name string) slog.Level {
	return levelOf(name)
}

func levelOf(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

func take(fields map[string]any, key string) string {
	value, ok := fields[key]
	if !ok {
		return ""
	}
	delete(fields, key)
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
