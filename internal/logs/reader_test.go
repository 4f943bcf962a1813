package logs_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gamecal/internal/logs"
)

const sampleLog = `{"ts":"2024-09-01T10:00:00Z","level":"info","msg":"source aggregated","component":"aggregate","source":"wikipedia","run_id":"run-1","event_type":"source_aggregated","records":12}
{"ts":"2024-09-01T10:00:01Z","level":"warn","msg":"source skipped","component":"aggregate","source":"metacritic","run_id":"run-1","event_type":"source_failed","error":"HTTP 503"}
not json
{"ts":"2024-09-01T10:00:02Z","level":"info","msg":"calendar published","component":"publish","run_id":"run-1","event_type":"calendar_published","files":13}
{"ts":"2024-09-02T08:00:00Z","level":"info","msg":"source aggregated","component":"aggregate","source":"wikipedia","run_id":"run-2","event_type":"source_aggregated","records":14}
`

func writeLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gamecal.log")
	if err := os.WriteFile(path, []byte(sampleLog), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailLastEntries(t *testing.T) {
	path := writeLog(t)

	result, err := logs.Tail(path, logs.TailOptions{Limit: 2})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if result.Skipped != 1 {
		t.Fatalf("expected 1 skipped line, got %d", result.Skipped)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.Entries))
	}
	if result.Entries[0].Message != "calendar published" || result.Entries[1].RunID != "run-2" {
		t.Fatalf("unexpected entries %+v", result.Entries)
	}
	first := result.Entries[0]
	if first.Component != "publish" || first.Fields["files"] != float64(13) {
		t.Fatalf("unexpected decoded entry %+v", first)
	}
	if !result.Entries[1].Time.Equal(time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time %v", result.Entries[1].Time)
	}
}

func TestTailFilters(t *testing.T) {
	path := writeLog(t)

	tests := []struct {
		name   string
		filter logs.Filter
		want   int
	}{
		{"all", logs.Filter{}, 4},
		{"warnings", logs.Filter{MinLevel: slog.LevelWarn}, 1},
		{"source", logs.Filter{Source: "Wikipedia"}, 2},
		{"run", logs.Filter{RunID: "run-1"}, 3},
		{"event", logs.Filter{EventType: "calendar_published"}, 1},
		{"combined", logs.Filter{Source: "wikipedia", RunID: "run-2"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := logs.Tail(path, logs.TailOptions{Filter: tt.filter})
			if err != nil {
				t.Fatalf("Tail: %v", err)
			}
			if len(result.Entries) != tt.want {
				t.Fatalf("got %d entries, want %d", len(result.Entries), tt.want)
			}
		})
	}
}

func TestTailMissingFile(t *testing.T) {
	result, err := logs.Tail(filepath.Join(t.TempDir(), "missing.log"), logs.TailOptions{Limit: 5})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(result.Entries))
	}
}

func TestLastRunID(t *testing.T) {
	id, err := logs.LastRunID(writeLog(t))
	if err != nil {
		t.Fatalf("LastRunID: %v", err)
	}
	if id != "run-2" {
		t.Fatalf("LastRunID = %q", id)
	}
}

func TestParseLevel(t *testing.T) {
	if logs.ParseLevel("WARNING") != slog.LevelWarn || logs.ParseLevel("bogus") != slog.LevelDebug {
		t.Fatal("unexpected level mapping")
	}
}
