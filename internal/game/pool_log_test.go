package game

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"gamecal/internal/ident"
	"gamecal/internal/logging"
)

func TestPoolLogsDecisions(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	seq := ident.NewSequence(0)
	halo3 := NewRecord(seq, "Halo 3")
	halo4 := NewRecord(seq, "Halo 4")
	hades := NewRecord(seq, "Hades II")
	hades2 := NewRecord(seq, "Hades 2")

	pool := NewPool(WithLogger(logger))
	pool.Add([]*Record{halo3, halo4, hades, hades2}, true)

	var entries []map[string]any
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("decode %q: %v", scanner.Text(), err)
		}
		entries = append(entries, entry)
	}
	if len(entries) != 4 {
		t.Fatalf("got %d log entries, want 4", len(entries))
	}

	first := entries[0]
	if first[logging.FieldDecision] != logging.DecisionInserted || first[logging.FieldRecordID] != float64(halo3.ID()) {
		t.Fatalf("unexpected first entry %v", first)
	}
	if _, ok := first[logging.FieldTargetID]; ok {
		t.Fatalf("first insert has no closest record: %v", first)
	}

	nearMiss := entries[1]
	if nearMiss[logging.FieldDecision] != logging.DecisionInserted || nearMiss[logging.FieldTargetID] != float64(halo3.ID()) {
		t.Fatalf("expected Halo 4 insert to name Halo 3 as closest: %v", nearMiss)
	}
	if score, _ := nearMiss[logging.FieldSimilarity].(float64); score <= 0 || score >= SimilarityThreshold {
		t.Fatalf("near-miss similarity = %v", nearMiss[logging.FieldSimilarity])
	}

	merged := entries[3]
	if merged[logging.FieldDecision] != logging.DecisionMerged || merged[logging.FieldTargetID] != float64(hades.ID()) {
		t.Fatalf("unexpected merge entry %v", merged)
	}
	if merged["msg"] != "record merged" || merged[logging.FieldThreshold] == nil {
		t.Fatalf("unexpected merge entry %v", merged)
	}
}
