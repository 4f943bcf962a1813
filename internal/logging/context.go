package logging

import (
	"context"
	"log/slog"

	"gamecal/internal/services"
)

// Structured log keys shared by every component and read back by the logs
// command.
const (
	FieldComponent = "component"
	// FieldSource names the release-date source a record concerns.
	FieldSource = "source"
	// FieldStage is the pipeline step: fetch, extract, aggregate or publish.
	FieldStage = "stage"
	FieldRunID = "run_id"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step an operator should take.
	FieldErrorHint = "error_hint"
	// FieldImpact states what a warning costs the published calendar.
	FieldImpact = "impact"

	FieldDecision   = "decision"
	FieldRecordID   = "record_id"
	FieldTargetID   = "target_id"
	FieldSimilarity = "similarity"
	FieldThreshold  = "threshold"
)

func contextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if runID, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, runID))
	}
	if source, ok := services.SourceFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSource, source))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	return fields
}

// WithContext returns logger tagged with the run id, source and stage carried
// by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := contextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
