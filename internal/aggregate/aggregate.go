// Package aggregate runs a set of extractors and folds their records into a
// game pool.
//
// Fetching runs concurrently, bounded by the configured concurrency.
// Extraction and pool insertion then run serially in the order the
// extractors were given, so merge decisions never depend on which source
// finished downloading first. A failing source is logged and skipped.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"gamecal/internal/extract"
	"gamecal/internal/game"
	"gamecal/internal/logging"
	"gamecal/internal/services"
)

// ErrAllSourcesFailed reports that no source produced records.
var ErrAllSourcesFailed = errors.New("all sources failed")

// Report summarises one source's contribution to a run.
type Report struct {
	Source   string        `json:"source"`
	Records  int           `json:"records"`
	Inserted int           `json:"inserted"`
	Merged   int           `json:"merged"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Failed reports whether the source failed to fetch or extract.
func (r Report) Failed() bool { return r.Err != nil }

// Options controls a run.
type Options struct {
	// Concurrency bounds parallel fetches. Values below 1 mean 1.
	Concurrency int
	Merge       bool
	Logger      *slog.Logger
}

// Run fetches every extractor, then extracts and adds their records to pool
// in order. It returns one report per extractor. The error is non-nil only
// when the context is cancelled or every source failed.
func Run(ctx context.Context, extractors []extract.Extractor, pool *game.Pool, opts Options) ([]Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logging.WithContext(ctx, logger), "aggregate")

	reports := make([]Report, len(extractors))
	fetchErrs := make([]error, len(extractors))
	durations := make([]time.Duration, len(extractors))

	var group errgroup.Group
	group.SetLimit(max(opts.Concurrency, 1))
	for i, ex := range extractors {
		group.Go(func() error {
			started := time.Now()
			fetchErrs[i] = ex.Fetch(services.WithStage(ctx, "fetch"))
			durations[i] = time.Since(started)
			return nil
		})
	}
	_ = group.Wait()
	if err := ctx.Err(); err != nil {
		return reports, err
	}

	failed := 0
	for i, ex := range extractors {
		report := Report{Source: ex.Name(), Duration: durations[i]}
		sourceLogger := logger.With(logging.String(logging.FieldSource, ex.Name()))

		if err := fetchErrs[i]; err != nil {
			report.Err = err
			failed++
			logSourceFailure(sourceLogger, "fetch", err)
			reports[i] = report
			continue
		}

		records, err := ex.Extract()
		if err != nil {
			report.Err = err
			failed++
			logSourceFailure(sourceLogger, "extract", err)
			reports[i] = report
			continue
		}

		report.Records = len(records)
		for _, decision := range pool.Add(records, opts.Merge) {
			switch decision.Action {
			case game.ActionInserted:
				report.Inserted++
			case game.ActionMerged:
				report.Merged++
			case game.ActionSkipped:
				report.Skipped++
			}
		}
		sourceLogger.Info("source aggregated",
			logging.String(logging.FieldEventType, "source_aggregated"),
			logging.Int("records", report.Records),
			logging.Int("inserted", report.Inserted),
			logging.Int("merged", report.Merged),
			logging.Int("skipped", report.Skipped),
			logging.Duration("fetch_duration", report.Duration))
		reports[i] = report
	}

	if len(extractors) > 0 && failed == len(extractors) {
		return reports, fmt.Errorf("%w (%d sources)", ErrAllSourcesFailed, failed)
	}
	return reports, nil
}

func logSourceFailure(logger *slog.Logger, stage string, err error) {
	hint := "check network access and the source URL"
	if services.IsFatal(err) {
		hint = "fix the source configuration"
	}
	logging.WarnWithContext(logger, "source skipped", "source_failed",
		logging.String(logging.FieldStage, stage),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hint),
		logging.String(logging.FieldImpact, "releases only listed by this source are missing"))
}
