package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/language"

	"gamecal/internal/aggregate"
	"gamecal/internal/calendar"
	"gamecal/internal/config"
	"gamecal/internal/extract"
	"gamecal/internal/fetch"
	"gamecal/internal/game"
	"gamecal/internal/ident"
	"gamecal/internal/logging"
	"gamecal/internal/pagecache"
	"gamecal/internal/platform"
)

// pipeline holds the collaborators of one aggregation run.
type pipeline struct {
	cfg     *config.Config
	logger  *slog.Logger
	seq     *ident.Sequence
	catalog *platform.Catalog
	pool    *game.Pool
	cache   *pagecache.Cache
	client  *fetch.Client
	year    int
}

type pipelineOptions struct {
	// Sources overrides cfg.Sources.Enabled when non-empty.
	Sources []string
	// Files are local observation files merged after the scraped sources.
	Files   []string
	NoCache bool
	NoMerge bool
	// Offline skips the HTTP client entirely; only file sources run.
	Offline bool
}

func newPipeline(cfg *config.Config, logger *slog.Logger, opts pipelineOptions) (*pipeline, error) {
	seq := ident.NewSequence(0)
	p := &pipeline{
		cfg:     cfg,
		logger:  logger,
		seq:     seq,
		catalog: platform.NewDefaultCatalog(seq),
		year:    cfg.CalendarYear(time.Now()),
	}
	p.pool = game.NewPool(
		game.WithThreshold(cfg.Resolver.SimilarityThreshold),
		game.WithLogger(logger),
	)
	if opts.Offline {
		return p, nil
	}

	var store fetch.PageStore
	if cfg.Fetch.CacheEnabled && !opts.NoCache {
		cache, err := pagecache.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("open page cache: %w", err)
		}
		p.cache = cache
		store = cache
	}
	p.client = fetch.NewFromConfig(cfg, store, logger)
	return p, nil
}

func (p *pipeline) Close() error {
	if p.cache == nil {
		return nil
	}
	return p.cache.Close()
}

func (p *pipeline) env() extract.Env {
	env := extract.Env{
		Catalog: p.catalog,
		Seq:     p.seq,
		Year:    p.year,
		Logger:  p.logger,
	}
	if p.client != nil {
		env.Fetcher = p.client
	}
	return env
}

// extractors builds the scraped sources, in order, followed by one file
// source covering every observation file.
func (p *pipeline) extractors(sources, files []string) ([]extract.Extractor, error) {
	env := p.env()
	out := make([]extract.Extractor, 0, len(sources)+1)
	for _, name := range sources {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		ex, err := extract.New(name, env, p.cfg.SourceURLs(name))
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	if len(files) > 0 {
		out = append(out, extract.NewFile(env, files...))
	}
	return out, nil
}

// run aggregates the sources into the pool and projects the calendar.
func (p *pipeline) run(ctx context.Context, opts pipelineOptions) (*calendar.Calendar, []aggregate.Report, error) {
	var sources []string
	switch {
	case opts.Offline:
	case len(opts.Sources) > 0:
		sources = opts.Sources
	default:
		sources = p.cfg.Sources.Enabled
	}
	files := append(append([]string(nil), p.cfg.Sources.Files...), opts.Files...)

	extractors, err := p.extractors(sources, files)
	if err != nil {
		return nil, nil, err
	}
	if len(extractors) == 0 {
		return nil, nil, fmt.Errorf("no sources enabled; set sources.enabled or pass observation files")
	}

	reports, err := aggregate.Run(ctx, extractors, p.pool, aggregate.Options{
		Concurrency: p.cfg.Fetch.Concurrency,
		Merge:       p.cfg.Resolver.Merge && !opts.NoMerge,
		Logger:      p.logger,
	})
	if err != nil {
		return nil, reports, err
	}

	cal, err := p.project()
	if err != nil {
		return nil, reports, err
	}
	return cal, reports, nil
}

func (p *pipeline) project() (*calendar.Calendar, error) {
	tag, err := language.Parse(p.cfg.Calendar.Language)
	if err != nil {
		logging.WarnWithContext(p.logger, "unknown calendar language", "calendar_language_invalid",
			logging.String("language", p.cfg.Calendar.Language),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "set calendar.language to a BCP 47 tag such as en or fr"),
			logging.String(logging.FieldImpact, "titles are sorted with English collation"))
		tag = language.English
	}
	return calendar.Build(p.pool.All(), p.catalog, calendar.WithLanguage(tag))
}

func reportRows(reports []aggregate.Report) [][]string {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		status := "ok"
		if r.Failed() {
			status = "failed: " + r.Err.Error()
		}
		rows = append(rows, []string{
			r.Source,
			fmt.Sprintf("%d", r.Records),
			fmt.Sprintf("%d", r.Inserted),
			fmt.Sprintf("%d", r.Merged),
			fmt.Sprintf("%d", r.Skipped),
			r.Duration.Round(time.Millisecond).String(),
			status,
		})
	}
	return rows
}

var reportHeaders = []string{"Source", "Records", "Inserted", "Merged", "Skipped", "Fetch", "Status"}

var reportAligns = []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}
