package preflight

import (
	"context"

	"gamecal/internal/config"
	"gamecal/internal/extract"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Options tunes RunAll.
type Options struct {
	// Offline skips source reachability checks.
	Offline bool
}

// RunAll executes every applicable check for cfg.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	results = append(results, CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir))
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	if cfg.Fetch.CacheEnabled {
		results = append(results, CheckPageCache(cfg.CachePath()))
	}

	for _, path := range cfg.Sources.Files {
		results = append(results, CheckObservationFile(path))
	}

	if opts.Offline {
		return results
	}
	year := cfg.CalendarYear(timeNow())
	for _, name := range cfg.Sources.Enabled {
		urls := cfg.SourceURLs(name)
		if len(urls) == 0 {
			urls = extract.DefaultURLs(name, year)
		}
		if len(urls) == 0 {
			continue
		}
		results = append(results, CheckSource(ctx, name, urls[0], cfg.Fetch.UserAgent))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
