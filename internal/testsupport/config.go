package testsupport

import (
	"path/filepath"
	"testing"

	"gamecal/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Network sources are disabled; tests opt in with WithSources or WithFiles.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "calendar")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Sources.Enabled = nil
	cfgVal.Fetch.MaxRetries = 0
	cfgVal.Fetch.RequestsPerSecond = 1000
	cfgVal.Fetch.Burst = 100
	cfgVal.Fetch.TimeoutSeconds = 5
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithSources enables the named sources, optionally pointing each at a
// single URL (typically an httptest server).
func WithSources(urls map[string]string) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Sources.URLs == nil {
			b.cfg.Sources.URLs = make(map[string][]string)
		}
		for name, url := range urls {
			b.cfg.Sources.Enabled = append(b.cfg.Sources.Enabled, name)
			if url != "" {
				b.cfg.Sources.URLs[name] = []string{url}
			}
		}
	}
}

// WithFiles registers local observation files.
func WithFiles(paths ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sources.Files = append(b.cfg.Sources.Files, paths...)
	}
}

// WithYear pins the calendar year.
func WithYear(year int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Calendar.Year = year
	}
}

// WithCache toggles the page cache.
func WithCache(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Fetch.CacheEnabled = enabled
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.CacheDir)
}
