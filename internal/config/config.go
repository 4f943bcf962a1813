package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	CacheDir  string `toml:"cache_dir"`
	LogDir    string `toml:"log_dir"`
}

// Resolver contains duplicate detection settings.
type Resolver struct {
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	Merge               bool    `toml:"merge"`
	// AuditFloor is the lowest title similarity reported as a near miss by
	// the audit command.
	AuditFloor float64 `toml:"audit_floor"`
}

// Fetch contains HTTP client and page cache settings.
type Fetch struct {
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	MaxRetries        int     `toml:"max_retries"`
	Concurrency       int     `toml:"concurrency"`
	UserAgent         string  `toml:"user_agent"`
	CacheEnabled      bool    `toml:"cache_enabled"`
	CacheTTLHours     int     `toml:"cache_ttl_hours"`
}

// Calendar contains projection settings.
type Calendar struct {
	// Year is the calendar year scraped month/day strings are anchored to.
	// Zero means the current year.
	Year int `toml:"year"`
	// Language is the BCP 47 tag used to collate titles.
	Language string `toml:"language"`
}

// Sources selects the release-date sources to aggregate.
type Sources struct {
	Enabled []string            `toml:"enabled"`
	URLs    map[string][]string `toml:"urls"`
	Files   []string            `toml:"files"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for gamecal.
//
// Configuration sections by subsystem:
//   - Paths: output, page cache and log directories
//   - Resolver: merge threshold and near-miss audit floor
//   - Fetch: HTTP timeouts, rate limits, retries and cache TTL
//   - Calendar: anchor year and collation language
//   - Sources: enabled scrapers, URL overrides and local observation files
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Resolver Resolver `toml:"resolver"`
	Fetch    Fetch    `toml:"fetch"`
	Calendar Calendar `toml:"calendar"`
	Sources  Sources  `toml:"sources"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("gamecal.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output, cache and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.CacheDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CachePath returns the location of the page cache database.
func (c *Config) CachePath() string {
	return filepath.Join(c.Paths.CacheDir, "pages.db")
}

// FetchTimeout returns the per-request HTTP timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long cached pages stay fresh. Zero disables reuse.
func (c *Config) CacheTTL() time.Duration {
	if !c.Fetch.CacheEnabled {
		return 0
	}
	return time.Duration(c.Fetch.CacheTTLHours) * time.Hour
}

// CalendarYear returns the configured anchor year, falling back to the year
// of now.
func (c *Config) CalendarYear(now time.Time) int {
	if c.Calendar.Year > 0 {
		return c.Calendar.Year
	}
	return now.Year()
}

// SourceURLs returns the URL overrides configured for a source.
func (c *Config) SourceURLs(name string) []string {
	return c.Sources.URLs[name]
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "gamecal")
	}
	return "~/.cache/gamecal"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
