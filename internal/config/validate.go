package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateResolver(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateCalendar(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateResolver() error {
	if c.Resolver.SimilarityThreshold <= 0 || c.Resolver.SimilarityThreshold > 1 {
		return errors.New("resolver.similarity_threshold must be in (0, 1]")
	}
	if c.Resolver.AuditFloor < 0 || c.Resolver.AuditFloor >= c.Resolver.SimilarityThreshold {
		return errors.New("resolver.audit_floor must be >= 0 and below resolver.similarity_threshold")
	}
	return nil
}

func (c *Config) validateFetch() error {
	if err := ensurePositiveMap(map[string]int{
		"fetch.timeout_seconds": c.Fetch.TimeoutSeconds,
		"fetch.burst":           c.Fetch.Burst,
		"fetch.concurrency":     c.Fetch.Concurrency,
	}); err != nil {
		return err
	}
	if c.Fetch.RequestsPerSecond <= 0 {
		return errors.New("fetch.requests_per_second must be positive")
	}
	if c.Fetch.MaxRetries < 0 {
		return errors.New("fetch.max_retries must be >= 0")
	}
	if c.Fetch.CacheEnabled && c.Fetch.CacheTTLHours <= 0 {
		return errors.New("fetch.cache_ttl_hours must be positive when fetch.cache_enabled is true")
	}
	return nil
}

func (c *Config) validateCalendar() error {
	if c.Calendar.Year < 0 || (c.Calendar.Year > 0 && c.Calendar.Year < 1970) {
		return fmt.Errorf("calendar.year %d is out of range", c.Calendar.Year)
	}
	if _, err := language.Parse(c.Calendar.Language); err != nil {
		return fmt.Errorf("calendar.language %q: %w", c.Calendar.Language, err)
	}
	return nil
}

func (c *Config) validateSources() error {
	for _, name := range c.Sources.Enabled {
		if !slices.Contains(KnownSources, name) {
			return fmt.Errorf("sources.enabled: unknown source %q (known: %v)", name, KnownSources)
		}
	}
	for name, list := range c.Sources.URLs {
		if !slices.Contains(KnownSources, name) {
			return fmt.Errorf("sources.urls: unknown source %q", name)
		}
		for _, raw := range list {
			parsed, err := url.Parse(raw)
			if err != nil || parsed.Scheme == "" || parsed.Host == "" {
				return fmt.Errorf("sources.urls.%s: invalid url %q", name, raw)
			}
		}
	}
	if len(c.Sources.Enabled) == 0 && len(c.Sources.Files) == 0 {
		return errors.New("sources: enable at least one source or list an observation file")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
