package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFetch()
	c.normalizeCalendar()
	if err := c.normalizeSources(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFetch() {
	c.Fetch.UserAgent = strings.TrimSpace(c.Fetch.UserAgent)
	if value, ok := os.LookupEnv("GAMECAL_USER_AGENT"); ok && strings.TrimSpace(value) != "" {
		c.Fetch.UserAgent = strings.TrimSpace(value)
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeCalendar() {
	c.Calendar.Language = strings.TrimSpace(c.Calendar.Language)
	if c.Calendar.Language == "" {
		c.Calendar.Language = defaultCalendarLanguage
	}
}

func (c *Config) normalizeSources() error {
	enabled := make([]string, 0, len(c.Sources.Enabled))
	seen := make(map[string]struct{}, len(c.Sources.Enabled))
	for _, name := range c.Sources.Enabled {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		enabled = append(enabled, normalized)
	}
	c.Sources.Enabled = enabled

	if len(c.Sources.URLs) > 0 {
		urls := make(map[string][]string, len(c.Sources.URLs))
		for name, list := range c.Sources.URLs {
			urls[strings.ToLower(strings.TrimSpace(name))] = list
		}
		c.Sources.URLs = urls
	}

	files := make([]string, 0, len(c.Sources.Files))
	for _, file := range c.Sources.Files {
		if strings.TrimSpace(file) == "" {
			continue
		}
		expanded, err := expandPath(strings.TrimSpace(file))
		if err != nil {
			return fmt.Errorf("sources.files: %w", err)
		}
		files = append(files, expanded)
	}
	c.Sources.Files = files
	return nil
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
		c.Logging.Format = "json"
	default:
		c.Logging.Format = format
	}
	if value, ok := os.LookupEnv("GAMECAL_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}
