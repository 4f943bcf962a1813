package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gamecal/internal/config"
	"gamecal/internal/testsupport"
)

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// setupCLIConfig writes a config whose only enabled source is gamesradar at
// sourceURL. Offline commands never contact it.
func setupCLIConfig(t *testing.T, sourceURL string, opts ...testsupport.ConfigOption) (*config.Config, string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", "")
	if sourceURL == "" {
		sourceURL = "http://127.0.0.1:1/releases"
	}
	opts = append([]testsupport.ConfigOption{
		testsupport.WithSources(map[string]string{"gamesradar": sourceURL}),
		testsupport.WithYear(2024),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	path := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, path, cfg)
	return cfg, path
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
output_dir = %q
cache_dir = %q
log_dir = %q

[resolver]
similarity_threshold = %v
merge = %t
audit_floor = %v

[fetch]
timeout_seconds = %d
requests_per_second = %v
burst = %d
max_retries = %d
cache_enabled = %t

[calendar]
year = %d
language = "en"

[sources]
enabled = [%s]

[sources.urls]
%s
[logging]
format = "console"
level = %q
`,
		cfg.Paths.OutputDir,
		cfg.Paths.CacheDir,
		cfg.Paths.LogDir,
		cfg.Resolver.SimilarityThreshold,
		cfg.Resolver.Merge,
		cfg.Resolver.AuditFloor,
		cfg.Fetch.TimeoutSeconds,
		cfg.Fetch.RequestsPerSecond,
		cfg.Fetch.Burst,
		cfg.Fetch.MaxRetries,
		cfg.Fetch.CacheEnabled,
		cfg.Calendar.Year,
		quoteList(cfg.Sources.Enabled),
		urlTable(cfg.Sources.URLs),
		cfg.Logging.Level,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func quoteList(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, fmt.Sprintf("%q", v))
	}
	return strings.Join(quoted, ", ")
}

func urlTable(urls map[string][]string) string {
	var b strings.Builder
	for name, list := range urls {
		fmt.Fprintf(&b, "%s = [%s]\n", name, quoteList(list))
	}
	return b.String()
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected output to contain %q, got:\n%s", substr, output)
	}
}
