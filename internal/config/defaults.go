package config

const (
	defaultConfigPath          = "~/.config/gamecal/config.toml"
	defaultOutputDir           = "~/.local/share/gamecal/calendar"
	defaultLogDir              = "~/.local/share/gamecal/logs"
	defaultSimilarityThreshold = 0.85
	defaultAuditFloor          = 0.6
	defaultTimeoutSeconds      = 30
	defaultRequestsPerSecond   = 1.0
	defaultBurst               = 2
	defaultMaxRetries          = 3
	defaultConcurrency         = 4
	defaultUserAgent           = "gamecal/dev (+https://github.com/DanElliottPalmer/videogame-release-calendar)"
	defaultCacheTTLHours       = 12
	defaultCalendarLanguage    = "en"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// KnownSources lists the built-in source names in their default run order.
var KnownSources = []string{"wikipedia", "gameinformer", "techradar", "gamesradar", "metacritic"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			CacheDir:  defaultCacheDir(),
			LogDir:    defaultLogDir,
		},
		Resolver: Resolver{
			SimilarityThreshold: defaultSimilarityThreshold,
			Merge:               true,
			AuditFloor:          defaultAuditFloor,
		},
		Fetch: Fetch{
			TimeoutSeconds:    defaultTimeoutSeconds,
			RequestsPerSecond: defaultRequestsPerSecond,
			Burst:             defaultBurst,
			MaxRetries:        defaultMaxRetries,
			Concurrency:       defaultConcurrency,
			UserAgent:         defaultUserAgent,
			CacheEnabled:      true,
			CacheTTLHours:     defaultCacheTTLHours,
		},
		Calendar: Calendar{
			Language: defaultCalendarLanguage,
		},
		Sources: Sources{
			Enabled: append([]string(nil), KnownSources...),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
