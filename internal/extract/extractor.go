package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"gamecal/internal/fetch"
	"gamecal/internal/game"
	"gamecal/internal/ident"
	"gamecal/internal/logging"
	"gamecal/internal/platform"
	"gamecal/internal/services"
)

// ErrUnknownSource reports a source name with no built-in extractor.
var ErrUnknownSource = errors.New("unknown source")

// Extractor produces records from one release-date source.
type Extractor interface {
	Name() string
	Fetch(ctx context.Context) error
	Extract() ([]*game.Record, error)
}

// Fetcher retrieves a page by URL.
type Fetcher interface {
	Get(ctx context.Context, url string) (fetch.Page, error)
}

// Env carries the collaborators shared by every extractor.
type Env struct {
	Fetcher Fetcher
	Catalog *platform.Catalog
	Seq     *ident.Sequence
	// Year anchors "Month Day" strings and bounds dated rows.
	Year   int
	Logger *slog.Logger
}

func (e Env) withDefaults() Env {
	if e.Catalog == nil {
		e.Catalog = platform.NewDefaultCatalog(nil)
	}
	if e.Seq == nil {
		e.Seq = ident.NewSequence(0)
	}
	if e.Year <= 0 {
		e.Year = time.Now().UTC().Year()
	}
	if e.Logger == nil {
		e.Logger = logging.NewNop()
	}
	return e
}

// New returns the built-in extractor called name. When urls is empty the
// source's default URLs for env.Year are used.
func New(name string, env Env, urls []string) (Extractor, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	factory, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownSource, name, strings.Join(Names(), ", "))
	}
	env = env.withDefaults()
	if len(urls) == 0 {
		urls = DefaultURLs(name, env.Year)
	}
	return factory(newPageSource(name, env, urls)), nil
}

// Names lists the built-in source names, sorted.
func Names() []string {
	return slices.Sorted(maps.Keys(builtins))
}

var builtins = map[string]func(*pageSource) Extractor{
	"wikipedia":    func(s *pageSource) Extractor { return &Wikipedia{pageSource: s} },
	"gameinformer": func(s *pageSource) Extractor { return &GameInformer{pageSource: s} },
	"techradar":    func(s *pageSource) Extractor { return &TechRadar{pageSource: s} },
	"gamesradar":   func(s *pageSource) Extractor { return &GamesRadar{pageSource: s} },
	"metacritic":   func(s *pageSource) Extractor { return &Metacritic{pageSource: s} },
}

// DefaultURLs returns the pages a built-in source reads for year.
func DefaultURLs(name string, year int) []string {
	switch name {
	case "wikipedia":
		return []string{fmt.Sprintf("https://en.wikipedia.org/wiki/%d_in_video_games", year)}
	case "gameinformer":
		return []string{fmt.Sprintf("https://www.gameinformer.com/%d", year)}
	case "techradar":
		return []string{fmt.Sprintf("https://www.techradar.com/news/upcoming-games-%d-release-dates", year)}
	case "gamesradar":
		return []string{"https://www.gamesradar.com/uk/video-game-release-dates/"}
	case "metacritic":
		var urls []string
		for _, slug := range []string{"ps5", "ps4", "xbox-series-x", "xboxone", "switch", "stadia", "ios"} {
			for _, list := range []string{"available", "coming-soon"} {
				urls = append(urls, fmt.Sprintf("https://www.metacritic.com/browse/games/release-date/%s/%s/date?view=condensed", list, slug))
			}
		}
		return urls
	}
	return nil
}

// pageSource holds the fetch state and helpers shared by the HTML sources.
type pageSource struct {
	name    string
	urls    []string
	env     Env
	logger  *slog.Logger
	pages   []fetch.Page
	unknown map[string]int
}

func newPageSource(name string, env Env, urls []string) *pageSource {
	return &pageSource{
		name:    name,
		urls:    slices.Clone(urls),
		env:     env,
		logger:  env.Logger.With(logging.String(logging.FieldSource, name)),
		unknown: make(map[string]int),
	}
}

// Name returns the source name.
func (s *pageSource) Name() string { return s.name }

// URLs returns the pages the source reads.
func (s *pageSource) URLs() []string { return slices.Clone(s.urls) }

// Fetch retrieves every configured URL. The first failure aborts the source.
func (s *pageSource) Fetch(ctx context.Context) error {
	if s.env.Fetcher == nil {
		return services.Wrap(services.ErrConfiguration, s.name, "fetch", "no fetcher configured", nil)
	}
	ctx = services.WithSource(ctx, s.name)
	s.pages = s.pages[:0]
	for _, url := range s.urls {
		page, err := s.env.Fetcher.Get(ctx, url)
		if err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		s.pages = append(s.pages, page)
	}
	return nil
}

// observe builds a record with one release date per platform.
func (s *pageSource) observe(name string, platforms []*platform.Platform, date time.Time) *game.Record {
	record := game.NewRecord(s.env.Seq, name)
	for _, p := range platforms {
		record.AddReleaseDate(p, date)
	}
	return record
}

// resolvePlatforms maps platform tokens through the catalog, dropping
// duplicates and remembering unknown tokens for reportUnknown.
func (s *pageSource) resolvePlatforms(tokens []string) []*platform.Platform {
	var out []*platform.Platform
	seen := make(map[int64]struct{}, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		p, ok := s.env.Catalog.ResolveByName(token)
		if !ok {
			s.unknown[token]++
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

func (s *pageSource) reportUnknown() {
	if len(s.unknown) == 0 {
		return
	}
	names := slices.Sorted(maps.Keys(s.unknown))
	logging.WarnWithContext(s.logger, "unknown platforms skipped", "unknown_platform",
		logging.Any("platforms", names),
		logging.Int("count", len(names)),
		logging.String(logging.FieldErrorHint, "add the names as aliases in the platform catalog"),
		logging.String(logging.FieldImpact, "releases on these platforms are missing from the calendar"))
	clear(s.unknown)
}

func (s *pageSource) dropped(reason, text string) {
	s.logger.Debug("row dropped",
		logging.String("reason", reason),
		logging.String("text", text))
}
