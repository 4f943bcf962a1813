package testsupport

import (
	"testing"

	"gamecal/internal/config"
	"gamecal/internal/pagecache"
)

// MustOpenCache opens the page cache for tests and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *pagecache.Cache {
	t.Helper()

	cache, err := pagecache.Open(cfg)
	if err != nil {
		t.Fatalf("pagecache.Open: %v", err)
	}
	t.Cleanup(func() {
		cache.Close()
	})
	return cache
}
