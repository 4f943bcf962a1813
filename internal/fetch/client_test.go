package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"gamecal/internal/fetch"
	"gamecal/internal/services"
	"gamecal/internal/testsupport"
)

func TestGetSendsUserAgent(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	client := fetch.New(fetch.Options{UserAgent: "gamecal-test/1.0"})
	page, err := client.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(page.Body) != "<html>ok</html>" || page.Status != http.StatusOK || page.FromCache {
		t.Fatalf("unexpected page %+v", page)
	}
	if gotAgent != "gamecal-test/1.0" {
		t.Fatalf("user agent = %q", gotAgent)
	}
}

func TestGetRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	client := fetch.New(fetch.Options{MaxRetries: 3, RetryBase: time.Millisecond})
	page, err := client.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(page.Body) != "recovered" || calls.Load() != 3 {
		t.Fatalf("body=%q calls=%d", page.Body, calls.Load())
	}
}

func TestGetGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := fetch.New(fetch.Options{MaxRetries: 2, RetryBase: time.Millisecond})
	_, err := client.Get(context.Background(), srv.URL)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestGetDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := fetch.New(fetch.Options{MaxRetries: 3, RetryBase: time.Millisecond})
	_, err := client.Get(context.Background(), srv.URL)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestGetDoesNotRetryForbiddenWithStatusDigits(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "blocked: upstream 503, try again in 429 seconds", http.StatusForbidden)
	}))
	defer srv.Close()

	client := fetch.New(fetch.Options{MaxRetries: 3, RetryBase: time.Millisecond})
	_, err := client.Get(context.Background(), srv.URL+"/502")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external service error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestGetRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithCache(true))
	cache := testsupport.MustOpenCache(t, cfg)
	client := fetch.New(fetch.Options{MaxBodyBytes: 32, MaxRetries: 2, RetryBase: time.Millisecond, Cache: cache, CacheTTL: time.Hour})
	if _, err := client.Get(context.Background(), srv.URL); !errors.Is(err, fetch.ErrBodyTooLarge) {
		t.Fatalf("expected ErrBodyTooLarge, got %v", err)
	}
	stats, err := cache.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Pages != 0 {
		t.Fatalf("oversized page was cached: %d pages", stats.Pages)
	}

	exact := fetch.New(fetch.Options{MaxBodyBytes: 64})
	page, err := exact.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get at the limit: %v", err)
	}
	if len(page.Body) != 64 {
		t.Fatalf("body length = %d, want 64", len(page.Body))
	}
}

func TestGetRejectsInvalidURL(t *testing.T) {
	client := fetch.New(fetch.Options{})
	if _, err := client.Get(context.Background(), "not a url"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetUsesPageCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte("cached body"))
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithCache(true))
	cache := testsupport.MustOpenCache(t, cfg)
	client := fetch.NewFromConfig(cfg, cache, nil)

	ctx := services.WithSource(context.Background(), "wikipedia")
	first, err := client.Get(ctx, srv.URL)
	if err != nil {
		t.Fatalf("first Get: %v", err)
	}
	second, err := client.Get(ctx, srv.URL)
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if first.FromCache || !second.FromCache {
		t.Fatalf("FromCache = %v, %v", first.FromCache, second.FromCache)
	}
	if string(second.Body) != "cached body" || calls.Load() != 1 {
		t.Fatalf("body=%q calls=%d", second.Body, calls.Load())
	}

	stored, ok, err := cache.Get(ctx, srv.URL, 0)
	if err != nil || !ok || stored.Source != "wikipedia" {
		t.Fatalf("stored page = %+v, %v, %v", stored, ok, err)
	}
}

func TestGetBypassesCacheWhenDisabled(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte("fresh"))
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithCache(false))
	cache := testsupport.MustOpenCache(t, cfg)
	client := fetch.NewFromConfig(cfg, cache, nil)

	for range 2 {
		if _, err := client.Get(context.Background(), srv.URL); err != nil {
			t.Fatalf("Get: %v", err)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestGetHonoursCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("late"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := fetch.New(fetch.Options{MaxRetries: 3, RetryBase: time.Millisecond})
	if _, err := client.Get(ctx, srv.URL); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
