package preflight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"gamecal/internal/pagecache"
)

var timeNow = time.Now

const sourceCheckTimeout = 10 * time.Second

// CheckDirectoryAccess verifies path is a directory the process can read,
// write and traverse.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckPageCache opens the page cache and reports its page count. A schema
// mismatch fails with a hint to clear the cache.
func CheckPageCache(path string) Result {
	const name = "Page cache"
	cache, err := pagecache.OpenPath(path)
	if err != nil {
		if errors.Is(err, pagecache.ErrSchemaMismatch) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: schema mismatch; run gamecal cache clear)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer cache.Close()

	stats, err := cache.Stats(context.Background())
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d pages)", path, stats.Pages)}
}

// CheckObservationFile verifies path holds a JSON array.
func CheckObservationFile(path string) Result {
	name := "Observation file"
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not a JSON array: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d observations)", path, len(items))}
}

// CheckSource issues a single HEAD request against a source page. Any
// response below 500 counts as reachable; some sites reject HEAD outright.
func CheckSource(ctx context.Context, source, rawURL, userAgent string) Result {
	name := "Source " + source

	checkCtx, cancel := context.WithTimeout(ctx, sourceCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodHead, rawURL, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("invalid url %q: %v", rawURL, err)}
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	client := &http.Client{Timeout: sourceCheckTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (unreachable: %v)", req.URL.Host, err)}
	}
	resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return Result{Name: name, Detail: fmt.Sprintf("%s (HTTP %d)", req.URL.Host, resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (HTTP %d)", req.URL.Host, resp.StatusCode)}
}
