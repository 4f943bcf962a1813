package services

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// Backoff bounds for retried network calls.
const (
	InitialBackoff = 2 * time.Second
	MaxBackoff     = 60 * time.Second
)

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backoff returns the delay before retry attempt n (1-based), doubling from
// base and capped at MaxBackoff.
func Backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = InitialBackoff
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= MaxBackoff {
			return MaxBackoff
		}
	}
	return delay
}

// IsRetriable reports whether err represents a transient condition that
// warrants an automatic retry (rate limits, timeouts, connection errors).
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, ErrTimeout) {
		return true
	}
	if IsFatal(err) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrExternalTool) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	message := strings.ToLower(err.Error())
	if strings.Contains(message, "429") || strings.Contains(message, "rate limit") {
		return true
	}
	for _, code := range []string{"502", "503", "504"} {
		if strings.Contains(message, code) {
			return true
		}
	}
	for _, token := range []string{
		"timeout",
		"deadline exceeded",
		"connection reset",
		"connection refused",
		"temporary failure",
		"awaiting headers",
	} {
		if strings.Contains(message, token) {
			return true
		}
	}
	return false
}
