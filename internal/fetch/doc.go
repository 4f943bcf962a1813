// Package fetch retrieves source pages over HTTP with a per-host rate limit,
// bounded retries for transient failures and an optional page cache.
package fetch
