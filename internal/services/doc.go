// Package services defines shared utilities consumed by the aggregation
// pipeline and the source integrations.
//
// Key responsibilities:
//   - Context helpers that stamp source names, pipeline stages, and run
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (bad input vs. flaky network) without string matching.
//   - Retry helpers shared by every component that talks to the network.
package services
