// Package game models scraped video game releases and resolves duplicates
// reported by different sources into a single canonical record.
//
// A Record accumulates observations: title aliases, developers, publishers,
// per-platform release dates and review scores. Each kind of observation lives
// in its own alias.Ledger, so the resolved value of any attribute is simply the
// most reported one.
//
// A Pool owns the canonical records of one aggregation run. Records are added
// in batches; with merging enabled each incoming record is compared against the
// pooled records in discovery order and folded into the first whose title
// similarity reaches the pool threshold. Records that do not match are inserted
// and indexed by every normalized alias for exact lookup.
package game
