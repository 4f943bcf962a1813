// Package main hosts the gamecal CLI entrypoint and command graph.
//
// The Cobra command tree wires configuration, logging, the page cache and the
// release-date sources into the resolver pipeline: fetch scrapes the enabled
// sources and publishes the calendar, resolve runs the same pipeline over
// local observation files, calendar reads what was published, audit lists
// near-miss merges and cache/config/platforms cover maintenance.
//
// Commands stay thin; the work lives in the internal packages.
package main
