// Package config loads, normalizes, and validates gamecal configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GAMECAL_USER_AGENT. The Config type centralizes every knob the CLI needs:
// where calendars are written, how pages are fetched and cached, which sources
// run, and how aggressively duplicate games are merged.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
