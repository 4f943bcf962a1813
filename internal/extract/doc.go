// Package extract turns release-date source pages into game records.
//
// Each source implements Extractor: Fetch retrieves its pages (or files) and
// Extract parses them into one record per observed release. Rows that cannot
// be parsed are dropped; platforms missing from the catalog are skipped and
// summarised in a single warning per source.
//
// Built-in sources:
//   - wikipedia: "<year> in video games" wikitables
//   - gameinformer: .calendar_entry lines "Name (Platforms) – Month Day"
//   - techradar: lists under upcoming-games headings, "Name – Month Day (Platforms)"
//   - gamesradar: lists under release headings, "Name [Platforms] – Month Day"
//   - metacritic: condensed release-date browse tables, with scores
//   - file: local JSON observations, see Observation
package extract
