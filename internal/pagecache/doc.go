// Package pagecache persists fetched source pages in SQLite so repeated runs
// within the configured TTL do not hit the remote sites again.
//
// The schema is versioned; a database written by an incompatible version is
// rejected with ErrSchemaMismatch and must be cleared with
// `gamecal cache clear` or deleted.
package pagecache
