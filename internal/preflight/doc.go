// Package preflight provides readiness checks for the directories, page
// cache and release-date sources gamecal depends on.
//
// The CLI "gamecal status" command runs RunAll and renders the results.
// Network checks are skipped when the caller asks for an offline run.
package preflight
