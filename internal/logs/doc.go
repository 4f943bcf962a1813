// Package logs reads back the JSON run log written next to console output.
//
// Every gamecal run appends JSON lines to logging.LogFileName under the log
// directory. Tail scans that file with bounded memory, keeps the last N
// entries that match a Filter, and powers `gamecal logs`.
package logs
