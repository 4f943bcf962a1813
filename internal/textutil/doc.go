// Package textutil provides text processing utilities for title normalization,
// and bigram similarity.
//
// The primary use cases are:
//   - Normalizing scraped titles so spelling variants collapse together
//   - Rewriting Roman-numeral tokens ("II", "vii") as decimal numbers
//   - Scoring two strings with the Dice coefficient over character bigrams
//
// Normalization lowercases text, turns hyphens into spaces, strips every rune
// that is not a letter, digit or whitespace, and collapses whitespace runs to a
// single space. It does not trim, so repeated application is a no-op.
package textutil
