package extract

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
)

// monthPattern matches an English month name followed by a day number.
const monthPattern = `(?:january|february|march|april|may|june|july|august|september|october|november|december) \d+`

// parseMonth reads a month from free text such as "September", "SEP" or a
// vertically stacked "S E P". Only the first three letters are significant.
func parseMonth(text string) (time.Month, bool) {
	var letters []rune
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) {
			letters = append(letters, r)
			if len(letters) == 3 {
				break
			}
		}
	}
	if len(letters) < 3 {
		return 0, false
	}
	prefix := string(letters)
	for m := time.January; m <= time.December; m++ {
		if strings.HasPrefix(strings.ToLower(m.String()), prefix) {
			return m, true
		}
	}
	return 0, false
}

// dateOf builds a UTC midnight date, rejecting days that overflow the month.
func dateOf(year int, month time.Month, day int) (time.Time, bool) {
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day || date.Month() != month {
		return time.Time{}, false
	}
	return date, true
}

// parseMonthDay reads "September 6" anchored to year.
func parseMonthDay(text string, year int) (time.Time, bool) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return time.Time{}, false
	}
	month, ok := parseMonth(fields[0])
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(strings.TrimRight(fields[1], ",."))
	if err != nil {
		return time.Time{}, false
	}
	return dateOf(year, month, day)
}

// parseFullDate reads a complete date in any common layout ("Sep 6, 2024",
// "2024-09-06", "6 September 2024") and truncates it to UTC midnight.
func parseFullDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	parsed, err := dateparse.ParseIn(text, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	parsed = parsed.UTC()
	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), true
}
