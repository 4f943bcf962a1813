package textutil

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// romanPattern matches a well-formed Roman numeral between 1 and 3999. It also
// matches the empty string, which callers must reject separately.
var romanPattern = regexp.MustCompile(`(?i)^M{0,3}(CM|CD|D?C{0,3})(XC|XL|L?X{0,3})(IX|IV|V?I{0,3})$`)

var romanDigits = map[rune]int{
	'I': 1,
	'V': 5,
	'X': 10,
	'L': 50,
	'C': 100,
	'D': 500,
	'M': 1000,
}

// Normalize lowercases value, replaces hyphens with spaces, removes runes that
// are neither letters, digits nor whitespace, and collapses each whitespace run
// to a single space.
func Normalize(value string) string {
	if value == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(value))
	pendingSpace := false
	for _, r := range strings.ToLower(value) {
		if r == '-' {
			r = ' '
		}
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
		case unicode.IsLetter(r), unicode.IsDigit(r):
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}
	if pendingSpace {
		b.WriteByte(' ')
	}
	return b.String()
}

// RomanValue returns the decimal value of token when it is a non-empty,
// well-formed Roman numeral. Matching is case-insensitive.
func RomanValue(token string) (int, bool) {
	if token == "" || !romanPattern.MatchString(token) {
		return 0, false
	}
	total := 0
	previous := 0
	upper := []rune(strings.ToUpper(token))
	for i := len(upper) - 1; i >= 0; i-- {
		current := romanDigits[upper[i]]
		if current < previous {
			total -= current
		} else {
			total += current
			previous = current
		}
	}
	return total, true
}

// ConvertRomanNumerals splits value on whitespace and replaces every token that
// is a valid Roman numeral with its decimal form, joining the result with single
// spaces. The input is returned unchanged when no token converts.
func ConvertRomanNumerals(value string) string {
	tokens := strings.Fields(value)
	converted := false
	for i, token := range tokens {
		if n, ok := RomanValue(token); ok {
			tokens[i] = strconv.Itoa(n)
			converted = true
		}
	}
	if !converted {
		return value
	}
	return strings.Join(tokens, " ")
}

// NormalizeTitle applies Normalize followed by ConvertRomanNumerals. It is the
// canonical form used when comparing title aliases.
func NormalizeTitle(value string) string {
	return ConvertRomanNumerals(Normalize(value))
}
