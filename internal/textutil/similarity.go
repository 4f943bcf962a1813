package textutil

// Bigrams returns the set of adjacent rune pairs in value. Strings shorter than
// two runes produce an empty set.
func Bigrams(value string) map[string]struct{} {
	runes := []rune(value)
	if len(runes) < 2 {
		return map[string]struct{}{}
	}
	set := make(map[string]struct{}, len(runes)-1)
	for i := 0; i < len(runes)-1; i++ {
		set[string(runes[i:i+2])] = struct{}{}
	}
	return set
}

// DiceCoefficient scores a and b as 2·|A∩B| / (|A|+|B|) over their bigram sets.
// Returns 0 when neither string has a bigram.
func DiceCoefficient(a, b string) float64 {
	left := Bigrams(a)
	right := Bigrams(b)
	total := len(left) + len(right)
	if total == 0 {
		return 0
	}
	if len(left) > len(right) {
		left, right = right, left
	}
	shared := 0
	for gram := range left {
		if _, ok := right[gram]; ok {
			shared++
		}
	}
	return 2 * float64(shared) / float64(total)
}
