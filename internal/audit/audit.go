// Package audit reports pairs of pooled records that almost merged.
//
// A near miss is a pair whose title similarity falls in [floor, threshold):
// close enough to be worth a look, too far apart for the resolver to merge.
// Each pair also carries a Jaro-Winkler score over the resolved titles, which
// weighs shared prefixes more heavily than the bigram score, and a flag when
// both titles carry different sequence numbers (likely sequels).
package audit

import (
	"cmp"
	"regexp"
	"slices"

	"github.com/hbollon/go-edlib"

	"gamecal/internal/game"
	"gamecal/internal/textutil"
)

var numberPattern = regexp.MustCompile(`\b\d+\b`)

// NearMiss is one pair of records below the merge threshold.
type NearMiss struct {
	LeftID          int64   `json:"leftId"`
	Left            string  `json:"left"`
	RightID         int64   `json:"rightId"`
	Right           string  `json:"right"`
	Similarity      float64 `json:"similarity"`
	JaroWinkler     float64 `json:"jaroWinkler"`
	NumbersDiffer   bool    `json:"numbersDiffer"`
	SharesAPlatform bool    `json:"sharesPlatform"`
}

// NearMisses compares every pair of records and returns those scoring in
// [floor, threshold), most similar first.
func NearMisses(records []*game.Record, floor, threshold float64) []NearMiss {
	var out []NearMiss
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			left, right := records[i], records[j]
			score := left.Compare(right)
			if score < floor || score >= threshold {
				continue
			}
			leftTitle := textutil.NormalizeTitle(left.ResolvedName())
			rightTitle := textutil.NormalizeTitle(right.ResolvedName())
			out = append(out, NearMiss{
				LeftID:          left.ID(),
				Left:            left.ResolvedName(),
				RightID:         right.ID(),
				Right:           right.ResolvedName(),
				Similarity:      score,
				JaroWinkler:     float64(edlib.JaroWinklerSimilarity(leftTitle, rightTitle)),
				NumbersDiffer:   numbersDiffer(leftTitle, rightTitle),
				SharesAPlatform: sharesPlatform(left, right),
			})
		}
	}
	slices.SortStableFunc(out, func(a, b NearMiss) int {
		return cmp.Compare(b.Similarity, a.Similarity)
	})
	return out
}

func numbersDiffer(a, b string) bool {
	left := numberPattern.FindAllString(a, -1)
	right := numberPattern.FindAllString(b, -1)
	if len(left) == 0 || len(right) == 0 {
		return false
	}
	return !slices.Equal(left, right)
}

func sharesPlatform(a, b *game.Record) bool {
	ids := a.PlatformIDs()
	for _, id := range b.PlatformIDs() {
		if slices.Contains(ids, id) {
			return true
		}
	}
	return false
}
