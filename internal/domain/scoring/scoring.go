// Package scoring defines the contract for computing pairwise description
// similarity and its bigram Dice implementation.
package scoring

import (
	"math"
	"unicode/utf8"

	"github.com/okian/crosswalk/internal/domain/text"
)

// percentScale converts a [0,1] similarity into a percentage with two
// decimal places.
const percentScale = 100

// Scorer computes a symmetric similarity in [0,1] between two description
// strings. Implementations must be total: any pair of strings yields a
// score, never an error.
type Scorer interface {
	Score(a, b string) float64
}

// Dice implements Scorer using Dice's coefficient over the multisets of
// overlapping character bigrams of the normalized strings:
//
//	score = 2 x |A n B| / (|A| + |B|)
//
// where intersection counts are multiset-bounded (a bigram occurring k times
// on one side and j times on the other contributes min(k, j)).
type Dice struct{}

// NewDice creates the bigram Dice scorer.
func NewDice() Dice {
	return Dice{}
}

// Score computes the similarity of a and b. Either side normalizing to empty
// scores 0. A normalized side shorter than two runes has no bigrams; such a
// pair scores 1 iff the normalized strings are exactly equal, else 0. The
// result is symmetric and always within [0,1].
func (Dice) Score(a, b string) float64 {
	na := text.Normalize(a)
	nb := text.Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	la := utf8.RuneCountInString(na)
	lb := utf8.RuneCountInString(nb)
	if la < 2 || lb < 2 {
		if na == nb {
			return 1
		}
		return 0
	}

	ga := text.Bigrams(na)
	gb := text.Bigrams(nb)
	intersection := 0
	for gram, ca := range ga {
		if cb, ok := gb[gram]; ok {
			if cb < ca {
				intersection += cb
			} else {
				intersection += ca
			}
		}
	}
	// |A| and |B| are the bigram multiset sizes: rune count minus one.
	return 2 * float64(intersection) / float64((la-1)+(lb-1))
}

// Percent converts a [0,1] similarity into the percentage used throughout
// the external API: value x 100, rounded to two decimal places. Every call
// site that exposes a percentage goes through this function so the rounding
// convention stays uniform.
func Percent(score float64) float64 {
	return math.Round(score*percentScale*100) / 100
}
