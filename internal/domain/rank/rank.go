// Package rank orders collected match results for presentation.
package rank

import (
	"sort"

	"github.com/okian/crosswalk/internal/domain/model"
)

// Top sorts results descending by score and truncates to maxResults. The
// input is left untouched. Tie order between equal scores is unspecified.
// A negative maxResults means no cap.
func Top(results []model.MatchResult, maxResults int) []model.MatchResult {
	ranked := make([]model.MatchResult, len(results))
	copy(ranked, results)
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if maxResults >= 0 && len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}
	return ranked
}
