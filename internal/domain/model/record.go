// Package model contains domain models passed between layers.
package model

import "fmt"

// Record represents one row from a source catalog. Field values are
// heterogeneous (text, numeric, or absent); exactly one configured field per
// side carries the description text used for matching, and every other field
// is carried through untouched for downstream reporting.
type Record map[string]any

// Description extracts the text of the named field. Absent and nil values
// yield ""; non-string scalars are rendered with their default format so
// numeric part codes still participate in matching.
func (r Record) Description(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Entry is the pre-processed, read-only view over a Record used during a
// sweep. An Entry exists only if Normalized and Tokens are both non-empty;
// rows failing that are dropped during pre-processing.
type Entry struct {
	Record     Record
	Raw        string
	Normalized string
	Tokens     map[string]struct{}
}

// TokenDiff breaks down the token overlap between the two matched
// descriptions, computed with the same tokenizer the candidate filter uses.
type TokenDiff struct {
	Common    []string `json:"common"`
	LeftOnly  []string `json:"left_only"`
	RightOnly []string `json:"right_only"`
}

// MatchResult is one qualifying left/right pair. Score is a percentage in
// [0,100] rounded to two decimal places and always at or above the run's
// minimum threshold.
type MatchResult struct {
	Left      Record     `json:"left"`
	Right     Record     `json:"right"`
	LeftText  string     `json:"left_text"`
	RightText string     `json:"right_text"`
	Score     float64    `json:"score"`
	Diff      *TokenDiff `json:"diff,omitempty"`
}
