// Package text provides normalization, tokenization, and bigram
// decomposition of catalog description strings. Everything here is pure and
// total; downstream components rely on Normalize being idempotent.
package text

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTokenLength is the minimum rune length for a word to count as a
// significant token. Shorter words (units, articles, stray codes) add noise
// to the overlap test without adding signal.
const MinTokenLength = 3

// Normalize canonicalizes a raw description: lower-case, leading/trailing
// whitespace trimmed, internal whitespace runs collapsed to a single space,
// and every rune that is neither alphanumeric nor whitespace removed.
// Normalize(Normalize(s)) == Normalize(s) for all s.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if b.Len() > 0 {
				pendingSpace = true
			}
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(unicode.ToLower(r))
		}
		// Punctuation and symbols are dropped without leaving a space,
		// so "size-m" and "sizem" normalize identically.
	}
	return b.String()
}

// Tokens normalizes s, splits on whitespace, and returns the set of tokens
// at least MinTokenLength runes long. Set semantics: membership only, no
// ordering, no counts.
func Tokens(s string) map[string]struct{} {
	fields := strings.Fields(Normalize(s))
	set := make(map[string]struct{}, len(fields))
	for _, tok := range fields {
		if utf8.RuneCountInString(tok) >= MinTokenLength {
			set[tok] = struct{}{}
		}
	}
	return set
}

// Bigrams decomposes an already-normalized string into its multiset of
// overlapping 2-rune substrings. Strings shorter than 2 runes have no
// bigrams and yield an empty map.
func Bigrams(s string) map[string]int {
	runes := []rune(s)
	if len(runes) < 2 {
		return map[string]int{}
	}
	grams := make(map[string]int, len(runes)-1)
	for i := 0; i < len(runes)-1; i++ {
		grams[string(runes[i:i+2])]++
	}
	return grams
}

// Diff splits two token sets into sorted common, left-only, and right-only
// slices. Sorting keeps the breakdown deterministic for API consumers.
func Diff(left, right map[string]struct{}) (common, leftOnly, rightOnly []string) {
	for tok := range left {
		if _, ok := right[tok]; ok {
			common = append(common, tok)
		} else {
			leftOnly = append(leftOnly, tok)
		}
	}
	for tok := range right {
		if _, ok := left[tok]; !ok {
			rightOnly = append(rightOnly, tok)
		}
	}
	sort.Strings(common)
	sort.Strings(leftOnly)
	sort.Strings(rightOnly)
	return common, leftOnly, rightOnly
}
