package history

import (
	"sort"
	"strings"
	"unicode"
)

// Match is one history entry found by Search.
type Match struct {
	Entry string
	Score int
	// Positions holds the rune indices of the matched query characters.
	Positions []int
}

// Weights tune the fuzzy score.
type Weights struct {
	Base         int
	Consecutive  int // per query rune directly after the previous match
	WordBoundary int // per match at the start of a word
	Prefix       int // first match at index 0
	ExactPrefix  int // query is a prefix of the entry
	Gap          int // penalty per unmatched rune between matches
	Leading      int // penalty per rune before the first match
	// Recency is added per position from the oldest entry, so that of
	// two equal matches the newer one ranks first.
	Recency int
}

// DefaultWeights favours runs of matched characters and word starts.
var DefaultWeights = Weights{
	Base:         100,
	Consecutive:  20,
	WordBoundary: 15,
	Prefix:       25,
	ExactPrefix:  50,
	Gap:          2,
	Leading:      1,
	Recency:      1,
}

// Search returns the entries containing the query's characters in order,
// case-insensitively, best first. An empty query lists every entry, newest
// first. limit <= 0 means no limit.
func (h *History) Search(query string, limit int) []Match {
	return h.SearchWeighted(query, limit, DefaultWeights)
}

// SearchWeighted is Search with custom weights.
func (h *History) SearchWeighted(query string, limit int, w Weights) []Match {
	entries := h.Entries()
	q := []rune(strings.ToLower(strings.TrimSpace(query)))

	var out []Match
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if len(q) == 0 {
			out = append(out, Match{Entry: e})
			continue
		}
		pos, ok := subsequence(q, []rune(strings.ToLower(e)))
		if !ok {
			continue
		}
		out = append(out, Match{Entry: e, Score: w.score(q, []rune(e), pos) + i*w.Recency, Positions: pos})
	}
	if len(q) > 0 {
		sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// subsequence finds q in text scanning left to right.
func subsequence(q, text []rune) ([]int, bool) {
	pos := make([]int, 0, len(q))
	qi := 0
	for i := 0; i < len(text) && qi < len(q); i++ {
		if text[i] == q[qi] {
			pos = append(pos, i)
			qi++
		}
	}
	return pos, qi == len(q)
}

func (w Weights) score(q, original []rune, pos []int) int {
	score := w.Base
	for i := 1; i < len(pos); i++ {
		if pos[i] == pos[i-1]+1 {
			score += w.Consecutive
		}
	}
	for _, p := range pos {
		if wordStart(original, p) {
			score += w.WordBoundary
		}
	}
	if pos[0] == 0 {
		score += w.Prefix
		if pos[len(pos)-1] == len(q)-1 {
			score += w.ExactPrefix
		}
	}
	if gap := pos[len(pos)-1] - pos[0] - len(pos) + 1; gap > 0 {
		score -= gap * w.Gap
	}
	score -= pos[0] * w.Leading
	return max(1, score)
}

// wordStart reports whether the rune at idx begins a word: the first rune,
// one after a space or punctuation, or an upper-case rune after a
// lower-case one.
func wordStart(rs []rune, idx int) bool {
	if idx == 0 {
		return true
	}
	if idx >= len(rs) {
		return false
	}
	prev, cur := rs[idx-1], rs[idx]
	if unicode.IsSpace(prev) || unicode.IsPunct(prev) {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(cur)
}
