// Package search ranks catalog documents against free-text queries using
// word-level trigram coverage.
package search

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Document is a searchable text keyed by the id of the entity it describes.
type Document struct {
	ID   int64
	Text string
}

// Match is a ranked hit.
type Match struct {
	ID    int64
	Score float64
}

// minCoverage is the fraction of a query word's trigrams that must appear in a document.
const minCoverage = 0.4

// Index holds the precomputed trigrams for a fixed set of documents.
// It is immutable after construction and safe for concurrent use.
type Index struct {
	ids        []int64
	normalized []string
	trigrams   []map[string]struct{}
}

// NewIndex builds an index over docs. Document order breaks score ties.
func NewIndex(docs []Document) *Index {
	x := &Index{
		ids:        make([]int64, len(docs)),
		normalized: make([]string, len(docs)),
		trigrams:   make([]map[string]struct{}, len(docs)),
	}
	for i, d := range docs {
		text := Normalize(d.Text)
		x.ids[i] = d.ID
		x.normalized[i] = text
		x.trigrams[i] = trigrams(text)
	}
	return x
}

// Len returns the number of indexed documents.
func (x *Index) Len() int {
	return len(x.ids)
}

// Search returns documents matching every word of query, best first.
// An empty query matches nothing.
func (x *Index) Search(query string, limit int) []Match {
	words := strings.Fields(Normalize(query))
	if len(words) == 0 {
		return nil
	}

	wordTris := make([]map[string]struct{}, len(words))
	for i, w := range words {
		wordTris[i] = trigrams(w)
	}

	type hit struct {
		idx   int
		score float64
	}
	var hits []hit
	for i := range x.ids {
		if s := x.score(i, words, wordTris); s > 0 {
			hits = append(hits, hit{idx: i, score: s})
		}
	}

	slices.SortStableFunc(hits, func(a, b hit) int {
		return cmp.Compare(b.score, a.score)
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	matches := make([]Match, len(hits))
	for i, h := range hits {
		matches[i] = Match{ID: x.ids[h.idx], Score: h.score}
	}
	return matches
}

// score averages per-word similarity. Any word that does not match zeroes the score.
func (x *Index) score(idx int, words []string, wordTris []map[string]struct{}) float64 {
	text := x.normalized[idx]
	total := 0.0

	for i, word := range words {
		// 1-2 character words have no useful trigrams
		if len([]rune(word)) <= 2 {
			if !strings.Contains(text, word) {
				return 0
			}
			total++
			continue
		}

		similarity := coverage(wordTris[i], x.trigrams[idx])
		if similarity < minCoverage {
			return 0
		}
		if strings.Contains(text, word) {
			similarity += 0.5
		}
		total += similarity
	}

	return total / float64(len(words))
}

// Normalize lowercases s and strips diacritics so "Café" matches "cafe".
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.ToLower(s)) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// trigrams returns the trigram set of s, padded so prefixes and suffixes count.
func trigrams(s string) map[string]struct{} {
	if s == "" {
		return nil
	}

	tris := make(map[string]struct{})
	runes := []rune("  " + s + "  ")
	for i := 0; i <= len(runes)-3; i++ {
		tri := string(runes[i : i+3])
		if strings.TrimSpace(tri) != "" {
			tris[tri] = struct{}{}
		}
	}
	return tris
}

// coverage is |query ∩ doc| / |query|. Unlike Jaccard it does not punish
// short queries against long documents.
func coverage(query, doc map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	n := 0
	for tri := range query {
		if _, ok := doc[tri]; ok {
			n++
		}
	}
	return float64(n) / float64(len(query))
}
