// Package search ranks cached movies for the quick-open omnibar. The grid's
// own filter is a plain substring match; this is the fuzzier, ranked lookup
// behind the jump-to-movie overlay.
package search

import (
	"sort"
	"strings"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	sfuzzy "github.com/sahilm/fuzzy"

	"cinelog/internal/domain"
)

// Match is a ranked result with the character positions that matched, for
// highlighting.
type Match struct {
	Movie          domain.Movie
	Score          int
	MatchedIndexes []int
}

// Index is a searchable snapshot of the cache. It implements sfuzzy.Source
// so matching runs without per-query allocations of the title list.
type Index struct {
	movies     []domain.Movie
	lowerNames []string
}

// NewIndex builds an index over the given records.
func NewIndex(movies []domain.Movie) *Index {
	lower := make([]string, len(movies))
	for i, m := range movies {
		lower[i] = strings.ToLower(m.Name)
	}
	return &Index{movies: movies, lowerNames: lower}
}

// String returns the lowercase name at index i (implements sfuzzy.Source)
func (ix *Index) String(i int) string { return ix.lowerNames[i] }

// Len returns the number of indexed movies (implements sfuzzy.Source)
func (ix *Index) Len() int { return len(ix.movies) }

// Rank returns movies matching the query, best first.
//
// Subsequence matching with position info comes from sahilm/fuzzy; movies it
// misses but that match under unicode normalization (diacritics are common
// in this collection) are appended via fuzzysearch's normalized fold match,
// without highlight positions.
func (ix *Index) Rank(query string) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	results := sfuzzy.FindFrom(strings.ToLower(query), ix)

	matches := make([]Match, 0, len(results))
	seen := make(map[int]struct{}, len(results))
	for _, r := range results {
		seen[r.Index] = struct{}{}
		matches = append(matches, Match{
			Movie:          ix.movies[r.Index],
			Score:          -r.Score, // sahilm scores higher-is-better; ours is lower-is-better
			MatchedIndexes: r.MatchedIndexes,
		})
	}

	// Normalized-fold pass catches "peliculas" vs "películas" style misses
	for i, m := range ix.movies {
		if _, ok := seen[i]; ok {
			continue
		}
		if lfuzzy.MatchNormalizedFold(query, m.Name) {
			matches = append(matches, Match{
				Movie: m,
				Score: normalizedRank(query, m.Name),
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score < matches[j].Score
	})
	return matches
}

// normalizedRank scores a fold-only match; always worse than any position
// match from the primary pass, closer matches still sort first among
// themselves.
func normalizedRank(query, name string) int {
	rank := lfuzzy.RankMatchNormalizedFold(query, name)
	if rank < 0 {
		rank = len(name)
	}
	return 1000 + rank
}
