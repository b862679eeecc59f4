package search

import (
	"testing"

	"cinelog/internal/domain"
)

func testIndex() *Index {
	return NewIndex([]domain.Movie{
		{ID: "1", Name: "Dune", Year: 2021},
		{ID: "2", Name: "Dune: Part Two", Year: 2024},
		{ID: "3", Name: "Amélie", Year: 2001},
		{ID: "4", Name: "The Darjeeling Limited", Year: 2007},
	})
}

func TestRankEmptyQuery(t *testing.T) {
	if got := testIndex().Rank(""); got != nil {
		t.Fatalf("Rank(\"\") = %v, want nil", got)
	}
	if got := testIndex().Rank("   "); got != nil {
		t.Fatalf("whitespace query = %v, want nil", got)
	}
}

func TestRankSubsequenceMatch(t *testing.T) {
	matches := testIndex().Rank("dune")
	if len(matches) < 2 {
		t.Fatalf("matches = %d, want at least 2", len(matches))
	}
	for _, m := range matches[:2] {
		if m.Movie.ID != "1" && m.Movie.ID != "2" {
			t.Fatalf("unexpected match %+v", m.Movie)
		}
	}
	// Exact title ranks above the longer one
	if matches[0].Movie.ID != "1" {
		t.Fatalf("best match = %+v, want Dune", matches[0].Movie)
	}
}

func TestRankCaseInsensitive(t *testing.T) {
	matches := testIndex().Rank("DUNE")
	if len(matches) == 0 || matches[0].Movie.ID != "1" {
		t.Fatalf("matches = %+v", matches)
	}
}

func TestRankCarriesMatchPositions(t *testing.T) {
	matches := testIndex().Rank("dune")
	if len(matches) == 0 {
		t.Fatal("no matches")
	}
	if len(matches[0].MatchedIndexes) != 4 {
		t.Fatalf("MatchedIndexes = %v", matches[0].MatchedIndexes)
	}
}

func TestRankDiacriticFold(t *testing.T) {
	// "amelie" has no subsequence match against "Amélie" byte-wise; the
	// normalized fallback must still find it.
	matches := testIndex().Rank("amelie")
	found := false
	for _, m := range matches {
		if m.Movie.ID == "3" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Amélie not found: %+v", matches)
	}
}

func TestRankNoMatch(t *testing.T) {
	if matches := testIndex().Rank("zzzz"); len(matches) != 0 {
		t.Fatalf("matches = %+v, want none", matches)
	}
}

func TestRankEmptyIndex(t *testing.T) {
	ix := NewIndex(nil)
	if matches := ix.Rank("dune"); len(matches) != 0 {
		t.Fatalf("matches = %+v, want none", matches)
	}
}
