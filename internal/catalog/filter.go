package catalog

import (
	"strconv"
	"strings"

	"cinelog/internal/domain"
)

// Filter derives the displayed subset from the cached records. It is a pure
// function of its inputs and preserves input order.
//
// Rules:
//   - non-empty searchTerm keeps records whose name contains the term as a
//     case-insensitive substring; records without a name are excluded
//   - non-empty yearFilter keeps records whose year equals its parsed value;
//     an unparseable yearFilter matches nothing
//   - both filters compose conjunctively; both empty passes everything
func Filter(movies []domain.Movie, searchTerm, yearFilter string) []domain.Movie {
	if searchTerm == "" && yearFilter == "" {
		return cloneMovies(movies)
	}

	term := strings.ToLower(searchTerm)

	year := 0
	if yearFilter != "" {
		parsed, err := strconv.Atoi(strings.TrimSpace(yearFilter))
		if err != nil {
			return []domain.Movie{}
		}
		year = parsed
	}

	filtered := make([]domain.Movie, 0, len(movies))
	for _, m := range movies {
		if term != "" {
			if m.Name == "" || !strings.Contains(strings.ToLower(m.Name), term) {
				continue
			}
		}
		if yearFilter != "" && m.Year != year {
			continue
		}
		filtered = append(filtered, m)
	}
	return filtered
}
