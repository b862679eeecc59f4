package importer

import (
	"context"
	"strings"
	"testing"

	"cinelog/internal/domain"
	"cinelog/internal/log"
	"cinelog/internal/store/bolt"
)

func memStore(t *testing.T) *bolt.Store {
	t.Helper()
	s, err := bolt.Open("", domain.DefaultCollection, log.NullLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunImportsValidRows(t *testing.T) {
	csvData := "nombre,año,poster_url\n" +
		"Dune,2021,http://img/dune.jpg\n" +
		"Amélie,2001,\n" +
		"Arrival,2016,http://img/arrival.jpg\n"

	store := memStore(t)
	report, err := Run(context.Background(), store, strings.NewReader(csvData), log.NullLogger(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Total != 3 || report.Imported != 3 || report.Failed != 0 {
		t.Fatalf("report = %+v", report)
	}

	docs, err := store.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	movies := domain.MoviesFromDocuments(docs)
	if len(movies) != 3 {
		t.Fatalf("stored %d, want 3", len(movies))
	}
	// File order becomes insertion order
	if movies[0].Name != "Dune" || movies[1].Name != "Amélie" || movies[2].Name != "Arrival" {
		t.Fatalf("order: %+v", movies)
	}
	if movies[1].PosterURL != "" {
		t.Fatalf("empty poster column should stay empty: %q", movies[1].PosterURL)
	}
	// Imported entries start without notes
	if movies[0].Notes != "" {
		t.Fatalf("notes = %q, want empty", movies[0].Notes)
	}
}

func TestRunSkipsMalformedRows(t *testing.T) {
	csvData := "nombre,año,poster_url\n" +
		"Dune,2021,\n" +
		",2021,\n" + // no name
		"Arrival,,\n" + // no year
		"Blade Runner,notayear,\n" + // unparseable year
		"Heat,0,\n" + // zero year
		"Alien,1979,\n"

	store := memStore(t)

	var statuses []RowStatus
	report, err := Run(context.Background(), store, strings.NewReader(csvData), log.NullLogger(), func(s RowStatus) {
		statuses = append(statuses, s)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Total != 6 || report.Imported != 2 || report.Failed != 4 {
		t.Fatalf("report = %+v", report)
	}
	if len(statuses) != 6 {
		t.Fatalf("callbacks = %d, want 6", len(statuses))
	}
	if statuses[0].Err != nil || statuses[5].Err != nil {
		t.Fatal("valid rows reported as failures")
	}
	for _, i := range []int{1, 2, 3, 4} {
		if !domain.IsValidation(statuses[i].Err) {
			t.Fatalf("row %d err = %v, want validation error", i+1, statuses[i].Err)
		}
	}

	docs, _ := store.ListAll(context.Background())
	if len(docs) != 2 {
		t.Fatalf("stored %d, want 2", len(docs))
	}
}

func TestRunHeaderIsCaseInsensitive(t *testing.T) {
	csvData := "Nombre,AÑO,Poster_URL\nDune,2021,\n"

	store := memStore(t)
	report, err := Run(context.Background(), store, strings.NewReader(csvData), log.NullLogger(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Imported != 1 {
		t.Fatalf("report = %+v", report)
	}
}

func TestRunMissingNameColumnIsFatal(t *testing.T) {
	csvData := "title,year\nDune,2021\n"

	store := memStore(t)
	if _, err := Run(context.Background(), store, strings.NewReader(csvData), log.NullLogger(), nil); err == nil {
		t.Fatal("expected error for missing nombre column")
	}
}

func TestRunEmptyInputIsFatal(t *testing.T) {
	store := memStore(t)
	if _, err := Run(context.Background(), store, strings.NewReader(""), log.NullLogger(), nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestRunShortRows(t *testing.T) {
	// Rows may omit trailing columns
	csvData := "nombre,año,poster_url\nDune,2021\n"

	store := memStore(t)
	report, err := Run(context.Background(), store, strings.NewReader(csvData), log.NullLogger(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Imported != 1 {
		t.Fatalf("report = %+v", report)
	}
}
