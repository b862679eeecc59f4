package bolt

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"cinelog/internal/domain"
	"cinelog/internal/log"
)

func openModes(t *testing.T) map[string]*Store {
	t.Helper()

	file, err := Open(filepath.Join(t.TempDir(), "test.db"), "peliculas", log.NullLogger())
	if err != nil {
		t.Fatalf("Open file store: %v", err)
	}
	t.Cleanup(func() { file.Close() })

	mem, err := Open("", "peliculas", log.NullLogger())
	if err != nil {
		t.Fatalf("Open memory store: %v", err)
	}
	t.Cleanup(func() { mem.Close() })

	return map[string]*Store{"file": file, "memory": mem}
}

func TestInsertAndListAllPreservesOrder(t *testing.T) {
	for mode, s := range openModes(t) {
		t.Run(mode, func(t *testing.T) {
			ctx := context.Background()

			var ids []string
			for i := 0; i < 5; i++ {
				id, err := s.Insert(ctx, map[string]any{
					domain.FieldName: fmt.Sprintf("movie %d", i),
					domain.FieldYear: 2000 + i,
				})
				if err != nil {
					t.Fatalf("Insert: %v", err)
				}
				ids = append(ids, id)
			}

			docs, err := s.ListAll(ctx)
			if err != nil {
				t.Fatalf("ListAll: %v", err)
			}
			if len(docs) != 5 {
				t.Fatalf("listed %d, want 5", len(docs))
			}
			for i, doc := range docs {
				if doc.ID != ids[i] {
					t.Fatalf("position %d = %s, want %s", i, doc.ID, ids[i])
				}
			}
		})
	}
}

func TestUpdateFieldsMerges(t *testing.T) {
	for mode, s := range openModes(t) {
		t.Run(mode, func(t *testing.T) {
			ctx := context.Background()

			id, err := s.Insert(ctx, map[string]any{
				domain.FieldName:  "Dune",
				domain.FieldYear:  2021,
				domain.FieldNotes: "first watch",
			})
			if err != nil {
				t.Fatalf("Insert: %v", err)
			}

			err = s.UpdateFields(ctx, id, map[string]any{domain.FieldName: "Dune: Part One"})
			if err != nil {
				t.Fatalf("UpdateFields: %v", err)
			}

			docs, err := s.ListAll(ctx)
			if err != nil {
				t.Fatalf("ListAll: %v", err)
			}
			movie := domain.MovieFromDocument(docs[0])
			if movie.Name != "Dune: Part One" {
				t.Fatalf("name = %q", movie.Name)
			}
			if movie.Notes != "first watch" {
				t.Fatalf("merge clobbered notes: %q", movie.Notes)
			}
		})
	}
}

func TestUpdateFieldsMissingID(t *testing.T) {
	for mode, s := range openModes(t) {
		t.Run(mode, func(t *testing.T) {
			err := s.UpdateFields(context.Background(), "nope", map[string]any{domain.FieldName: "x"})
			if !errors.Is(err, domain.ErrMovieNotFound) {
				t.Fatalf("err = %v, want ErrMovieNotFound", err)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	for mode, s := range openModes(t) {
		t.Run(mode, func(t *testing.T) {
			ctx := context.Background()

			first, _ := s.Insert(ctx, map[string]any{domain.FieldName: "a", domain.FieldYear: 2001})
			second, _ := s.Insert(ctx, map[string]any{domain.FieldName: "b", domain.FieldYear: 2002})
			third, _ := s.Insert(ctx, map[string]any{domain.FieldName: "c", domain.FieldYear: 2003})

			if err := s.Delete(ctx, second); err != nil {
				t.Fatalf("Delete: %v", err)
			}

			docs, err := s.ListAll(ctx)
			if err != nil {
				t.Fatalf("ListAll: %v", err)
			}
			if len(docs) != 2 || docs[0].ID != first || docs[1].ID != third {
				t.Fatalf("after delete: %+v", docs)
			}

			if err := s.Delete(ctx, second); !errors.Is(err, domain.ErrMovieNotFound) {
				t.Fatalf("repeat delete err = %v, want ErrMovieNotFound", err)
			}
		})
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s, err := Open(path, "peliculas", log.NullLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	id, err := s.Insert(ctx, map[string]any{domain.FieldName: "Dune", domain.FieldYear: 2021})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path, "peliculas", log.NullLogger())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	docs, err := reopened.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != id {
		t.Fatalf("after reopen: %+v", docs)
	}
}

func TestCancelledContext(t *testing.T) {
	s, err := Open("", "peliculas", log.NullLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.ListAll(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("ListAll err = %v, want context.Canceled", err)
	}
	if _, err := s.Insert(ctx, map[string]any{domain.FieldName: "x"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Insert err = %v, want context.Canceled", err)
	}
}

func TestInsertClonesFields(t *testing.T) {
	s, err := Open("", "peliculas", log.NullLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	fields := map[string]any{domain.FieldName: "Dune", domain.FieldYear: 2021}
	if _, err := s.Insert(ctx, fields); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	fields[domain.FieldName] = "mutated"

	docs, _ := s.ListAll(ctx)
	if docs[0].Fields[domain.FieldName] != "Dune" {
		t.Fatal("stored document aliases caller's map")
	}
}
