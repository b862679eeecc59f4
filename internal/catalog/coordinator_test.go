package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cinelog/internal/domain"
	"cinelog/internal/log"
	"cinelog/internal/session"
)

// fakeStore is an in-memory DocumentStore with switchable failure.
type fakeStore struct {
	docs    []domain.Document
	nextID  int
	failAll bool

	inserts int
	updates int
	deletes int
}

func (s *fakeStore) ListAll(ctx context.Context) ([]domain.Document, error) {
	if s.failAll {
		return nil, domain.ErrStoreUnavailable
	}
	return append([]domain.Document(nil), s.docs...), nil
}

func (s *fakeStore) Insert(ctx context.Context, fields map[string]any) (string, error) {
	s.inserts++
	if s.failAll {
		return "", domain.ErrStoreUnavailable
	}
	s.nextID++
	id := fmt.Sprintf("doc-%d", s.nextID)
	s.docs = append(s.docs, domain.Document{ID: id, Fields: fields})
	return id, nil
}

func (s *fakeStore) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	s.updates++
	if s.failAll {
		return domain.ErrStoreUnavailable
	}
	for i := range s.docs {
		if s.docs[i].ID == id {
			for k, v := range fields {
				s.docs[i].Fields[k] = v
			}
			return nil
		}
	}
	return domain.ErrMovieNotFound
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	s.deletes++
	if s.failAll {
		return domain.ErrStoreUnavailable
	}
	for i := range s.docs {
		if s.docs[i].ID == id {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			return nil
		}
	}
	return domain.ErrMovieNotFound
}

func (s *fakeStore) Close() error { return nil }

// fakeProvider always validates to the same user.
type fakeProvider struct {
	user *domain.User
}

func (p *fakeProvider) BeginLogin(ctx context.Context) (*domain.LinkCode, error) {
	return &domain.LinkCode{ID: 1, Code: "ABCD"}, nil
}

func (p *fakeProvider) WaitLogin(ctx context.Context, code *domain.LinkCode) (*domain.User, error) {
	return p.user, nil
}

func (p *fakeProvider) Validate(ctx context.Context, token string) (*domain.User, error) {
	if p.user == nil {
		return nil, domain.ErrAuthFailed
	}
	return p.user, nil
}

func (p *fakeProvider) Logout(ctx context.Context, token string) error { return nil }

func signedInTracker(t *testing.T) *session.Tracker {
	t.Helper()
	tracker := session.NewTracker(&fakeProvider{user: &domain.User{ID: "u1", Name: "ana", Token: "tok"}}, log.NullLogger())
	if err := tracker.Resume(context.Background(), "tok"); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	return tracker
}

func anonymousTracker() *session.Tracker {
	return session.NewTracker(&fakeProvider{}, log.NullLogger())
}

func newTestCoordinator(t *testing.T, store *fakeStore, tracker *session.Tracker) *Coordinator {
	t.Helper()
	return NewCoordinator(store, tracker, NewCache(), log.NullLogger())
}

func TestCoordinatorLoad(t *testing.T) {
	store := &fakeStore{docs: []domain.Document{
		{ID: "a", Fields: map[string]any{"nombre": "Dune", "año": 2021}},
		{ID: "b", Fields: map[string]any{"nombre": "Arrival", "año": float64(2016)}},
	}}
	c := newTestCoordinator(t, store, anonymousTracker())

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	movies := c.Cache().Movies()
	if len(movies) != 2 {
		t.Fatalf("cached %d, want 2", len(movies))
	}
	if movies[0].Name != "Dune" || movies[1].Year != 2016 {
		t.Fatalf("conversion wrong: %+v", movies)
	}
}

func TestCoordinatorLoadFailureLeavesCacheEmpty(t *testing.T) {
	store := &fakeStore{failAll: true}
	c := newTestCoordinator(t, store, anonymousTracker())

	if err := c.Load(context.Background()); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
	if c.Cache().Len() != 0 {
		t.Fatal("cache populated after failed load")
	}
}

func TestCoordinatorCreate(t *testing.T) {
	store := &fakeStore{}
	c := newTestCoordinator(t, store, signedInTracker(t))

	movie, err := c.Create(context.Background(), "  Dune  ", 2021, "http://img/dune.jpg")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if movie.ID == "" {
		t.Fatal("no id assigned")
	}
	if movie.Name != "Dune" {
		t.Fatalf("name not trimmed: %q", movie.Name)
	}
	if movie.Notes != "" {
		t.Fatal("notes should start empty")
	}

	cached, ok := c.Cache().Get(movie.ID)
	if !ok || cached.Name != "Dune" {
		t.Fatalf("cache not patched after ack: %+v", cached)
	}
}

func TestCoordinatorCreateRequiresSession(t *testing.T) {
	store := &fakeStore{}
	c := newTestCoordinator(t, store, anonymousTracker())

	_, err := c.Create(context.Background(), "Dune", 2021, "")
	if !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("err = %v, want ErrAuthRequired", err)
	}
	if store.inserts != 0 {
		t.Fatal("remote call made despite missing session")
	}
}

func TestCoordinatorCreateValidatesBeforeRemoteCall(t *testing.T) {
	tests := []struct {
		name      string
		movieName string
		year      int
		field     string
	}{
		{"empty name", "", 2021, "name"},
		{"whitespace name", "   ", 2021, "name"},
		{"zero year", "Dune", 0, "year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			c := newTestCoordinator(t, store, signedInTracker(t))

			_, err := c.Create(context.Background(), tt.movieName, tt.year, "")
			var verr *domain.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("err = %v, want ValidationError on %s", err, tt.field)
			}
			if store.inserts != 0 {
				t.Fatal("remote call made despite invalid input")
			}
		})
	}
}

func TestCoordinatorCreateFailureDoesNotTouchCache(t *testing.T) {
	store := &fakeStore{failAll: true}
	c := newTestCoordinator(t, store, signedInTracker(t))

	_, err := c.Create(context.Background(), "Dune", 2021, "")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
	if c.Cache().Len() != 0 {
		t.Fatal("cache patched before store acknowledged")
	}
}

func TestCoordinatorUpdatePreservesNotes(t *testing.T) {
	store := &fakeStore{}
	c := newTestCoordinator(t, store, signedInTracker(t))

	created, err := c.Create(context.Background(), "Dune", 2021, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := c.SaveNotes(context.Background(), created.ID, "masterpiece"); err != nil {
		t.Fatalf("SaveNotes: %v", err)
	}

	updated, err := c.Update(context.Background(), created.ID, "Dune: Part One", 2021, "http://img/d.jpg")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Dune: Part One" {
		t.Fatalf("name = %q", updated.Name)
	}
	// The edit form never carries notes; the returned record must still
	// have them so an open detail view does not blank them out.
	if updated.Notes != "masterpiece" {
		t.Fatalf("notes = %q, want preserved", updated.Notes)
	}

	cached, _ := c.Cache().Get(created.ID)
	if cached.Notes != "masterpiece" || cached.Name != "Dune: Part One" {
		t.Fatalf("cache state: %+v", cached)
	}
}

func TestCoordinatorUpdateFailureDoesNotTouchCache(t *testing.T) {
	store := &fakeStore{}
	c := newTestCoordinator(t, store, signedInTracker(t))

	created, _ := c.Create(context.Background(), "Dune", 2021, "")
	store.failAll = true

	_, err := c.Update(context.Background(), created.ID, "Renamed", 2022, "")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}

	cached, _ := c.Cache().Get(created.ID)
	if cached.Name != "Dune" || cached.Year != 2021 {
		t.Fatalf("cache changed despite failed write: %+v", cached)
	}
}

func TestCoordinatorDeleteGating(t *testing.T) {
	t.Run("requires session", func(t *testing.T) {
		store := &fakeStore{}
		c := newTestCoordinator(t, store, anonymousTracker())

		err := c.Delete(context.Background(), "doc-1", true)
		if !errors.Is(err, domain.ErrAuthRequired) {
			t.Fatalf("err = %v, want ErrAuthRequired", err)
		}
		if store.deletes != 0 {
			t.Fatal("remote call made despite missing session")
		}
	})

	t.Run("declined confirmation aborts", func(t *testing.T) {
		store := &fakeStore{}
		c := newTestCoordinator(t, store, signedInTracker(t))
		created, _ := c.Create(context.Background(), "Dune", 2021, "")

		err := c.Delete(context.Background(), created.ID, false)
		if !errors.Is(err, domain.ErrCancelled) {
			t.Fatalf("err = %v, want ErrCancelled", err)
		}
		if _, ok := c.Cache().Get(created.ID); !ok {
			t.Fatal("record removed despite declined confirmation")
		}
	})

	t.Run("confirmed delete removes record", func(t *testing.T) {
		store := &fakeStore{}
		c := newTestCoordinator(t, store, signedInTracker(t))
		created, _ := c.Create(context.Background(), "Dune", 2021, "")

		if err := c.Delete(context.Background(), created.ID, true); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, ok := c.Cache().Get(created.ID); ok {
			t.Fatal("record still cached after delete")
		}
	})
}

func TestCoordinatorSaveNotesRequiresSession(t *testing.T) {
	store := &fakeStore{}
	c := newTestCoordinator(t, store, anonymousTracker())

	err := c.SaveNotes(context.Background(), "doc-1", "notes")
	if !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("err = %v, want ErrAuthRequired", err)
	}
	if store.updates != 0 {
		t.Fatal("remote call made despite missing session")
	}
}

// TestFilteredViewThroughUpdate walks the full loop of catalog state, view
// filter, and a mutation: an active non-matching search term keeps the
// filtered view empty across a successful update, and clearing the term
// reveals the updated record.
func TestFilteredViewThroughUpdate(t *testing.T) {
	store := &fakeStore{docs: []domain.Document{
		{ID: "1", Fields: map[string]any{"nombre": "Dune", "año": 2021}},
	}}
	c := newTestCoordinator(t, store, signedInTracker(t))
	ctx := context.Background()

	if err := c.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	filtered := Filter(c.Cache().Movies(), "du", "")
	if len(filtered) != 1 || filtered[0].ID != "1" {
		t.Fatalf("filtered = %+v, want the Dune record", filtered)
	}

	filtered = Filter(c.Cache().Movies(), "xx", "")
	if len(filtered) != 0 {
		t.Fatalf("filtered = %+v, want empty", filtered)
	}

	if _, err := c.Update(ctx, "1", "Dune Part Two", 2024, ""); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// The update landed in the cache but the view term still matches nothing
	filtered = Filter(c.Cache().Movies(), "xx", "")
	if len(filtered) != 0 {
		t.Fatalf("filtered after update = %+v, want empty", filtered)
	}

	// Clearing the term reveals the updated record
	filtered = Filter(c.Cache().Movies(), "", "")
	if len(filtered) != 1 {
		t.Fatalf("filtered = %+v, want one record", filtered)
	}
	got := filtered[0]
	if got.ID != "1" || got.Name != "Dune Part Two" || got.Year != 2024 || got.PosterURL != "" {
		t.Fatalf("record = %+v", got)
	}
}

// TestCoordinatorMirrorMatchesReload walks a full mutation sequence and
// verifies the patched mirror equals what a fresh bulk load would return.
func TestCoordinatorMirrorMatchesReload(t *testing.T) {
	store := &fakeStore{}
	tracker := signedInTracker(t)
	c := newTestCoordinator(t, store, tracker)
	ctx := context.Background()

	dune, err := c.Create(ctx, "Dune", 2021, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	arrival, err := c.Create(ctx, "Arrival", 2016, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := c.Update(ctx, dune.ID, "Dune: Part One", 2021, "http://img/d.jpg"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := c.SaveNotes(ctx, arrival.ID, "quiet and devastating"); err != nil {
		t.Fatalf("SaveNotes: %v", err)
	}
	if err := c.Delete(ctx, dune.ID, true); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	mirror := c.Cache().Movies()

	// Fresh load from the same store
	fresh := newTestCoordinator(t, store, tracker)
	if err := fresh.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	reloaded := fresh.Cache().Movies()

	if len(mirror) != len(reloaded) {
		t.Fatalf("mirror has %d records, reload has %d", len(mirror), len(reloaded))
	}
	for i := range mirror {
		if mirror[i] != reloaded[i] {
			t.Fatalf("position %d: mirror %+v, reload %+v", i, mirror[i], reloaded[i])
		}
	}
}
