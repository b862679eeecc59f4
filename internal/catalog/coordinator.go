package catalog

import (
	"context"
	"log/slog"
	"strings"

	"cinelog/internal/domain"
	"cinelog/internal/session"
)

// Coordinator executes mutations against the document store and, on success,
// applies the same delta to the cache. Every operation follows the same
// two-step shape: one remote write, then patch the local mirror. The mirror
// is never touched before the store acknowledges, so a failed write leaves
// local state exactly as it was.
type Coordinator struct {
	store   domain.DocumentStore
	session *session.Tracker
	cache   *Cache
	logger  *slog.Logger
}

// NewCoordinator wires the mutation coordinator.
func NewCoordinator(store domain.DocumentStore, tracker *session.Tracker, cache *Cache, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		store:   store,
		session: tracker,
		cache:   cache,
		logger:  logger,
	}
}

// Cache returns the collection mirror.
func (c *Coordinator) Cache() *Cache {
	return c.cache
}

// Load performs the single startup bulk fetch and installs it in the cache.
func (c *Coordinator) Load(ctx context.Context) error {
	docs, err := c.store.ListAll(ctx)
	if err != nil {
		c.logger.Error("failed to load collection", "error", err)
		return err
	}

	movies := domain.MoviesFromDocuments(docs)
	c.cache.ReplaceAll(movies)
	c.logger.Info("loaded collection", "count", len(movies))
	return nil
}

// Create inserts a new movie. Requires a session and the required fields;
// both checks fail fast with no remote call. Notes start empty.
func (c *Coordinator) Create(ctx context.Context, name string, year int, posterURL string) (domain.Movie, error) {
	if _, err := c.session.RequireUser(); err != nil {
		return domain.Movie{}, err
	}

	movie := domain.Movie{
		Name:      strings.TrimSpace(name),
		Year:      year,
		PosterURL: posterURL,
		Notes:     "",
	}
	if err := movie.Validate(); err != nil {
		return domain.Movie{}, err
	}

	id, err := c.store.Insert(ctx, movie.Fields())
	if err != nil {
		c.logger.Error("failed to create movie", "error", err, "name", movie.Name)
		return domain.Movie{}, err
	}

	movie.ID = id
	c.cache.Append(movie)
	c.logger.Info("created movie", "id", id, "name", movie.Name, "year", movie.Year)
	return movie, nil
}

// Update rewrites a movie's editable fields. The session check happened when
// the edit form was opened; required-field validation still applies. Returns
// the updated record so an open detail view can refresh its own snapshot.
func (c *Coordinator) Update(ctx context.Context, id, name string, year int, posterURL string) (domain.Movie, error) {
	movie := domain.Movie{ID: id, Name: strings.TrimSpace(name), Year: year, PosterURL: posterURL}
	if err := movie.Validate(); err != nil {
		return domain.Movie{}, err
	}

	err := c.store.UpdateFields(ctx, id, map[string]any{
		domain.FieldName:   movie.Name,
		domain.FieldYear:   movie.Year,
		domain.FieldPoster: movie.PosterURL,
	})
	if err != nil {
		c.logger.Error("failed to update movie", "error", err, "id", id)
		return domain.Movie{}, err
	}

	c.cache.Patch(id, PatchFields{Name: &movie.Name, Year: &movie.Year, PosterURL: &movie.PosterURL})
	if cached, ok := c.cache.Get(id); ok {
		movie.Notes = cached.Notes
	}
	c.logger.Info("updated movie", "id", id, "name", movie.Name)
	return movie, nil
}

// Delete removes a movie. Requires a session and a prior explicit user
// confirmation; a declined confirmation aborts silently.
func (c *Coordinator) Delete(ctx context.Context, id string, confirmed bool) error {
	if _, err := c.session.RequireUser(); err != nil {
		return err
	}
	if !confirmed {
		return domain.ErrCancelled
	}

	if err := c.store.Delete(ctx, id); err != nil {
		c.logger.Error("failed to delete movie", "error", err, "id", id)
		return err
	}

	c.cache.Remove(id)
	c.logger.Info("deleted movie", "id", id)
	return nil
}

// SaveNotes patches only the notes field. Requires a session.
func (c *Coordinator) SaveNotes(ctx context.Context, id, notes string) error {
	if _, err := c.session.RequireUser(); err != nil {
		return err
	}

	err := c.store.UpdateFields(ctx, id, map[string]any{
		domain.FieldNotes: notes,
	})
	if err != nil {
		c.logger.Error("failed to save notes", "error", err, "id", id)
		return err
	}

	c.cache.Patch(id, PatchFields{Notes: &notes})
	c.logger.Info("saved notes", "id", id)
	return nil
}
