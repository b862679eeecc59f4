// Package catalog holds the client-side mirror of the movie collection and
// the mutation coordinator that keeps it consistent with the store.
package catalog

import (
	"sort"
	"sync"

	"cinelog/internal/domain"
)

// PatchFields carries a partial update; nil pointers leave the field alone.
type PatchFields struct {
	Name      *string
	Year      *int
	PosterURL *string
	Notes     *string
}

// Cache is the in-memory mirror of the remote collection. It is loaded once
// at startup and patched after each acknowledged mutation; it is never
// refetched. Order is append-only insertion order.
//
// All reads return defensive copies. Subscribers are notified after every
// change, outside the lock.
type Cache struct {
	mu      sync.RWMutex
	movies  []domain.Movie
	years   []int
	subs    map[int]func()
	nextSub int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{subs: make(map[int]func())}
}

// Movies returns a copy of all cached records in insertion order.
func (c *Cache) Movies() []domain.Movie {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneMovies(c.movies)
}

// Years returns the distinct years present across all records, descending.
func (c *Cache) Years() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	dup := make([]int, len(c.years))
	copy(dup, c.years)
	return dup
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.movies)
}

// Get returns the record matching id.
func (c *Cache) Get(id string) (domain.Movie, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.movies {
		if m.ID == id {
			return m, true
		}
	}
	return domain.Movie{}, false
}

// ReplaceAll installs the startup listing.
func (c *Cache) ReplaceAll(movies []domain.Movie) {
	c.mu.Lock()
	c.movies = cloneMovies(movies)
	c.recomputeYears()
	c.mu.Unlock()
	c.notify()
}

// Append adds one record after a successful create.
func (c *Cache) Append(movie domain.Movie) {
	c.mu.Lock()
	c.movies = append(c.movies, movie)
	c.recomputeYears()
	c.mu.Unlock()
	c.notify()
}

// Patch merges fields into the record matching id. An unknown id is a no-op:
// a logic error upstream, not something to surface to the user.
func (c *Cache) Patch(id string, fields PatchFields) bool {
	c.mu.Lock()
	patched := false
	for i := range c.movies {
		if c.movies[i].ID != id {
			continue
		}
		if fields.Name != nil {
			c.movies[i].Name = *fields.Name
		}
		if fields.Year != nil {
			c.movies[i].Year = *fields.Year
		}
		if fields.PosterURL != nil {
			c.movies[i].PosterURL = *fields.PosterURL
		}
		if fields.Notes != nil {
			c.movies[i].Notes = *fields.Notes
		}
		patched = true
		break
	}
	if patched {
		c.recomputeYears()
	}
	c.mu.Unlock()

	if patched {
		c.notify()
	}
	return patched
}

// Remove deletes the record matching id.
func (c *Cache) Remove(id string) bool {
	c.mu.Lock()
	removed := false
	for i := range c.movies {
		if c.movies[i].ID == id {
			c.movies = append(c.movies[:i], c.movies[i+1:]...)
			removed = true
			break
		}
	}
	if removed {
		c.recomputeYears()
	}
	c.mu.Unlock()

	if removed {
		c.notify()
	}
	return removed
}

// Subscribe registers a callback fired after every cache change. The
// returned cancel func removes the subscription.
func (c *Cache) Subscribe(fn func()) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// recomputeYears rebuilds the derived year set. Caller holds the lock.
func (c *Cache) recomputeYears() {
	seen := make(map[int]struct{}, len(c.movies))
	years := make([]int, 0, len(c.movies))
	for _, m := range c.movies {
		if _, ok := seen[m.Year]; ok {
			continue
		}
		seen[m.Year] = struct{}{}
		years = append(years, m.Year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	c.years = years
}

func (c *Cache) notify() {
	c.mu.RLock()
	subs := make([]func(), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.RUnlock()

	for _, fn := range subs {
		fn()
	}
}

func cloneMovies(movies []domain.Movie) []domain.Movie {
	if len(movies) == 0 {
		return nil
	}
	dup := make([]domain.Movie, len(movies))
	copy(dup, movies)
	return dup
}
