package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Wire field names used in the document store. The collection predates this
// client and is shared with the spreadsheet importer, so the Spanish names
// stay on the wire.
const (
	FieldName   = "nombre"
	FieldYear   = "año"
	FieldPoster = "poster_url"
	FieldNotes  = "notas"
)

// DefaultCollection is the collection holding the diary.
const DefaultCollection = "peliculas"

// Movie is a single diary entry. ID is assigned by the store on insert and
// never changes. Name and Year are required; PosterURL and Notes may be empty.
type Movie struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Year      int    `json:"year"`
	PosterURL string `json:"posterUrl,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Validate checks the required fields.
func (m Movie) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return &ValidationError{Field: "name"}
	}
	if m.Year == 0 {
		return &ValidationError{Field: "year"}
	}
	return nil
}

// Fields returns the full wire representation for an insert.
func (m Movie) Fields() map[string]any {
	return map[string]any{
		FieldName:   m.Name,
		FieldYear:   m.Year,
		FieldPoster: m.PosterURL,
		FieldNotes:  m.Notes,
	}
}

// Document is the raw id+fields shape crossing the store boundary.
type Document struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// MovieFromDocument converts a stored document into a Movie, defaulting
// anything missing or oddly typed. Documents written by other clients may
// lack fields entirely; conversion never fails, it produces a Movie that the
// rest of the code can reason about without nil checks.
func MovieFromDocument(doc Document) Movie {
	m := Movie{ID: doc.ID}
	if v, ok := doc.Fields[FieldName]; ok {
		m.Name = stringField(v)
	}
	if v, ok := doc.Fields[FieldYear]; ok {
		m.Year = intField(v)
	}
	if v, ok := doc.Fields[FieldPoster]; ok {
		m.PosterURL = stringField(v)
	}
	if v, ok := doc.Fields[FieldNotes]; ok {
		m.Notes = stringField(v)
	}
	return m
}

// MoviesFromDocuments converts a full listing, preserving order.
func MoviesFromDocuments(docs []Document) []Movie {
	movies := make([]Movie, 0, len(docs))
	for _, doc := range docs {
		movies = append(movies, MovieFromDocument(doc))
	}
	return movies
}

func stringField(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return ""
	}
}

// intField accepts the numeric shapes JSON decoding can produce.
func intField(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return 0
}
