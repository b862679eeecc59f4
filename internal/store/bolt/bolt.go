// Package bolt implements domain.DocumentStore on a local BoltDB file.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"cinelog/internal/domain"
)

// Store implements domain.DocumentStore using BoltDB. Documents are stored
// under a monotonically increasing sequence key so ListAll returns them in
// insertion order; a second bucket maps document ids back to sequence keys.
//
// An empty path opens a memory-only store (no persistence); tests use this.
type Store struct {
	db     *bolt.DB
	logger *slog.Logger

	docsBucket []byte
	idsBucket  []byte

	// Memory-only mode
	mu     sync.Mutex
	mem    []domain.Document
	memIdx map[string]int
}

// Open opens (or creates) the database file and its buckets.
func Open(path, collection string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		logger:     logger,
		docsBucket: []byte(collection),
		idsBucket:  []byte(collection + ":ids"),
	}

	if path == "" {
		// Memory-only mode (no persistence)
		s.memIdx = make(map[string]int)
		return s, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{s.docsBucket, s.idsBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ListAll returns every document in insertion order.
func (s *Store) ListAll(ctx context.Context) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		docs := make([]domain.Document, len(s.mem))
		for i, doc := range s.mem {
			docs[i] = cloneDocument(doc)
		}
		return docs, nil
	}

	var docs []domain.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.docsBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var doc domain.Document
			if err := json.Unmarshal(v, &doc); err != nil {
				return fmt.Errorf("corrupt document at key %x: %w", k, err)
			}
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("listed documents", "collection", string(s.docsBucket), "count", len(docs))
	return docs, nil
}

// Insert stores a new document and returns its assigned id.
func (s *Store) Insert(ctx context.Context, fields map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	doc := domain.Document{
		ID:     uuid.NewString(),
		Fields: cloneFields(fields),
	}

	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.memIdx[doc.ID] = len(s.mem)
		s.mem = append(s.mem, doc)
		return doc.ID, nil
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		docs := tx.Bucket(s.docsBucket)
		seq, err := docs.NextSequence()
		if err != nil {
			return err
		}
		key := seqKey(seq)

		data, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		if err := docs.Put(key, data); err != nil {
			return err
		}
		return tx.Bucket(s.idsBucket).Put([]byte(doc.ID), key)
	})
	if err != nil {
		return "", err
	}

	s.logger.Debug("inserted document", "id", doc.ID)
	return doc.ID, nil
}

// UpdateFields merges the given fields into an existing document.
func (s *Store) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		idx, ok := s.memIdx[id]
		if !ok {
			return domain.ErrMovieNotFound
		}
		for k, v := range fields {
			s.mem[idx].Fields[k] = v
		}
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		key := tx.Bucket(s.idsBucket).Get([]byte(id))
		if key == nil {
			return domain.ErrMovieNotFound
		}

		docs := tx.Bucket(s.docsBucket)
		var doc domain.Document
		if err := json.Unmarshal(docs.Get(key), &doc); err != nil {
			return fmt.Errorf("corrupt document %s: %w", id, err)
		}
		if doc.Fields == nil {
			doc.Fields = make(map[string]any, len(fields))
		}
		for k, v := range fields {
			doc.Fields[k] = v
		}

		data, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		return docs.Put(key, data)
	})
}

// Delete removes a document by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		idx, ok := s.memIdx[id]
		if !ok {
			return domain.ErrMovieNotFound
		}
		s.mem = append(s.mem[:idx], s.mem[idx+1:]...)
		delete(s.memIdx, id)
		for i := idx; i < len(s.mem); i++ {
			s.memIdx[s.mem[i].ID] = i
		}
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		ids := tx.Bucket(s.idsBucket)
		key := ids.Get([]byte(id))
		if key == nil {
			return domain.ErrMovieNotFound
		}
		if err := tx.Bucket(s.docsBucket).Delete(key); err != nil {
			return err
		}
		return ids.Delete([]byte(id))
	})
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

func cloneFields(fields map[string]any) map[string]any {
	dup := make(map[string]any, len(fields))
	for k, v := range fields {
		dup[k] = v
	}
	return dup
}

func cloneDocument(doc domain.Document) domain.Document {
	return domain.Document{ID: doc.ID, Fields: cloneFields(doc.Fields)}
}
