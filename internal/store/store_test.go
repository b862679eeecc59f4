package store

import (
	"path/filepath"
	"testing"

	"cinelog/internal/config"
	"cinelog/internal/log"
	"cinelog/internal/store/bolt"
	"cinelog/internal/store/remote"
)

func TestOpenLocal(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Type = config.StoreTypeLocal
	cfg.Store.Path = filepath.Join(t.TempDir(), "test.db")

	s, err := Open(cfg, log.NullLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, ok := s.(*bolt.Store); !ok {
		t.Fatalf("backend = %T, want *bolt.Store", s)
	}
}

func TestOpenRemote(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Type = config.StoreTypeRemote
	cfg.Store.URL = "https://movies.example.com"

	s, err := Open(cfg, log.NullLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, ok := s.(*remote.Client); !ok {
		t.Fatalf("backend = %T, want *remote.Client", s)
	}
}

func TestOpenUnknownType(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Type = "carrier-pigeon"

	if _, err := Open(cfg, log.NullLogger()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
