// Package store opens the configured document store backend.
package store

import (
	"fmt"
	"log/slog"

	"cinelog/internal/config"
	"cinelog/internal/domain"
	"cinelog/internal/store/bolt"
	"cinelog/internal/store/remote"
)

// Open creates the document store described by the configuration.
// Both backends expose the same four-operation capability, so the rest of
// the application never knows which one it is talking to.
func Open(cfg *config.Config, logger *slog.Logger) (domain.DocumentStore, error) {
	switch cfg.Store.Type {
	case config.StoreTypeLocal:
		return bolt.Open(cfg.Store.Path, cfg.Store.Collection, logger)

	case config.StoreTypeRemote:
		return remote.NewClient(cfg.Store.URL, cfg.Store.Collection, cfg.Identity.Token, logger)

	default:
		return nil, fmt.Errorf("unknown store type: %q", cfg.Store.Type)
	}
}
