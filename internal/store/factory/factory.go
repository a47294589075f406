// Package factory selects the storage backend once at process start.
// Call sites receive the capability interfaces and never branch on
// which variant is active.
package factory

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gorm.io/gorm"

	"libroteca/internal/config"
	"libroteca/internal/genres"
	"libroteca/internal/store"
	"libroteca/internal/store/dbstore"
	"libroteca/internal/store/filestore"
)

// Stores bundles the three store families plus the genre catalog.
// DB is non-nil only for the relational backend.
type Stores struct {
	Books   store.BookStore
	Users   store.UserStore
	Auth    store.AuthStore
	Catalog *genres.Catalog
	DB      *gorm.DB
}

// New builds the store family named by cfg.Storage.Mode.
func New(cfg *config.Config) (*Stores, error) {
	catalogPath := filepath.Join(cfg.Storage.DataDir, "genres.json")
	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := genres.WriteDefault(catalogPath); err != nil {
		return nil, fmt.Errorf("failed to materialize genre catalog: %w", err)
	}
	catalog := genres.NewCatalog(catalogPath)

	switch cfg.Storage.Mode {
	case config.StorageModeLocal:
		usersPath := filepath.Join(cfg.Storage.DataDir, "users.json")
		userStore, authStore := filestore.NewStores(usersPath, cfg.Auth.BlacklistRetention)
		log.Printf("Storage mode: local (JSON documents in %s)", cfg.Storage.DataDir)
		return &Stores{
			Books:   filestore.NewBookStore(filepath.Join(cfg.Storage.DataDir, "books.json")),
			Users:   userStore,
			Auth:    authStore,
			Catalog: catalog,
		}, nil

	case config.StorageModeDatabase:
		db, err := dbstore.Open(cfg.Storage.DatabasePath)
		if err != nil {
			return nil, err
		}
		if err := dbstore.SeedGenres(db, genres.DefaultEntries); err != nil {
			return nil, err
		}
		log.Printf("Storage mode: database (%s)", cfg.Storage.DatabasePath)
		return &Stores{
			Books:   dbstore.NewBookStore(db),
			Users:   dbstore.NewUserStore(db),
			Auth:    dbstore.NewAuthStore(db, cfg.Auth.BlacklistRetention),
			Catalog: catalog,
			DB:      db,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage mode %q", cfg.Storage.Mode)
	}
}

// Close releases backend resources.
func (s *Stores) Close() error {
	if s.DB != nil {
		return dbstore.Close(s.DB)
	}
	return nil
}
