// Package dbstore implements the store contracts on a relational
// backend through gorm. Multi-statement operations run inside a
// transaction so a failing step leaves the prior state intact.
package dbstore

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"libroteca/internal/entities"
)

// Open connects to the database and migrates the schema.
func Open(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Genre{},
		&entities.Book{},
		&entities.BookGenre{},
		&entities.User{},
		&entities.Favorite{},
		&entities.BlacklistedToken{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized at %s", dbPath)
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SeedGenres inserts any catalog entries missing from the genre
// dimension, so the relational backend shares the static id-to-name
// mapping used by the file-backed deployment.
func SeedGenres(db *gorm.DB, genres []entities.Genre) error {
	for _, genre := range genres {
		var existing entities.Genre
		result := db.Where("id = ?", genre.ID).First(&existing)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			if err := db.Create(&genre).Error; err != nil {
				return fmt.Errorf("failed to seed genre %s: %w", genre.Name, err)
			}
		} else if result.Error != nil {
			return result.Error
		}
	}
	return nil
}
