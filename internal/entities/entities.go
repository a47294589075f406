// Package entities defines the persisted domain model shared by both
// storage backends. The gorm tags describe the relational schema; the
// json tags describe both the API shape and the file-backed documents.
package entities

import (
	"time"
)

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// Book is a catalog entry. Genres is always a list of genre names in
// API responses and in the file-backed document; the relational backend
// materializes it from the book_genres join at read time.
type Book struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"index;size:512" json:"title"`
	Author      string    `gorm:"index;size:256" json:"author"`
	Year        int       `json:"year"`
	Publisher   string    `gorm:"size:256" json:"publisher"`
	Cover       string    `gorm:"size:2048" json:"cover"`
	Description string    `gorm:"type:text" json:"description"`
	Genres      []string  `gorm:"-" json:"genres"`
	CreatedAt   time.Time `json:"created_at"`
}

// Genre is the id/name dimension. The file-backed deployment reads it
// from a static catalog file; the relational deployment owns a table.
type Genre struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:100" json:"name"`
}

// BookGenre is the relational join row between books and genres.
type BookGenre struct {
	BookID  int64 `gorm:"primaryKey;autoIncrement:false" json:"book_id"`
	GenreID int64 `gorm:"primaryKey;autoIncrement:false" json:"genre_id"`
}

// Favorite is a user-to-book bookmark. The (UserID, BookID) pair is
// unique in both backends.
type Favorite struct {
	UserID int64 `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	BookID int64 `gorm:"primaryKey;autoIncrement:false" json:"bookId"`
}

type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:100" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string    `gorm:"size:100" json:"-"`
	Role         UserRole  `gorm:"size:20;default:'user'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// BlacklistedToken is a revoked token. Entries older than the retention
// window are swept periodically; a swept token that is still within its
// signed validity window becomes acceptable again.
type BlacklistedToken struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"uniqueIndex;type:text" json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

func (Book) TableName() string {
	return "books"
}

func (Genre) TableName() string {
	return "genres"
}

func (BookGenre) TableName() string {
	return "book_genres"
}

func (Favorite) TableName() string {
	return "favorites"
}

func (User) TableName() string {
	return "users"
}

func (BlacklistedToken) TableName() string {
	return "blacklisted_tokens"
}
