// Package store defines the persistence contracts implemented once per
// backend medium. Controllers and services depend only on these
// interfaces; the active variant is chosen once at process start.
package store

import (
	"errors"

	"libroteca/internal/entities"
)

// ErrNotFound signals that a referenced id has no corresponding record.
// It is an absence signal, not a medium failure.
var ErrNotFound = errors.New("record not found")

// Filters narrows a book listing. Title and Author are case-insensitive
// substring matches, Year and Publisher are exact. A book matches the
// genre filter when it carries any of the requested genres; GenreIDs and
// GenreNames are alternative spellings of the same filter.
type Filters struct {
	Title      string
	Author     string
	Year       *int
	Publisher  string
	GenreIDs   []int64
	GenreNames []string
	Page       int
	Limit      int
}

// Normalize applies the pagination defaults.
func (f *Filters) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
}

// BookInput is the payload for Create and Update. The file-backed
// variant persists Genres (names resolved upstream via the catalog);
// the relational variant persists GenreIDs as join rows.
type BookInput struct {
	Title       string
	Author      string
	Year        int
	Publisher   string
	Cover       string
	Description string
	GenreIDs    []int64
	Genres      []string
}

// BookPatch carries a partial update. Nil fields are left untouched.
// Genre associations are deliberately not patchable at this layer.
type BookPatch struct {
	Title       *string
	Author      *string
	Year        *int
	Publisher   *string
	Cover       *string
	Description *string
}

// Empty reports whether the patch changes nothing.
func (p BookPatch) Empty() bool {
	return p.Title == nil && p.Author == nil && p.Year == nil &&
		p.Publisher == nil && p.Cover == nil && p.Description == nil
}

// FavoriteListing is the variant-specific favorites result: the
// file-backed store yields bare book ids, the relational store yields
// full records. The service layer reconciles both into one shape.
type FavoriteListing struct {
	BookIDs []int64
	Books   []entities.Book
}

// BookStore owns book records and the favorites relation.
type BookStore interface {
	List(filters Filters) ([]entities.Book, int64, error)
	GetByID(id int64) (*entities.Book, error)
	Create(input BookInput) (*entities.Book, error)
	Update(id int64, input BookInput) (*entities.Book, error)
	Patch(id int64, patch BookPatch) (*entities.Book, error)
	Delete(id int64) (bool, error)

	AddFavorite(userID, bookID int64) (bool, error)
	RemoveFavorite(userID, bookID int64) (bool, error)
	FavoritesByUser(userID int64) (FavoriteListing, error)
	CountFavorites() (int64, error)

	UniqueGenres() ([]string, error)
}

// UserUpdate carries the mutable user fields for a full update.
type UserUpdate struct {
	Username string
	Email    string
	Role     entities.UserRole
}

// UserStore owns user records.
type UserStore interface {
	List() ([]entities.User, error)
	GetByID(id int64) (*entities.User, error)
	GetByEmail(email string) (*entities.User, error)
	Create(username, email, passwordHash string, role entities.UserRole) (*entities.User, error)
	Update(id int64, update UserUpdate) (*entities.User, error)
	Delete(id int64) (bool, error)
	Count() (int64, error)
}

// AuthStore owns credential lookup and the token blacklist. Stores
// receive password hashes only; hashing happens exactly once, in the
// service layer.
type AuthStore interface {
	FindByEmail(email string) (*entities.User, error)
	CreateUser(username, email, passwordHash string, role entities.UserRole) (int64, error)
	BlacklistToken(token string) error
	IsBlacklisted(token string) (bool, error)
	PurgeExpiredBlacklistEntries() (int64, error)
}
