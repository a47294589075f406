package dbstore

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"libroteca/internal/genres"
	"libroteca/internal/store"
)

// setupTestDB creates a fresh test database seeded with the default
// genre catalog.
func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	dbPath := "./test_" + t.Name() + ".db"
	db, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, SeedGenres(db, genres.DefaultEntries))

	cleanup := func() {
		Close(db)
		os.Remove(dbPath)
	}
	return db, cleanup
}

func createDBBook(t *testing.T, s *BookStore, title, author string, genreIDs ...int64) int64 {
	t.Helper()
	book, err := s.Create(store.BookInput{
		Title:       title,
		Author:      author,
		Year:        1999,
		Publisher:   "Planeta",
		Cover:       "/media/" + title + ".jpg",
		Description: "about " + title,
		GenreIDs:    genreIDs,
	})
	require.NoError(t, err)
	return book.ID
}

func TestDBBookStoreCreateResolvesGenreNames(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	s := NewBookStore(db)

	// Catalog ids 1 and 3 are Drama and Comedy.
	id := createDBBook(t, s, "Rayuela", "Cortázar", 1, 3)

	book, err := s.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Comedy", "Drama"}, book.Genres)
}

func TestDBBookStoreCreateDeduplicatesGenreIDs(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	s := NewBookStore(db)

	id := createDBBook(t, s, "Doble", "Autor", 1, 1, 3)

	book, err := s.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Comedy", "Drama"}, book.Genres)
}

func TestDBBookStoreGetByIDMissing(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	s := NewBookStore(db)

	_, err := s.GetByID(42)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDBBookStoreListNewestFirst(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	s := NewBookStore(db)

	createDBBook(t, s, "First", "A", 1)
	createDBBook(t, s, "Second", "B", 1)
	createDBBook(t, s, "Third", "C", 1)

	books, total, err := s.List(store.Filters{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, books, 3)
	assert.Equal(t, "Third", books[0].Title)
	assert.Equal(t, "First", books[2].Title)
}

func TestDBBookStoreListFilters(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	s := NewBookStore(db)

	createDBBook(t, s, "El Quijote", "Cervantes", 1)
	createDBBook(t, s, "La Galatea", "Cervantes", 6)
	createDBBook(t, s, "Rayuela", "Cortázar", 3)

	t.Run("title substring is case-insensitive", func(t *testing.T) {
		books, total, err := s.List(store.Filters{Title: "QUIJOTE"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, books, 1)
		assert.Equal(t, "El Quijote", books[0].Title)
	})

	t.Run("genre id filter matches any", func(t *testing.T) {
		_, total, err := s.List(store.Filters{GenreIDs: []int64{3, 6}})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("genre name filter is case-insensitive", func(t *testing.T) {
		_, total, err := s.List(store.Filters{GenreNames: []string{"drama"}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("pagination totals ignore the page window", func(t *testing.T) {
		books, total, err := s.List(store.Filters{Author: "c", Page: 2, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, books, 1)
	})
}

func TestDBBookStoreUpdateReplacesGenreAssociations(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	s := NewBookStore(db)

	id := createDBBook(t, s, "Old", "Author", 1, 3)

	updated, err := s.Update(id, store.BookInput{
		Title:       "New",
		Author:      "Author",
		Year:        2001,
		Publisher:   "Anagrama",
		Cover:       "/media/new.jpg",
		Description: "rewritten",
		GenreIDs:    []int64{5},
	})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, []string{"Terror"}, updated.Genres)

	_, err = s.Update(99, store.BookInput{Title: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDBBookStorePatchLeavesOtherFieldsUntouched(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	s := NewBookStore(db)

	id := createDBBook(t, s, "Original", "Author", 1)

	newTitle := "Patched"
	patched, err := s.Patch(id, store.BookPatch{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Patched", patched.Title)
	assert.Equal(t, "Author", patched.Author)
	assert.Equal(t, 1999, patched.Year)
	assert.Equal(t, []string{"Drama"}, patched.Genres)

	_, err = s.Patch(99, store.BookPatch{Title: &newTitle})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDBBookStoreDeleteCascades(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	s := NewBookStore(db)

	id := createDBBook(t, s, "Doomed", "Author", 1)
	added, err := s.AddFavorite(7, id)
	require.NoError(t, err)
	require.True(t, added)

	deleted, err := s.Delete(id)
	require.NoError(t, err)
	assert.True(t, deleted)

	count, err := s.CountFavorites()
	require.NoError(t, err)
	assert.Zero(t, count)

	var joinRows int64
	require.NoError(t, db.Table("book_genres").Where("book_id = ?", id).Count(&joinRows).Error)
	assert.Zero(t, joinRows)

	deleted, err = s.Delete(id)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDBBookStoreFavorites(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	s := NewBookStore(db)

	id := createDBBook(t, s, "Fav", "Author", 1)

	added, err := s.AddFavorite(1, id)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.AddFavorite(1, id)
	require.NoError(t, err)
	assert.False(t, added)

	listing, err := s.FavoritesByUser(1)
	require.NoError(t, err)
	require.Len(t, listing.Books, 1)
	assert.Equal(t, "Fav", listing.Books[0].Title)
	assert.Equal(t, []string{"Drama"}, listing.Books[0].Genres)

	removed, err := s.RemoveFavorite(1, id)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.RemoveFavorite(1, id)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestDBBookStoreUniqueGenresAscending(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	s := NewBookStore(db)

	names, err := s.UniqueGenres()
	require.NoError(t, err)
	assert.Empty(t, names)

	createDBBook(t, s, "One", "A", 5, 1)
	createDBBook(t, s, "Two", "B", 1, 3)

	names, err = s.UniqueGenres()
	require.NoError(t, err)
	assert.Equal(t, []string{"Comedy", "Drama", "Terror"}, names)
}
