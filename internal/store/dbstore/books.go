package dbstore

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"libroteca/internal/entities"
	"libroteca/internal/store"
)

// BookStore is the relational book and favorites store. Genre ids pass
// through unresolved and are persisted as join rows; names are computed
// at read time from the join.
type BookStore struct {
	db *gorm.DB
}

// NewBookStore creates a book store over the given database handle.
func NewBookStore(db *gorm.DB) *BookStore {
	return &BookStore{db: db}
}

// attachGenres fills Genres for every book in one query over the join.
func (s *BookStore) attachGenres(books []entities.Book) error {
	if len(books) == 0 {
		return nil
	}
	ids := make([]int64, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}

	type row struct {
		BookID int64
		Name   string
	}
	var rows []row
	err := s.db.Table("book_genres").
		Select("book_genres.book_id AS book_id, genres.name AS name").
		Joins("JOIN genres ON genres.id = book_genres.genre_id").
		Where("book_genres.book_id IN ?", ids).
		Order("genres.name ASC").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	byBook := make(map[int64][]string, len(books))
	for _, r := range rows {
		names := byBook[r.BookID]
		if len(names) > 0 && names[len(names)-1] == r.Name {
			continue // join duplicates
		}
		byBook[r.BookID] = append(names, r.Name)
	}
	for i := range books {
		if names, ok := byBook[books[i].ID]; ok {
			books[i].Genres = names
		} else {
			books[i].Genres = []string{}
		}
	}
	return nil
}

func (s *BookStore) applyFilters(query *gorm.DB, filters store.Filters) *gorm.DB {
	if filters.Title != "" {
		query = query.Where("LOWER(books.title) LIKE ?", "%"+strings.ToLower(filters.Title)+"%")
	}
	if filters.Author != "" {
		query = query.Where("LOWER(books.author) LIKE ?", "%"+strings.ToLower(filters.Author)+"%")
	}
	if filters.Year != nil {
		query = query.Where("books.year = ?", *filters.Year)
	}
	if filters.Publisher != "" {
		query = query.Where("books.publisher = ?", filters.Publisher)
	}
	if len(filters.GenreIDs) > 0 || len(filters.GenreNames) > 0 {
		sub := s.db.Table("book_genres").
			Select("book_genres.book_id").
			Joins("JOIN genres ON genres.id = book_genres.genre_id")
		clauses := s.db
		if len(filters.GenreIDs) > 0 {
			clauses = clauses.Where("book_genres.genre_id IN ?", filters.GenreIDs)
		}
		if len(filters.GenreNames) > 0 {
			lowered := make([]string, len(filters.GenreNames))
			for i, n := range filters.GenreNames {
				lowered[i] = strings.ToLower(n)
			}
			clauses = clauses.Or("LOWER(genres.name) IN ?", lowered)
		}
		sub = sub.Where(clauses)
		query = query.Where("books.id IN (?)", sub)
	}
	return query
}

// List returns a page ordered newest-id-first plus the pre-pagination
// total of matching records.
func (s *BookStore) List(filters store.Filters) ([]entities.Book, int64, error) {
	filters.Normalize()

	var total int64
	countQuery := s.applyFilters(s.db.Model(&entities.Book{}), filters)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var books []entities.Book
	query := s.applyFilters(s.db.Model(&entities.Book{}), filters).
		Order("books.id DESC").
		Limit(filters.Limit).
		Offset((filters.Page - 1) * filters.Limit)
	if err := query.Find(&books).Error; err != nil {
		return nil, 0, err
	}
	if err := s.attachGenres(books); err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (s *BookStore) GetByID(id int64) (*entities.Book, error) {
	var book entities.Book
	err := s.db.First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	books := []entities.Book{book}
	if err := s.attachGenres(books); err != nil {
		return nil, err
	}
	return &books[0], nil
}

// Create inserts the book row and one join row per supplied genre id in
// a single transaction.
func (s *BookStore) Create(input store.BookInput) (*entities.Book, error) {
	book := entities.Book{
		Title:       input.Title,
		Author:      input.Author,
		Year:        input.Year,
		Publisher:   input.Publisher,
		Cover:       input.Cover,
		Description: input.Description,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&book).Error; err != nil {
			return err
		}
		return insertGenreRows(tx, book.ID, input.GenreIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(book.ID)
}

// Update replaces every mutable field and the whole genre association
// set (delete then reinsert) in one transaction.
func (s *BookStore) Update(id int64, input store.BookInput) (*entities.Book, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing entities.Book
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.ErrNotFound
			}
			return err
		}
		updates := map[string]any{
			"title":       input.Title,
			"author":      input.Author,
			"year":        input.Year,
			"publisher":   input.Publisher,
			"cover":       input.Cover,
			"description": input.Description,
		}
		if err := tx.Model(&entities.Book{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.BookGenre{}).Error; err != nil {
			return err
		}
		return insertGenreRows(tx, id, input.GenreIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Patch updates only the fields present; the genre association set is
// not patchable at this layer.
func (s *BookStore) Patch(id int64, patch store.BookPatch) (*entities.Book, error) {
	updates := map[string]any{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Author != nil {
		updates["author"] = *patch.Author
	}
	if patch.Year != nil {
		updates["year"] = *patch.Year
	}
	if patch.Publisher != nil {
		updates["publisher"] = *patch.Publisher
	}
	if patch.Cover != nil {
		updates["cover"] = *patch.Cover
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}

	var existing entities.Book
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.db.Model(&entities.Book{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(id)
}

// Delete removes the join rows, the favorites referencing the book, and
// the book itself in one transaction.
func (s *BookStore) Delete(id int64) (bool, error) {
	var deleted bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&entities.BookGenre{}).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.Favorite{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entities.Book{}, id)
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// AddFavorite reports false when the pair already exists.
func (s *BookStore) AddFavorite(userID, bookID int64) (bool, error) {
	var existing entities.Favorite
	err := s.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	fav := entities.Favorite{UserID: userID, BookID: bookID}
	if err := s.db.Create(&fav).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (s *BookStore) RemoveFavorite(userID, bookID int64) (bool, error) {
	result := s.db.Where("user_id = ? AND book_id = ?", userID, bookID).Delete(&entities.Favorite{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FavoritesByUser yields full book records; the service layer trims
// them into summaries.
func (s *BookStore) FavoritesByUser(userID int64) (store.FavoriteListing, error) {
	var books []entities.Book
	err := s.db.Model(&entities.Book{}).
		Joins("JOIN favorites ON favorites.book_id = books.id").
		Where("favorites.user_id = ?", userID).
		Order("books.id DESC").
		Find(&books).Error
	if err != nil {
		return store.FavoriteListing{}, err
	}
	if err := s.attachGenres(books); err != nil {
		return store.FavoriteListing{}, err
	}
	return store.FavoriteListing{Books: books}, nil
}

func (s *BookStore) CountFavorites() (int64, error) {
	var count int64
	err := s.db.Model(&entities.Favorite{}).Count(&count).Error
	return count, err
}

// UniqueGenres returns the distinct genre names referenced by at least
// one book, ascending.
func (s *BookStore) UniqueGenres() ([]string, error) {
	var names []string
	err := s.db.Table("genres").
		Distinct("genres.name").
		Joins("JOIN book_genres ON book_genres.genre_id = genres.id").
		Order("genres.name ASC").
		Pluck("genres.name", &names).Error
	return names, err
}

func insertGenreRows(tx *gorm.DB, bookID int64, genreIDs []int64) error {
	seen := make(map[int64]struct{}, len(genreIDs))
	for _, genreID := range genreIDs {
		if _, ok := seen[genreID]; ok {
			continue
		}
		seen[genreID] = struct{}{}
		row := entities.BookGenre{BookID: bookID, GenreID: genreID}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

var _ store.BookStore = (*BookStore)(nil)
