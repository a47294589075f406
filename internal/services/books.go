package services

import (
	"context"
	"errors"

	"libroteca/internal/entities"
	"libroteca/internal/genres"
	"libroteca/internal/storage"
	"libroteca/internal/store"
	"libroteca/internal/validate"
)

// CoverUpload is an optional cover image attached to a create/update
// request.
type CoverUpload struct {
	Name        string
	Content     []byte
	ContentType string
}

// BookInput is the caller-facing create/update payload. Genres are
// supplied as catalog ids; the service resolves names before any store
// is touched so the file-backed variant receives names and the
// relational variant receives ids, without branching here.
type BookInput struct {
	Title       string  `validate:"required"`
	Author      string  `validate:"required"`
	Year        int     `validate:"gte=0"`
	Publisher   string  `validate:"required"`
	Description string  `validate:"required"`
	GenreIDs    []int64 `validate:"required,min=1"`
}

// BookSummary is the normalized favorites shape both backends collapse
// into.
type BookSummary struct {
	ID     int64    `json:"id"`
	Title  string   `json:"title"`
	Author string   `json:"author"`
	Year   int      `json:"year"`
	Cover  string   `json:"cover"`
	Genres []string `json:"genres"`
}

// BookService owns the book and favorites use cases.
type BookService struct {
	books    store.BookStore
	catalog  *genres.Catalog
	uploader storage.Uploader
}

// NewBookService creates the service.
func NewBookService(books store.BookStore, catalog *genres.Catalog, uploader storage.Uploader) *BookService {
	return &BookService{books: books, catalog: catalog, uploader: uploader}
}

// resolveGenres fills input.Genres from the catalog, dropping ids the
// catalog does not know.
func (s *BookService) resolveGenres(input *store.BookInput) error {
	names, err := s.catalog.ResolveIDs(input.GenreIDs)
	if err != nil {
		return storageErr(err)
	}
	input.Genres = names
	return nil
}

// List returns a page of books plus the pre-pagination total.
func (s *BookService) List(filters store.Filters) ([]entities.Book, int64, error) {
	if len(filters.GenreIDs) > 0 {
		names, err := s.catalog.ResolveIDs(filters.GenreIDs)
		if err != nil {
			return nil, 0, storageErr(err)
		}
		filters.GenreNames = append(filters.GenreNames, names...)
	}
	books, total, err := s.books.List(filters)
	if err != nil {
		return nil, 0, storageErr(err)
	}
	if books == nil {
		books = []entities.Book{}
	}
	return books, total, nil
}

func (s *BookService) GetByID(id int64) (*entities.Book, error) {
	book, err := s.books.GetByID(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Resource: "book"}
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return book, nil
}

// Create validates the payload, uploads the required cover image and
// persists the record.
func (s *BookService) Create(ctx context.Context, input BookInput, cover *CoverUpload) (*entities.Book, error) {
	if cover == nil {
		return nil, &ConflictError{Message: "cover image is required"}
	}
	if fields := validate.Struct(input); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	coverURL, err := s.uploader.Upload(ctx, cover.Name, cover.Content, cover.ContentType)
	if err != nil {
		return nil, storageErr(err)
	}

	storeInput := store.BookInput{
		Title:       input.Title,
		Author:      input.Author,
		Year:        input.Year,
		Publisher:   input.Publisher,
		Cover:       coverURL,
		Description: input.Description,
		GenreIDs:    input.GenreIDs,
	}
	if err := s.resolveGenres(&storeInput); err != nil {
		return nil, err
	}

	book, err := s.books.Create(storeInput)
	if err != nil {
		return nil, storageErr(err)
	}
	return book, nil
}

// Update fully replaces the record. The existing cover URL is preserved
// when no new image was uploaded.
func (s *BookService) Update(ctx context.Context, id int64, input BookInput, cover *CoverUpload) (*entities.Book, error) {
	existing, err := s.books.GetByID(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Resource: "book"}
	}
	if err != nil {
		return nil, storageErr(err)
	}

	if fields := validate.Struct(input); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	coverURL := existing.Cover
	if cover != nil {
		coverURL, err = s.uploader.Upload(ctx, cover.Name, cover.Content, cover.ContentType)
		if err != nil {
			return nil, storageErr(err)
		}
	}

	storeInput := store.BookInput{
		Title:       input.Title,
		Author:      input.Author,
		Year:        input.Year,
		Publisher:   input.Publisher,
		Cover:       coverURL,
		Description: input.Description,
		GenreIDs:    input.GenreIDs,
	}
	if err := s.resolveGenres(&storeInput); err != nil {
		return nil, err
	}

	book, err := s.books.Update(id, storeInput)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Resource: "book"}
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return book, nil
}

// Patch changes only the supplied fields.
func (s *BookService) Patch(id int64, patch store.BookPatch) (*entities.Book, error) {
	if patch.Empty() {
		return nil, &ValidationError{Fields: []validate.FieldError{
			{Field: "", Message: "no patchable fields supplied"},
		}}
	}
	book, err := s.books.Patch(id, patch)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Resource: "book"}
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return book, nil
}

func (s *BookService) Delete(id int64) error {
	deleted, err := s.books.Delete(id)
	if err != nil {
		return storageErr(err)
	}
	if !deleted {
		return &NotFoundError{Resource: "book"}
	}
	return nil
}

// AddFavorite reports a conflict when the pair already exists.
func (s *BookService) AddFavorite(userID, bookID int64) error {
	added, err := s.books.AddFavorite(userID, bookID)
	if err != nil {
		return storageErr(err)
	}
	if !added {
		return &ConflictError{Message: "book is already in favorites"}
	}
	return nil
}

func (s *BookService) RemoveFavorite(userID, bookID int64) error {
	removed, err := s.books.RemoveFavorite(userID, bookID)
	if err != nil {
		return storageErr(err)
	}
	if !removed {
		return &NotFoundError{Resource: "favorite"}
	}
	return nil
}

// FavoritesByUser reconciles the variant asymmetry: the file-backed
// store yields bare book ids, the relational store yields full records.
// Both collapse into the same summary shape here. Ids whose book has
// disappeared are skipped rather than failing the whole listing.
func (s *BookService) FavoritesByUser(userID int64) ([]BookSummary, error) {
	listing, err := s.books.FavoritesByUser(userID)
	if err != nil {
		return nil, storageErr(err)
	}

	if listing.Books != nil {
		return summarize(listing.Books), nil
	}

	summaries := make([]BookSummary, 0, len(listing.BookIDs))
	for _, id := range listing.BookIDs {
		book, err := s.books.GetByID(id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, storageErr(err)
		}
		summaries = append(summaries, toSummary(*book))
	}
	return summaries, nil
}

func (s *BookService) CountFavorites() (int64, error) {
	count, err := s.books.CountFavorites()
	if err != nil {
		return 0, storageErr(err)
	}
	return count, nil
}

// UniqueGenres lists the genre names in use, ascending. An empty
// catalog surfaces as not-found, matching the external contract.
func (s *BookService) UniqueGenres() ([]string, error) {
	names, err := s.books.UniqueGenres()
	if err != nil {
		return nil, storageErr(err)
	}
	if len(names) == 0 {
		return nil, &NotFoundError{Resource: "genres"}
	}
	return names, nil
}

func summarize(books []entities.Book) []BookSummary {
	out := make([]BookSummary, 0, len(books))
	for _, b := range books {
		out = append(out, toSummary(b))
	}
	return out
}

func toSummary(b entities.Book) BookSummary {
	genres := b.Genres
	if genres == nil {
		genres = []string{}
	}
	return BookSummary{
		ID:     b.ID,
		Title:  b.Title,
		Author: b.Author,
		Year:   b.Year,
		Cover:  b.Cover,
		Genres: genres,
	}
}
