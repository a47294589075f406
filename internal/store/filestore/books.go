package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"libroteca/internal/entities"
	"libroteca/internal/store"
)

// BookStore is the file-backed book and favorites store. Genre names
// arrive already resolved (the service translates catalog ids upstream);
// records persist genres as literal name strings.
type BookStore struct {
	file *booksFile
}

type booksFile struct {
	path string

	mu     sync.Mutex
	loaded bool
	doc    booksDocument
}

// NewBookStore creates a book store over the given JSON document path.
func NewBookStore(path string) *BookStore {
	return &BookStore{file: &booksFile{path: path}}
}

func (f *booksFile) load() error {
	if f.loaded {
		return nil
	}

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		f.doc = booksDocument{}
		f.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read books document: %w", err)
	}
	if err := json.Unmarshal(data, &f.doc); err != nil {
		return fmt.Errorf("failed to parse books document: %w", err)
	}
	f.loaded = true
	return nil
}

func (f *booksFile) save() error {
	data, err := json.MarshalIndent(f.doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write books document: %w", err)
	}
	return nil
}

func (f *booksFile) nextID() int64 {
	var max int64
	for _, b := range f.doc.Books {
		if b.ID > max {
			max = b.ID
		}
	}
	return max + 1
}

func matches(book entities.Book, filters store.Filters) bool {
	if filters.Title != "" &&
		!strings.Contains(strings.ToLower(book.Title), strings.ToLower(filters.Title)) {
		return false
	}
	if filters.Author != "" &&
		!strings.Contains(strings.ToLower(book.Author), strings.ToLower(filters.Author)) {
		return false
	}
	if filters.Year != nil && book.Year != *filters.Year {
		return false
	}
	if filters.Publisher != "" && book.Publisher != filters.Publisher {
		return false
	}
	if len(filters.GenreNames) > 0 {
		found := false
		for _, want := range filters.GenreNames {
			for _, have := range book.Genres {
				if strings.EqualFold(want, have) {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// List filters the cached records in insertion order, which is stable
// across calls against unchanged data.
func (s *BookStore) List(filters store.Filters) ([]entities.Book, int64, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if err := s.file.load(); err != nil {
		return nil, 0, err
	}
	filters.Normalize()

	var result []entities.Book
	for _, book := range s.file.doc.Books {
		if matches(book, filters) {
			result = append(result, book)
		}
	}

	total := int64(len(result))
	offset := (filters.Page - 1) * filters.Limit
	if offset >= len(result) {
		return []entities.Book{}, total, nil
	}
	end := offset + filters.Limit
	if end > len(result) {
		end = len(result)
	}
	page := make([]entities.Book, end-offset)
	copy(page, result[offset:end])
	return page, total, nil
}

func (s *BookStore) GetByID(id int64) (*entities.Book, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if err := s.file.load(); err != nil {
		return nil, err
	}
	for i := range s.file.doc.Books {
		if s.file.doc.Books[i].ID == id {
			book := s.file.doc.Books[i]
			return &book, nil
		}
	}
	return nil, store.ErrNotFound
}

// Create assigns the next id and appends the record. Genres come from
// input.Genres; ids are not resolvable at this layer.
func (s *BookStore) Create(input store.BookInput) (*entities.Book, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if err := s.file.load(); err != nil {
		return nil, err
	}

	book := entities.Book{
		ID:          s.file.nextID(),
		Title:       input.Title,
		Author:      input.Author,
		Year:        input.Year,
		Publisher:   input.Publisher,
		Cover:       input.Cover,
		Description: input.Description,
		Genres:      dedupe(input.Genres),
		CreatedAt:   time.Now(),
	}
	s.file.doc.Books = append(s.file.doc.Books, book)
	if err := s.file.save(); err != nil {
		return nil, err
	}
	return &book, nil
}

// Update replaces every mutable field, keeping id and creation time.
func (s *BookStore) Update(id int64, input store.BookInput) (*entities.Book, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if err := s.file.load(); err != nil {
		return nil, err
	}
	for i := range s.file.doc.Books {
		if s.file.doc.Books[i].ID != id {
			continue
		}
		book := entities.Book{
			ID:          id,
			Title:       input.Title,
			Author:      input.Author,
			Year:        input.Year,
			Publisher:   input.Publisher,
			Cover:       input.Cover,
			Description: input.Description,
			Genres:      dedupe(input.Genres),
			CreatedAt:   s.file.doc.Books[i].CreatedAt,
		}
		s.file.doc.Books[i] = book
		if err := s.file.save(); err != nil {
			return nil, err
		}
		return &book, nil
	}
	return nil, store.ErrNotFound
}

// Patch merges only the fields present in the patch.
func (s *BookStore) Patch(id int64, patch store.BookPatch) (*entities.Book, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if err := s.file.load(); err != nil {
		return nil, err
	}
	for i := range s.file.doc.Books {
		if s.file.doc.Books[i].ID != id {
			continue
		}
		book := &s.file.doc.Books[i]
		if patch.Title != nil {
			book.Title = *patch.Title
		}
		if patch.Author != nil {
			book.Author = *patch.Author
		}
		if patch.Year != nil {
			book.Year = *patch.Year
		}
		if patch.Publisher != nil {
			book.Publisher = *patch.Publisher
		}
		if patch.Cover != nil {
			book.Cover = *patch.Cover
		}
		if patch.Description != nil {
			book.Description = *patch.Description
		}
		if err := s.file.save(); err != nil {
			return nil, err
		}
		out := *book
		return &out, nil
	}
	return nil, store.ErrNotFound
}

// Delete removes the book and cascades the favorites referencing it;
// the document has no foreign-key engine to do that for us.
func (s *BookStore) Delete(id int64) (bool, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if err := s.file.load(); err != nil {
		return false, err
	}
	idx := -1
	for i := range s.file.doc.Books {
		if s.file.doc.Books[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}
	s.file.doc.Books = append(s.file.doc.Books[:idx], s.file.doc.Books[idx+1:]...)

	kept := s.file.doc.Favorites[:0]
	for _, fav := range s.file.doc.Favorites {
		if fav.BookID != id {
			kept = append(kept, fav)
		}
	}
	s.file.doc.Favorites = kept

	if err := s.file.save(); err != nil {
		return false, err
	}
	return true, nil
}

// AddFavorite reports false when the pair already exists.
func (s *BookStore) AddFavorite(userID, bookID int64) (bool, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if err := s.file.load(); err != nil {
		return false, err
	}
	for _, fav := range s.file.doc.Favorites {
		if fav.UserID == userID && fav.BookID == bookID {
			return false, nil
		}
	}
	s.file.doc.Favorites = append(s.file.doc.Favorites, entities.Favorite{UserID: userID, BookID: bookID})
	if err := s.file.save(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *BookStore) RemoveFavorite(userID, bookID int64) (bool, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if err := s.file.load(); err != nil {
		return false, err
	}
	before := len(s.file.doc.Favorites)
	kept := s.file.doc.Favorites[:0]
	for _, fav := range s.file.doc.Favorites {
		if !(fav.UserID == userID && fav.BookID == bookID) {
			kept = append(kept, fav)
		}
	}
	s.file.doc.Favorites = kept
	if len(kept) == before {
		return false, nil
	}
	if err := s.file.save(); err != nil {
		return false, err
	}
	return true, nil
}

// FavoritesByUser yields bare book ids; the service layer resolves them
// into summaries.
func (s *BookStore) FavoritesByUser(userID int64) (store.FavoriteListing, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if err := s.file.load(); err != nil {
		return store.FavoriteListing{}, err
	}
	var ids []int64
	for _, fav := range s.file.doc.Favorites {
		if fav.UserID == userID {
			ids = append(ids, fav.BookID)
		}
	}
	return store.FavoriteListing{BookIDs: ids}, nil
}

func (s *BookStore) CountFavorites() (int64, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if err := s.file.load(); err != nil {
		return 0, err
	}
	return int64(len(s.file.doc.Favorites)), nil
}

// UniqueGenres collects the genre names actually in use, case-sensitive
// as stored, ascending.
func (s *BookStore) UniqueGenres() ([]string, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if err := s.file.load(); err != nil {
		return nil, err
	}
	used := make(map[string]struct{})
	for _, book := range s.file.doc.Books {
		for _, g := range book.Genres {
			used[g] = struct{}{}
		}
	}
	names := make([]string, 0, len(used))
	for g := range used {
		names = append(names, g)
	}
	sort.Strings(names)
	return names, nil
}

// dedupe removes repeated names while preserving first-seen order.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

var _ store.BookStore = (*BookStore)(nil)
