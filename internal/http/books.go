package http

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"libroteca/internal/services"
	"libroteca/internal/store"
)

// maxCoverBytes caps uploaded cover images at 5 MiB.
const maxCoverBytes = 5 << 20

// BooksController serves the catalog and favorites endpoints.
type BooksController struct {
	books *services.BookService
}

func NewBooksController(books *services.BookService) *BooksController {
	return &BooksController{books: books}
}

// List handles GET /api/books with filters and pagination.
func (ctl *BooksController) List(c *gin.Context) {
	filters := store.Filters{
		Title:     c.Query("title"),
		Author:    c.Query("author"),
		Publisher: c.Query("publisher"),
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			respondErr(c, http.StatusBadRequest, "invalid year")
			return
		}
		filters.Year = &year
	}
	for _, raw := range c.QueryArray("genre") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if id, err := strconv.ParseInt(part, 10, 64); err == nil {
				filters.GenreIDs = append(filters.GenreIDs, id)
			} else {
				filters.GenreNames = append(filters.GenreNames, part)
			}
		}
	}
	filters.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	filters.Normalize()

	books, total, err := ctl.books.List(filters)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondPage(c, books, total)
}

// GetByID handles GET /api/books/:id.
func (ctl *BooksController) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	book, err := ctl.books.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, book)
}

// Create handles POST /api/books (multipart: fields plus a required
// cover image).
func (ctl *BooksController) Create(c *gin.Context) {
	input, ok := bindBookForm(c)
	if !ok {
		return
	}
	cover, ok := bindCoverFile(c)
	if !ok {
		return
	}

	book, err := ctl.books.Create(c.Request.Context(), input, cover)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, book)
}

// Update handles PUT /api/books/:id (multipart; cover optional, the
// stored one is kept when absent).
func (ctl *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	input, ok := bindBookForm(c)
	if !ok {
		return
	}
	cover, ok := bindCoverFile(c)
	if !ok {
		return
	}

	book, err := ctl.books.Update(c.Request.Context(), id, input, cover)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, book)
}

type bookPatchRequest struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Year        *int    `json:"year"`
	Publisher   *string `json:"publisher"`
	Cover       *string `json:"cover"`
	Description *string `json:"description"`
}

// Patch handles PATCH /api/books/:id with a partial JSON body.
func (ctl *BooksController) Patch(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req bookPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, "invalid request body")
		return
	}

	book, err := ctl.books.Patch(id, store.BookPatch{
		Title:       req.Title,
		Author:      req.Author,
		Year:        req.Year,
		Publisher:   req.Publisher,
		Cover:       req.Cover,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, book)
}

// Delete handles DELETE /api/books/:id.
func (ctl *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctl.books.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "book deleted")
}

// UniqueGenres handles GET /api/books/genres.
func (ctl *BooksController) UniqueGenres(c *gin.Context) {
	names, err := ctl.books.UniqueGenres()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, names)
}

type favoriteRequest struct {
	UserID int64 `json:"userId"`
	BookID int64 `json:"bookId"`
}

// AddFavorite handles POST /api/books/favorites.
func (ctl *BooksController) AddFavorite(c *gin.Context) {
	req, ok := bindFavorite(c)
	if !ok {
		return
	}
	if err := ctl.books.AddFavorite(req.UserID, req.BookID); err != nil {
		respondServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "book added to favorites")
}

// RemoveFavorite handles DELETE /api/books/favorites.
func (ctl *BooksController) RemoveFavorite(c *gin.Context) {
	req, ok := bindFavorite(c)
	if !ok {
		return
	}
	if err := ctl.books.RemoveFavorite(req.UserID, req.BookID); err != nil {
		respondServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "book removed from favorites")
}

// FavoritesByUser handles GET /api/books/favorites/:userId.
func (ctl *BooksController) FavoritesByUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	summaries, err := ctl.books.FavoritesByUser(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, summaries)
}

// CountFavorites handles GET /api/books/favorites/count.
func (ctl *BooksController) CountFavorites(c *gin.Context) {
	count, err := ctl.books.CountFavorites()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondPage(c, nil, count)
}

func bindFavorite(c *gin.Context) (favoriteRequest, bool) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID < 1 || req.BookID < 1 {
		respondErr(c, http.StatusBadRequest, "userId and bookId are required")
		return favoriteRequest{}, false
	}
	return req, true
}

// bindBookForm reads the multipart fields shared by create and update.
func bindBookForm(c *gin.Context) (services.BookInput, bool) {
	year, err := strconv.Atoi(c.DefaultPostForm("year", "0"))
	if err != nil || year < 0 {
		respondErr(c, http.StatusBadRequest, "invalid year")
		return services.BookInput{}, false
	}

	var genreIDs []int64
	for _, raw := range c.PostFormArray("genreIds") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id < 1 {
				respondErr(c, http.StatusBadRequest, "invalid genre id")
				return services.BookInput{}, false
			}
			genreIDs = append(genreIDs, id)
		}
	}

	return services.BookInput{
		Title:       c.PostForm("title"),
		Author:      c.PostForm("author"),
		Year:        year,
		Publisher:   c.PostForm("publisher"),
		Description: c.PostForm("description"),
		GenreIDs:    genreIDs,
	}, true
}

// bindCoverFile reads the optional cover upload. A missing file is not
// an error here; the service decides whether one is required.
func bindCoverFile(c *gin.Context) (*services.CoverUpload, bool) {
	header, err := c.FormFile("cover")
	if err != nil {
		return nil, true
	}
	if header.Size > maxCoverBytes {
		respondErr(c, http.StatusBadRequest, "cover image exceeds the size limit")
		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		respondErr(c, http.StatusBadRequest, "could not read cover image")
		return nil, false
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxCoverBytes+1))
	if err != nil || int64(len(content)) > maxCoverBytes {
		respondErr(c, http.StatusBadRequest, "could not read cover image")
		return nil, false
	}

	return &services.CoverUpload{
		Name:        header.Filename,
		Content:     content,
		ContentType: header.Header.Get("Content-Type"),
	}, true
}
