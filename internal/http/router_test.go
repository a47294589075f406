package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libroteca/internal/auth"
	"libroteca/internal/genres"
	"libroteca/internal/services"
	"libroteca/internal/storage/providers/localdisk"
	"libroteca/internal/store/filestore"
)

var testSecret = []byte("test-secret")

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "genres.json")
	require.NoError(t, genres.WriteDefault(catalogPath))
	catalog := genres.NewCatalog(catalogPath)

	bookStore := filestore.NewBookStore(filepath.Join(dir, "books.json"))
	userStore, authStore := filestore.NewStores(filepath.Join(dir, "users.json"), 2*time.Hour)

	uploader, err := localdisk.NewClient(filepath.Join(dir, "uploads"), "/media")
	require.NoError(t, err)

	return NewRouter(RouterConfig{
		BookService:    services.NewBookService(bookStore, catalog, uploader),
		UserService:    services.NewUserService(userStore, 4),
		AuthService:    services.NewAuthService(authStore, testSecret, 2*time.Hour, 4),
		AuthMiddleware: auth.NewMiddleware(testSecret, authStore),
		StorageMode:    "local",
		Version:        "test",
		AllowedOrigins: []string{"http://localhost:5173"},
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, token string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var envelope Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	}
	return w, envelope
}

func registerAndLogin(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w, _ := doJSON(t, router, http.MethodPost, "/api/auth/register", gin.H{
		"username": "maria",
		"email":    "maria@example.com",
		"password": "hunter22",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w, envelope := doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "maria@example.com",
		"password": "hunter22",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	token, ok := data["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func createBookMultipart(t *testing.T, router *gin.Engine, token, title string, genreIDs string) Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", title))
	require.NoError(t, mw.WriteField("author", "Cervantes"))
	require.NoError(t, mw.WriteField("year", "1605"))
	require.NoError(t, mw.WriteField("publisher", "Francisco de Robles"))
	require.NoError(t, mw.WriteField("description", "Andanzas de un hidalgo"))
	require.NoError(t, mw.WriteField("genreIds", genreIDs))
	fw, err := mw.CreateFormFile("cover", "cover.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/books", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var envelope Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestHealthEndpoint(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy"`)
	assert.Contains(t, w.Body.String(), `"local"`)
}

func TestWelcomeEndpoint(t *testing.T) {
	router := setupRouter(t)

	w, envelope := doJSON(t, router, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", envelope.Status)
}

func TestAuthFlow(t *testing.T) {
	router := setupRouter(t)
	token := registerAndLogin(t, router)

	t.Run("register duplicate email conflicts", func(t *testing.T) {
		w, envelope := doJSON(t, router, http.MethodPost, "/api/auth/register", gin.H{
			"username": "maria",
			"email":    "maria@example.com",
			"password": "hunter22",
		}, "")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "error", envelope.Status)
		require.NotEmpty(t, envelope.Errors)
	})

	t.Run("login wrong password is unauthorized", func(t *testing.T) {
		w, _ := doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
			"email":    "maria@example.com",
			"password": "wrong",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		w, _ := doJSON(t, router, http.MethodPost, "/api/auth/logout", nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		// The revoked token no longer opens protected routes even
		// though its signed validity window has not ended.
		w, envelope := doJSON(t, router, http.MethodPost, "/api/books/favorites", gin.H{"userId": 1, "bookId": 1}, token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		require.NotEmpty(t, envelope.Errors)
		assert.Contains(t, envelope.Errors[0].Message, "revoked")
	})
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := setupRouter(t)

	w, _ := doJSON(t, router, http.MethodPost, "/api/books/favorites", gin.H{"userId": 1, "bookId": 1}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, router, http.MethodDelete, "/api/books/1", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBookLifecycleOverHTTP(t *testing.T) {
	router := setupRouter(t)
	token := registerAndLogin(t, router)

	envelope := createBookMultipart(t, router, token, "El Quijote", "1,3")
	book, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), book["id"])
	assert.ElementsMatch(t, []any{"Drama", "Comedy"}, book["genres"])
	assert.Contains(t, book["cover"], "/media/")

	t.Run("list carries data and total", func(t *testing.T) {
		w, envelope := doJSON(t, router, http.MethodGet, "/api/books?title=quijote", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, envelope.Total)
		assert.Equal(t, int64(1), *envelope.Total)
	})

	t.Run("get by id", func(t *testing.T) {
		w, envelope := doJSON(t, router, http.MethodGet, "/api/books/1", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		got, ok := envelope.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "El Quijote", got["title"])
	})

	t.Run("missing book is 404", func(t *testing.T) {
		w, _ := doJSON(t, router, http.MethodGet, "/api/books/42", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("patch changes one field", func(t *testing.T) {
		w, envelope := doJSON(t, router, http.MethodPatch, "/api/books/1", gin.H{"year": 1615}, token)
		require.Equal(t, http.StatusOK, w.Code)
		got, ok := envelope.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(1615), got["year"])
		assert.Equal(t, "El Quijote", got["title"])
	})

	t.Run("genres endpoint lists used names", func(t *testing.T) {
		w, envelope := doJSON(t, router, http.MethodGet, "/api/books/genres", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.ElementsMatch(t, []any{"Comedy", "Drama"}, envelope.Data)
	})

	t.Run("favorites flow", func(t *testing.T) {
		w, _ := doJSON(t, router, http.MethodPost, "/api/books/favorites", gin.H{"userId": 1, "bookId": 1}, token)
		require.Equal(t, http.StatusCreated, w.Code)

		// Adding the same pair again conflicts instead of duplicating.
		w, _ = doJSON(t, router, http.MethodPost, "/api/books/favorites", gin.H{"userId": 1, "bookId": 1}, token)
		assert.Equal(t, http.StatusConflict, w.Code)

		w, envelope := doJSON(t, router, http.MethodGet, "/api/books/favorites/count", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, envelope.Total)
		assert.Equal(t, int64(1), *envelope.Total)

		w, envelope = doJSON(t, router, http.MethodGet, "/api/books/favorites/1", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		favorites, ok := envelope.Data.([]any)
		require.True(t, ok)
		require.Len(t, favorites, 1)

		w, _ = doJSON(t, router, http.MethodDelete, "/api/books/favorites", gin.H{"userId": 1, "bookId": 1}, token)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("delete removes the book", func(t *testing.T) {
		w, _ := doJSON(t, router, http.MethodDelete, "/api/books/1", nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		w, _ = doJSON(t, router, http.MethodGet, "/api/books/1", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBookCreateWithoutCoverFails(t *testing.T) {
	router := setupRouter(t)
	token := registerAndLogin(t, router)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Sin portada"))
	require.NoError(t, mw.WriteField("author", "Nadie"))
	require.NoError(t, mw.WriteField("year", "2000"))
	require.NoError(t, mw.WriteField("publisher", "X"))
	require.NoError(t, mw.WriteField("description", "Y"))
	require.NoError(t, mw.WriteField("genreIds", "1"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/books", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUserManagementRequiresAdmin(t *testing.T) {
	router := setupRouter(t)
	token := registerAndLogin(t, router)

	// Public signups carry the "user" role; mutating user routes are
	// gated to admins.
	w, _ := doJSON(t, router, http.MethodPost, "/api/users", gin.H{
		"username": "other",
		"email":    "other@example.com",
		"password": "password",
	}, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Read-only user routes stay open.
	w, envelope := doJSON(t, router, http.MethodGet, "/api/users/count", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, envelope.Total)
	assert.Equal(t, int64(1), *envelope.Total)
}

func TestCORSPreflight(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/books", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	t.Run("unknown origin gets no allow header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/books", nil)
		req.Header.Set("Origin", "http://evil.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestInvalidIDParam(t *testing.T) {
	router := setupRouter(t)

	w, envelope := doJSON(t, router, http.MethodGet, "/api/books/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotEmpty(t, envelope.Errors)
	assert.Equal(t, fmt.Sprintf("invalid %s", "id"), envelope.Errors[0].Message)
}
