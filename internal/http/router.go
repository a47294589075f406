package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"libroteca/internal/auth"
	"libroteca/internal/services"
)

// RouterConfig receives all router dependencies, improving testability
// and keeping NewRouter's signature stable as the surface grows.
type RouterConfig struct {
	BookService *services.BookService
	UserService *services.UserService
	AuthService *services.AuthService

	AuthMiddleware *auth.Middleware

	// DB is non-nil only for the relational backend; the health
	// endpoint pings it when present.
	DB          *gorm.DB
	StorageMode string
	Version     string

	AllowedOrigins []string

	// UploadsDir is served statically under UploadsBaseURL so cover
	// URLs issued by the local-disk provider resolve.
	UploadsDir     string
	UploadsBaseURL string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(CORSMiddleware(cfg.AllowedOrigins))

	health := NewHealthController(cfg.DB, cfg.StorageMode, cfg.Version)
	authController := NewAuthController(cfg.AuthService)
	booksController := NewBooksController(cfg.BookService)
	usersController := NewUsersController(cfg.UserService)

	requireAuth := cfg.AuthMiddleware.RequireAuth()
	requireAdmin := cfg.AuthMiddleware.RequireAdmin()

	router.GET("/", func(c *gin.Context) {
		respondMessage(c, http.StatusOK, "libroteca API")
	})
	router.GET("/health", health.Status)

	if cfg.UploadsDir != "" && cfg.UploadsBaseURL != "" {
		router.Static(cfg.UploadsBaseURL, cfg.UploadsDir)
	}

	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/register", authController.Register)
		authGroup.POST("/login", authController.Login)
		authGroup.POST("/logout", authController.Logout)
	}

	books := router.Group("/api/books")
	{
		books.GET("", booksController.List)
		books.GET("/genres", booksController.UniqueGenres)
		books.GET("/favorites/count", booksController.CountFavorites)
		books.GET("/favorites/:userId", requireAuth, booksController.FavoritesByUser)
		books.POST("/favorites", requireAuth, booksController.AddFavorite)
		books.DELETE("/favorites", requireAuth, booksController.RemoveFavorite)
		books.GET("/:id", booksController.GetByID)
		books.POST("", requireAuth, booksController.Create)
		books.PUT("/:id", requireAuth, booksController.Update)
		books.PATCH("/:id", requireAuth, booksController.Patch)
		books.DELETE("/:id", requireAuth, booksController.Delete)
	}

	users := router.Group("/api/users")
	{
		users.GET("/count", usersController.Count)
		users.GET("", usersController.List)
		users.GET("/:id", usersController.GetByID)
		users.POST("", requireAuth, requireAdmin, usersController.Create)
		users.PUT("/:id", requireAuth, requireAdmin, usersController.Update)
		users.DELETE("/:id", requireAuth, requireAdmin, usersController.Delete)
	}

	return router
}
