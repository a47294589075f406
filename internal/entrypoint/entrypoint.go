// Package entrypoint wires the application together and runs the HTTP
// server with graceful shutdown.
package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"libroteca/internal/auth"
	"libroteca/internal/config"
	http_controllers "libroteca/internal/http"
	"libroteca/internal/scheduler"
	"libroteca/internal/services"
	"libroteca/internal/storage/providers/localdisk"
	"libroteca/internal/store/factory"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then drains within
// the configured shutdown timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run builds every collaborator from config and serves the API.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Libroteca v%s", version)

	if cfg.Auth.JWTSecret == "secret" {
		log.Printf("WARNING: JWT_SECRET is the development default. Set it before exposing the server.")
	}

	stores, err := factory.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Printf("Error closing storage: %v", err)
		}
	}()

	uploader, err := localdisk.NewClient(cfg.Uploads.Dir, cfg.Uploads.BaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize uploads storage: %v", err)
	}

	secret := []byte(cfg.Auth.JWTSecret)
	bookService := services.NewBookService(stores.Books, stores.Catalog, uploader)
	userService := services.NewUserService(stores.Users, cfg.Auth.BcryptCost)
	authService := services.NewAuthService(stores.Auth, secret, cfg.Auth.TokenExpiry, cfg.Auth.BcryptCost)
	authMiddleware := auth.NewMiddleware(secret, stores.Auth)

	purgeScheduler := scheduler.NewBlacklistPurgeScheduler(authService, cfg.Auth.PurgeSchedule)
	if err := purgeScheduler.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start blacklist purge scheduler: %v", err)
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		BookService:    bookService,
		UserService:    userService,
		AuthService:    authService,
		AuthMiddleware: authMiddleware,
		DB:             stores.DB,
		StorageMode:    string(cfg.Storage.Mode),
		Version:        version,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		UploadsDir:     cfg.Uploads.Dir,
		UploadsBaseURL: cfg.Uploads.BaseURL,
	})

	onShutdown := func(ctx context.Context) {
		purgeScheduler.Stop()
	}

	Serve(router, cfg, onShutdown)
}
