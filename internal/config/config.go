package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type StorageMode string

const (
	StorageModeLocal    StorageMode = "local"    // JSON documents on disk
	StorageModeDatabase StorageMode = "database" // relational backend
)

type (
	Config struct {
		HTTP
		Storage
		Auth
		Uploads
		CORS
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Storage struct {
		Mode         StorageMode
		DatabasePath string // relational backend
		DataDir      string // local backend JSON documents
	}
	Auth struct {
		JWTSecret          string
		TokenExpiry        time.Duration // signed token lifetime
		BlacklistRetention time.Duration // how long revoked tokens are kept
		PurgeSchedule      string        // cron format: "0 * * * *" = hourly
		BcryptCost         int
	}
	Uploads struct {
		Dir     string // where the local blob provider writes files
		BaseURL string // public prefix the provider prepends to object keys
	}
	CORS struct {
		AllowedOrigins []string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 3004)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("mode", "local")
	v.SetDefault("database_path", "./libroteca.db")
	v.SetDefault("data_dir", "./data")

	// Auth defaults
	v.SetDefault("jwt_secret", "secret")
	v.SetDefault("auth_token_expiry", "2h")
	v.SetDefault("auth_blacklist_retention", "2h")
	v.SetDefault("auth_purge_schedule", "0 * * * *") // hourly at :00
	v.SetDefault("auth_bcrypt_cost", 10)

	// Upload defaults
	v.SetDefault("uploads_dir", "./uploads")
	v.SetDefault("uploads_base_url", "/media")

	v.SetDefault("frontend_url", "http://localhost:5173")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Storage: Storage{
			Mode:         StorageMode(v.GetString("MODE")),
			DatabasePath: v.GetString("DATABASE_PATH"),
			DataDir:      v.GetString("DATA_DIR"),
		},
		Auth: Auth{
			JWTSecret:          v.GetString("JWT_SECRET"),
			TokenExpiry:        v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BlacklistRetention: v.GetDuration("AUTH_BLACKLIST_RETENTION"),
			PurgeSchedule:      v.GetString("AUTH_PURGE_SCHEDULE"),
			BcryptCost:         v.GetInt("AUTH_BCRYPT_COST"),
		},
		Uploads: Uploads{
			Dir:     v.GetString("UPLOADS_DIR"),
			BaseURL: v.GetString("UPLOADS_BASE_URL"),
		},
		CORS: CORS{
			AllowedOrigins: strings.Split(v.GetString("FRONTEND_URL"), ","),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
