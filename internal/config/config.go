package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr          string
	DatabaseURL   string
	JWTSecret     string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	MigrationsDir string
	CORSOrigin    string
	// Redis - optional refresh token storage; Postgres fallback when empty
	RedisURL string
	// Meilisearch - optional site search
	MeiliURL       string
	MeiliMasterKey string
	// Media storage (S3-compatible); uploads disabled when endpoint empty
	MediaEndpoint  string
	MediaAccessKey string
	MediaSecretKey string
	MediaBucket    string
	MediaUseSSL    bool
	MediaPublicURL string
}

func Load() Config {
	// Optional .env file for local development; missing file is fine.
	_ = godotenv.Load()

	return Config{
		Addr:           getenv("API_ADDR", ":8686"),
		DatabaseURL:    getenv("DATABASE_URL", ""),
		JWTSecret:      getenv("FOLIO_JWT_SECRET", "folio-dev-secret"),
		AccessTTL:      time.Duration(getenvInt("FOLIO_ACCESS_TTL_SECONDS", 900)) * time.Second,
		RefreshTTL:     time.Duration(getenvInt("FOLIO_REFRESH_TTL_SECONDS", 2592000)) * time.Second,
		MigrationsDir:  getenv("FOLIO_MIGRATIONS_DIR", "./db/migrations"),
		CORSOrigin:     getenv("FOLIO_CORS_ORIGIN", "*"),
		RedisURL:       getenv("REDIS_URL", ""),
		MeiliURL:       getenv("MEILI_URL", ""),
		MeiliMasterKey: getenv("MEILI_MASTER_KEY", ""),
		MediaEndpoint:  getenv("MEDIA_ENDPOINT", ""),
		MediaAccessKey: getenv("MEDIA_ACCESS_KEY", ""),
		MediaSecretKey: getenv("MEDIA_SECRET_KEY", ""),
		MediaBucket:    getenv("MEDIA_BUCKET", "folio-media"),
		MediaUseSSL:    getenvBool("MEDIA_USE_SSL", true),
		MediaPublicURL: getenv("MEDIA_PUBLIC_URL", ""),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
