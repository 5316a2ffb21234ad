package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Типы хранилища.
const (
	StorageInMemory = "in-memory"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

// Config - настройки сервиса из окружения.
type Config struct {
	Port        string
	Storage     string
	DatabaseURL string
	SQLitePath  string
	DBDebug     bool
	SeedDemo    bool

	SessionSecret string
	CORSOrigins   []string
	TrustProxy    bool

	RedisAddr      string
	RedisPassword  string
	ChatRateLimit  int
	ChatRateWindow time.Duration

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
	MinIOPublicURL string
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Storage:        getEnv("STORAGE", StorageInMemory),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SQLitePath:     getEnv("SQLITE_PATH", "halal_restaurants.db"),
		SessionSecret:  getEnv("SESSION_SECRET", "dev-secret-key-change-in-production"),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		MinIOEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:    getEnv("MINIO_BUCKET", "fyp-media"),
		MinIOPublicURL: os.Getenv("MINIO_PUBLIC_URL"),
	}

	var err error
	if cfg.DBDebug, err = getBool("DB_DEBUG", false); err != nil {
		return nil, err
	}
	if cfg.SeedDemo, err = getBool("SEED_DEMO", true); err != nil {
		return nil, err
	}
	if cfg.MinIOUseSSL, err = getBool("MINIO_USE_SSL", false); err != nil {
		return nil, err
	}
	if cfg.TrustProxy, err = getBool("TRUST_PROXY", false); err != nil {
		return nil, err
	}
	if cfg.ChatRateLimit, err = getInt("CHAT_RATE_LIMIT", 20); err != nil {
		return nil, err
	}
	if cfg.ChatRateWindow, err = getDuration("CHAT_RATE_WINDOW", time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет согласованность настроек после применения флагов.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageInMemory, StorageSQLite:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set for postgres storage")
		}
	default:
		return fmt.Errorf("unknown storage type %q (in-memory, postgres or sqlite)", c.Storage)
	}
	return nil
}

// MediaEnabled сообщает, настроена ли загрузка медиа в MinIO.
func (c *Config) MediaEnabled() bool {
	return c.MinIOEndpoint != "" && c.MinIOAccessKey != "" && c.MinIOSecretKey != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	return b, nil
}

func getInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
