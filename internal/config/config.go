package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr              string
	DBPath            string
	LogLevel          string
	LogFormat         string
	ImportWorkerCount int
	ImportQueueSize   int
	DueLimit          int
	MaxDeckBytes      int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:              envOr("ADDR", ":8080"),
		DBPath:            envOr("DB_PATH", "file:conceptpulse.db"),
		LogLevel:          envOr("LOG_LEVEL", "INFO"),
		LogFormat:         envOr("LOG_FORMAT", "text"),
		ImportWorkerCount: envIntOr("IMPORT_WORKER_COUNT", 2),
		ImportQueueSize:   envIntOr("IMPORT_QUEUE_SIZE", 16),
		DueLimit:          envIntOr("DUE_LIMIT", 100),
		MaxDeckBytes:      envIntOr("MAX_DECK_BYTES", 4<<20),
	}
}

// Validate checks that the configuration can be used to start the server.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.ImportWorkerCount < 1 || c.ImportWorkerCount > 32 {
		return fmt.Errorf("IMPORT_WORKER_COUNT must be between 1 and 32, got %d", c.ImportWorkerCount)
	}
	if c.ImportQueueSize < 1 {
		return fmt.Errorf("IMPORT_QUEUE_SIZE must be positive, got %d", c.ImportQueueSize)
	}
	if c.DueLimit < 1 {
		return fmt.Errorf("DUE_LIMIT must be positive, got %d", c.DueLimit)
	}
	if c.MaxDeckBytes < 1024 {
		return fmt.Errorf("MAX_DECK_BYTES must be at least 1024, got %d", c.MaxDeckBytes)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
