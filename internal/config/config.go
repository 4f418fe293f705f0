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
	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string
	QuestionsCSV      string
	FlashcardsDir     string
	LibraryDir        string
	MindmapZip        string
	MindmapCacheDir   string
	LogLevel          string
	ScanWorkerCount   int
	ScanQueueSize     int
	RemoteTimeoutSecs int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:              envOr("ADDR", ":8080"),
		DBPath:            envOr("DB_PATH", "file:studysuite.db"),
		SupabaseURL:       envOr("SUPABASE_URL", ""),
		SupabaseAnonKey:   envOr("SUPABASE_ANON_KEY", ""),
		SupabaseJWTSecret: envOr("SUPABASE_JWT_SECRET", ""),
		QuestionsCSV:      envOr("QUESTIONS_CSV", "data/questions.csv"),
		FlashcardsDir:     envOr("FLASHCARDS_DIR", "data/flashcards"),
		LibraryDir:        envOr("LIBRARY_DIR", "data/library"),
		MindmapZip:        envOr("MINDMAP_ZIP", "data/mindmaps.zip"),
		MindmapCacheDir:   envOr("MINDMAP_CACHE_DIR", ".mindmaps"),
		LogLevel:          envOr("LOG_LEVEL", "INFO"),
		ScanWorkerCount:   envIntOr("SCAN_WORKER_COUNT", 2),
		ScanQueueSize:     envIntOr("SCAN_QUEUE_SIZE", 32),
		RemoteTimeoutSecs: envIntOr("REMOTE_TIMEOUT_SECONDS", 15),
	}
}

// Validate checks the configuration for values the server cannot run with.
// All problems are reported in one pass.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	if c.SupabaseURL != "" && !strings.HasPrefix(c.SupabaseURL, "http") {
		problems = append(problems, "SUPABASE_URL must be an http(s) URL")
	}
	if c.SupabaseURL != "" && c.SupabaseAnonKey == "" {
		problems = append(problems, "SUPABASE_ANON_KEY is required when SUPABASE_URL is set")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}
	if c.ScanWorkerCount <= 0 {
		problems = append(problems, "SCAN_WORKER_COUNT must be positive")
	}
	if c.ScanQueueSize <= 0 {
		problems = append(problems, "SCAN_QUEUE_SIZE must be positive")
	}
	if c.RemoteTimeoutSecs <= 0 {
		problems = append(problems, "REMOTE_TIMEOUT_SECONDS must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
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
