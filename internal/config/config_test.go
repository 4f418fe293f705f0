package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukamv/studysuite/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:              ":8080",
		DBPath:            "test.db",
		SupabaseURL:       "https://example.supabase.co",
		SupabaseAnonKey:   "anon-key",
		QuestionsCSV:      "data/questions.csv",
		LibraryDir:        "data/library",
		LogLevel:          "INFO",
		ScanWorkerCount:   2,
		ScanQueueSize:     32,
		RemoteTimeoutSecs: 15,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	err := validConfig().Validate()
	assert.NoError(t, err)
}

func TestValidate_NoRemoteStoreConfigured(t *testing.T) {
	// The app still runs without a remote store; progress degrades to local-only.
	cfg := validConfig()
	cfg.SupabaseURL = ""
	cfg.SupabaseAnonKey = ""

	err := cfg.Validate()
	assert.NoError(t, err)
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
}

func TestValidate_EmptyDBPath(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PATH cannot be empty")
}

func TestValidate_SupabaseURLWithoutKey(t *testing.T) {
	cfg := validConfig()
	cfg.SupabaseAnonKey = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_ANON_KEY")
}

func TestValidate_MalformedSupabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.SupabaseURL = "example.supabase.co"

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_URL")
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantErr bool
	}{
		{name: "invalid level", level: "INVALID", wantErr: true},
		{name: "empty level", level: "", wantErr: true},
		{name: "lowercase valid level", level: "debug", wantErr: false},
		{name: "warning alias", level: "WARNING", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.LogLevel = tt.level

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "LOG_LEVEL")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_InvalidWorkerSettings(t *testing.T) {
	tests := []struct {
		name          string
		workers       int
		queue         int
		expectedError string
	}{
		{name: "zero workers", workers: 0, queue: 32, expectedError: "SCAN_WORKER_COUNT"},
		{name: "negative workers", workers: -1, queue: 32, expectedError: "SCAN_WORKER_COUNT"},
		{name: "zero queue", workers: 2, queue: 0, expectedError: "SCAN_QUEUE_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.ScanWorkerCount = tt.workers
			cfg.ScanQueueSize = tt.queue

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := config.Config{
		Addr:              "",
		DBPath:            "",
		LogLevel:          "INVALID",
		ScanWorkerCount:   0,
		ScanQueueSize:     0,
		RemoteTimeoutSecs: 0,
	}

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "ADDR cannot be empty")
	assert.Contains(t, errStr, "DB_PATH cannot be empty")
	assert.Contains(t, errStr, "LOG_LEVEL")
	assert.Contains(t, errStr, "SCAN_WORKER_COUNT")
	assert.Contains(t, errStr, "SCAN_QUEUE_SIZE")
	assert.Contains(t, errStr, "REMOTE_TIMEOUT_SECONDS")
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DB_PATH", "custom.db")
	t.Setenv("SUPABASE_URL", "https://proj.supabase.co")
	t.Setenv("REMOTE_TIMEOUT_SECONDS", "5")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.Equal(t, "https://proj.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, 5, cfg.RemoteTimeoutSecs)
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ADDR", "DB_PATH", "LOG_LEVEL", "SCAN_WORKER_COUNT"} {
		old, had := os.LookupEnv(key)
		os.Unsetenv(key)
		if had {
			defer os.Setenv(key, old)
		}
	}

	cfg := config.Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "file:studysuite.db", cfg.DBPath)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, 2, cfg.ScanWorkerCount)
}
