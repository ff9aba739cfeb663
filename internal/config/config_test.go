package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

var envVars = []string{
	"CONFIG_FILE", "APP_NAME", "APP_VERSION", "API_PORT", "LOG_LEVEL", "LOG_FORMAT",
	"FILES_DIR", "FILE_ALLOWED_TYPES", "FILE_MAX_SIZE", "FILE_DEFAULT_CHUNK_SIZE",
	"CHUNK_SIZE", "CHUNK_OVERLAP", "STORE_BACKEND", "DB_PATH", "POSTGRES_URL",
	"MONGODB_URI", "MONGODB_DATABASE", "REDIS_URL", "LOCK_TTL", "LOCK_WAIT",
}

// isolate clears every config variable and moves into a temp directory without
// a .env file. t.Setenv restores the previous values when the test ends.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
	}

	tmpDir := t.TempDir()
	originalWd, _ := os.Getwd()
	_ = os.Chdir(tmpDir)
	t.Cleanup(func() {
		_ = os.Chdir(originalWd)
	})
	return tmpDir
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*Config) bool
	}{
		{
			name:     "defaults",
			setupEnv: func(t *testing.T) {},
			checkConfig: func(cfg *Config) bool {
				return cfg.APIPort == "5000" &&
					cfg.LogLevel == slog.LevelInfo &&
					cfg.LogFormat == "text" &&
					cfg.FileMaxSizeMB == 10 &&
					cfg.FileDefaultChunkSize == 512000 &&
					cfg.ChunkSize == 100 &&
					cfg.ChunkOverlap == 20 &&
					cfg.StoreBackend == BackendSQLite &&
					cfg.LockTTL == 30*time.Second &&
					cfg.LockWait == 5*time.Second &&
					slices.Equal(cfg.FileAllowedTypes, []string{"text/plain", "application/pdf", "text/markdown"})
			},
		},
		{
			name: "allowed types as JSON array",
			setupEnv: func(t *testing.T) {
				t.Setenv("FILE_ALLOWED_TYPES", `["text/plain", "application/pdf"]`)
			},
			checkConfig: func(cfg *Config) bool {
				return slices.Equal(cfg.FileAllowedTypes, []string{"text/plain", "application/pdf"})
			},
		},
		{
			name: "allowed types as comma list",
			setupEnv: func(t *testing.T) {
				t.Setenv("FILE_ALLOWED_TYPES", " text/plain , ,application/pdf")
			},
			checkConfig: func(cfg *Config) bool {
				return slices.Equal(cfg.FileAllowedTypes, []string{"text/plain", "application/pdf"})
			},
		},
		{
			name: "malformed JSON allowed types",
			setupEnv: func(t *testing.T) {
				t.Setenv("FILE_ALLOWED_TYPES", `["text/plain"`)
			},
			wantErr: true,
		},
		{
			name: "invalid FILE_MAX_SIZE",
			setupEnv: func(t *testing.T) {
				t.Setenv("FILE_MAX_SIZE", "big")
			},
			wantErr: true,
		},
		{
			name: "zero FILE_MAX_SIZE",
			setupEnv: func(t *testing.T) {
				t.Setenv("FILE_MAX_SIZE", "0")
			},
			wantErr: true,
		},
		{
			name: "overlap equal to chunk size",
			setupEnv: func(t *testing.T) {
				t.Setenv("CHUNK_SIZE", "50")
				t.Setenv("CHUNK_OVERLAP", "50")
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			setupEnv: func(t *testing.T) {
				t.Setenv("LOG_LEVEL", "loud")
			},
			wantErr: true,
		},
		{
			name: "invalid log format",
			setupEnv: func(t *testing.T) {
				t.Setenv("LOG_FORMAT", "xml")
			},
			wantErr: true,
		},
		{
			name: "postgres backend requires URL",
			setupEnv: func(t *testing.T) {
				t.Setenv("STORE_BACKEND", "postgres")
			},
			wantErr: true,
		},
		{
			name: "mongodb backend requires URI",
			setupEnv: func(t *testing.T) {
				t.Setenv("STORE_BACKEND", "mongodb")
			},
			wantErr: true,
		},
		{
			name: "mongodb backend configured",
			setupEnv: func(t *testing.T) {
				t.Setenv("STORE_BACKEND", "MongoDB")
				t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
			},
			checkConfig: func(cfg *Config) bool {
				return cfg.StoreBackend == BackendMongo && cfg.MongoDatabase == "docuchunk"
			},
		},
		{
			name: "unknown backend",
			setupEnv: func(t *testing.T) {
				t.Setenv("STORE_BACKEND", "cassandra")
			},
			wantErr: true,
		},
		{
			name: "invalid LOCK_WAIT",
			setupEnv: func(t *testing.T) {
				t.Setenv("LOCK_WAIT", "soon")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			tt.setupEnv(t)

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}

			if tt.checkConfig != nil && !tt.checkConfig(cfg) {
				t.Errorf("Load() config validation failed: %+v", cfg)
			}
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	tmpDir := isolate(t)

	path := filepath.Join(tmpDir, "config.yaml")
	content := `
app_name: from-file
files:
  allowed_types: ["text/plain"]
  max_size_mb: 3
chunking:
  size: 200
  overlap: 40
lock:
  wait: 2s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("CHUNK_OVERLAP", "10") // Environment wins over the file

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AppName != "from-file" {
		t.Errorf("AppName = %q, want from-file", cfg.AppName)
	}
	if cfg.FileMaxSizeMB != 3 {
		t.Errorf("FileMaxSizeMB = %d, want 3", cfg.FileMaxSizeMB)
	}
	if cfg.ChunkSize != 200 || cfg.ChunkOverlap != 10 {
		t.Errorf("chunking = %d/%d, want 200/10", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.LockWait != 2*time.Second {
		t.Errorf("LockWait = %v, want 2s", cfg.LockWait)
	}
	if !slices.Equal(cfg.FileAllowedTypes, []string{"text/plain"}) {
		t.Errorf("FileAllowedTypes = %v", cfg.FileAllowedTypes)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	tmpDir := isolate(t)
	t.Setenv("CONFIG_FILE", filepath.Join(tmpDir, "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for missing config file")
	}
}

func TestLoad_CreatesDataDirectory(t *testing.T) {
	tmpDir := isolate(t)
	dbPath := filepath.Join(tmpDir, "test", "db.db")
	t.Setenv("DB_PATH", dbPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
		t.Errorf("Load() should create data directory: %v", err)
	}
	if cfg.DBPath != dbPath {
		t.Errorf("Load() DBPath = %v, want %v", cfg.DBPath, dbPath)
	}
}

func TestConfig_MaxUploadBytes(t *testing.T) {
	cfg := &Config{FileMaxSizeMB: 5}
	if got := cfg.MaxUploadBytes(); got != 5*1048576 {
		t.Errorf("MaxUploadBytes() = %d, want %d", got, 5*1048576)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue string
		want         string
	}{
		{name: "env var set", value: "set-value", defaultValue: "default", want: "set-value"},
		{name: "empty env var uses default", value: "", defaultValue: "default", want: "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ENV_VAR", tt.value)
			got := getEnv("TEST_ENV_VAR", tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
