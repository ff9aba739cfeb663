package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported chunk store backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMongo    = "mongodb"
)

// Config holds all configuration for the application.
type Config struct {
	AppName    string
	AppVersion string
	APIPort    string
	LogLevel   slog.Level
	LogFormat  string

	FilesDir             string
	FileAllowedTypes     []string
	FileMaxSizeMB        int
	FileDefaultChunkSize int // Bytes per read/write window when persisting uploads

	ChunkSize    int
	ChunkOverlap int

	StoreBackend  string
	DBPath        string
	PostgresURL   string
	MongoURI      string
	MongoDatabase string

	RedisURL string
	LockTTL  time.Duration
	LockWait time.Duration
}

// fileConfig mirrors Config for the optional YAML file named by CONFIG_FILE.
// Only non-empty values override the built-in defaults; environment variables
// still win over anything read from the file.
type fileConfig struct {
	AppName    string `yaml:"app_name"`
	AppVersion string `yaml:"app_version"`
	APIPort    string `yaml:"api_port"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
	Files      struct {
		Dir              string   `yaml:"dir"`
		AllowedTypes     []string `yaml:"allowed_types"`
		MaxSizeMB        int      `yaml:"max_size_mb"`
		DefaultChunkSize int      `yaml:"default_chunk_size"`
	} `yaml:"files"`
	Chunking struct {
		Size    int `yaml:"size"`
		Overlap int `yaml:"overlap"`
	} `yaml:"chunking"`
	Store struct {
		Backend       string `yaml:"backend"`
		DBPath        string `yaml:"db_path"`
		PostgresURL   string `yaml:"postgres_url"`
		MongoURI      string `yaml:"mongodb_uri"`
		MongoDatabase string `yaml:"mongodb_database"`
	} `yaml:"store"`
	Lock struct {
		RedisURL string `yaml:"redis_url"`
		TTL      string `yaml:"ttl"`
		Wait     string `yaml:"wait"`
	} `yaml:"lock"`
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or a parent, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	defaults := builtinDefaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fc, err := readFile(path)
		if err != nil {
			return nil, err
		}
		fc.applyTo(defaults)
	}

	return fromEnv(defaults)
}

// builtinDefaults returns the defaults used when neither the environment nor a
// config file provides a value.
func builtinDefaults() map[string]string {
	return map[string]string{
		"APP_NAME":                "docuchunk",
		"APP_VERSION":             "0.1.0",
		"API_PORT":                "5000",
		"LOG_LEVEL":               "info",
		"LOG_FORMAT":              "text",
		"FILES_DIR":               "./assets/files",
		"FILE_ALLOWED_TYPES":      "text/plain,application/pdf,text/markdown",
		"FILE_MAX_SIZE":           "10",
		"FILE_DEFAULT_CHUNK_SIZE": "512000",
		"CHUNK_SIZE":              "100",
		"CHUNK_OVERLAP":           "20",
		"STORE_BACKEND":           BackendSQLite,
		"DB_PATH":                 "./data/docuchunk.db",
		"POSTGRES_URL":            "",
		"MONGODB_URI":             "",
		"MONGODB_DATABASE":        "docuchunk",
		"REDIS_URL":               "",
		"LOCK_TTL":                "30s",
		"LOCK_WAIT":               "5s",
	}
}

func readFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

func (fc *fileConfig) applyTo(defaults map[string]string) {
	set := func(key, value string) {
		if value != "" {
			defaults[key] = value
		}
	}
	setInt := func(key string, value int) {
		if value != 0 {
			defaults[key] = strconv.Itoa(value)
		}
	}

	set("APP_NAME", fc.AppName)
	set("APP_VERSION", fc.AppVersion)
	set("API_PORT", fc.APIPort)
	set("LOG_LEVEL", fc.LogLevel)
	set("LOG_FORMAT", fc.LogFormat)
	set("FILES_DIR", fc.Files.Dir)
	if len(fc.Files.AllowedTypes) > 0 {
		defaults["FILE_ALLOWED_TYPES"] = strings.Join(fc.Files.AllowedTypes, ",")
	}
	setInt("FILE_MAX_SIZE", fc.Files.MaxSizeMB)
	setInt("FILE_DEFAULT_CHUNK_SIZE", fc.Files.DefaultChunkSize)
	setInt("CHUNK_SIZE", fc.Chunking.Size)
	setInt("CHUNK_OVERLAP", fc.Chunking.Overlap)
	set("STORE_BACKEND", fc.Store.Backend)
	set("DB_PATH", fc.Store.DBPath)
	set("POSTGRES_URL", fc.Store.PostgresURL)
	set("MONGODB_URI", fc.Store.MongoURI)
	set("MONGODB_DATABASE", fc.Store.MongoDatabase)
	set("REDIS_URL", fc.Lock.RedisURL)
	set("LOCK_TTL", fc.Lock.TTL)
	set("LOCK_WAIT", fc.Lock.Wait)
}

func fromEnv(defaults map[string]string) (*Config, error) {
	get := func(key string) string {
		return getEnv(key, defaults[key])
	}

	cfg := &Config{
		AppName:       get("APP_NAME"),
		AppVersion:    get("APP_VERSION"),
		APIPort:       get("API_PORT"),
		LogFormat:     strings.ToLower(get("LOG_FORMAT")),
		FilesDir:      get("FILES_DIR"),
		StoreBackend:  strings.ToLower(get("STORE_BACKEND")),
		DBPath:        get("DB_PATH"),
		PostgresURL:   get("POSTGRES_URL"),
		MongoURI:      get("MONGODB_URI"),
		MongoDatabase: get("MONGODB_DATABASE"),
		RedisURL:      get("REDIS_URL"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	allowed, err := parseList(get("FILE_ALLOWED_TYPES"))
	if err != nil {
		return nil, fmt.Errorf("FILE_ALLOWED_TYPES is invalid: %w", err)
	}
	if len(allowed) == 0 {
		return nil, fmt.Errorf("FILE_ALLOWED_TYPES must list at least one content type")
	}
	cfg.FileAllowedTypes = allowed

	ints := []struct {
		key string
		dst *int
	}{
		{"FILE_MAX_SIZE", &cfg.FileMaxSizeMB},
		{"FILE_DEFAULT_CHUNK_SIZE", &cfg.FileDefaultChunkSize},
		{"CHUNK_SIZE", &cfg.ChunkSize},
		{"CHUNK_OVERLAP", &cfg.ChunkOverlap},
	}
	for _, it := range ints {
		v, err := strconv.Atoi(get(it.key))
		if err != nil {
			return nil, fmt.Errorf("%s must be a valid integer: %w", it.key, err)
		}
		*it.dst = v
	}

	if cfg.FileMaxSizeMB <= 0 {
		return nil, fmt.Errorf("FILE_MAX_SIZE must be greater than 0")
	}
	if cfg.FileDefaultChunkSize <= 0 {
		return nil, fmt.Errorf("FILE_DEFAULT_CHUNK_SIZE must be greater than 0")
	}
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("CHUNK_SIZE must be greater than 0")
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE)")
	}

	if cfg.LockTTL, err = time.ParseDuration(get("LOCK_TTL")); err != nil {
		return nil, fmt.Errorf("LOCK_TTL must be a duration: %w", err)
	}
	if cfg.LockWait, err = time.ParseDuration(get("LOCK_WAIT")); err != nil {
		return nil, fmt.Errorf("LOCK_WAIT must be a duration: %w", err)
	}

	switch cfg.StoreBackend {
	case BackendSQLite:
		// Create the data directory for the database file if it doesn't exist
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	case BackendPostgres:
		if cfg.PostgresURL == "" {
			return nil, fmt.Errorf("POSTGRES_URL is required for the postgres backend")
		}
	case BackendMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGODB_URI is required for the mongodb backend")
		}
	default:
		return nil, fmt.Errorf("STORE_BACKEND %q is not supported", cfg.StoreBackend)
	}

	return cfg, nil
}

// MaxUploadBytes returns the upload ceiling in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.FileMaxSizeMB) * 1024 * 1024
}

// parseList accepts either a JSON array (["text/plain", "application/pdf"]) or
// a comma separated list.
func parseList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var items []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil, err
		}
	} else {
		items = strings.Split(raw, ",")
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	if len(out) == 0 && len(items) > 0 {
		return nil, errors.New("no non-empty entries")
	}
	return out, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
