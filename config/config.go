package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendFirestore = "firestore"
	BackendRedis     = "redis"
	BackendPostgres  = "postgres"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Firebase FirebaseConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Admin    AdminConfig
	Gemini   GeminiConfig
	App      AppConfig
}

type ServerConfig struct {
	Port      string
	StaticDir string
	// AllowedOrigins limits cross-origin reads of /api/v1. Empty allows all.
	AllowedOrigins []string
}

type StoreConfig struct {
	Backend string
}

// FirebaseConfig mirrors the web app configuration block of a Firebase
// project plus the optional service account used by the Admin SDK.
type FirebaseConfig struct {
	APIKey            string
	AuthDomain        string
	ProjectID         string
	StorageBucket     string
	MessagingSenderID string
	AppID             string
	CredentialsPath   string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DatabaseConfig struct {
	DSN string
}

type AdminConfig struct {
	Email        string
	PasswordHash string
}

type GeminiConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	StepDelay time.Duration
}

type AppConfig struct {
	ServiceName string
	Environment string
	LogLevel    string
	Version     string
}

// Load reads the optional env file and then the process environment.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(envFile); err != nil {
		slog.Debug("no env file found, using environment variables", "path", envFile)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			StaticDir:      getEnv("STATIC_DIR", ""),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", BackendFirestore),
		},
		Firebase: FirebaseConfig{
			APIKey:            getEnv("FIREBASE_API_KEY", ""),
			AuthDomain:        getEnv("FIREBASE_AUTH_DOMAIN", ""),
			ProjectID:         getEnv("FIREBASE_PROJECT_ID", ""),
			StorageBucket:     getEnv("FIREBASE_STORAGE_BUCKET", ""),
			MessagingSenderID: getEnv("FIREBASE_MESSAGING_SENDER_ID", ""),
			AppID:             getEnv("FIREBASE_APP_ID", ""),
			CredentialsPath:   getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			DSN: getEnv("DB_DSN", ""),
		},
		Admin: AdminConfig{
			Email:        getEnv("ADMIN_EMAIL", ""),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Gemini: GeminiConfig{
			APIKey:    getEnv("GEMINI_API_KEY", ""),
			Model:     getEnv("GEMINI_MODEL", "gemini-3-pro-preview"),
			BaseURL:   getEnv("GEMINI_BASE_URL", ""),
			StepDelay: getEnvAsDuration("SCAN_STEP_DELAY", 800*time.Millisecond),
		},
		App: AppConfig{
			ServiceName: getEnv("SERVICE_NAME", "studio"),
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Store.Backend {
	case BackendFirestore, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("STORE_BACKEND must be one of %s, %s, %s (got %q)",
			BackendFirestore, BackendRedis, BackendPostgres, c.Store.Backend)
	}

	if c.Gemini.StepDelay < 0 {
		return fmt.Errorf("SCAN_STEP_DELAY must not be negative")
	}

	return nil
}

// StoreConfigured reports whether the primary key of the selected backend
// is present. A missing key is not an error: the service runs on defaults.
func (c *Config) StoreConfigured() bool {
	switch c.Store.Backend {
	case BackendFirestore:
		return c.Firebase.APIKey != ""
	case BackendRedis:
		return c.Redis.Addr != ""
	case BackendPostgres:
		return c.Database.DSN != ""
	}
	return false
}

// StaticAdminConfigured reports whether a local admin account is set up.
func (c *Config) StaticAdminConfigured() bool {
	return c.Admin.Email != "" && c.Admin.PasswordHash != ""
}

type Diagnostic struct {
	Key     string
	Present bool
	Desc    string
}

// Diagnostics lists the environment values the console reports on.
func (c *Config) Diagnostics() []Diagnostic {
	return []Diagnostic{
		{Key: "STORE_BACKEND", Present: true, Desc: "Store backend: " + c.Store.Backend},
		{Key: "FIREBASE_API_KEY", Present: c.Firebase.APIKey != "", Desc: "Primary Database Key"},
		{Key: "FIREBASE_PROJECT_ID", Present: c.Firebase.ProjectID != "", Desc: "Project Identity"},
		{Key: "FIREBASE_APP_ID", Present: c.Firebase.AppID != "", Desc: "App Registration"},
		{Key: "FIREBASE_CREDENTIALS_PATH", Present: c.Firebase.CredentialsPath != "", Desc: "Admin Credentials"},
		{Key: "REDIS_ADDR", Present: c.Redis.Addr != "", Desc: "Redis Store"},
		{Key: "DB_DSN", Present: c.Database.DSN != "", Desc: "Postgres Store"},
		{Key: "ADMIN_EMAIL", Present: c.StaticAdminConfigured(), Desc: "Local Admin Account"},
		{Key: "GEMINI_API_KEY", Present: c.Gemini.APIKey != "", Desc: "Intelligence Engine (Gemini)"},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		slog.Warn("invalid integer, using default", "key", key, "default", defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		slog.Warn("invalid duration, using default", "key", key, "default", defaultValue)
		return defaultValue
	}

	return value
}
