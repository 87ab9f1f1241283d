package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required
	AuthModeLocal AuthMode = "local" // Local user database with bearer tokens (default)
)

type DatabaseDriver string

const (
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"
	DatabaseDriverPostgres DatabaseDriver = "postgres"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Lookup
		Covers
		Tasks
		EnrichSync
	}

	HTTP struct {
		Port               int32
		Host               string
		CORSAllowedOrigins []string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver DatabaseDriver
		Path   string // SQLite file path
		DSN    string // PostgreSQL connection string
	}
	Auth struct {
		Mode        AuthMode
		JWTSecret   string
		TokenExpiry time.Duration
		BcryptCost  int

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Lookup struct {
		ISBNdbAPIKey       string
		ISBNdbBaseURL      string
		GoogleBooksBaseURL string
		CacheSize          int           // 0 means unbounded
		CacheTTL           time.Duration // 0 means entries never expire
		HTTPTimeout        time.Duration
		RequestsPerSecond  float64 // per provider, 0 disables limiting
	}
	Covers struct {
		Dir string
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	EnrichSync struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
)

// NewConfig reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables
// win over values from the file.
func NewConfig() *Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 3001)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	v.SetDefault("database_driver", string(DatabaseDriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")

	// Auth defaults
	v.SetDefault("auth_mode", string(AuthModeLocal))
	v.SetDefault("jwt_secret", "")            // Auto-generated if empty
	v.SetDefault("auth_token_expiry", "1h")   // Bearer token lifetime
	v.SetDefault("auth_bcrypt_cost", 10)      // bcrypt cost factor
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	// Metadata lookup defaults
	v.SetDefault("isbndb_api_key", "")
	v.SetDefault("isbndb_base_url", DefaultISBNdbBaseURL)
	v.SetDefault("google_books_base_url", DefaultGoogleBooksBaseURL)
	v.SetDefault("lookup_cache_size", 10000)
	v.SetDefault("lookup_cache_ttl", "0s")
	v.SetDefault("lookup_http_timeout", "10s")
	v.SetDefault("lookup_requests_per_second", 1.0)

	v.SetDefault("covers_dir", DefaultCoversDir)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("enrich_sync_enabled", false)
	v.SetDefault("enrich_sync_schedule", "0 3 * * *")

	return &Config{
		HTTP: HTTP{
			Port:               v.GetInt32("PORT"),
			Host:               v.GetString("HOST"),
			CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver: DatabaseDriver(strings.ToLower(v.GetString("DATABASE_DRIVER"))),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Auth: Auth{
			Mode:             AuthMode(v.GetString("AUTH_MODE")),
			JWTSecret:        v.GetString("JWT_SECRET"),
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Lookup: Lookup{
			ISBNdbAPIKey:       v.GetString("ISBNDB_API_KEY"),
			ISBNdbBaseURL:      v.GetString("ISBNDB_BASE_URL"),
			GoogleBooksBaseURL: v.GetString("GOOGLE_BOOKS_BASE_URL"),
			CacheSize:          v.GetInt("LOOKUP_CACHE_SIZE"),
			CacheTTL:           v.GetDuration("LOOKUP_CACHE_TTL"),
			HTTPTimeout:        v.GetDuration("LOOKUP_HTTP_TIMEOUT"),
			RequestsPerSecond:  v.GetFloat64("LOOKUP_REQUESTS_PER_SECOND"),
		},
		Covers: Covers{
			Dir: v.GetString("COVERS_DIR"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		EnrichSync: EnrichSync{
			Enabled:  v.GetBool("ENRICH_SYNC_ENABLED"),
			Schedule: v.GetString("ENRICH_SYNC_SCHEDULE"),
		},
	}
}

// splitList turns a comma-separated value into a trimmed slice, dropping empties.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
