// Package config provides centralized default values for the storefront server
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is the placeholder used when JWT_SECRET is unset. The
// server replaces it with a random per-process secret at startup.
const DefaultJWTSecret = "change-me-in-production"

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		// godotenv.Load never overrides variables already present in the environment.
		if err := godotenv.Load(); err != nil {
			return
		}
		log.Println("Loaded configuration overrides from .env file")
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, redact(key, val), redact(key, defaultValue))
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	log.Printf("Config override: %s=%v", key, out)
	return out
}

func redact(key, val string) string {
	if val == "" {
		return val
	}
	upper := strings.ToUpper(key)
	if strings.Contains(upper, "SECRET") || strings.Contains(upper, "TOKEN") ||
		strings.Contains(upper, "PASSWORD") || strings.Contains(upper, "API_KEY") {
		return "****"
	}
	return val
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	PublicBaseURL      string
	CORSOrigins        []string

	// Database
	DBDriver                 string
	SQLitePath               string
	TursoDatabaseURL         string
	TursoAuthToken           string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	SlowQueryThreshold       time.Duration

	// Cache
	ContentCacheTTL time.Duration
	CleanupInterval time.Duration

	// Auth
	JWTSecret     string
	JWTTTL        time.Duration
	AdminEmail    string
	AdminPassword string
	AllowSignup   bool

	// Media and email
	MediaDir      string
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string

	// Logging
	LogDir    string
	LogJSON   bool
	LogToFile bool
	LogLevel  string

	// Realtime
	SSEHeartbeatIntervalSeconds int
	RealtimeSubscriberBuffer    int
)

func init() {
	Load()
}

// Load (re)reads every value from the environment. It runs once at init and
// may be called again by tests after t.Setenv.
func Load() {
	loadEnvFile()

	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	// SSE and websocket streams are long lived, so writes are not bounded by default.
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 0)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)
	PublicBaseURL = strings.TrimRight(getEnvString("PUBLIC_BASE_URL", "http://localhost:8080"), "/")
	CORSOrigins = getEnvList("CORS_ORIGINS", []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	})

	DBDriver = getEnvString("DB_DRIVER", "sqlite3")
	SQLitePath = getEnvString("SQLITE_PATH", "storefront.db")
	TursoDatabaseURL = getEnvString("TURSO_DATABASE_URL", "")
	TursoAuthToken = getEnvString("TURSO_AUTH_TOKEN", "")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	SlowQueryThreshold = time.Duration(getEnvInt("SLOW_QUERY_THRESHOLD_MS", 500)) * time.Millisecond

	ContentCacheTTL = time.Duration(getEnvInt("CONTENT_CACHE_TTL_MINUTES", 60)) * time.Minute
	CleanupInterval = time.Duration(getEnvInt("CACHE_CLEANUP_INTERVAL_MINUTES", 10)) * time.Minute

	JWTSecret = getEnvString("JWT_SECRET", DefaultJWTSecret)
	JWTTTL = time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour
	AdminEmail = getEnvString("ADMIN_EMAIL", "")
	AdminPassword = getEnvString("ADMIN_PASSWORD", "")
	AllowSignup = getEnvBool("ALLOW_SIGNUP", false)

	MediaDir = getEnvString("MEDIA_DIR", "media")
	ResendAPIKey = getEnvString("RESEND_API_KEY", "")
	EmailFrom = getEnvString("EMAIL_FROM", "noreply@example.com")
	EmailFromName = getEnvString("EMAIL_FROM_NAME", "Storefront")

	LogDir = getEnvString("LOG_DIR", "logs")
	LogJSON = getEnvBool("LOG_JSON", true)
	LogToFile = getEnvBool("LOG_TO_FILE", false)
	LogLevel = getEnvString("LOG_LEVEL", "info")

	SSEHeartbeatIntervalSeconds = getEnvInt("SSE_HEARTBEAT_INTERVAL_SECONDS", 30)
	RealtimeSubscriberBuffer = getEnvInt("REALTIME_SUBSCRIBER_BUFFER", 256)
}

// DataSourceName builds the driver-specific DSN for the configured database.
func DataSourceName() string {
	if DBDriver == "libsql" {
		if TursoAuthToken == "" {
			return TursoDatabaseURL
		}
		return TursoDatabaseURL + "?authToken=" + TursoAuthToken
	}
	return "file:" + SQLitePath + "?_foreign_keys=on&_busy_timeout=5000"
}
