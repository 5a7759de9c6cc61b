package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("PUBLIC_BASE_URL", "")
	t.Setenv("JWT_TTL_HOURS", "")
	t.Setenv("ALLOW_SIGNUP", "")
	Load()

	assert.Equal(t, "8080", Port)
	assert.Equal(t, "sqlite3", DBDriver)
	assert.Equal(t, "http://localhost:8080", PublicBaseURL)
	assert.Equal(t, 24*time.Hour, JWTTTL)
	assert.False(t, AllowSignup)
	assert.Contains(t, CORSOrigins, "http://localhost:5173")
}

func TestLoadOverrides(t *testing.T) {
	// registered first so it runs after the environment is restored
	t.Cleanup(Load)
	t.Setenv("PORT", "9090")
	t.Setenv("PUBLIC_BASE_URL", "https://shop.vn/")
	t.Setenv("CORS_ORIGINS", " https://a.vn, ,https://b.vn ")
	t.Setenv("LOG_JSON", "false")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("ALLOW_SIGNUP", "true")
	Load()

	assert.Equal(t, "9090", Port)
	assert.Equal(t, "https://shop.vn", PublicBaseURL)
	assert.Equal(t, []string{"https://a.vn", "https://b.vn"}, CORSOrigins)
	assert.False(t, LogJSON)
	assert.Equal(t, 3*time.Second, ServerReadTimeout)
	assert.Equal(t, 10, DBMaxOpenConns)
	assert.True(t, AllowSignup)
}

func TestDataSourceName(t *testing.T) {
	t.Cleanup(Load)
	t.Setenv("DB_DRIVER", "libsql")
	t.Setenv("TURSO_DATABASE_URL", "libsql://shop.turso.io")
	t.Setenv("TURSO_AUTH_TOKEN", "tok")
	Load()
	assert.Equal(t, "libsql://shop.turso.io?authToken=tok", DataSourceName())

	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("SQLITE_PATH", "x.db")
	Load()
	assert.Equal(t, "file:x.db?_foreign_keys=on&_busy_timeout=5000", DataSourceName())
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "****", redact("JWT_SECRET", "abc"))
	assert.Equal(t, "****", redact("TURSO_AUTH_TOKEN", "abc"))
	assert.Equal(t, "8080", redact("PORT", "8080"))
	assert.Equal(t, "", redact("ADMIN_PASSWORD", ""))
}
