package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_ACCESS_EXPIRY", "")
	t.Setenv("MAX_UPLOAD_MB", "")
	t.Setenv("DB_NAME", "")

	cfg := Load()

	assert.Equal(t, "boardinghub", cfg.DBName)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	assert.Equal(t, 24*time.Hour, cfg.VerificationTokenTTL)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxUploadBytes())
	assert.Equal(t, "listings_queue", cfg.AMQPQueue)
}

func TestLoadOverridesAndBadValues(t *testing.T) {
	t.Setenv("JWT_REFRESH_EXPIRY", "not-a-duration")
	t.Setenv("MAX_UPLOAD_MB", "-3")
	t.Setenv("CACHE_TTL", "30s")

	cfg := Load()

	assert.Equal(t, 168*time.Hour, cfg.JWTRefreshExpiry)
	assert.Equal(t, 5, cfg.MaxUploadMB)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5433", DBSSLMode: "require"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5433 sslmode=require TimeZone=UTC", cfg.DSN())
}
