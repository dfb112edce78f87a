package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "localhost", config.PostgresHost)
	assert.Equal(t, "5432", config.PostgresPort)
	assert.Equal(t, "localhost:6379", config.RedisAddr)
	assert.Equal(t, "localhost:11211", config.MemcacheAddr)
	assert.Equal(t, "schema", config.ExtractionStrategy)
	assert.Equal(t, 3*time.Second, config.RateLimit)
	assert.Equal(t, 20, config.MaxPagesPerSource)
	assert.Equal(t, 14, config.StaleAfterDays)
	assert.Equal(t, 10, config.BatchPages)

	// Test with environment variables
	os.Setenv("POSTGRES_HOST", "db.example.com")
	os.Setenv("REDIS_ADDR", "redis.example.com:6379")
	os.Setenv("RATE_LIMIT_SECONDS", "10")
	os.Setenv("MAX_PAGES_PER_SOURCE", "5")
	os.Setenv("STALE_AFTER_DAYS", "7")
	os.Setenv("EXTRACTION_STRATEGY", "dom")

	config = LoadConfig()
	assert.Equal(t, "db.example.com", config.PostgresHost)
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)
	assert.Equal(t, 10*time.Second, config.RateLimit)
	assert.Equal(t, 5, config.MaxPagesPerSource)
	assert.Equal(t, 7, config.StaleAfterDays)
	assert.Equal(t, "dom", config.ExtractionStrategy)

	// Clean up
	os.Unsetenv("POSTGRES_HOST")
	os.Unsetenv("REDIS_ADDR")
	os.Unsetenv("RATE_LIMIT_SECONDS")
	os.Unsetenv("MAX_PAGES_PER_SOURCE")
	os.Unsetenv("STALE_AFTER_DAYS")
	os.Unsetenv("EXTRACTION_STRATEGY")
}

func TestDSN(t *testing.T) {
	config := LoadConfig()
	dsn := config.DSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=property_db")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestValidate(t *testing.T) {
	config := LoadConfig()

	// Schema extraction without an API key must fail
	config.ExtractionStrategy = "schema"
	config.FirecrawlAPIKey = ""
	config.TranslationEnabled = false
	assert.Error(t, config.Validate())

	config.FirecrawlAPIKey = "fc-test"
	assert.NoError(t, config.Validate())

	// DOM extraction needs no extraction credential
	config.ExtractionStrategy = "dom"
	config.FirecrawlAPIKey = ""
	assert.NoError(t, config.Validate())

	// Translation requires its key when enabled
	config.TranslationEnabled = true
	config.TranslationAPIKey = ""
	assert.Error(t, config.Validate())
	config.TranslationAPIKey = "sk-test"
	assert.NoError(t, config.Validate())

	// Unknown strategy is rejected
	config.ExtractionStrategy = "browser"
	assert.Error(t, config.Validate())
}
