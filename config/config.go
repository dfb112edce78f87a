package config

import (
	"os"
	"strconv"
	"time"

	"github.com/SparklingP1/property.com.ve/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Postgres listing store
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Extraction service (schema-prompted AI extraction)
	FirecrawlAPIKey string
	FirecrawlAPIURL string

	// Extraction strategy: "schema" or "dom"
	ExtractionStrategy string

	// Translation service
	TranslationAPIKey  string
	TranslationAPIURL  string
	TranslationModel   string
	TranslationEnabled bool

	// Object storage for re-hosted images
	ImageStoreURL  string
	ImageStoreKey  string
	ImageBucket    string
	RehostImages   bool

	// Redis listing event stream
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Memcache (fetch rate-limit blocks)
	MemcacheAddr string

	// Outbound proxy for page fetches
	ProxyURL string

	// Tunables
	RateLimit         time.Duration
	MaxPagesPerSource int
	StaleAfterDays    int
	BatchPages        int

	// Read API
	APIPort string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB := getEnvInt("REDIS_DB", 0)
	rateLimit := getEnvInt("RATE_LIMIT_SECONDS", 3)

	return Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "listings"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "listings"),
		PostgresDB:       getEnv("POSTGRES_DB", "property_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		FirecrawlAPIKey: getEnv("FIRECRAWL_API_KEY", ""),
		FirecrawlAPIURL: getEnv("FIRECRAWL_API_URL", "https://api.firecrawl.dev/v1/scrape"),

		ExtractionStrategy: getEnv("EXTRACTION_STRATEGY", "schema"),

		TranslationAPIKey:  getEnv("OPENAI_API_KEY", ""),
		TranslationAPIURL:  getEnv("TRANSLATION_API_URL", "https://api.openai.com/v1/chat/completions"),
		TranslationModel:   getEnv("TRANSLATION_MODEL", "gpt-4o-mini"),
		TranslationEnabled: getEnvBool("TRANSLATION_ENABLED", true),

		ImageStoreURL: getEnv("IMAGE_STORE_URL", ""),
		ImageStoreKey: getEnv("IMAGE_STORE_KEY", ""),
		ImageBucket:   getEnv("IMAGE_BUCKET", "listing-images"),
		RehostImages:  getEnvBool("REHOST_IMAGES", false),

		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "listings"),
		RedisStreamCount:     getEnvInt("REDIS_STREAM_COUNT", 1),
		RedisStreamMaxLength: getEnvInt("REDIS_STREAM_MAX_LENGTH", 1000),

		MemcacheAddr: getEnv("MEMCACHE_ADDR", "localhost:11211"),

		ProxyURL: getEnv("PROXY_URL", ""),

		RateLimit:         time.Duration(rateLimit) * time.Second,
		MaxPagesPerSource: getEnvInt("MAX_PAGES_PER_SOURCE", 20),
		StaleAfterDays:    getEnvInt("STALE_AFTER_DAYS", 14),
		BatchPages:        getEnvInt("BATCH_PAGES", 10),

		APIPort: getEnv("API_PORT", "8080"),

		Environment: getEnv("SCRAPER_ENVIRONMENT", "development"),
	}
}

// Validate checks that required credentials are present.
// A missing credential is fatal at startup and never retried.
func (c *Config) Validate() error {
	if c.ExtractionStrategy != "schema" && c.ExtractionStrategy != "dom" {
		return errors.NewConfiguration("EXTRACTION_STRATEGY must be \"schema\" or \"dom\"", nil)
	}
	if c.ExtractionStrategy == "schema" && c.FirecrawlAPIKey == "" {
		return errors.NewConfiguration("FIRECRAWL_API_KEY is required for schema extraction", nil)
	}
	if c.TranslationEnabled && c.TranslationAPIKey == "" {
		return errors.NewConfiguration("OPENAI_API_KEY is required when translation is enabled", nil)
	}
	if c.RehostImages && (c.ImageStoreURL == "" || c.ImageStoreKey == "") {
		return errors.NewConfiguration("IMAGE_STORE_URL and IMAGE_STORE_KEY are required when image re-hosting is enabled", nil)
	}
	if c.StaleAfterDays <= 0 {
		return errors.NewConfiguration("STALE_AFTER_DAYS must be positive", nil)
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
