package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Tesseract-Nexus/go-shared/secrets"
)

type Config struct {
	// Server
	Port        string
	Environment string
	LogLevel    string

	// Shop admin API
	ShopwareAPIURL            string
	ShopwareClientID          string
	ShopwareClientSecret      string
	ShopwareTimeout           time.Duration
	ShopwareMaxRetries        int
	ShopwareRequestsPerSecond float64
	BulkUpdateConcurrency     int

	// Client authentication
	APIKey string

	// Redis
	RedisURL     string
	CacheEnabled bool
	CacheTTL     time.Duration

	// CORS
	AllowedOrigins []string

	// Events (optional)
	NATSURL  string
	TenantID string

	// Catalog
	UnassignedCategoryID        string
	GenderCustomField           string
	LatestProductsFilterProfile string
	TotalCountMode              string
}

func Load() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", ""),

		// Shop admin API
		ShopwareAPIURL:            strings.TrimSuffix(getEnv("SHOPWARE_API_URL", ""), "/"),
		ShopwareClientID:          getEnv("SHOPWARE_CLIENT_ID", ""),
		ShopwareClientSecret:      secrets.GetSecretOrEnv("SHOPWARE_CLIENT_SECRET_NAME", "SHOPWARE_CLIENT_SECRET", ""),
		ShopwareTimeout:           getEnvAsDuration("SHOPWARE_TIMEOUT", 30*time.Second),
		ShopwareMaxRetries:        getEnvAsInt("SHOPWARE_MAX_RETRIES", 3),
		ShopwareRequestsPerSecond: getEnvAsFloat("SHOPWARE_REQUESTS_PER_SECOND", 10),
		BulkUpdateConcurrency:     getEnvAsInt("SHOPWARE_BULK_CONCURRENCY", 5),

		APIKey: secrets.GetSecretOrEnv("API_KEY_SECRET_NAME", "API_KEY", ""),

		// Redis
		RedisURL:     getEnv("REDIS_URL", ""),
		CacheEnabled: getEnvAsBool("CACHE_ENABLED", true),
		CacheTTL:     getEnvAsDuration("CACHE_TTL", 5*time.Minute),

		AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),

		// Events
		NATSURL:  getEnv("NATS_URL", ""),
		TenantID: getEnv("TENANT_ID", "storefront"),

		// Catalog
		UnassignedCategoryID:        getEnv("UNASSIGNED_CATEGORY_ID", "018a0e41a67974a1838844b6e04265bc"),
		GenderCustomField:           getEnv("GENDER_CUSTOM_FIELD", "custom_add_product_attributes_gender"),
		LatestProductsFilterProfile: getEnv("LATEST_PRODUCTS_FILTER_PROFILE", "catalog"),
		TotalCountMode:              getEnv("TOTAL_COUNT_MODE", "exact"),
	}
}

// Validate reports settings the service cannot start without
func (c *Config) Validate() error {
	var errs []error
	if c.ShopwareAPIURL == "" {
		errs = append(errs, errors.New("SHOPWARE_API_URL is required"))
	}
	if c.ShopwareClientID == "" || c.ShopwareClientSecret == "" {
		errs = append(errs, errors.New("SHOPWARE_CLIENT_ID and SHOPWARE_CLIENT_SECRET are required"))
	}
	if c.BulkUpdateConcurrency < 1 {
		errs = append(errs, fmt.Errorf("SHOPWARE_BULK_CONCURRENCY must be positive, got %d", c.BulkUpdateConcurrency))
	}
	if c.ShopwareRequestsPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("SHOPWARE_REQUESTS_PER_SECOND must be positive, got %v", c.ShopwareRequestsPerSecond))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
