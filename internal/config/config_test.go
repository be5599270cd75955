package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "SHOPWARE_TIMEOUT", "CACHE_ENABLED", "CORS_ALLOWED_ORIGINS", "TOTAL_COUNT_MODE", "SHOPWARE_BULK_CONCURRENCY"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ShopwareTimeout)
	assert.Equal(t, 3, cfg.ShopwareMaxRetries)
	assert.Equal(t, float64(10), cfg.ShopwareRequestsPerSecond)
	assert.Equal(t, 5, cfg.BulkUpdateConcurrency)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Nil(t, cfg.AllowedOrigins)
	assert.Equal(t, "exact", cfg.TotalCountMode)
	assert.Equal(t, "018a0e41a67974a1838844b6e04265bc", cfg.UnassignedCategoryID)
	assert.Equal(t, "custom_add_product_attributes_gender", cfg.GenderCustomField)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SHOPWARE_API_URL", "https://shop.example.com/api/")
	t.Setenv("SHOPWARE_TIMEOUT", "5s")
	t.Setenv("SHOPWARE_REQUESTS_PER_SECOND", "2.5")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("SHOPWARE_MAX_RETRIES", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "https://shop.example.com/api", cfg.ShopwareAPIURL)
	assert.Equal(t, 5*time.Second, cfg.ShopwareTimeout)
	assert.Equal(t, 2.5, cfg.ShopwareRequestsPerSecond)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 3, cfg.ShopwareMaxRetries)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		ShopwareAPIURL:            "https://shop.example.com/api",
		ShopwareClientID:          "id",
		ShopwareClientSecret:      "secret",
		ShopwareRequestsPerSecond: 10,
		BulkUpdateConcurrency:     5,
	}
	require.NoError(t, cfg.Validate())

	cfg.ShopwareClientSecret = ""
	cfg.BulkUpdateConcurrency = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHOPWARE_CLIENT_SECRET")
	assert.Contains(t, err.Error(), "SHOPWARE_BULK_CONCURRENCY")
}
