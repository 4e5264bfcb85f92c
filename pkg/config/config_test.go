package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "Asia/Kolkata", cfg.Timezone)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 10, cfg.Enquiry.PageSize)
	assert.Equal(t, 5*time.Second, cfg.Cache.ListTTL)
	assert.False(t, cfg.Receipts.LedgerEnabled)
	assert.Equal(t, "0 9 * * *", cfg.Digest.Cron)
	assert.Empty(t, cfg.Digest.ChatIDs)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "https://institute.example/api/")
	t.Setenv("BACKEND_TIMEOUT", "3s")
	t.Setenv("ENQUIRY_PAGE_SIZE", "0")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("TELEGRAM_CHAT_IDS", "-1001, abc, 42")
	t.Setenv("LIST_CACHE_TTL", "not-a-duration")
	t.Setenv("ENABLE_RECEIPT_LEDGER", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://institute.example/api", cfg.Backend.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 10, cfg.Enquiry.PageSize)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []int64{-1001, 42}, cfg.Digest.ChatIDs)
	assert.Equal(t, 5*time.Second, cfg.Cache.ListTTL)
	assert.True(t, cfg.Receipts.LedgerEnabled)
}
