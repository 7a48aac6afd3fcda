// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		CRM:          CRMConfig{BaseURL: "https://crm.example.com", APIKey: "key"},
		Stripe:       StripeConfig{SecretKey: "sk_test_x", Currency: "usd"},
		ContentStore: ContentStoreConfig{BaseURL: "https://store.example.com", APIToken: "token"},
		Webhook:      WebhookConfig{Secret: "secret"},
		Sync:         SyncConfig{PageSize: 50, RequestTimeout: 10},
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsMissingCredentials(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"CRM_BASE_URL", func(c *Config) { c.CRM.BaseURL = "" }},
		{"CRM_API_KEY", func(c *Config) { c.CRM.APIKey = "" }},
		{"STRIPE_SECRET_KEY", func(c *Config) { c.Stripe.SecretKey = "" }},
		{"CONTENT_STORE_URL", func(c *Config) { c.ContentStore.BaseURL = "" }},
		{"CONTENT_STORE_TOKEN", func(c *Config) { c.ContentStore.APIToken = "" }},
		{"WEBHOOK_SECRET", func(c *Config) { c.Webhook.Secret = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.name)
		})
	}
}

func TestValidateRejectsBadPageSize(t *testing.T) {
	cfg := validConfig()
	cfg.Sync.PageSize = 0
	assert.Error(t, cfg.Validate())

	cfg.Sync.PageSize = 501
	assert.Error(t, cfg.Validate())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("CRM_BASE_URL", "https://crm.example.com")
	t.Setenv("CRM_API_KEY", "key")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_x")
	t.Setenv("CONTENT_STORE_URL", "https://store.example.com")
	t.Setenv("CONTENT_STORE_TOKEN", "token")
	t.Setenv("WEBHOOK_SECRET", "secret")
	t.Setenv("SYNC_PAGE_SIZE", "25")
	t.Setenv("SYNC_REQUEST_TIMEOUT", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Sync.PageSize)
	assert.Equal(t, 7*time.Second, cfg.RequestTimeout())
	assert.Equal(t, "2023-10", cfg.CRM.APIVersion, "defaulted when unset")
}
