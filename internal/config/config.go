// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once per process and passed explicitly to every
// component; nothing reads the environment after Load returns.
type Config struct {
	Environment  string
	Server       ServerConfig
	CRM          CRMConfig
	Stripe       StripeConfig
	ContentStore ContentStoreConfig
	Webhook      WebhookConfig
	Sync         SyncConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type CRMConfig struct {
	BaseURL    string
	APIKey     string
	APIVersion string
}

type StripeConfig struct {
	SecretKey string
	Currency  string
}

type ContentStoreConfig struct {
	BaseURL  string
	APIToken string
}

type WebhookConfig struct {
	Secret string
}

type SyncConfig struct {
	PageSize       int
	RequestTimeout int // seconds, per outbound call
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		CRM: CRMConfig{
			BaseURL:    getEnv("CRM_BASE_URL", ""),
			APIKey:     getEnv("CRM_API_KEY", ""),
			APIVersion: getEnv("CRM_API_VERSION", "2023-10"),
		},
		Stripe: StripeConfig{
			SecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			Currency:  getEnv("STRIPE_CURRENCY", "usd"),
		},
		ContentStore: ContentStoreConfig{
			BaseURL:  getEnv("CONTENT_STORE_URL", ""),
			APIToken: getEnv("CONTENT_STORE_TOKEN", ""),
		},
		Webhook: WebhookConfig{
			Secret: getEnv("WEBHOOK_SECRET", ""),
		},
		Sync: SyncConfig{
			PageSize:       getEnvAsInt("SYNC_PAGE_SIZE", 50),
			RequestTimeout: getEnvAsInt("SYNC_REQUEST_TIMEOUT", 10),
		},
	}

	return config, config.Validate()
}

// Validate fails fast on partial configuration: a sync pass running with
// missing credentials would misreport every record as errored.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"CRM_BASE_URL", c.CRM.BaseURL},
		{"CRM_API_KEY", c.CRM.APIKey},
		{"STRIPE_SECRET_KEY", c.Stripe.SecretKey},
		{"CONTENT_STORE_URL", c.ContentStore.BaseURL},
		{"CONTENT_STORE_TOKEN", c.ContentStore.APIToken},
		{"WEBHOOK_SECRET", c.Webhook.Secret},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("missing required configuration: %s", r.name)
		}
	}

	if c.Sync.PageSize < 1 || c.Sync.PageSize > 500 {
		return fmt.Errorf("SYNC_PAGE_SIZE must be between 1 and 500, got %d", c.Sync.PageSize)
	}
	return nil
}

// RequestTimeout is the bounded per-call timeout for outbound authority
// and content-store requests.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Sync.RequestTimeout) * time.Second
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
