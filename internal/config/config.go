package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Tillpad"`
		LogFile  string `envconfig:"LOG_FILE" default:"tillpad.log"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	}

	API struct {
		BaseURL string        `envconfig:"API_BASE_URL" default:"http://localhost:5000"`
		Timeout time.Duration `envconfig:"API_TIMEOUT" default:"15s"`
		// CSRFToken wins over TokenPage when both are set.
		CSRFToken string `envconfig:"API_CSRF_TOKEN"`
		TokenPage string `envconfig:"API_TOKEN_PAGE" default:"/"`
	}

	Search struct {
		Debounce       time.Duration `envconfig:"SEARCH_DEBOUNCE" default:"300ms"`
		MinQueryLength int           `envconfig:"SEARCH_MIN_QUERY" default:"2"`
		Limit          int           `envconfig:"SEARCH_LIMIT" default:"10"`
	}

	Bill struct {
		CurrencySymbol string `envconfig:"CURRENCY_SYMBOL" default:"₹"`
		ExportDir      string `envconfig:"EXPORT_DIR" default:"./exports"`
	}

	DevAPI struct {
		Port           int      `envconfig:"DEVAPI_PORT" default:"5000"`
		CSRFSecret     string   `envconfig:"DEVAPI_CSRF_SECRET" default:"tillpad-dev-secret"`
		AllowedOrigins []string `envconfig:"DEVAPI_ALLOWED_ORIGINS" default:"*"`
	}
}

// Validate rejects values that envconfig accepts but the app cannot work with.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("API_BASE_URL must be an http(s) URL, got %q", c.API.BaseURL)
	}

	if c.Search.MinQueryLength < 1 {
		return fmt.Errorf("SEARCH_MIN_QUERY must be at least 1, got %d", c.Search.MinQueryLength)
	}

	if c.Search.Debounce < 0 {
		return fmt.Errorf("SEARCH_DEBOUNCE must not be negative, got %s", c.Search.Debounce)
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
