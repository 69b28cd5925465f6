package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (AYM_ prefix), flags, or YAML config files.
type Config struct {
	Addr           string `default:"0.0.0.0:8080" usage:"HTTP listen address"`
	DataDir        string `default:"data" usage:"Directory for local snapshots" flag:"data-dir"`
	WhatsAppNumber string `default:"93789281770" usage:"Operator WhatsApp number for order sharing" flag:"whatsapp-number"`
	Source         SourceConfig
	RateLimit      RateLimitConfig
	CORS           CORSConfig
	Graceful       GracefulConfig
}

// SourceConfig points at the upstream spreadsheet API.
type SourceConfig struct {
	BaseURL      string        `default:"https://api.airtable.com/v0" usage:"Spreadsheet API base URL" flag:"source-base-url"`
	BaseID       string        `usage:"Spreadsheet base ID (AYM_SOURCE_BASE_ID or AIRTABLE_BASE_ID)" flag:"source-base-id"`
	APIKey       string        `usage:"Spreadsheet API key (AYM_SOURCE_API_KEY or AIRTABLE_API_KEY)" flag:"source-api-key"`
	Table        string        `default:"Moh7" usage:"Spreadsheet table name" flag:"source-table"`
	MaxRecords   int           `default:"1000" usage:"Maximum records per fetch" flag:"source-max-records"`
	FetchTimeout time.Duration `default:"30s" usage:"Timeout for a catalog fetch" flag:"fetch-timeout"`
}

// RateLimitConfig controls the per-client fixed window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins []string `default:"*" usage:"Allowed CORS origins"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "AYM",
		Files:     []string{"config.yaml", "/etc/aym/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.Source.BaseID == "" || cfg.Source.APIKey == "" {
		return nil, errors.New("spreadsheet credentials are required: set AYM_SOURCE_BASE_ID and AYM_SOURCE_API_KEY")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Vercel,
// Railway, etc.) that use standard names like AIRTABLE_API_KEY and PORT to
// the application's AYM_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Source.APIKey == "" {
		if v := os.Getenv("AIRTABLE_API_KEY"); v != "" {
			c.Source.APIKey = v
		}
	}
	if c.Source.BaseID == "" {
		if v := os.Getenv("AIRTABLE_BASE_ID"); v != "" {
			c.Source.BaseID = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
