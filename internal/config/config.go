package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the export service
// Environment variables are automatically parsed from TAXWISE_ prefix
type Config struct {
	// Build target selects high-level environment: local, cloud-dev, cloud
	BuildTarget string `envconfig:"BUILD_TARGET" default:"cloud-dev"`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string      `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP Configuration
	HTTPPort        int   `envconfig:"HTTP_PORT" default:"8080"`
	MaxRequestBytes int64 `envconfig:"MAX_REQUEST_BYTES" default:"26214400"`

	// Audit log storage (postgres | sqlite | auto)
	AuditDriver         string `envconfig:"AUDIT_DRIVER" default:"auto"`
	PostgresDSN         string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath          string `envconfig:"SQLITE_PATH" default:""`
	AuditTimeoutSeconds int    `envconfig:"AUDIT_TIMEOUT_SECONDS" default:"3"`

	// Object storage (http | dir | auto)
	ObjectStoreDriver string `envconfig:"OBJECT_STORE_DRIVER" default:"auto"`
	ObjectStoreURL    string `envconfig:"OBJECT_STORE_URL" default:""`
	ObjectStoreDir    string `envconfig:"OBJECT_STORE_DIR" default:"./resources"`
	ObjectStoreToken  string `envconfig:"OBJECT_STORE_TOKEN" default:""`

	// Export pipeline
	ExportPrefix        string `envconfig:"EXPORT_PREFIX" default:"taxwise"`
	FetchTimeoutSeconds int    `envconfig:"FETCH_TIMEOUT_SECONDS" default:"30"`
	FetchConcurrency    int    `envconfig:"FETCH_CONCURRENCY" default:"4"`

	// Deduction suggestions; the endpoint is disabled without an API key
	GenAIAPIKey string `envconfig:"GENAI_API_KEY" default:""`
	GenAIModel  string `envconfig:"GENAI_MODEL" default:"gemini-2.0-flash"`

	// Health
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
}

// ResolveDefaults validates BuildTarget and derives AuditDriver and ObjectStoreDriver when set to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultAudit, defaultObjects string

	switch c.BuildTarget {
	case "local":
		defaultAudit = "sqlite"
		defaultObjects = "dir"
	case "cloud-dev", "cloud":
		defaultAudit = "postgres"
		defaultObjects = "http"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.AuditDriver == "" || c.AuditDriver == "auto" {
		c.AuditDriver = defaultAudit
	}
	if c.ObjectStoreDriver == "" || c.ObjectStoreDriver == "auto" {
		c.ObjectStoreDriver = defaultObjects
	}
	if c.AuditDriver == "sqlite" && c.SQLitePath == "" {
		c.SQLitePath = "./data/audit.db"
	}

	allowedAudit := map[string]bool{"postgres": true, "sqlite": true}
	if !allowedAudit[c.AuditDriver] {
		return fmt.Errorf("unsupported AUDIT_DRIVER: %s", c.AuditDriver)
	}
	allowedObjects := map[string]bool{"http": true, "dir": true}
	if !allowedObjects[c.ObjectStoreDriver] {
		return fmt.Errorf("unsupported OBJECT_STORE_DRIVER: %s", c.ObjectStoreDriver)
	}
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be at least 1")
	}
	return nil
}

// New creates a new Config by parsing environment variables
// Environment variables should be prefixed with TAXWISE_
// Example: TAXWISE_HTTP_PORT, TAXWISE_POSTGRES_DSN
func New() (*Config, error) { return Load("") }

// Load is New with an optional BUILD_TARGET override applied before drivers
// are derived.
func Load(buildTarget string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process("TAXWISE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if buildTarget != "" {
		cfg.BuildTarget = buildTarget
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("audit_driver", cfg.AuditDriver).
		Str("object_store_driver", cfg.ObjectStoreDriver).
		Str("object_store_url", cfg.ObjectStoreURL).
		Int("fetch_concurrency", cfg.FetchConcurrency).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Bool("genai_enabled", cfg.GenAIAPIKey != "").
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	cfg := &Config{
		Environment: EnvTesting,
		BuildTarget: "local",
		LogLevel:    "debug",
	}

	cfg.HTTPPort = 8080
	cfg.MaxRequestBytes = 1 << 20
	cfg.AuditDriver = "auto"
	cfg.AuditTimeoutSeconds = 1
	cfg.ObjectStoreDriver = "auto"
	cfg.ObjectStoreDir = "./testdata"
	cfg.ExportPrefix = "taxwise"
	cfg.FetchTimeoutSeconds = 5
	cfg.FetchConcurrency = 2
	cfg.GenAIModel = "gemini-2.0-flash"
	cfg.HealthIntervalSeconds = 1
	cfg.HealthProbeTimeoutSeconds = 1

	return cfg
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// FetchTimeout bounds a single object fetch.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// AuditTimeout bounds a single best-effort audit append.
func (c *Config) AuditTimeout() time.Duration {
	return time.Duration(c.AuditTimeoutSeconds) * time.Second
}
