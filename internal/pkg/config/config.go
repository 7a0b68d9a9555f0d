package config

import (
	"errors"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":3002"`
	AdminAddr   string `env:"ADMIN_ADDR" envDefault:":9091"`
	PostgresURL string `env:"POSTGRES_URL,required"`
	RedisURL    string `env:"REDIS_URL"` // empty disables the geocode cache

	// Auth: tokens are verified against the JWKS endpoint when set,
	// otherwise against the shared HMAC secret.
	AuthJWKSURL     string        `env:"AUTH_JWKS_URL"`
	AuthJWKSRefresh time.Duration `env:"AUTH_JWKS_REFRESH" envDefault:"1h"`
	AuthHMACSecret  string        `env:"AUTH_HMAC_SECRET"`
	AuthIssuer      string        `env:"AUTH_ISSUER"`
	AuthAudience    string        `env:"AUTH_AUDIENCE"`

	AWSRegion      string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSEndpointURL string `env:"AWS_ENDPOINT_URL"` // e.g. http://localstack:4566
	S3BucketName   string `env:"S3_BUCKET_NAME"`

	GeocoderURL       string        `env:"GEOCODER_URL" envDefault:"https://nominatim.openstreetmap.org/search"`
	GeocoderUserAgent string        `env:"GEOCODER_USER_AGENT" envDefault:"rentwise/1.0"`
	GeocoderRPS       float64       `env:"GEOCODER_RPS" envDefault:"1"`
	GeocodeCacheTTL   time.Duration `env:"GEOCODE_CACHE_TTL" envDefault:"720h"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	MaxUploadBytes     int64  `env:"MAX_UPLOAD_BYTES" envDefault:"33554432"` // 32MB
	PIIRedactionFields string `env:"PII_REDACTION_FIELDS" envDefault:"email,phone_number,phoneNumber,authorization"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	if c.AuthJWKSURL == "" && c.AuthHMACSecret == "" {
		return errors.New("config: one of AUTH_JWKS_URL or AUTH_HMAC_SECRET is required")
	}
	if c.GeocoderRPS <= 0 {
		return errors.New("config: GEOCODER_RPS must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("config: MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// RedactionFields returns the configured PII attribute keys.
func (c *Config) RedactionFields() []string {
	return strings.Split(c.PIIRedactionFields, ",")
}
