// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache and quota store (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// HMAC secret for verifying bearer tokens issued by the identity provider.
	JWTSecret string `env:"JWT_SECRET,required"`

	// Identity provider (entitlement lookups)
	IdentityBaseURL string `env:"IDENTITY_BASE_URL,required"`
	IdentityAPIKey  string `env:"IDENTITY_API_KEY,required"`
	// PremiumPlanName is the entitlement that marks an identity as premium.
	PremiumPlanName string `env:"PREMIUM_PLAN_NAME" envDefault:"premium"`

	// Usage metering for free-plan identities.
	FreeUsageLimit int64 `env:"FREE_USAGE_LIMIT" envDefault:"10"`

	// Text generation provider (OpenAI-compatible chat completions surface).
	TextAPIBaseURL string `env:"TEXT_API_BASE_URL,required"`
	TextAPIKey     string `env:"TEXT_API_KEY,required"`
	TextModel      string `env:"TEXT_MODEL" envDefault:"gemini-2.5-flash"`

	// Image generation / transformation provider.
	ImageAPIBaseURL string `env:"IMAGE_API_BASE_URL,required"`
	ImageAPIKey     string `env:"IMAGE_API_KEY,required"`

	// Blob storage for generated media (S3-compatible).
	S3Endpoint  string `env:"S3_ENDPOINT" envDefault:""`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket    string `env:"S3_BUCKET,required"`
	S3AccessKey string `env:"S3_ACCESS_KEY,required"`
	S3SecretKey string `env:"S3_SECRET_KEY,required"`
	// S3PublicBaseURL is the base for public object URLs (CDN or bucket endpoint).
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL,required"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts. Provider calls can run long, so the write timeout is
	// generous compared to a plain CRUD service.
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Outbound provider call timeout.
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"90s"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Upload limits
	MaxResumeSize int64 `env:"MAX_RESUME_SIZE" envDefault:"5242880"`  // 5 MiB
	MaxImageSize  int64 `env:"MAX_IMAGE_SIZE" envDefault:"10485760"` // 10 MiB
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
