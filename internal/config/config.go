// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSecret is the HMAC-SHA256 signing secret for session tokens. Required outside development.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTTTLSeconds is the session token lifetime in seconds (default 3600).
	JWTTTLSeconds int `mapstructure:"JWT_TTL_SECONDS"`

	// RateLimitMaxRequests is the allowed hits per (client, endpoint) per window (default 60).
	RateLimitMaxRequests int `mapstructure:"RATE_LIMIT_MAX_REQUESTS"`
	// RateLimitWindowSeconds is the window length in seconds (default 60).
	RateLimitWindowSeconds int `mapstructure:"RATE_LIMIT_WINDOW_SECONDS"`
	// RateLimitFailClosed rejects requests when the rate-limit store is unreachable.
	// Default false: the limiter fails open to keep the API available.
	RateLimitFailClosed bool `mapstructure:"RATE_LIMIT_FAIL_CLOSED"`

	// Argon2MemoryKiB is the Argon2id memory cost in KiB (default 65536 = 64 MiB).
	Argon2MemoryKiB int `mapstructure:"ARGON2_MEMORY_KIB"`
	// Argon2Time is the Argon2id time cost (default 4).
	Argon2Time int `mapstructure:"ARGON2_TIME"`
	// Argon2Parallelism is the Argon2id lane count (default 2).
	Argon2Parallelism int `mapstructure:"ARGON2_PARALLELISM"`
	// LoginMaxConcurrent bounds concurrent password hashing to protect a shared host
	// from login floods (default 4).
	LoginMaxConcurrent int `mapstructure:"LOGIN_MAX_CONCURRENT"`

	// TrustProxy enables X-Forwarded-For / X-Real-IP for client addresses.
	// Only set behind a trusted reverse proxy.
	TrustProxy bool `mapstructure:"TRUST_PROXY"`

	// AzureStorageAccount is the Azure Blob account name for media SAS tokens.
	AzureStorageAccount string `mapstructure:"AZURE_STORAGE_ACCOUNT"`
	// AzureStorageKey is the base64 Azure Blob account key.
	AzureStorageKey string `mapstructure:"AZURE_STORAGE_KEY"`
	// AzureContainerName is the media container (default echomemory-media).
	AzureContainerName string `mapstructure:"AZURE_CONTAINER_NAME"`

	// AzureOpenAIKey is the API key for the chat assistant. Empty disables the assistant.
	AzureOpenAIKey string `mapstructure:"AZURE_OPENAI_KEY"`
	// AzureOpenAIEndpoint is the Azure OpenAI resource endpoint.
	AzureOpenAIEndpoint string `mapstructure:"AZURE_OPENAI_ENDPOINT"`
	// AzureOpenAIDeployment is the chat model deployment name (default gpt-4).
	AzureOpenAIDeployment string `mapstructure:"AZURE_OPENAI_DEPLOYMENT"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint. Empty disables telemetry export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL_SECONDS", 3600)
	v.SetDefault("RATE_LIMIT_MAX_REQUESTS", 60)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("RATE_LIMIT_FAIL_CLOSED", false)
	v.SetDefault("ARGON2_MEMORY_KIB", 64*1024)
	v.SetDefault("ARGON2_TIME", 4)
	v.SetDefault("ARGON2_PARALLELISM", 2)
	v.SetDefault("LOGIN_MAX_CONCURRENT", 4)
	v.SetDefault("TRUST_PROXY", false)
	v.SetDefault("AZURE_CONTAINER_NAME", "echomemory-media")
	v.SetDefault("AZURE_OPENAI_DEPLOYMENT", "gpt-4")
	v.SetDefault("APP_ENV", "development")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.JWTSecret == "" && cfg.Env != "development" {
		return nil, errors.New("config: JWT_SECRET must be set when APP_ENV is not development")
	}
	if cfg.JWTTTLSeconds <= 0 {
		return nil, errors.New("config: JWT_TTL_SECONDS must be positive")
	}
	if cfg.RateLimitMaxRequests <= 0 || cfg.RateLimitWindowSeconds <= 0 {
		return nil, errors.New("config: rate limit max requests and window must be positive")
	}
	if cfg.Argon2MemoryKiB < 8*1024 {
		return nil, errors.New("config: ARGON2_MEMORY_KIB must be at least 8192")
	}
	if cfg.Argon2Time <= 0 || cfg.Argon2Parallelism <= 0 {
		return nil, errors.New("config: ARGON2_TIME and ARGON2_PARALLELISM must be positive")
	}
	if cfg.LoginMaxConcurrent <= 0 {
		cfg.LoginMaxConcurrent = 4
	}

	return &cfg, nil
}

// TokenTTL returns the session token lifetime as a time.Duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTTTLSeconds) * time.Second
}

// RateLimitWindow returns the rate-limit window as a time.Duration.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}
