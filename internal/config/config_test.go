package config

import (
	"os"
	"path/filepath"
	"testing"
)

// chdirTemp moves the test into an empty directory so a developer .env is not picked up.
func chdirTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.JWTTTLSeconds != 3600 {
		t.Errorf("JWTTTLSeconds = %d, want 3600", cfg.JWTTTLSeconds)
	}
	if cfg.RateLimitMaxRequests != 60 || cfg.RateLimitWindowSeconds != 60 {
		t.Errorf("rate limit defaults = %d/%d, want 60/60", cfg.RateLimitMaxRequests, cfg.RateLimitWindowSeconds)
	}
	if cfg.RateLimitFailClosed {
		t.Error("RateLimitFailClosed should default to false (fail open)")
	}
	if cfg.Argon2MemoryKiB != 64*1024 || cfg.Argon2Time != 4 || cfg.Argon2Parallelism != 2 {
		t.Errorf("argon2 defaults = %d/%d/%d", cfg.Argon2MemoryKiB, cfg.Argon2Time, cfg.Argon2Parallelism)
	}
}

func TestLoad_SecretRequiredOutsideDevelopment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail without JWT_SECRET in production")
	}

	t.Setenv("JWT_SECRET", "topsecret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with secret: %v", err)
	}
	if cfg.JWTSecret != "topsecret" {
		t.Errorf("JWTSecret = %q", cfg.JWTSecret)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{"zero ttl", "JWT_TTL_SECONDS", "0"},
		{"negative max requests", "RATE_LIMIT_MAX_REQUESTS", "-1"},
		{"zero window", "RATE_LIMIT_WINDOW_SECONDS", "0"},
		{"tiny argon2 memory", "ARGON2_MEMORY_KIB", "1024"},
		{"zero argon2 time", "ARGON2_TIME", "0"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			chdirTemp(t)
			t.Setenv("APP_ENV", "development")
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load should reject %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	chdirTemp(t)
	t.Setenv("APP_ENV", "development")
	wd, _ := os.Getwd()
	env := "HTTP_ADDR=:9999\nRATE_LIMIT_MAX_REQUESTS=10\n"
	if err := os.WriteFile(filepath.Join(wd, ".env"), []byte(env), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q, want :9999 from .env", cfg.HTTPAddr)
	}
	if cfg.RateLimitMaxRequests != 10 {
		t.Errorf("RateLimitMaxRequests = %d, want 10 from .env", cfg.RateLimitMaxRequests)
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := &Config{JWTTTLSeconds: 3600, RateLimitWindowSeconds: 60}
	if got := cfg.TokenTTL().Seconds(); got != 3600 {
		t.Errorf("TokenTTL = %vs, want 3600s", got)
	}
	if got := cfg.RateLimitWindow().Seconds(); got != 60 {
		t.Errorf("RateLimitWindow = %vs, want 60s", got)
	}
}
