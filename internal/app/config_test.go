package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

func validConfig() Config {
	return Config{
		ServiceName:       "graphledger",
		Port:              "0",
		GraphAlpha:        0.9,
		InitUserTokens:    10,
		MaxSimulationSize: 100,
		Auth: AuthConfig{
			PasswordHasher: "bcrypt",
			BcryptCost:     4,
			JWTAlgorithm:   "HS256",
			JWTSecretKey:   "test-secret",
			JWTIssuer:      "graphledger-test",
			AccessTokenTTL: time.Hour,
		},
		Cache: CacheConfig{VersionTTL: time.Minute, MemoryEntries: 16},
		Telemetry: TelemetryConfig{
			MetricsEnabled: true,
		},
	}
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("GRAPH_ALPHA", "0.75")
	t.Setenv("INIT_USER_TOKENS", "25")
	t.Setenv("JWT_SECRET_KEY", "from-env")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("VERSION_CACHE_TTL", "10m")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := LoadConfig(logger.Nop())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.GraphAlpha != 0.75 || cfg.InitUserTokens != 25 {
		t.Fatalf("numeric env not applied: alpha=%v init=%v", cfg.GraphAlpha, cfg.InitUserTokens)
	}
	if cfg.Auth.JWTSecretKey != "from-env" {
		t.Fatalf("secret: %q", cfg.Auth.JWTSecretKey)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("cors origins: %v", cfg.CORSOrigins)
	}
	if cfg.Cache.VersionTTL != 10*time.Minute {
		t.Fatalf("version ttl: %s", cfg.Cache.VersionTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadConfigFileOverridesEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphledger.yaml")
	body := []byte("graph_alpha: 0.5\nport: \"9090\"\nauth:\n  jwt_secret_key: from-file\n  access_token_ttl: 30m\ndb:\n  driver: sqlite\n  dsn: local.db\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GRAPH_ALPHA", "0.8")
	t.Setenv("JWT_SECRET_KEY", "from-env")
	t.Setenv("CONFIG_FILE", path)

	cfg, err := LoadConfig(logger.Nop())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.GraphAlpha != 0.5 || cfg.Port != "9090" {
		t.Fatalf("file values not applied: alpha=%v port=%s", cfg.GraphAlpha, cfg.Port)
	}
	if cfg.Auth.JWTSecretKey != "from-file" || cfg.Auth.AccessTokenTTL != 30*time.Minute {
		t.Fatalf("auth overlay: %+v", cfg.Auth)
	}
	if cfg.DB.Driver != "sqlite" || cfg.DB.DSN != "local.db" {
		t.Fatalf("db overlay: %+v", cfg.DB)
	}
	if cfg.Auth.PasswordHasher != "bcrypt" {
		t.Fatalf("keys absent from the file must keep env defaults, hasher=%q", cfg.Auth.PasswordHasher)
	}
}

func TestLoadConfigRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("graph_alpha: [not a number"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	if _, err := LoadConfig(logger.Nop()); err == nil {
		t.Fatalf("expected parse error")
	}
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := LoadConfig(logger.Nop()); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"alpha zero", func(c *Config) { c.GraphAlpha = 0 }},
		{"alpha one", func(c *Config) { c.GraphAlpha = 1 }},
		{"negative grant", func(c *Config) { c.InitUserTokens = -1 }},
		{"no sweep cap", func(c *Config) { c.MaxSimulationSize = 0 }},
		{"unknown hasher", func(c *Config) { c.Auth.PasswordHasher = "md5" }},
		{"unknown signer", func(c *Config) { c.Auth.JWTAlgorithm = "none" }},
		{"hs256 without secret", func(c *Config) { c.Auth.JWTSecretKey = "" }},
		{"rs256 without key", func(c *Config) { c.Auth.JWTAlgorithm = "RS256" }},
		{"unknown driver", func(c *Config) { c.DB.Driver = "mysql" }},
	}
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("baseline config invalid: %v", err)
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
