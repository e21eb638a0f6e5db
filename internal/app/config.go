package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/graphledger-backend/internal/clients/redis"
	"github.com/yungbote/graphledger-backend/internal/data/aggregates"
	"github.com/yungbote/graphledger-backend/internal/data/db"
	"github.com/yungbote/graphledger-backend/internal/observability"
	"github.com/yungbote/graphledger-backend/internal/pkg/envutil"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
	"github.com/yungbote/graphledger-backend/internal/services"
)

type DBConfig struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type AuthConfig struct {
	PasswordHasher string        `yaml:"password_hasher"`
	BcryptCost     int           `yaml:"bcrypt_cost"`
	JWTAlgorithm   string        `yaml:"jwt_algorithm"`
	JWTSecretKey   string        `yaml:"jwt_secret_key"`
	JWTPrivateKey  string        `yaml:"jwt_private_key_path"`
	JWTPublicKey   string        `yaml:"jwt_public_key_path"`
	JWTIssuer      string        `yaml:"jwt_issuer"`
	JWTAudience    string        `yaml:"jwt_audience"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl"`
	AdminEmail     string        `yaml:"admin_email"`
	AdminPassword  string        `yaml:"admin_password"`
}

type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	VersionTTL    time.Duration `yaml:"version_ttl"`
	MemoryEntries int           `yaml:"memory_entries"`
}

type TelemetryConfig struct {
	MetricsEnabled bool    `yaml:"metrics_enabled"`
	MetricsAddr    string  `yaml:"metrics_addr"`
	OtelEnabled    bool    `yaml:"otel_enabled"`
	OtelEndpoint   string  `yaml:"otel_endpoint"`
	OtelHeaders    string  `yaml:"otel_headers"`
	OtelInsecure   bool    `yaml:"otel_insecure"`
	OtelSample     float64 `yaml:"otel_sample_ratio"`
}

type Config struct {
	ServiceName string   `yaml:"service_name"`
	Environment string   `yaml:"environment"`
	Version     string   `yaml:"version"`
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`

	GraphAlpha        float64 `yaml:"graph_alpha"`
	InitUserTokens    float64 `yaml:"init_user_tokens"`
	MaxSimulationSize int     `yaml:"max_simulation_steps"`

	DB        DBConfig        `yaml:"db"`
	Auth      AuthConfig      `yaml:"auth"`
	Cache     CacheConfig     `yaml:"cache"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LoadConfig reads the environment, then overlays the YAML file named by CONFIG_FILE.
// Keys present in the file win over the environment.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		ServiceName: envutil.GetEnv("SERVICE_NAME", "graphledger", log),
		Environment: envutil.GetEnv("APP_ENV", "development", log),
		Version:     envutil.GetEnv("APP_VERSION", "dev", log),
		Port:        envutil.GetEnv("PORT", "8080", log),
		CORSOrigins: splitList(envutil.GetEnv("CORS_ORIGINS", "", log)),

		GraphAlpha:        envutil.GetEnvAsFloat("GRAPH_ALPHA", aggregates.DefaultAlpha, log),
		InitUserTokens:    envutil.GetEnvAsFloat("INIT_USER_TOKENS", 0, log),
		MaxSimulationSize: envutil.GetEnvAsInt("MAX_SIMULATION_STEPS", aggregates.DefaultMaxSweepSteps, log),

		DB: DBConfig{
			Driver:          envutil.GetEnv("DB_DRIVER", db.DriverPostgres, log),
			DSN:             envutil.GetEnv("POSTGRES_DSN", "", log),
			Host:            envutil.GetEnv("POSTGRES_HOST", "localhost", log),
			Port:            envutil.GetEnv("POSTGRES_PORT", "5432", log),
			User:            envutil.GetEnv("POSTGRES_USER", "postgres", log),
			Password:        envutil.GetEnv("POSTGRES_PASSWORD", "", log),
			Name:            envutil.GetEnv("POSTGRES_NAME", "graphledger", log),
			SSLMode:         envutil.GetEnv("POSTGRES_SSLMODE", "disable", log),
			MaxOpenConns:    envutil.GetEnvAsInt("DB_MAX_OPEN_CONNS", 20, log),
			MaxIdleConns:    envutil.GetEnvAsInt("DB_MAX_IDLE_CONNS", 10, log),
			ConnMaxLifetime: envutil.GetEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute, log),
		},
		Auth: AuthConfig{
			PasswordHasher: envutil.GetEnv("PASSWORD_HASHER", services.HasherBcrypt, log),
			BcryptCost:     envutil.GetEnvAsInt("BCRYPT_COST", 10, log),
			JWTAlgorithm:   envutil.GetEnv("JWT_ALGORITHM", services.SignerHS256, log),
			JWTSecretKey:   envutil.GetEnv("JWT_SECRET_KEY", "", log),
			JWTPrivateKey:  envutil.GetEnv("JWT_PRIVATE_KEY_PATH", "", log),
			JWTPublicKey:   envutil.GetEnv("JWT_PUBLIC_KEY_PATH", "", log),
			JWTIssuer:      envutil.GetEnv("JWT_ISSUER", "graphledger", log),
			JWTAudience:    envutil.GetEnv("JWT_AUDIENCE", "", log),
			AccessTokenTTL: envutil.GetEnvAsDuration("ACCESS_TOKEN_TTL", time.Hour, log),
			AdminEmail:     envutil.GetEnv("ADMIN_EMAIL", "", log),
			AdminPassword:  envutil.GetEnv("ADMIN_PASSWORD", "", log),
		},
		Cache: CacheConfig{
			RedisAddr:     envutil.GetEnv("REDIS_ADDR", "", log),
			RedisPassword: envutil.GetEnv("REDIS_PASSWORD", "", log),
			RedisDB:       envutil.GetEnvAsInt("REDIS_DB", 0, log),
			VersionTTL:    envutil.GetEnvAsDuration("VERSION_CACHE_TTL", time.Hour, log),
			MemoryEntries: envutil.GetEnvAsInt("VERSION_CACHE_ENTRIES", 1024, log),
		},
		Telemetry: TelemetryConfig{
			MetricsEnabled: envutil.GetEnvAsBool("METRICS_ENABLED", true, log),
			MetricsAddr:    envutil.GetEnv("METRICS_ADDR", "", log),
			OtelEnabled:    envutil.GetEnvAsBool("OTEL_ENABLED", false, log),
			OtelEndpoint:   envutil.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			OtelHeaders:    envutil.GetEnv("OTEL_EXPORTER_OTLP_HEADERS", "", log),
			OtelInsecure:   envutil.GetEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", true, log),
			OtelSample:     envutil.GetEnvAsFloat("OTEL_SAMPLE_RATIO", 1, log),
		},
	}

	if path := envutil.GetEnv("CONFIG_FILE", "", log); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
		log.Info("Config file applied", "path", path)
	}
	return cfg, nil
}

// Validate rejects settings the domain cannot run with.
func (c Config) Validate() error {
	if !(c.GraphAlpha > 0 && c.GraphAlpha < 1) {
		return fmt.Errorf("GRAPH_ALPHA must be in (0,1), got %v", c.GraphAlpha)
	}
	if c.InitUserTokens < 0 {
		return fmt.Errorf("INIT_USER_TOKENS cannot be negative, got %v", c.InitUserTokens)
	}
	if c.MaxSimulationSize <= 0 {
		return fmt.Errorf("MAX_SIMULATION_STEPS must be positive, got %d", c.MaxSimulationSize)
	}
	switch strings.ToLower(strings.TrimSpace(c.Auth.PasswordHasher)) {
	case "", services.HasherBcrypt:
	default:
		return fmt.Errorf("unknown PASSWORD_HASHER %q", c.Auth.PasswordHasher)
	}
	switch strings.ToUpper(strings.TrimSpace(c.Auth.JWTAlgorithm)) {
	case "", services.SignerHS256:
		if strings.TrimSpace(c.Auth.JWTSecretKey) == "" {
			return fmt.Errorf("JWT_SECRET_KEY is required for HS256")
		}
	case services.SignerRS256:
		if strings.TrimSpace(c.Auth.JWTPrivateKey) == "" {
			return fmt.Errorf("JWT_PRIVATE_KEY_PATH is required for RS256")
		}
	default:
		return fmt.Errorf("unknown JWT_ALGORITHM %q", c.Auth.JWTAlgorithm)
	}
	switch strings.ToLower(strings.TrimSpace(c.DB.Driver)) {
	case "", db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DB.Driver)
	}
	return nil
}

func (c Config) dbConfig() db.Config {
	return db.Config{
		Driver:          c.DB.Driver,
		DSN:             c.DB.DSN,
		Host:            c.DB.Host,
		Port:            c.DB.Port,
		User:            c.DB.User,
		Password:        c.DB.Password,
		Name:            c.DB.Name,
		SSLMode:         c.DB.SSLMode,
		MaxOpenConns:    c.DB.MaxOpenConns,
		MaxIdleConns:    c.DB.MaxIdleConns,
		ConnMaxLifetime: c.DB.ConnMaxLifetime,
	}
}

func (c Config) redisConfig() redis.Config {
	return redis.Config{Addr: c.Cache.RedisAddr, Password: c.Cache.RedisPassword, DB: c.Cache.RedisDB}
}

func (c Config) otelConfig() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.Telemetry.OtelEnabled,
		ServiceName: c.ServiceName,
		Environment: c.Environment,
		Version:     c.Version,
		Endpoint:    c.Telemetry.OtelEndpoint,
		Headers:     c.Telemetry.OtelHeaders,
		Insecure:    c.Telemetry.OtelInsecure,
		SampleRatio: c.Telemetry.OtelSample,
	}
}

func (c Config) signerConfig() services.SignerConfig {
	return services.SignerConfig{
		Algorithm:      c.Auth.JWTAlgorithm,
		SecretKey:      c.Auth.JWTSecretKey,
		PrivateKeyPath: c.Auth.JWTPrivateKey,
		PublicKeyPath:  c.Auth.JWTPublicKey,
		Issuer:         c.Auth.JWTIssuer,
		Audience:       c.Auth.JWTAudience,
		TTL:            c.Auth.AccessTokenTTL,
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
