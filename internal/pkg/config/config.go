package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=168h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	StoreDriver     string        `env:"STORE_DRIVER,          default=mongo"`
	LoginRatePerMin int           `env:"LOGIN_RATE_PER_MINUTE, default=10"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,      default=10s"`

	Mongo MongoConfig
	MySQL MySQLConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=sweet_shop"`
}

type MySQLConfig struct {
	DSN string `env:"MYSQL_DSN, default=root:root@tcp(localhost:3306)/sweet_shop?parseTime=true&charset=utf8mb4"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED,  default=true"`
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

// Load reads configuration from environment variables using go-envconfig and
// validates the result.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("config: JWT_SECRET is required"))
	}
	switch c.StoreDriver {
	case DriverMongo, DriverMySQL, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("config: TOKEN_TTL must be positive"))
	}
	if c.LoginRatePerMin <= 0 {
		errs = append(errs, errors.New("config: LOGIN_RATE_PER_MINUTE must be positive"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the service runs with ENV=production.
// Session cookies are only marked Secure there.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
