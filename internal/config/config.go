package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the resolved runtime configuration.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	RabbitMQ RabbitMQConfig
	Redis    RedisConfig
	Orders   OrdersConfig
}

type AppConfig struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string
}

type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// RabbitMQConfig leaves event publication disabled when URL is empty.
type RabbitMQConfig struct {
	URL      string
	Exchange string
	Queue    string
}

// RedisConfig leaves market data caching disabled when URL is empty.
type RedisConfig struct {
	URL            string
	MarketCacheTTL time.Duration
}

type OrdersConfig struct {
	// StrictStock rejects a completion when the listing no longer holds the
	// order quantity instead of clamping the stock at zero.
	StrictStock bool
}

// SetDefaults registers every known key with its default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=farmconnect port=5432 sslmode=disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_CONN_MAX_LIFETIME", time.Hour)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", 24*time.Hour)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "farmconnect.orders")
	v.SetDefault("RABBITMQ_QUEUE", "order_events")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("MARKET_CACHE_TTL", 10*time.Minute)
	v.SetDefault("ORDERS_STRICT_STOCK", true)
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Port:      v.GetString("APP_PORT"),
			Env:       v.GetString("APP_ENV"),
			LogLevel:  v.GetString("LOG_LEVEL"),
			LogFormat: v.GetString("LOG_FORMAT"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:             v.GetString("DATABASE_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			TTL:    v.GetDuration("JWT_TTL"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
			Queue:    v.GetString("RABBITMQ_QUEUE"),
		},
		Redis: RedisConfig{
			URL:            v.GetString("REDIS_URL"),
			MarketCacheTTL: v.GetDuration("MARKET_CACHE_TTL"),
		},
		Orders: OrdersConfig{
			StrictStock: v.GetBool("ORDERS_STRICT_STOCK"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	return nil
}

func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}
