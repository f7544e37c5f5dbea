package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env"
)

type Config struct {
	Address          string        `env:"RUN_ADDRESS" envDefault:"localhost:5000"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"INFO"`
	DatabaseURI      string        `env:"DATABASE_URI" envDefault:"mongodb://localhost:27017"`
	DatabaseName     string        `env:"DATABASE_NAME" envDefault:"storefront"`
	JWTSecret        string        `env:"JWT_SECRET"`
	JWTTTL           time.Duration `env:"JWT_TTL" envDefault:"168h"`
	AppEnv           string        `env:"APP_ENV" envDefault:"development"`
	ClientURL        string        `env:"CLIENT_URL" envDefault:"http://localhost:5173"`
	KafkaBrokers     string        `env:"KAFKA_BROKERS"`
	KafkaOrdersTopic string        `env:"KAFKA_ORDERS_TOPIC" envDefault:"storefront.orders"`
	EventWorkers     int           `env:"EVENT_WORKERS" envDefault:"4"`
}

// NewConfig reads the environment first; flags override it.
func NewConfig(args []string) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.StringVar(&cfg.Address, "a", cfg.Address, "{Host:port} for server")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "Log level for server")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "Database connection string (mongodb:// or postgres://)")
	fs.DurationVar(&cfg.JWTTTL, "t", cfg.JWTTTL, "TTL for JWT token(e.g. 24h; 30m )")
	fs.StringVar(&cfg.KafkaBrokers, "k", cfg.KafkaBrokers, "Comma-separated Kafka brokers, empty disables order events")
	fs.IntVar(&cfg.EventWorkers, "w", cfg.EventWorkers, "Size of event worker pool")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("ENV JWT_SECRET must be set")
	}
	return cfg, nil
}

func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

// UsesMongo reports whether DatabaseURI points at MongoDB rather than
// PostgreSQL.
func (c *Config) UsesMongo() bool {
	return strings.HasPrefix(c.DatabaseURI, "mongodb")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Origins() []string { return splitList(c.ClientURL) }

func (c *Config) Brokers() []string { return splitList(c.KafkaBrokers) }
