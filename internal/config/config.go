package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "chargenet/libs/config"
)

// HTTPConfig holds listener settings.
type HTTPConfig struct {
	Port string `yaml:"port" env:"CHARGENET_HTTP_PORT"`
}

// DatabaseConfig holds the CDR store settings. An empty DSN disables
// CDR persistence.
type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"CHARGENET_POSTGRES_DSN"`
}

// RedisConfig holds the active-session mirror settings. An empty addr
// disables the mirror.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"CHARGENET_REDIS_ADDR"`
	Password string `yaml:"password" env:"CHARGENET_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"CHARGENET_REDIS_DB"`
	TTL      int    `yaml:"ttlSeconds" env:"CHARGENET_REDIS_TTL"`
}

// NatsConfig holds the event notifier settings. An empty URL disables
// event publishing.
type NatsConfig struct {
	URL string `yaml:"url" env:"CHARGENET_NATS_URL"`
}

// AuthConfig holds operator API token settings.
type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret" env:"CHARGENET_JWT_SECRET"`
	TokenTTL  int    `yaml:"tokenTtlSeconds" env:"CHARGENET_JWT_TTL"`
}

// Config defines the chargenet service configuration.
type Config struct {
	HTTP          HTTPConfig     `yaml:"http"`
	Database      DatabaseConfig `yaml:"database"`
	Redis         RedisConfig    `yaml:"redis"`
	Nats          NatsConfig     `yaml:"nats"`
	Auth          AuthConfig     `yaml:"auth"`
	ProviderID    string         `yaml:"providerId" env:"CHARGENET_PROVIDER_ID"`
	PingInterval  int            `yaml:"pingIntervalSeconds" env:"CHARGENET_WS_PING_INTERVAL"`
	SweepInterval int            `yaml:"sweepIntervalSeconds" env:"CHARGENET_SWEEP_INTERVAL"`
}

// Load reads configuration via the shared helper and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{
		HTTP:       HTTPConfig{Port: "8080"},
		Redis:      RedisConfig{TTL: 86400},
		Auth:       AuthConfig{TokenTTL: 3600},
		ProviderID: "DE*CHN",
	}

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("config: jwt secret required")
	}
	if strings.TrimSpace(cfg.ProviderID) == "" {
		return nil, errors.New("config: provider id required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// ActiveSessionTTL returns the redis mirror TTL as a duration.
func (c *Config) ActiveSessionTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Redis.TTL) * time.Second
}

// TokenTTL returns the operator JWT lifetime.
func (c *Config) TokenTTL() time.Duration {
	if c.Auth.TokenTTL <= 0 {
		return time.Hour
	}
	return time.Duration(c.Auth.TokenTTL) * time.Second
}

// WSPingInterval returns the websocket keepalive interval.
func (c *Config) WSPingInterval() time.Duration {
	if c.PingInterval <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.PingInterval) * time.Second
}

// ReservationSweepInterval returns the expiry sweep cadence.
func (c *Config) ReservationSweepInterval() time.Duration {
	if c.SweepInterval <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.SweepInterval) * time.Second
}
