package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	S3        S3Config        `yaml:"s3"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
	// Timezone names the IANA zone in which "today" is observed.
	Timezone string `yaml:"timezone"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// Auth modes.
const (
	AuthModeJWT = "jwt"
	AuthModeDev = "dev"
)

type AuthConfig struct {
	// Mode is "jwt" (bearer tokens from the identity provider) or "dev"
	// (every request acts as DevUserID).
	Mode      string `yaml:"mode"`
	JWTSecret string `yaml:"jwt_secret"`
	JWTIssuer string `yaml:"jwt_issuer"`
	// APIKey lets the import client authenticate as APIKeyUser.
	APIKey     string `yaml:"api_key"`
	APIKeyUser string `yaml:"api_key_user"`
	DevUserID  string `yaml:"dev_user_id"`
	DevEmail   string `yaml:"dev_email"`
}

// DevUser is DevUserID parsed; uuid.Nil if unset or malformed.
func (a AuthConfig) DevUser() uuid.UUID {
	id, _ := uuid.Parse(a.DevUserID)
	return id
}

// KeyUser is APIKeyUser parsed; uuid.Nil if unset or malformed.
func (a AuthConfig) KeyUser() uuid.UUID {
	id, _ := uuid.Parse(a.APIKeyUser)
	return id
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Location resolves the configured timezone, defaulting to UTC.
func (s ServerConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix TRITRACK_ and underscore-separated paths:
//
//	TRITRACK_SERVER_HOST, TRITRACK_SERVER_PORT, TRITRACK_SERVER_TIMEZONE,
//	TRITRACK_DB_HOST, TRITRACK_DB_PORT, TRITRACK_DB_NAME,
//	TRITRACK_DB_USER, TRITRACK_DB_PASSWORD, TRITRACK_DB_SSLMODE,
//	TRITRACK_AUTH_MODE, TRITRACK_AUTH_JWT_SECRET, TRITRACK_AUTH_API_KEY,
//	TRITRACK_KAFKA_BROKERS (comma-separated),
//	TRITRACK_S3_ACCESS_KEY_ID, TRITRACK_S3_SECRET_ACCESS_KEY
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("TRITRACK_SERVER_HOST", &cfg.Server.Host)
	setInt("TRITRACK_SERVER_PORT", &cfg.Server.Port)
	setString("TRITRACK_SERVER_TIMEZONE", &cfg.Server.Timezone)
	setString("TRITRACK_DB_HOST", &cfg.Database.Host)
	setInt("TRITRACK_DB_PORT", &cfg.Database.Port)
	setString("TRITRACK_DB_NAME", &cfg.Database.Name)
	setString("TRITRACK_DB_USER", &cfg.Database.User)
	setString("TRITRACK_DB_PASSWORD", &cfg.Database.Password)
	setString("TRITRACK_DB_SSLMODE", &cfg.Database.SSLMode)
	setString("TRITRACK_AUTH_MODE", &cfg.Auth.Mode)
	setString("TRITRACK_AUTH_JWT_SECRET", &cfg.Auth.JWTSecret)
	setString("TRITRACK_AUTH_API_KEY", &cfg.Auth.APIKey)
	setString("TRITRACK_S3_ACCESS_KEY_ID", &cfg.S3.AccessKeyID)
	setString("TRITRACK_S3_SECRET_ACCESS_KEY", &cfg.S3.SecretAccessKey)

	if v := os.Getenv("TRITRACK_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Auth.Mode == "" {
		cfg.Auth.Mode = AuthModeJWT
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "tritrack.workouts"
	}
	if cfg.S3.Region == "" {
		cfg.S3.Region = "us-east-1"
	}
	if cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "tritrack"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if _, err := c.Server.Location(); err != nil {
		return err
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}

	switch c.Auth.Mode {
	case AuthModeJWT:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required in jwt mode")
		}
	case AuthModeDev:
		if _, err := uuid.Parse(c.Auth.DevUserID); err != nil {
			return fmt.Errorf("auth.dev_user_id must be a uuid in dev mode: %w", err)
		}
	default:
		return fmt.Errorf("auth.mode must be %q or %q, got %q", AuthModeJWT, AuthModeDev, c.Auth.Mode)
	}
	if c.Auth.APIKey != "" {
		if _, err := uuid.Parse(c.Auth.APIKeyUser); err != nil {
			return fmt.Errorf("auth.api_key_user must be a uuid when auth.api_key is set: %w", err)
		}
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	if c.S3.Enabled && c.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when s3 is enabled")
	}
	return nil
}
