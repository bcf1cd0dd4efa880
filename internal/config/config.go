package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the canteen system
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Auth     AuthConfig     `yaml:"auth"`
	Canteen  CanteenConfig  `yaml:"canteen"`
	SMTP     SMTPConfig     `yaml:"smtp"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port                  int `yaml:"port"`
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// RabbitMQConfig holds RabbitMQ connection configuration
type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// AuthConfig holds bearer token settings
type AuthConfig struct {
	Secret          string `yaml:"secret"`
	Issuer          string `yaml:"issuer"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
}

// CanteenConfig holds the default operating hours
type CanteenConfig struct {
	OpeningTime string `yaml:"opening_time"`
	ClosingTime string `yaml:"closing_time"`
	Timezone    string `yaml:"timezone"`
}

// SMTPConfig holds outbound email settings. An empty host disables delivery.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Default returns the configuration used when no file value overrides it
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                  8000,
			RequestTimeoutSeconds: 30,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "canteen",
			Database: "canteen",
		},
		RabbitMQ: RabbitMQConfig{
			Host:     "localhost",
			Port:     5672,
			User:     "guest",
			Password: "guest",
		},
		Auth: AuthConfig{
			Issuer:          "canteen-system",
			TokenTTLMinutes: 60,
		},
		Canteen: CanteenConfig{
			OpeningTime: "09:00",
			ClosingTime: "17:00",
			Timezone:    "Local",
		},
		SMTP: SMTPConfig{
			Port: 587,
			From: "noreply@canteen.local",
		},
	}
}

// Load reads configuration from a YAML file, then applies .env and environment overrides.
// A missing file is not an error: defaults and environment are used instead.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides values from environment variables
func (c *Config) applyEnv() error {
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Database, "DB_NAME")
	setString(&c.RabbitMQ.Host, "RABBITMQ_HOST")
	setString(&c.RabbitMQ.User, "RABBITMQ_USER")
	setString(&c.RabbitMQ.Password, "RABBITMQ_PASSWORD")
	setString(&c.Auth.Secret, "AUTH_SECRET")
	setString(&c.Canteen.OpeningTime, "CANTEEN_OPENING_TIME")
	setString(&c.Canteen.ClosingTime, "CANTEEN_CLOSING_TIME")
	setString(&c.Canteen.Timezone, "CANTEEN_TIMEZONE")
	setString(&c.SMTP.Host, "SMTP_HOST")
	setString(&c.SMTP.Username, "SMTP_USERNAME")
	setString(&c.SMTP.Password, "SMTP_PASSWORD")
	setString(&c.SMTP.From, "SMTP_FROM")

	ints := []struct {
		dst *int
		key string
	}{
		{&c.Server.Port, "PORT"},
		{&c.Database.Port, "DB_PORT"},
		{&c.RabbitMQ.Port, "RABBITMQ_PORT"},
		{&c.SMTP.Port, "SMTP_PORT"},
	}
	for _, v := range ints {
		if err := setInt(v.dst, v.key); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535]: %d", c.Server.Port)
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return fmt.Errorf("auth.token_ttl_minutes must be positive: %d", c.Auth.TokenTTLMinutes)
	}
	if _, err := ParseClock(c.Canteen.OpeningTime); err != nil {
		return fmt.Errorf("canteen.opening_time: %w", err)
	}
	if _, err := ParseClock(c.Canteen.ClosingTime); err != nil {
		return fmt.Errorf("canteen.closing_time: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("canteen.timezone: %w", err)
	}
	return nil
}

// Location returns the timezone the canteen hours are expressed in
func (c *Config) Location() (*time.Location, error) {
	if c.Canteen.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Canteen.Timezone)
}

// TokenTTL returns the lifetime of issued access tokens
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

// RequestTimeout returns the per-request processing deadline
func (c *Config) RequestTimeout() time.Duration {
	if c.Server.RequestTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

// DatabaseURL returns a PostgreSQL connection URL
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}

// ParseClock parses a time of day in HH:MM or HH:MM:SS form and returns
// the offset from midnight.
func ParseClock(value string) (time.Duration, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		t, err := time.Parse(layout, value)
		if err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q, expected HH:MM or HH:MM:SS", value)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s value: %w", key, err)
	}
	*dst = n
	return nil
}
