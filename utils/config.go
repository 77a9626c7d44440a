package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env           string        `yaml:"app_env"`
	Addr          string        `yaml:"addr"`
	DatabaseURL   string        `yaml:"database_url"`
	RedisURL      string        `yaml:"redis_url"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	SecureCookies bool          `yaml:"secure_cookies"`
	LogLevel      string        `yaml:"log_level"`

	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	MailFrom       string `yaml:"mail_from"`
	MailFromName   string `yaml:"mail_from_name"`

	AdminName     string `yaml:"admin_name"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

func DefaultConfig() Config {
	return Config{
		Env:          "development",
		Addr:         ":8080",
		DatabaseURL:  "luggage.db",
		SessionTTL:   24 * time.Hour,
		LogLevel:     "info",
		MailFrom:     "donotreply@lostluggage.local",
		MailFromName: "Lost Luggage Desk",
		AdminName:    "Administrator",
	}
}

func (c Config) IsProduction() bool { return c.Env == "production" }

// LoadConfig reads .env (outside production), then the optional YAML file at
// path, then environment variables, later sources winning.
func LoadConfig(path string) (Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, continuing")
		}
	}

	cfg := DefaultConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"APP_ENV":          &c.Env,
		"ADDR":             &c.Addr,
		"DATABASE_URL":     &c.DatabaseURL,
		"REDIS_URL":        &c.RedisURL,
		"LOG_LEVEL":        &c.LogLevel,
		"SENDGRID_API_KEY": &c.SendGridAPIKey,
		"MAIL_FROM":        &c.MailFrom,
		"MAIL_FROM_NAME":   &c.MailFromName,
		"ADMIN_NAME":       &c.AdminName,
		"ADMIN_EMAIL":      &c.AdminEmail,
		"ADMIN_PASSWORD":   &c.AdminPassword,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("SESSION_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SESSION_TTL: %w", err)
		}
		c.SessionTTL = d
	}
	if v, ok := os.LookupEnv("SECURE_COOKIES"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SECURE_COOKIES: %w", err)
		}
		c.SecureCookies = b
	}
	return nil
}

func (c Config) Validate() error {
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.Addr == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	return nil
}
