package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DBDriver         string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBLogLevel       string
	RedisHost        string
	RedisPort        string
	SessionSecret    string
	GinMode          string
	HTTPAddr         string
	OpenAIAPIKey     string
	OpenAIModel      string
	Timezone         string
	ProjectCacheSize int
}

var defaults = map[string]any{
	"DB_DRIVER":          "mysql",
	"DB_HOST":            "localhost",
	"DB_PORT":            "3306",
	"DB_USER":            "machinetrack",
	"DB_PASSWORD":        "machinetrack",
	"DB_NAME":            "machinetrack",
	"DB_LOG_LEVEL":       "warn",
	"REDIS_HOST":         "",
	"REDIS_PORT":         "6379",
	"SESSION_SECRET":     "default-secret-key-change-me",
	"GIN_MODE":           "debug",
	"HTTP_ADDR":          ":8080",
	"OPENAI_API_KEY":     "",
	"OPENAI_MODEL":       "gpt-4o",
	"TIMEZONE":           "Europe/Madrid",
	"PROJECT_CACHE_SIZE": 256,
}

// Load reads configuration from the environment, optionally layered over a
// config file. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		DBDriver:         v.GetString("DB_DRIVER"),
		DBHost:           v.GetString("DB_HOST"),
		DBPort:           v.GetString("DB_PORT"),
		DBUser:           v.GetString("DB_USER"),
		DBPassword:       v.GetString("DB_PASSWORD"),
		DBName:           v.GetString("DB_NAME"),
		DBLogLevel:       v.GetString("DB_LOG_LEVEL"),
		RedisHost:        v.GetString("REDIS_HOST"),
		RedisPort:        v.GetString("REDIS_PORT"),
		SessionSecret:    v.GetString("SESSION_SECRET"),
		GinMode:          v.GetString("GIN_MODE"),
		HTTPAddr:         v.GetString("HTTP_ADDR"),
		OpenAIAPIKey:     v.GetString("OPENAI_API_KEY"),
		OpenAIModel:      v.GetString("OPENAI_MODEL"),
		Timezone:         v.GetString("TIMEZONE"),
		ProjectCacheSize: v.GetInt("PROJECT_CACHE_SIZE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside startup.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be mysql, postgres or sqlite, got %q", c.DBDriver)
	}
	if c.ProjectCacheSize < 0 {
		return fmt.Errorf("PROJECT_CACHE_SIZE cannot be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone, the calendar used for alert day boundaries.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// RedisAddr is empty when no Redis host is configured.
func (c *Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}
