// ABOUTME: Console configuration loaded from defaults, YAML, .env and the environment.
// ABOUTME: The merged result is checked with struct validation tags before use.

package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/pyconkr/console/internal/i18n"
)

// Config holds every setting the console binary reads.
type Config struct {
	Port     int `yaml:"port" envconfig:"CONSOLE_PORT" validate:"min=1,max=65535"`
	MockPort int `yaml:"mock_port" envconfig:"CONSOLE_MOCK_PORT" validate:"min=1,max=65535"`

	APIDomain  string        `yaml:"api_domain" envconfig:"CONSOLE_API_DOMAIN" validate:"required,url"`
	APITimeout time.Duration `yaml:"api_timeout" envconfig:"CONSOLE_API_TIMEOUT" validate:"gt=0"`
	Language   i18n.Language `yaml:"language" envconfig:"CONSOLE_LANGUAGE" validate:"oneof=ko en"`

	CSRFCookieName    string `yaml:"csrf_cookie_name" envconfig:"CONSOLE_CSRF_COOKIE_NAME" validate:"required"`
	SessionCookieName string `yaml:"session_cookie_name" envconfig:"CONSOLE_SESSION_COOKIE_NAME" validate:"required"`
	SecureCookies     bool   `yaml:"secure_cookies" envconfig:"CONSOLE_SECURE_COOKIES"`

	DatabasePath string `yaml:"database_path" envconfig:"CONSOLE_DATABASE_PATH" validate:"required"`
	RedisURL     string `yaml:"redis_url" envconfig:"CONSOLE_REDIS_URL" validate:"omitempty,url"`

	SchemaTTL       time.Duration `yaml:"schema_ttl" envconfig:"CONSOLE_SCHEMA_TTL" validate:"min=0"`
	NotificationTTL time.Duration `yaml:"notification_ttl" envconfig:"CONSOLE_NOTIFICATION_TTL" validate:"gt=0"`
	FlashSecret     string        `yaml:"flash_secret" envconfig:"CONSOLE_FLASH_SECRET" validate:"omitempty,min=16"`

	LogLevel    string `yaml:"log_level" envconfig:"CONSOLE_LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogEncoding string `yaml:"log_encoding" envconfig:"CONSOLE_LOG_ENCODING" validate:"oneof=json console"`

	HintOverridesPath string `yaml:"hint_overrides" envconfig:"CONSOLE_HINT_OVERRIDES"`

	OpenAIKey   string `yaml:"openai_api_key" envconfig:"OPENAI_API_KEY"`
	OpenAIModel string `yaml:"openai_model" envconfig:"OPENAI_MODEL" validate:"required"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Port:              8080,
		MockPort:          8081,
		APIDomain:         "http://localhost:8081",
		APITimeout:        10 * time.Second,
		Language:          i18n.Korean,
		CSRFCookieName:    "csrftoken",
		SessionCookieName: "sessionid",
		DatabasePath:      "console.db",
		SchemaTTL:         5 * time.Minute,
		NotificationTTL:   5 * time.Second,
		LogLevel:          "info",
		LogEncoding:       "json",
		OpenAIModel:       "gpt-4o-mini",
	}
}

var validate = validator.New()

// Load builds the configuration. path names an optional YAML file; envFiles
// are dotenv files loaded before the environment is read (".env" when none
// are given). Missing files are skipped, and variables already in the
// environment win over dotenv values.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg.Language = i18n.Parse(string(cfg.Language))

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// FlashKey returns the flash cookie signing key. Without a configured secret
// a random per-process key is generated, so flashes do not survive restarts.
func (c *Config) FlashKey() ([]byte, bool) {
	if c.FlashSecret != "" {
		return []byte(c.FlashSecret), true
	}
	key := make([]byte, 32)
	rand.Read(key)
	return key, false
}

// Addr is the listen address for the console server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// MockAddr is the listen address for the development backend.
func (c *Config) MockAddr() string {
	return fmt.Sprintf(":%d", c.MockPort)
}
