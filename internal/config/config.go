// internal/config/config.go
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

// MaxRetriesLimit bounds retry.max_retries.
const MaxRetriesLimit = 10

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	DBPath     string           `yaml:"db_path"`
	Provider   string           `yaml:"provider"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Retry      RetryConfig      `yaml:"retry"`
	FoodFacts  FoodFactsConfig  `yaml:"foodfacts"`
	Log        LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	// AppName is sent as X-Title so requests show up under this app in OpenRouter.
	AppName string `yaml:"app_name"`
}

type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries"`
	BaseDelay  time.Duration `yaml:"base_delay"`
	// RequestTimeout bounds a single provider call, not the whole retry loop.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type FoodFactsConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func Default() Config {
	return Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8011},
		DBPath:   "/data/nutrilens.db",
		Provider: ProviderGemini,
		Gemini: GeminiConfig{
			Model: "gemini-2.0-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model:   "google/gemini-2.0-flash-001",
			BaseURL: "https://openrouter.ai/api/v1",
			AppName: "nutrilens",
		},
		Retry: RetryConfig{
			MaxRetries:     3,
			BaseDelay:      5 * time.Second,
			RequestTimeout: 60 * time.Second,
		},
		FoodFacts: FoodFactsConfig{
			BaseURL:   "https://world.openfoodfacts.org",
			UserAgent: "nutrilens/1.0",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, dotenv files and finally the process environment. With no envFiles
// a .env in the working directory is used when present.
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
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Provider, "AI_PROVIDER")
	setString(&c.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&c.Gemini.Model, "GEMINI_MODEL")
	setString(&c.OpenRouter.APIKey, "OPENROUTER_API_KEY")
	setString(&c.OpenRouter.Model, "OPENROUTER_MODEL")
	setString(&c.OpenRouter.BaseURL, "OPENROUTER_BASE_URL")
	setString(&c.DBPath, "DB_PATH")
	setString(&c.Server.Host, "HOST")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.FoodFacts.BaseURL, "OPENFOODFACTS_URL")

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("AI_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AI_MAX_RETRIES %q: %w", v, err)
		}
		c.Retry.MaxRetries = n
	}
	if v := os.Getenv("AI_RETRY_BASE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid AI_RETRY_BASE_DELAY %q: %w", v, err)
		}
		c.Retry.BaseDelay = d
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks that the selected provider is known and has credentials.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini provider")
		}
	case ProviderOpenRouter:
		if c.OpenRouter.APIKey == "" {
			return errors.New("OPENROUTER_API_KEY is required for the openrouter provider")
		}
	default:
		return fmt.Errorf("unknown AI provider %q", c.Provider)
	}
	if c.Retry.MaxRetries < 0 || c.Retry.MaxRetries > MaxRetriesLimit {
		return fmt.Errorf("retry.max_retries must be between 0 and %d, got %d", MaxRetriesLimit, c.Retry.MaxRetries)
	}
	if c.Retry.BaseDelay < 0 {
		return fmt.Errorf("retry.base_delay must not be negative, got %s", c.Retry.BaseDelay)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	return nil
}
