// Package config loads application configuration from an optional YAML file
// plus environment variables. Environment variables win, so deployments only
// need to set the handful of values that differ from the defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/achowdhury/flashgen/pkg/validator"
)

type Config struct {
	Port        int           `mapstructure:"port" validate:"min=1,max=65535"`
	DBPath      string        `mapstructure:"db_path" validate:"required"`
	LogLevel    string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	CORSOrigins string        `mapstructure:"cors_origins" validate:"required"`
	OpenAI      OpenAIConfig  `mapstructure:"openai" validate:"required"`
	Shutdown    time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s"`
}

// OpenAIConfig configures the flashcard generator client. Timeout bounds the
// whole completion call; the upstream has no timeout of its own.
type OpenAIConfig struct {
	APIKey  string        `mapstructure:"api_key" validate:"required"`
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Model   string        `mapstructure:"model" validate:"required"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=1s"`
}

// Init reads configs/<CONFIG_NAME>.yaml (if present) and the environment,
// then validates the result. A missing config file is fine — defaults plus
// env vars are a complete configuration.
func Init() (*Config, error) {
	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("db_path", "data/flashgen.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_origins", "*")
	v.SetDefault("shutdown_timeout", 30*time.Second)
	v.SetDefault("openai.base_url", "https://api.openai.com")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.timeout", 60*time.Second)

	v.AutomaticEnv()

	bindings := map[string]string{
		"port":             "PORT",
		"db_path":          "DB_PATH",
		"log_level":        "LOG_LEVEL",
		"cors_origins":     "CORS_ORIGINS",
		"shutdown_timeout": "SHUTDOWN_TIMEOUT",
		"openai.api_key":   "OPENAI_API_KEY",
		"openai.base_url":  "OPENAI_BASE_URL",
		"openai.model":     "OPENAI_MODEL",
		"openai.timeout":   "GENERATOR_TIMEOUT",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	configName := os.Getenv("CONFIG_NAME")
	if configName == "" {
		configName = "default"
	}
	v.AddConfigPath("configs")
	v.SetConfigName(configName)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
