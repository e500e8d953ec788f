package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for all environment variables read by Load,
// e.g. DEALMEMO_SERVER_PORT or DEALMEMO_DATABASE_URL.
const envPrefix = "DEALMEMO"

// Load reads configuration from environment variables, applies defaults,
// and validates the result. Environment variables use the DEALMEMO_ prefix
// with underscores separating nested keys.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not surface env-only keys through Unmarshal;
	// binding each known key explicitly makes them visible.
	for _, key := range []string{
		"server.port",
		"server.log_level",
		"database.url",
		"auth.jwt_secret",
		"auth.token_lifetime_minutes",
		"llm.gemini_api_key",
		"llm.model_name",
		"llm.max_retries",
		"llm.retry_delay_seconds",
		"worker.mode",
		"worker.remote_url",
		"worker.remote_token",
		"worker.launch_timeout",
		"worker.count",
		"worker.queue_size",
		"worker.stuck_job_age",
		"worker.janitor_schedule",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	if cfg.Worker.Mode == "remote" && cfg.Worker.RemoteURL == "" {
		return nil, fmt.Errorf("configuration validation failed: worker.remote_url is required in remote mode")
	}

	if cfg.Worker.Mode == "embedded" && cfg.LLM.GeminiAPIKey == "" {
		return nil, fmt.Errorf("configuration validation failed: llm.gemini_api_key is required in embedded mode")
	}

	return &cfg, nil
}

// LoadAuth reads and validates only the auth section. Tooling that mints
// tokens needs the JWT settings without the database or LLM configuration a
// full server instance requires.
func LoadAuth() (*AuthConfig, error) {
	v := viper.New()

	v.SetDefault("auth.token_lifetime_minutes", 60)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{"auth.jwt_secret", "auth.token_lifetime_minutes"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg struct {
		Auth AuthConfig `mapstructure:"auth"`
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg.Auth); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg.Auth, nil
}

// setDefaults applies default values for settings that have sensible ones.
// Secrets and connection strings never default.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)
	v.SetDefault("worker.mode", "embedded")
	v.SetDefault("worker.launch_timeout", "6m")
	v.SetDefault("worker.count", 2)
	v.SetDefault("worker.queue_size", 100)
	v.SetDefault("worker.stuck_job_age", "30m")
	v.SetDefault("worker.janitor_schedule", "@every 5m")
}
