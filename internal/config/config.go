package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Worker   WorkerConfig   `mapstructure:"worker" validate:"required"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains authentication settings for verifying bearer tokens
// issued by the external auth collaborator.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
	// TokenLifetimeMinutes applies to tokens minted by the development helper.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"gte=0"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	// GeminiAPIKey is required only when this instance runs the embedded
	// worker; remote-mode API instances never call the LLM.
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name" validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries" validate:"gte=0"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}

// WorkerConfig controls how memo generation work is dispatched and bounded.
type WorkerConfig struct {
	// Mode selects the generation worker: "embedded" runs the task runner in
	// process; "remote" invokes an external worker endpoint over HTTP.
	Mode string `mapstructure:"mode" validate:"required,oneof=embedded remote"`

	// RemoteURL is the external worker endpoint, required in remote mode.
	RemoteURL string `mapstructure:"remote_url" validate:"omitempty,url"`

	// RemoteToken is the bearer credential presented to the remote worker.
	RemoteToken string `mapstructure:"remote_token"`

	// LaunchTimeout bounds how long a generation request waits for the
	// worker to accept a job. It must stay under the hosting platform's own
	// function timeout so the caller sees a clean 504 rather than a dropped
	// connection.
	LaunchTimeout time.Duration `mapstructure:"launch_timeout" validate:"required"`

	// Count is the number of concurrent embedded workers.
	Count int `mapstructure:"count" validate:"required,gt=0"`

	// QueueSize is the embedded task queue buffer size.
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`

	// StuckJobAge is how long a job may sit in generating state without an
	// update before the janitor fails it.
	StuckJobAge time.Duration `mapstructure:"stuck_job_age" validate:"required"`

	// JanitorSchedule is the cron expression for the stuck-job sweep.
	JanitorSchedule string `mapstructure:"janitor_schedule" validate:"required"`
}
