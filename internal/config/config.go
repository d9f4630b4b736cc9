package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Store    StoreConfig    `mapstructure:"store"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Task     TaskConfig     `mapstructure:"task"`
	Extract  ExtractConfig  `mapstructure:"extract"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port           int      `mapstructure:"port"            validate:"required,gt=0,lt=65536"`
	LogLevel       string   `mapstructure:"log_level"       validate:"required,oneof=debug info warn error"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig selects and configures the snapshot backend. When URL is
// set the Postgres backend is used, otherwise the local SQLite file at Path.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required_without=URL"`
	URL  string `mapstructure:"url"  validate:"omitempty,url"`
}

// StoreConfig contains deck/card store settings.
type StoreConfig struct {
	// Namespace keys the single durable snapshot record.
	Namespace string `mapstructure:"namespace" validate:"required"`

	// BootstrapSeed creates one example deck when no prior state exists.
	BootstrapSeed bool `mapstructure:"bootstrap_seed"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey       string `mapstructure:"gemini_api_key"`
	ModelName          string `mapstructure:"model_name"          validate:"required"`
	PromptTemplatePath string `mapstructure:"prompt_template_path"`
	MaxRetries         int    `mapstructure:"max_retries"         validate:"gte=0"`
	RetryDelaySeconds  int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}

// TaskConfig contains background generation worker settings.
type TaskConfig struct {
	QueueSize   int `mapstructure:"queue_size"   validate:"gt=0"`
	WorkerCount int `mapstructure:"worker_count" validate:"gt=0"`
}

// ExtractConfig contains content extraction settings.
type ExtractConfig struct {
	// MaxFileBytes caps uploaded file size.
	MaxFileBytes int64 `mapstructure:"max_file_bytes" validate:"gt=0"`

	// FetchTimeoutSeconds bounds URL content fetches.
	FetchTimeoutSeconds int `mapstructure:"fetch_timeout_seconds" validate:"gt=0"`
}
