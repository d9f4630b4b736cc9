package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional config file and environment
// variables. Environment variables (MASHER_ prefix, e.g. MASHER_SERVER_PORT)
// take precedence over values from the config file, which take precedence
// over defaults. Returns a populated Config or an error if loading or
// validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("database.path", "masher.db")
	v.SetDefault("database.url", "")
	v.SetDefault("store.namespace", "flashcard-storage")
	v.SetDefault("store.bootstrap_seed", true)
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.prompt_template_path", "")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)
	v.SetDefault("task.queue_size", 16)
	v.SetDefault("task.worker_count", 2)
	v.SetDefault("extract.max_file_bytes", 10*1024*1024)
	v.SetDefault("extract.fetch_timeout_seconds", 30)

	// Optional config file next to the binary or in the working directory.
	v.SetConfigName("masher")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables with MASHER_ prefix override everything.
	v.SetEnvPrefix("MASHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
