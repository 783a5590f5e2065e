package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	// Gemini settings
	GeminiAPIKey  string        `env:"GEMINI,required"`
	GeminiBaseURL string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiModel   string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiTimeout time.Duration `env:"GEMINI_TIMEOUT" envDefault:"60s"`

	// Front-ends
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	HTTPAddr         string `env:"HTTP_ADDR" envDefault:":8080"`

	// Personas
	PersonaDir string `env:"PERSONA_DIR"`

	// Sessions
	SessionIdleTTL   time.Duration `env:"SESSION_IDLE_TTL" envDefault:"2h"`
	SessionSweepSpec string        `env:"SESSION_SWEEP_SPEC" envDefault:"@every 10m"`
	SessionDebug     bool          `env:"SESSION_DEBUG" envDefault:"false"`

	// Storage
	LogFilePath string `env:"LOG_FILE_PATH" envDefault:"logs/interactions.jsonl"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// ConfigurationError reports an environment that cannot start the process,
// most commonly a missing API key.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI api key is empty")
	}
	if c.GeminiTimeout <= 0 {
		return fmt.Errorf("GEMINI_TIMEOUT must be > 0")
	}
	if c.SessionIdleTTL <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL must be > 0")
	}
	return nil
}
