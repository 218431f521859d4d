package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Engine   EngineConfig   `mapstructure:"engine" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// LLMConfig contains all content generator integration settings.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName         string `mapstructure:"model_name" validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`
}

// EngineConfig contains the mastery engine's tunables: the daily energy
// allotment, the energy cost of each AI-backed operation, and the one-time
// completion reward.
type EngineConfig struct {
	DailyEnergyAllotment int `mapstructure:"daily_energy_allotment" validate:"required,gt=0"`
	GenerationCost       int `mapstructure:"generation_cost"        validate:"gte=0"`
	EvaluationCost       int `mapstructure:"evaluation_cost"        validate:"gte=0"`
	CompletionXP         int `mapstructure:"completion_xp"          validate:"required,gt=0"`
}
