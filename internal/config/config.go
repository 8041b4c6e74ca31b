package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Reference ReferenceConfig `mapstructure:"reference"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Prompt    PromptConfig    `mapstructure:"prompt"`
	History   HistoryConfig   `mapstructure:"history"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type AuthConfig struct {
	// APIToken is the optional static bearer token guarding the API.
	// Empty disables auth.
	APIToken string `mapstructure:"api_token"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type ReferenceConfig struct {
	RatingScheduleURL string        `mapstructure:"rating_schedule_url"`
	BenefitsChartURL  string        `mapstructure:"benefits_chart_url"`
	FetchTimeout      time.Duration `mapstructure:"fetch_timeout"`
	Retry             RetryConfig   `mapstructure:"retry"`
}

type UploadConfig struct {
	StagingDir string      `mapstructure:"staging_dir"`
	MaxSizeMB  int64       `mapstructure:"max_size_mb"`
	Retry      RetryConfig `mapstructure:"retry"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Delay       time.Duration `mapstructure:"delay"`
}

type PromptConfig struct {
	ImpairmentMultiplier float64 `mapstructure:"impairment_multiplier"`
	MaxWeeklyRate        int     `mapstructure:"max_weekly_rate"`
	PainCombinedCap      int     `mapstructure:"pain_combined_cap"`
	// InstructionFile, when set, replaces the built-in bootstrap
	// instruction template wholesale.
	InstructionFile string `mapstructure:"instruction_file"`
}

type HistoryConfig struct {
	Driver string `mapstructure:"driver"` // json or sqlite
	Path   string `mapstructure:"path"`
}

type RedisConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	HandleTTL time.Duration `mapstructure:"handle_ttl"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set config file path
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set defaults
	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	// Override with environment variables
	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server. Write timeout stays off: a process-reports request legally
	// blocks for the whole upload retry budget.
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "60s")
	v.SetDefault("server.write_timeout", "0s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Gemini
	v.SetDefault("gemini.model", "gemini-2.5-flash-preview-04-17")

	// Reference documents
	v.SetDefault("reference.rating_schedule_url", "https://www.dir.ca.gov/dwc/PDR.pdf")
	v.SetDefault("reference.benefits_chart_url", "https://static1.squarespace.com/static/5c2fcec6b27e396baf7e4a61/t/6781a510620dc016b6b6a82e/1736549648905/2025+Permanent+Disability+and+Benefits+Schedule.pdf")
	v.SetDefault("reference.fetch_timeout", "120s")
	v.SetDefault("reference.retry.max_attempts", 10)
	v.SetDefault("reference.retry.delay", "180s")

	// Report uploads
	v.SetDefault("upload.staging_dir", "uploads/staging")
	v.SetDefault("upload.max_size_mb", 100)
	v.SetDefault("upload.retry.max_attempts", 8)
	v.SetDefault("upload.retry.delay", "120s")

	// Rating rules rendered into the bootstrap instruction
	v.SetDefault("prompt.impairment_multiplier", 1.4)
	v.SetDefault("prompt.max_weekly_rate", 290)
	v.SetDefault("prompt.pain_combined_cap", 2)

	// History
	v.SetDefault("history.driver", "json")
	v.SetDefault("history.path", "history/report_history.json")

	// Redis (reference-handle warm cache)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.handle_ttl", "24h")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	// Secrets come from the environment, not the config file
	v.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("auth.api_token", "API_TOKEN")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
}
