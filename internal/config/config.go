package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"findash/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	AI        AIConfig `validate:"required"`
	Server    ServerConfig
	Normalize NormalizeConfig
	Profiling ProfilingConfig
	LogLevel  string
}

// DatabaseConfig holds database connection settings. An empty URL disables
// chat logging.
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether a database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// AIConfig holds text-generation backend settings
type AIConfig struct {
	APIKey      string `validate:"required"`
	Model       string
	BaseURL     string
	Referer     string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
	PromptsDir  string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port               string
	GinMode            string
	StaticDir          string
	CORSOrigins        []string
	MaxUploadBytes     int64
	MaxConcurrentChats int64
	ShutdownTimeout    time.Duration
}

// NormalizeConfig holds the cell parsing rules
type NormalizeConfig struct {
	CurrencySymbols []string
	MissingMarkers  []string
	DateYearPivot   int
	PreserveText    bool
	IncludeProfile  bool
	Sheet           string
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads the server configuration from environment variables and validates it
func Load() (*Config, error) {
	config := LoadWithoutValidation()
	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// LoadWithoutValidation reads every section but skips required-field checks.
// The CLI uses it because it never talks to the backend.
func LoadWithoutValidation() *Config {
	return &Config{
		Database:  *loadDatabaseConfig(),
		AI:        *loadAIConfig(),
		Server:    *loadServerConfig(),
		Normalize: *loadNormalizeConfig(),
		Profiling: *loadProfilingConfig(),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{URL: os.Getenv("DATABASE_URL")}
}

func loadAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:      os.Getenv("OPENROUTER_API_KEY"),
		Model:       getEnvOrDefault("LLM_MODEL", "mistralai/mistral-7b-instruct"),
		BaseURL:     getEnvOrDefault("LLM_BASE_URL", "https://openrouter.ai/api/v1"),
		Referer:     getEnvOrDefault("LLM_REFERER", "https://localhost"),
		Timeout:     getEnvDurationOrDefault("LLM_TIMEOUT", 45*time.Second),
		MaxTokens:   getEnvIntOrDefault("MAX_TOKENS", 0),
		Temperature: getEnvFloatOrDefault("TEMPERATURE", 0),
		PromptsDir:  os.Getenv("PROMPTS_DIR"),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:               getEnvOrDefault("PORT", "5000"),
		GinMode:            getEnvOrDefault("GIN_MODE", "debug"),
		StaticDir:          getEnvOrDefault("STATIC_DIR", "./static"),
		CORSOrigins:        getEnvListOrDefault("CORS_ORIGINS", []string{"*"}),
		MaxUploadBytes:     int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", 10<<20)),
		MaxConcurrentChats: int64(getEnvIntOrDefault("MAX_CONCURRENT_CHATS", 4)),
		ShutdownTimeout:    getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadNormalizeConfig() *NormalizeConfig {
	return &NormalizeConfig{
		CurrencySymbols: getEnvListOrDefault("CURRENCY_SYMBOLS", nil),
		MissingMarkers:  getEnvListOrDefault("MISSING_MARKERS", nil),
		DateYearPivot:   getEnvIntOrDefault("DATE_YEAR_PIVOT", 20),
		PreserveText:    getEnvBoolOrDefault("NORMALIZE_PRESERVE_TEXT", false),
		IncludeProfile:  getEnvBoolOrDefault("INCLUDE_PROFILE", true),
		Sheet:           os.Getenv("EXCEL_SHEET"),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	if config.AI.APIKey == "" {
		return errors.ConfigInvalid("OPENROUTER_API_KEY is required")
	}
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be a number")
	}
	if config.Server.MaxConcurrentChats < 1 {
		return errors.ConfigInvalid("MAX_CONCURRENT_CHATS must be at least 1")
	}
	if config.Server.MaxUploadBytes < 1 {
		return errors.ConfigInvalid("MAX_UPLOAD_BYTES must be positive")
	}
	if config.Normalize.DateYearPivot < 0 || config.Normalize.DateYearPivot > 99 {
		return errors.ConfigInvalid("DATE_YEAR_PIVOT must be between 0 and 99")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvListOrDefault splits a comma separated value, dropping blank items
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
