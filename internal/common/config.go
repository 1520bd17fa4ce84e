package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration, threaded explicitly through
// the run controller and its collaborators.
type Config struct {
	Run     RunConfig
	Session SessionConfig
	LLM     LLMConfig
}

// RunConfig holds page-loop configuration.
type RunConfig struct {
	PDFPath         string
	SummaryInterval int // every N pages; 0 disables interval summaries
	Clean           bool
	Language        string // target output language for knowledge points
	ContextEntries  int    // previous entries included in extraction prompts
	MaxPageChars    int    // truncation guard on extracted page text
}

// SessionConfig holds the on-disk layout configuration.
type SessionConfig struct {
	OutputRoot string
}

// LLMConfig holds provider and model configuration.
type LLMConfig struct {
	Provider      string // ollama | openai | openrouter
	Model         string
	AnalysisModel string
	Temperature   float64
	Timeout       time.Duration
	MaxAttempts   int
	RetryDelay    time.Duration
}

// LoadConfig returns defaults overridable through environment variables.
// CLI flags are applied on top by main.
func LoadConfig() *Config {
	return &Config{
		Run: RunConfig{
			SummaryInterval: GetEnvAsInt("BOOKDIGEST_INTERVAL", 5),
			Language:        GetEnv("BOOKDIGEST_LANGUAGE", "English"),
			ContextEntries:  GetEnvAsInt("BOOKDIGEST_CONTEXT_ENTRIES", 3),
			MaxPageChars:    GetEnvAsInt("BOOKDIGEST_MAX_PAGE_CHARS", 20000),
		},
		Session: SessionConfig{
			OutputRoot: GetEnv("BOOKDIGEST_OUTPUT_ROOT", "book_analysis"),
		},
		LLM: LLMConfig{
			Provider:      GetEnv("BOOKDIGEST_PROVIDER", "ollama"),
			Model:         GetEnv("BOOKDIGEST_MODEL", "qwen2.5:14b"),
			AnalysisModel: GetEnv("BOOKDIGEST_ANALYSIS_MODEL", ""),
			Temperature:   getEnvAsFloat64("BOOKDIGEST_TEMPERATURE", 0.0),
			Timeout:       getEnvAsDuration("BOOKDIGEST_TIMEOUT", 120*time.Second),
			MaxAttempts:   GetEnvAsInt("BOOKDIGEST_MAX_ATTEMPTS", 3),
			RetryDelay:    getEnvAsDuration("BOOKDIGEST_RETRY_DELAY", 2*time.Second),
		},
	}
}

// Validate validates the loaded configuration.
func (c *Config) Validate() error {
	if c.Run.PDFPath == "" {
		return NewAppError("CONFIG_ERROR", "a PDF path is required", ErrInvalidInput)
	}
	if c.Run.SummaryInterval < 0 {
		return NewAppError("CONFIG_ERROR", "summary interval must be >= 0", ErrInvalidInput)
	}
	switch c.LLM.Provider {
	case "ollama", "openai", "openrouter":
	default:
		return NewAppError("CONFIG_ERROR", "provider must be one of ollama, openai, openrouter", ErrInvalidInput)
	}
	if c.LLM.Model == "" {
		return NewAppError("CONFIG_ERROR", "a model identifier is required", ErrInvalidInput)
	}
	if c.LLM.AnalysisModel == "" {
		c.LLM.AnalysisModel = c.LLM.Model
	}
	return nil
}

// Helper functions for environment variable parsing
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
