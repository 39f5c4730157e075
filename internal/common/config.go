package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Extraction ExtractionConfig
	Pipeline   PipelineConfig
}

// DatabaseConfig holds catalog database configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ExtractionConfig holds document-understanding service configuration
type ExtractionConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float32
	Timeout     time.Duration
}

// PipelineConfig holds extraction pipeline knobs
type PipelineConfig struct {
	ChunkPages    int           // initial page-window width
	DocumentDelay time.Duration // pause between documents in batch runs
	ReviewDir     string        // where review workbooks are written
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Extraction: ExtractionConfig{
			BaseURL:     getEnv("EXTRACTION_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("EXTRACTION_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("EXTRACTION_API_KEY", ""),
			Temperature: getEnvAsFloat32("EXTRACTION_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("EXTRACTION_TIMEOUT", 90*time.Second),
		},
		Pipeline: PipelineConfig{
			ChunkPages:    getEnvAsInt("CHUNK_PAGES", 10),
			DocumentDelay: getEnvAsDuration("DOCUMENT_DELAY", 3*time.Second),
			ReviewDir:     getEnv("REVIEW_DIR", "./review"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Extraction.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "EXTRACTION_API_KEY is required", ErrInvalidInput)
	}
	if c.Pipeline.ChunkPages < 1 {
		return NewAppError("CONFIG_ERROR", "CHUNK_PAGES must be at least 1", ErrInvalidInput)
	}
	return nil
}
