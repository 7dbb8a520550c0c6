package config

import (
	"os"
	"strconv"

	"csvdoctor/internal/errors"
)

// Config represents the complete application configuration.
type Config struct {
	Server ServerConfig
	Upload UploadConfig
	Report ReportConfig
}

// ServerConfig holds web server settings.
type ServerConfig struct {
	Port string
}

// UploadConfig holds file intake settings.
type UploadConfig struct {
	Dir            string
	MaxUploadBytes int64
}

// ReportConfig holds profiling and report settings.
type ReportConfig struct {
	CorrelationThreshold float64
	SampleRows           int
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Upload: UploadConfig{
			Dir:            getEnvOrDefault("UPLOAD_DIR", "uploads"),
			MaxUploadBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 50)) << 20,
		},
		Report: ReportConfig{
			CorrelationThreshold: getEnvFloatOrDefault("CORRELATION_THRESHOLD", 0.7),
			SampleRows:           getEnvIntOrDefault("SAMPLE_ROWS", 5),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.InvalidInput("server port is required")
	}
	if config.Upload.MaxUploadBytes <= 0 {
		return errors.InvalidInput("max upload size must be positive")
	}
	if config.Report.CorrelationThreshold < 0 || config.Report.CorrelationThreshold > 1 {
		return errors.InvalidInput("correlation threshold must be in [0, 1]")
	}
	return nil
}

// Helper functions for environment variable parsing.
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
