package common

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/invoice-auditor/constants"
)

// Config holds all application configuration
type Config struct {
	LLM    LLMConfig
	Ledger LedgerConfig
	Server ServerConfig
	Image  ImageConfig
	Report ReportConfig
}

// LLMConfig holds model-service configuration
type LLMConfig struct {
	Provider     string // gemini | openai
	Model        string
	APIKey       string
	BaseURL      string
	Temperature  float32
	Timeout      time.Duration // per call
	MaxRetries   int
	RetryBackoff time.Duration
}

// LedgerConfig holds run-ledger database configuration
type LedgerConfig struct {
	Driver          string // sqlite | postgres | none
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds the watch daemon's listener configuration
type ServerConfig struct {
	GRPCAddr string
}

// ImageConfig bounds image attachments
type ImageConfig struct {
	MaxMB        int
	MaxDimension int
}

// ReportConfig holds report publication settings
type ReportConfig struct {
	S3URI string
}

// LoadEnvFile seeds the process environment from a dotenv file. A missing file is not an error.
func LoadEnvFile(path string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("config.env_file.absent", "path", path)
			return nil
		}
		return WrapError(err, "load env file")
	}
	logger.Debug("config.env_file.loaded", "path", path)
	return nil
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	provider := strings.ToLower(getEnv("LLM_PROVIDER", "gemini"))
	return &Config{
		LLM: LLMConfig{
			Provider:     provider,
			Model:        getEnv("LLM_MODEL", defaultModel(provider)),
			APIKey:       apiKeyFor(provider),
			BaseURL:      getEnv("LLM_BASE_URL", ""),
			Temperature:  getEnvAsFloat32("LLM_TEMPERATURE", 0.0),
			Timeout:      getEnvAsDuration("LLM_TIMEOUT", 120*time.Second),
			MaxRetries:   getEnvAsInt("LLM_MAX_RETRIES", 2),
			RetryBackoff: getEnvAsDuration("LLM_RETRY_BACKOFF", 2*time.Second),
		},
		Ledger: LedgerConfig{
			Driver:          strings.ToLower(getEnv("LEDGER_DRIVER", "sqlite")),
			DSN:             getEnv("LEDGER_DSN", "file:pipeline_ledger.db"),
			MaxConns:        getEnvAsInt32("LEDGER_MAX_CONNS", 4),
			MinConns:        getEnvAsInt32("LEDGER_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("LEDGER_MAX_CONN_LIFETIME", 30*time.Minute),
			DialTimeout:     getEnvAsDuration("LEDGER_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		Image: ImageConfig{
			MaxMB:        getEnvAsInt("MAX_IMAGE_MB", constants.DefaultMaxImageMB),
			MaxDimension: getEnvAsInt("MAX_IMAGE_DIMENSION", constants.DefaultMaxImageDimension),
		},
		Report: ReportConfig{
			S3URI: getEnv("REPORT_S3_URI", ""),
		},
	}
}

func defaultModel(provider string) string {
	if provider == "openai" {
		return "gpt-4o-mini"
	}
	return "gemini-2.5-pro"
}

func apiKeyFor(provider string) string {
	if provider == "openai" {
		return getEnv("OPENAI_API_KEY", "")
	}
	return getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", ""))
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

// Validate checks everything a model-backed run needs.
func (c *Config) Validate() error {
	if err := c.ValidateLLM(); err != nil {
		return err
	}
	return c.ValidateLedger()
}

// ValidateLLM checks the model-service settings.
func (c *Config) ValidateLLM() error {
	switch c.LLM.Provider {
	case "gemini", "openai":
	default:
		return NewAppError("CONFIG_ERROR", "LLM_PROVIDER must be gemini or openai", ErrInvalidInput)
	}
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "API key for provider "+c.LLM.Provider+" is required", ErrInvalidInput)
	}
	if c.LLM.MaxRetries < 0 {
		return NewAppError("CONFIG_ERROR", "LLM_MAX_RETRIES must not be negative", ErrInvalidInput)
	}
	return nil
}

// ValidateLedger checks the run-ledger settings.
func (c *Config) ValidateLedger() error {
	switch c.Ledger.Driver {
	case "sqlite", "postgres", "none":
	default:
		return NewAppError("CONFIG_ERROR", "LEDGER_DRIVER must be sqlite, postgres or none", ErrInvalidInput)
	}
	if c.Ledger.Driver != "none" && c.Ledger.DSN == "" {
		return NewAppError("CONFIG_ERROR", "LEDGER_DSN is required", ErrInvalidInput)
	}
	return nil
}
