package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/campusware/course-portal/utils"
)

// Config represents the complete portal configuration
type Config struct {
	Environment   string
	Server        ServerConfig
	LMS           LMSConfig
	Session       SessionConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LMSConfig holds the external LMS API configuration
type LMSConfig struct {
	BaseURL string `validate:"required,url"`
	Timeout time.Duration

	// CatalogPageSize bounds universe pages in the assign/enroll views.
	CatalogPageSize int `validate:"gt=0"`

	// EnrolledSetSize and AssignedSetSize bound the associated-set
	// fetches; large enough to return full membership in one call.
	EnrolledSetSize int `validate:"gt=0"`
	AssignedSetSize int `validate:"gt=0"`
}

// SessionConfig holds browser session configuration
type SessionConfig struct {
	TTL          time.Duration
	SecureCookie bool
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or text
}

// New creates a new Config instance by loading environment variables
func New() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 3000),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		LMS: LMSConfig{
			BaseURL:         getEnv("LMS_BASE_URL", "http://localhost:8080"),
			Timeout:         getEnvAsDuration("LMS_TIMEOUT", 30*time.Second),
			CatalogPageSize: getEnvAsInt("LMS_CATALOG_PAGE_SIZE", 8),
			EnrolledSetSize: getEnvAsInt("LMS_ENROLLED_SET_SIZE", 1000),
			AssignedSetSize: getEnvAsInt("LMS_ASSIGNED_SET_SIZE", 500),
		},
		Session: SessionConfig{
			TTL:          getEnvAsDuration("SESSION_TTL", 8*time.Hour),
			SecureCookie: getEnvAsBool("SESSION_SECURE_COOKIE", false),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for missing or inconsistent values
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(&c.LMS); err != nil {
		return err
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
