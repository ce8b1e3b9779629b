package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration with validation
type Config struct {
	// Application settings
	Port     int
	LogLevel string

	// Database settings
	Database DatabaseConfig

	// Device agent client settings
	Agent AgentConfig

	// Operator notification webhook
	Notification NotificationConfig

	// Security settings
	Security SecurityConfig

	// Performance settings
	Server ServerConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// AgentConfig holds settings for outbound calls to device agents. Every
// forwarded request gets a single attempt bounded by Timeout.
type AgentConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// NotificationConfig holds the operator webhook configuration. An empty URL
// disables notifications entirely.
type NotificationConfig struct {
	URL           string
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	RateLimitRPS    int
	RateLimitBurst  int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	EnableCORS      bool
	AllowedOrigins  []string
	TrustedProxies  []string
}

// ServerConfig holds server performance configuration
type ServerConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
}

// LoadConfig loads and validates the configuration from the environment,
// reading a .env file first when present.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	config := &Config{
		Port:     getEnvAsInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", ""),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", ""),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},

		Agent: AgentConfig{
			Timeout:   getEnvAsDuration("AGENT_TIMEOUT", 5*time.Second),
			UserAgent: getEnv("AGENT_USER_AGENT", "pc-control-dashboard/1.0"),
		},

		Notification: NotificationConfig{
			URL:           getEnv("NOTIFIER_URL", ""),
			Timeout:       getEnvAsDuration("NOTIFIER_TIMEOUT", 10*time.Second),
			RetryAttempts: getEnvAsInt("NOTIFIER_RETRY_ATTEMPTS", 3),
			RetryDelay:    getEnvAsDuration("NOTIFIER_RETRY_DELAY", time.Second),
		},

		Security: SecurityConfig{
			RateLimitRPS:    getEnvAsInt("RATE_LIMIT_RPS", 100),
			RateLimitBurst:  getEnvAsInt("RATE_LIMIT_BURST", 200),
			RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
			EnableCORS:      getEnvAsBool("ENABLE_CORS", true),
			AllowedOrigins:  getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
			TrustedProxies:  getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		},

		Server: ServerConfig{
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxHeaderBytes: getEnvAsInt("SERVER_MAX_HEADER_BYTES", 1<<20), // 1MB
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// validateConfig performs basic validation on the configuration
func validateConfig(config *Config) error {
	var errors []string

	if config.Database.User == "" {
		errors = append(errors, "database user is required")
	}
	if config.Database.Password == "" {
		errors = append(errors, "database password is required")
	}
	if config.Database.Name == "" {
		errors = append(errors, "database name is required")
	}

	if config.Port < 1 || config.Port > 65535 {
		errors = append(errors, "port must be between 1 and 65535")
	}
	if config.Database.Port < 1 || config.Database.Port > 65535 {
		errors = append(errors, "database port must be between 1 and 65535")
	}

	if config.Agent.Timeout <= 0 {
		errors = append(errors, "agent timeout must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.Name, c.Database.SSLMode)
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
