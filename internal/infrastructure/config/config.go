// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// WorkflowAI
	WorkflowAIAPIKey   string
	WorkflowAIAPIURL   string
	WorkflowAIWebURL   string
	WorkflowAIAgentID  string
	WorkflowAIModel    string
	WorkflowAISchemaID int
	WorkflowAITimeout  time.Duration

	// Reference data
	PostgresDSN    string
	StrictAirports bool

	// MongoDB
	MongoURI             string
	MongoDB              string
	MongoUser            string
	MongoPassword        string
	MongoEmailCollection string

	// Gmail
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 90*time.Second),

		WorkflowAIAPIKey:   getEnv("WORKFLOWAI_API_KEY", ""),
		WorkflowAIAPIURL:   getEnv("WORKFLOWAI_API_URL", "https://run.workflowai.com"),
		WorkflowAIWebURL:   getEnv("WORKFLOWAI_WEB_URL", "https://workflowai.com"),
		WorkflowAIAgentID:  getEnv("WORKFLOWAI_AGENT_ID", "flight-info-extractor"),
		WorkflowAIModel:    getEnv("WORKFLOWAI_MODEL", "gemini-2.0-flash-latest"),
		WorkflowAISchemaID: getEnvAsInt("WORKFLOWAI_SCHEMA_ID", 0),
		WorkflowAITimeout:  getEnvAsDuration("WORKFLOWAI_TIMEOUT", 60*time.Second),

		PostgresDSN:    getEnv("POSTGRES_DSN", ""),
		StrictAirports: getEnvAsBool("STRICT_AIRPORTS", false),

		MongoURI:             getEnv("MONGODB_DSN", ""),
		MongoDB:              getEnv("MONGO_DB", "daisi"),
		MongoUser:            getEnv("MONGO_USER", ""),
		MongoPassword:        getEnv("MONGO_PASSWORD", ""),
		MongoEmailCollection: getEnv("MONGO_EMAIL_COLLECTION", "emailLogs"),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),
	}

	return config, nil
}

// GmailConfigured reports whether Gmail credentials are present
func (c *Config) GmailConfigured() bool {
	return c.GmailClientID != "" && c.GmailClientSecret != "" && c.GmailRefreshToken != ""
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(strings.TrimSpace(valueStr)); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("90")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if valueStr == "" {
		return defaultValue
	}
	if seconds, err := strconv.ParseFloat(valueStr, 64); err == nil && seconds > 0 {
		return time.Duration(seconds * float64(time.Second))
	}
	if d, err := time.ParseDuration(valueStr); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
