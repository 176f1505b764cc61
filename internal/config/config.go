package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Search  SearchConfig
	Logging LoggingConfig
	OpenAI  OpenAIConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int `validate:"min=1,max=65535"`
	Host           string
	GinMode        string `validate:"oneof=debug release test"`
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// StorageConfig selects where conversation state and bookmarks live
type StorageConfig struct {
	Backend    string `validate:"oneof=sqlite postgres redis memory"`
	SQLitePath string `validate:"required_if=Backend sqlite"`
	RedisURL   string `validate:"required_if=Backend redis"`
	PostgreSQL PostgreSQLConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, preferred when set
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// SearchConfig holds search-related configuration
type SearchConfig struct {
	Source          string  `validate:"oneof=static remote"`
	ScraperURL      string  `validate:"required_if=Source remote"`
	ScraperTimeout  int     `validate:"min=0"`
	DefaultMaxPrice float64 `validate:"gt=0"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json text"`
}

// OpenAIConfig holds OpenAI-compatible API configuration
type OpenAIConfig struct {
	APIKey          string
	APIBase         string
	ChatModel       string // model for extraction and replies
	ChatTemperature float64
	ChatTopP        float64
	ChatMaxTokens   int
	ChatExtraBody   string // JSON string for extra_body (e.g., {"chat_template_kwargs":{"thinking":true}})
	Timeout         int
	Enabled         bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,PATCH,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Storage: StorageConfig{
			Backend:    getEnv("STORAGE_BACKEND", "sqlite"),
			SQLitePath: getEnv("SQLITE_PATH", "./data/jetrent.db"),
			RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379"),
			PostgreSQL: PostgreSQLConfig{
				DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
				Host:               getEnv("PG_HOST", "localhost"),
				Port:               getEnvAsInt("PG_PORT", 5432),
				User:               getEnv("PG_USER", "postgres"),
				Password:           getEnv("PG_PASSWORD", ""),
				Database:           getEnv("PG_DATABASE", "jetrent"),
				SSLMode:            getEnv("PG_SSLMODE", "disable"),
				MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
				MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
			},
		},
		Search: SearchConfig{
			Source:          getEnv("SEARCH_SOURCE", "static"),
			ScraperURL:      getEnv("SCRAPER_URL", "https://jetrent-api-a73336585698.herokuapp.com/api/scrape/zillow"),
			ScraperTimeout:  getEnvAsInt("SCRAPER_TIMEOUT", 60),
			DefaultMaxPrice: getEnvAsFloat("SCRAPER_DEFAULT_MAX_PRICE", 10000),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
		OpenAI: OpenAIConfig{
			APIKey:          getEnv("OPENAI_API_KEY", ""),
			APIBase:         strings.TrimRight(getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"), "/"),
			ChatModel:       getEnv("OPENAI_CHAT_MODEL", "gpt-3.5-turbo"),
			ChatTemperature: getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.2),
			ChatTopP:        getEnvAsFloat("OPENAI_CHAT_TOP_P", 0),
			ChatMaxTokens:   getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 1024),
			ChatExtraBody:   getEnv("OPENAI_CHAT_EXTRA_BODY", ""),
			Timeout:         getEnvAsInt("OPENAI_TIMEOUT", 30),
			Enabled:         getEnv("OPENAI_API_KEY", "") != "",
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks enum and backend-specific fields
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	pg := c.Storage.PostgreSQL
	if pg.DSN != "" {
		return pg.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		pg.Host,
		pg.Port,
		pg.User,
		pg.Password,
		pg.Database,
		pg.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}
