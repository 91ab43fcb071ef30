package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	AI        AIConfig
	OpenAI    OpenAIConfig
	Ollama    OllamaConfig
	Retrieval RetrievalConfig
	Chunking  ChunkingConfig
	HTTP      HTTPConfig
	OTEL      OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
	Env  string
}

// DatabaseConfig holds database configuration. Engine selects the
// storage backend: "sqlite" (default) or "postgres".
type DatabaseConfig struct {
	Engine     string
	SQLitePath string
	Host       string
	Port       int
	User       string
	Password   string
	Database   string
	SSLMode    string
}

// RedisConfig holds Redis configuration. Redis is optional; an empty
// host disables response caching and the event bus.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AIConfig selects the answer-generation provider: "openai", "ollama",
// "auto" (prefer OpenAI, fall back to Ollama) or "off".
type AIConfig struct {
	Provider        string
	FallbackEnabled bool
	TimeoutSeconds  int
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey         string
	Model          string
	Organization   string
	BaseURL        string
	RateLimitRPM   int
	RateLimitBurst int
}

// OllamaConfig holds local Ollama server configuration
type OllamaConfig struct {
	BaseURL string
	Model   string
}

// RetrievalConfig bounds the answer pipeline's storage reads
type RetrievalConfig struct {
	TopK        int
	VitalsLimit int
	LabsLimit   int
}

// ChunkingConfig controls document chunking for ingestion
type ChunkingConfig struct {
	SizeWords    int
	OverlapWords int
}

// HTTPConfig holds HTTP middleware configuration
type HTTPConfig struct {
	AllowedOrigins   string
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("PORT", 8000),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Engine:     strings.ToLower(getEnv("DATABASE_ENGINE", "sqlite")),
			SQLitePath: getEnv("SQLITE_PATH", "clinical_canvas.db"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvAsInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", ""),
			Database:   getEnv("DB_NAME", "clinical_canvas"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		AI: AIConfig{
			Provider:        strings.ToLower(getEnv("AI_PROVIDER", "auto")),
			FallbackEnabled: getEnvAsBool("AI_FALLBACK_ENABLED", true),
			TimeoutSeconds:  getEnvAsInt("AI_TIMEOUT_SECONDS", 60),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-4"),
			Organization:   getEnv("OPENAI_ORGANIZATION", ""),
			BaseURL:        getEnv("OPENAI_BASE_URL", ""),
			RateLimitRPM:   getEnvAsInt("OPENAI_RATE_LIMIT_RPM", 60),
			RateLimitBurst: getEnvAsInt("OPENAI_RATE_LIMIT_BURST", 5),
		},
		Ollama: OllamaConfig{
			BaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			Model:   getEnv("OLLAMA_MODEL", "llama3:8b"),
		},
		Retrieval: RetrievalConfig{
			TopK:        getEnvAsInt("RETRIEVAL_TOP_K", 3),
			VitalsLimit: getEnvAsInt("CONTEXT_VITALS_LIMIT", 10),
			LabsLimit:   getEnvAsInt("CONTEXT_LABS_LIMIT", 20),
		},
		Chunking: ChunkingConfig{
			SizeWords:    getEnvAsInt("CHUNK_SIZE_WORDS", 500),
			OverlapWords: getEnvAsInt("CHUNK_OVERLAP_WORDS", 100),
		},
		HTTP: HTTPConfig{
			AllowedOrigins:   getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"),
			RateLimitEnabled: getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RateLimitRPS:     getEnvAsFloat("RATE_LIMIT_RPS", 20),
			RateLimitBurst:   getEnvAsInt("RATE_LIMIT_BURST", 40),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "clinical-canvas-api"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if cfg.Database.Engine != "sqlite" && cfg.Database.Engine != "postgres" {
		return nil, fmt.Errorf("unsupported database engine %q", cfg.Database.Engine)
	}

	return cfg, nil
}

// DriverName returns the database/sql driver name for the engine
func (c *DatabaseConfig) DriverName() string {
	if c.Engine == "postgres" {
		return "postgres"
	}
	return "sqlite"
}

// Dialect returns the goqu dialect name for the engine
func (c *DatabaseConfig) Dialect() string {
	if c.Engine == "postgres" {
		return "postgres"
	}
	return "sqlite3"
}

// DSN returns the connection string for the configured engine
func (c *DatabaseConfig) DSN() string {
	if c.Engine == "postgres" {
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
		)
	}
	return c.SQLitePath
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Enabled reports whether Redis is configured
func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

// Origins returns the allowed CORS origins as a slice
func (c *HTTPConfig) Origins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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
