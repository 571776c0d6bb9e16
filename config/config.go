// Package config loads the assistant's runtime configuration from the
// environment.
package config

import (
	"os"
	"strconv"
)

// Config holds everything the assistant needs to run.
type Config struct {
	Provider string // gemini, openai, or claude

	GeminiAPIKey    string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string

	EmbeddingModel     string
	EmbeddingDimension int

	KBBackend      string // memory or postgres
	HistoryBackend string // memory, redis, mongo, or postgres

	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI string
}

// Load reads configuration from HRASSIST_* environment variables, with
// sensible local defaults.
func Load() *Config {
	return &Config{
		Provider: envOr("HRASSIST_PROVIDER", "gemini"),

		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),

		EmbeddingModel:     envOr("HRASSIST_EMBEDDING_MODEL", "embedding-001"),
		EmbeddingDimension: envInt("HRASSIST_EMBEDDING_DIMENSION", 768),

		KBBackend:      envOr("HRASSIST_KB_BACKEND", "memory"),
		HistoryBackend: envOr("HRASSIST_HISTORY_BACKEND", "memory"),

		PostgresHost:     envOr("HRASSIST_PG_HOST", "127.0.0.1"),
		PostgresPort:     envInt("HRASSIST_PG_PORT", 5432),
		PostgresUser:     envOr("HRASSIST_PG_USER", "postgres"),
		PostgresPassword: os.Getenv("HRASSIST_PG_PASSWORD"),
		PostgresDB:       envOr("HRASSIST_PG_DB", "hrassist"),
		PostgresSSLMode:  envOr("HRASSIST_PG_SSLMODE", "disable"),

		RedisAddr:     envOr("HRASSIST_REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("HRASSIST_REDIS_PASSWORD"),
		RedisDB:       envInt("HRASSIST_REDIS_DB", 0),

		MongoURI: envOr("HRASSIST_MONGO_URI", "mongodb://localhost:27017"),
	}
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	v := NewValidator().
		ValidateOneOf("provider", c.Provider, "gemini", "openai", "claude").
		ValidateOneOf("kb_backend", c.KBBackend, "memory", "postgres").
		ValidateOneOf("history_backend", c.HistoryBackend, "memory", "redis", "mongo", "postgres").
		RequirePositive("embedding_dimension", c.EmbeddingDimension).
		ValidatePort("pg_port", c.PostgresPort)

	switch c.Provider {
	case "gemini":
		v.RequireNonEmpty("GEMINI_API_KEY", c.GeminiAPIKey)
	case "openai":
		v.RequireNonEmpty("OPENAI_API_KEY", c.OpenAIAPIKey)
	case "claude":
		v.RequireNonEmpty("ANTHROPIC_API_KEY", c.AnthropicAPIKey)
	}

	return v.Error()
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
