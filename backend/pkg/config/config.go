package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// AI
	OpenAIBaseURL string
	OpenAIAPIKey  string
	ModelID       string
	FastModelID   string // cheaper model used for chat and trends

	// Search
	TavilyAPIKey     string
	SearchCacheTTL   time.Duration
	SearchMaxResults int

	// Canvas / layout
	CanvasWidth     float64
	CanvasHeight    float64
	LinkStrength    float64
	ChargeStrength  float64
	CollideStrength float64
	CenterStrength  float64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "3001"),
		Env:              getEnv("ENV", "development"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		ModelID:          getEnv("MODEL_ID", "gpt-4o"),
		FastModelID:      getEnv("FAST_MODEL_ID", "gpt-4o-mini"),
		TavilyAPIKey:     getEnv("TAVILY_API_KEY", ""),
		SearchCacheTTL:   getEnvDuration("SEARCH_CACHE_TTL", 10*time.Minute),
		SearchMaxResults: getEnvInt("SEARCH_MAX_RESULTS", 5),
		CanvasWidth:      getEnvFloat("CANVAS_WIDTH", 1200),
		CanvasHeight:     getEnvFloat("CANVAS_HEIGHT", 800),
		LinkStrength:     getEnvFloat("LINK_STRENGTH", 1.0),
		ChargeStrength:   getEnvFloat("CHARGE_STRENGTH", -500),
		CollideStrength:  getEnvFloat("COLLIDE_STRENGTH", 0.7),
		CenterStrength:   getEnvFloat("CENTER_STRENGTH", 0.1),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.ModelID == "" {
		return fmt.Errorf("MODEL_ID is required")
	}
	if c.FastModelID == "" {
		return fmt.Errorf("FAST_MODEL_ID is required")
	}
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		return fmt.Errorf("canvas dimensions must be positive")
	}
	// OpenAI and Tavily keys are optional for development; without a
	// Tavily key search falls back to the keyless provider
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
