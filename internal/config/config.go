package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURI   string
	TelegramToken string
	AIAPIKey      string
	AIBaseURL     string
	AIModel       string

	// Engine tuning
	ThrottleLimit   int           // operations per user per throttle window
	ThrottleWindow  time.Duration // rolling throttle window
	DispatchWorkers int           // max concurrent work units
	CheckInterval   time.Duration // scheduler clock resolution
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	return &Config{
		DatabaseURI:     os.Getenv("DATABASE_URI"),
		TelegramToken:   os.Getenv("TELEGRAM_TOKEN"),
		AIAPIKey:        os.Getenv("AI_API_KEY"),
		AIBaseURL:       getEnvOrDefault("AI_BASE_URL", "https://openrouter.ai/api/v1"),
		AIModel:         getEnvOrDefault("AI_MODEL", "openai/gpt-4o-mini"),
		ThrottleLimit:   getEnvOrDefaultInt("THROTTLE_LIMIT", 10),
		ThrottleWindow:  getEnvOrDefaultDuration("THROTTLE_WINDOW", time.Minute),
		DispatchWorkers: getEnvOrDefaultInt("DISPATCH_WORKERS", 8),
		CheckInterval:   getEnvOrDefaultDuration("CHECK_INTERVAL", time.Minute),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvOrDefaultDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
