package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port             string
	DatabaseURL      string
	RedisURL         string
	GameLogDir       string
	MapFile          string
	TurnTimeMs       int
	FoodScarcity     float64
	MaxTurns         int
	GameSeed         int64
	Tutorial         bool
	TutorialStrategy string
}

// Load reads configuration from environment variables with sensible
// defaults. Empty DATABASE_URL or REDIS_URL disables that store.
func Load() *Config {
	return &Config{
		Port:             envOrDefault("PORT", "8013"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		GameLogDir:       envOrDefault("GAMELOG_DIR", "gamelogs"),
		MapFile:          os.Getenv("MAP_FILE"),
		TurnTimeMs:       envInt("TURN_TIME_MS", 5000),
		FoodScarcity:     envFloat("FOOD_SCARCITY", 0.15),
		MaxTurns:         envInt("MAX_TURNS", 0),
		GameSeed:         envInt64("GAME_SEED", 0),
		Tutorial:         envBool("TUTORIAL", false),
		TutorialStrategy: envOrDefault("TUTORIAL_STRATEGY", "greedy"),
	}
}

// Validate rejects parameter values no game could run under.
func (c *Config) Validate() error {
	if c.TurnTimeMs <= 0 {
		return fmt.Errorf("TURN_TIME_MS must be positive, got %d", c.TurnTimeMs)
	}
	if c.FoodScarcity < 0 || c.FoodScarcity > 1 {
		return fmt.Errorf("FOOD_SCARCITY must be within [0,1], got %g", c.FoodScarcity)
	}
	if c.MaxTurns < 0 {
		return fmt.Errorf("MAX_TURNS must not be negative, got %d", c.MaxTurns)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
