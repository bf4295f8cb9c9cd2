// services/config.go
package services

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the tunables of the wager economy. Everything is read from
// the environment once at startup; missing values fall back to defaults.
type Config struct {
	// Economy
	StartingBalance int64

	// Roulette
	RouletteMinBet           int64
	RouletteMaxBet           int64
	RoulettePayoutMultiplier int64

	// Number guess
	GuessReward  int64
	GuessPenalty int64

	// Rate limits (attempts per window, per user per action)
	RouletteMaxAttempts int
	RouletteWindow      time.Duration
	GuessMaxAttempts    int
	GuessWindow         time.Duration
	ClaimMaxAttempts    int
	ClaimWindow         time.Duration

	// Users allowed to run .createcode
	CodeIssuers []string
}

// LoadConfig reads the economy configuration from environment variables,
// falling back to defaults for anything unset.
func LoadConfig() *Config {
	cfg := &Config{
		StartingBalance:          envInt64("STARTING_BALANCE", 100),
		RouletteMinBet:           envInt64("ROULETTE_MIN_BET", 1),
		RouletteMaxBet:           envInt64("ROULETTE_MAX_BET", 10000),
		RoulettePayoutMultiplier: envInt64("ROULETTE_PAYOUT_MULTIPLIER", 2),
		GuessReward:              envInt64("GUESS_REWARD", 50),
		GuessPenalty:             envInt64("GUESS_PENALTY", 10),
		RouletteMaxAttempts:      envInt("ROULETTE_MAX_ATTEMPTS", 20),
		RouletteWindow:           time.Duration(envInt("ROULETTE_WINDOW_MINUTES", 5)) * time.Minute,
		GuessMaxAttempts:         envInt("GUESS_MAX_ATTEMPTS", 30),
		GuessWindow:              time.Duration(envInt("GUESS_WINDOW_MINUTES", 5)) * time.Minute,
		ClaimMaxAttempts:         envInt("CLAIM_MAX_ATTEMPTS", 10),
		ClaimWindow:              time.Duration(envInt("CLAIM_WINDOW_MINUTES", 5)) * time.Minute,
	}

	issuersEnv := os.Getenv("CODE_ISSUERS")
	if issuersEnv == "" {
		log.Println("⚠️  CODE_ISSUERS not set — .createcode disabled for everyone")
	}
	for _, id := range strings.Split(issuersEnv, ",") {
		if id = strings.TrimSpace(id); id != "" {
			cfg.CodeIssuers = append(cfg.CodeIssuers, id)
		}
	}

	return cfg
}

// IsIssuer reports whether the user is on the static .createcode allow-list.
func (c *Config) IsIssuer(userID string) bool {
	for _, id := range c.CodeIssuers {
		if id == userID {
			return true
		}
	}
	return false
}

func envInt64(key string, fallback int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using default %d", key, raw, fallback)
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	return int(envInt64(key, int64(fallback)))
}
