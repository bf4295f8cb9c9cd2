package services

import (
	"fmt"
	"testing"
	"time"

	"coin-wager-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database with the full schema. A
// single pooled connection keeps sqlite happy under the concurrency tests
// while still exercising real transactions and unique constraints.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RedeemCode{},
		&models.Redemption{},
		&models.GameEvent{},
	))
	return db
}

// newTestConfig returns a config with limits high enough to stay out of the
// way; tests that exercise a specific limit override it.
func newTestConfig() *Config {
	return &Config{
		StartingBalance:          100,
		RouletteMinBet:           1,
		RouletteMaxBet:           10000,
		RoulettePayoutMultiplier: 2,
		GuessReward:              50,
		GuessPenalty:             10,
		RouletteMaxAttempts:      1000,
		RouletteWindow:           5 * time.Minute,
		GuessMaxAttempts:         1000,
		GuessWindow:              5 * time.Minute,
		ClaimMaxAttempts:         1000,
		ClaimWindow:              5 * time.Minute,
		CodeIssuers:              []string{"issuer-1"},
	}
}
