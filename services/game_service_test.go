package services

import (
	"encoding/json"
	"testing"
	"time"

	"coin-wager-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRandom replaces the entropy source so outcomes are deterministic.
type scriptedRandom struct {
	red    bool
	secret int
}

func (s scriptedRandom) UniformInt(min, max int) (int, error) { return s.secret, nil }
func (s scriptedRandom) BinaryChoice() (bool, error)          { return s.red, nil }

func newGameService(t *testing.T, cfg *Config, random RandomSource) *GameService {
	t.Helper()
	db := newTestDB(t)
	balances := NewBalanceService(db, cfg)
	return NewGameService(db, balances, NewRateLimiter(), random, cfg)
}

func TestRouletteWinPaysNetBet(t *testing.T) {
	svc := newGameService(t, newTestConfig(), scriptedRandom{red: true})

	res, err := svc.Roulette("491700001", 100, "red")
	require.NoError(t, err)

	assert.True(t, res.Won)
	assert.Equal(t, "red", res.Result)
	assert.EqualValues(t, 200, res.Payout)
	assert.EqualValues(t, 200, res.NewBalance) // 100 starting + 100 net win
}

func TestRouletteLossCostsBet(t *testing.T) {
	svc := newGameService(t, newTestConfig(), scriptedRandom{red: false})

	res, err := svc.Roulette("491700001", 100, "red")
	require.NoError(t, err)

	assert.False(t, res.Won)
	assert.Equal(t, "black", res.Result)
	assert.EqualValues(t, 0, res.Payout)
	assert.EqualValues(t, 0, res.NewBalance)
}

func TestRouletteValidation(t *testing.T) {
	cfg := newTestConfig()
	cfg.RouletteMinBet = 10
	cfg.RouletteMaxBet = 500
	svc := newGameService(t, cfg, scriptedRandom{red: true})

	for name, call := range map[string]func() error{
		"bad color": func() error {
			_, err := svc.Roulette("491700001", 100, "blue")
			return err
		},
		"zero bet": func() error {
			_, err := svc.Roulette("491700001", 0, "red")
			return err
		},
		"negative bet": func() error {
			_, err := svc.Roulette("491700001", -5, "red")
			return err
		},
		"below min": func() error {
			_, err := svc.Roulette("491700001", 5, "red")
			return err
		},
		"above max": func() error {
			_, err := svc.Roulette("491700001", 501, "red")
			return err
		},
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(), ErrValidation)
		})
	}

	// validation failures left the balance untouched
	balance, err := svc.Balances.GetBalance("491700001")
	require.NoError(t, err)
	assert.EqualValues(t, 100, balance)
}

func TestRouletteRefusesBetOverBalance(t *testing.T) {
	svc := newGameService(t, newTestConfig(), scriptedRandom{red: true})

	_, err := svc.Roulette("491700001", 101, "red")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestRouletteRateLimited(t *testing.T) {
	cfg := newTestConfig()
	cfg.RouletteMaxAttempts = 2
	cfg.RouletteWindow = time.Minute
	svc := newGameService(t, cfg, scriptedRandom{red: true})

	for i := 0; i < 2; i++ {
		_, err := svc.Roulette("491700001", 10, "red")
		require.NoError(t, err)
	}
	_, err := svc.Roulette("491700001", 10, "red")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestRouletteWritesAuditEvent(t *testing.T) {
	svc := newGameService(t, newTestConfig(), scriptedRandom{red: true})

	_, err := svc.Roulette("491700001", 100, "red")
	require.NoError(t, err)

	var events []models.GameEvent
	require.NoError(t, svc.DB.Find(&events).Error)
	require.Len(t, events, 1)

	assert.Equal(t, models.GameRoulette, events[0].Game)
	assert.EqualValues(t, 100, events[0].BetAmount)
	assert.EqualValues(t, 200, events[0].WinAmount)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(events[0].Payload), &payload))
	assert.Equal(t, "red", payload["choice"])
	assert.Equal(t, "red", payload["result"])
	assert.Equal(t, true, payload["won"])
}

func TestGuessWinAndLoss(t *testing.T) {
	svc := newGameService(t, newTestConfig(), scriptedRandom{secret: 7})

	win, err := svc.Guess("491700001", 7)
	require.NoError(t, err)
	assert.True(t, win.Won)
	assert.EqualValues(t, 50, win.WinAmount)
	assert.EqualValues(t, 150, win.NewBalance)

	loss, err := svc.Guess("491700001", 3)
	require.NoError(t, err)
	assert.False(t, loss.Won)
	assert.EqualValues(t, 0, loss.WinAmount)
	assert.EqualValues(t, 140, loss.NewBalance)
}

func TestGuessValidatesRange(t *testing.T) {
	svc := newGameService(t, newTestConfig(), scriptedRandom{secret: 5})

	for _, guess := range []int{0, 11, -3} {
		_, err := svc.Guess("491700001", guess)
		assert.ErrorIs(t, err, ErrValidation, "guess %d", guess)
	}
}

func TestGuessPenaltyNeverGoesBelowZero(t *testing.T) {
	cfg := newTestConfig()
	cfg.StartingBalance = 5 // cannot cover the 10-coin penalty
	svc := newGameService(t, cfg, scriptedRandom{secret: 5})

	_, err := svc.Guess("491700001", 3)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	balance, err := svc.Balances.GetBalance("491700001")
	require.NoError(t, err)
	assert.EqualValues(t, 5, balance)
}

func TestHistoryListsSettledPlays(t *testing.T) {
	svc := newGameService(t, newTestConfig(), scriptedRandom{red: true, secret: 7})

	_, err := svc.Roulette("491700001", 10, "red")
	require.NoError(t, err)
	_, err = svc.Guess("491700001", 7)
	require.NoError(t, err)

	events, err := svc.History("491700001", 5)
	require.NoError(t, err)
	require.Len(t, events, 2)
}
