// services/game_service.go
package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"coin-wager-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GameService runs the wagering games. Each play is one synchronous pass:
// validate → determine outcome → settle → audit → respond. Nothing is
// suspended between messages.
type GameService struct {
	DB       *gorm.DB
	Balances *BalanceService
	Limiter  *RateLimiter
	Random   RandomSource
	Cfg      *Config
}

func NewGameService(db *gorm.DB, balances *BalanceService, limiter *RateLimiter, random RandomSource, cfg *Config) *GameService {
	return &GameService{DB: db, Balances: balances, Limiter: limiter, Random: random, Cfg: cfg}
}

// RouletteResult is the settled outcome of one roulette spin.
type RouletteResult struct {
	Choice     string `json:"choice"`
	Result     string `json:"result"`
	Won        bool   `json:"won"`
	Bet        int64  `json:"bet"`
	Payout     int64  `json:"payout"` // multiplier × bet on a win, 0 on a loss
	NewBalance int64  `json:"new_balance"`
}

// GuessResult is the settled outcome of one number guess.
type GuessResult struct {
	Guess      int   `json:"guess"`
	Secret     int   `json:"secret"`
	Won        bool  `json:"won"`
	WinAmount  int64 `json:"win_amount"`
	NewBalance int64 `json:"new_balance"`
}

// Roulette bets on red or black at even odds. A win nets +bet (the stake is
// never deducted up front, the payout is multiplier × bet), a loss nets −bet.
func (s *GameService) Roulette(userID string, bet int64, choice string) (*RouletteResult, error) {
	if err := s.Limiter.CheckAndRecord(userID, "roulette", s.Cfg.RouletteMaxAttempts, s.Cfg.RouletteWindow); err != nil {
		return nil, err
	}

	choice = strings.ToLower(strings.TrimSpace(choice))
	if choice != "red" && choice != "black" {
		return nil, fmt.Errorf("%w: choice must be red or black", ErrValidation)
	}
	if bet <= 0 || bet < s.Cfg.RouletteMinBet || bet > s.Cfg.RouletteMaxBet {
		return nil, fmt.Errorf("%w: bet must be between %d and %d", ErrValidation, s.Cfg.RouletteMinBet, s.Cfg.RouletteMaxBet)
	}

	user, err := s.Balances.EnsureUser(userID)
	if err != nil {
		return nil, err
	}
	if user.Balance < bet {
		return nil, ErrInsufficientBalance
	}

	red, err := s.Random.BinaryChoice()
	if err != nil {
		log.Printf("Entropy failure during roulette for %s: %v", userID, err)
		return nil, fmt.Errorf("%w: drawing outcome", ErrPersistence)
	}
	result := "black"
	if red {
		result = "red"
	}
	won := result == choice

	delta := -bet
	var payout int64
	if won {
		delta = bet
		payout = bet * s.Cfg.RoulettePayoutMultiplier
	}

	newBalance, err := s.Balances.ApplyDelta(userID, delta)
	if err != nil {
		// A concurrent spend can drain the stake between the balance check
		// and the settle; the guarded UPDATE refuses rather than go negative.
		return nil, err
	}

	s.recordEvent(userID, models.GameRoulette, bet, payout, map[string]any{
		"choice": choice,
		"result": result,
		"won":    won,
	})

	return &RouletteResult{
		Choice:     choice,
		Result:     result,
		Won:        won,
		Bet:        bet,
		Payout:     payout,
		NewBalance: newBalance,
	}, nil
}

// Guess plays the 1–10 number game: +reward on a hit, −penalty on a miss.
// A user who cannot cover the penalty is refused up front so the balance can
// never settle below zero.
func (s *GameService) Guess(userID string, guess int) (*GuessResult, error) {
	if err := s.Limiter.CheckAndRecord(userID, "guess", s.Cfg.GuessMaxAttempts, s.Cfg.GuessWindow); err != nil {
		return nil, err
	}

	if guess < 1 || guess > 10 {
		return nil, fmt.Errorf("%w: guess must be between 1 and 10", ErrValidation)
	}

	user, err := s.Balances.EnsureUser(userID)
	if err != nil {
		return nil, err
	}
	if user.Balance < s.Cfg.GuessPenalty {
		return nil, ErrInsufficientBalance
	}

	secret, err := s.Random.UniformInt(1, 10)
	if err != nil {
		log.Printf("Entropy failure during guess for %s: %v", userID, err)
		return nil, fmt.Errorf("%w: drawing outcome", ErrPersistence)
	}
	won := guess == secret

	delta := -s.Cfg.GuessPenalty
	var winAmount int64
	if won {
		delta = s.Cfg.GuessReward
		winAmount = s.Cfg.GuessReward
	}

	newBalance, err := s.Balances.ApplyDelta(userID, delta)
	if err != nil {
		return nil, err
	}

	s.recordEvent(userID, models.GameGuess, s.Cfg.GuessPenalty, winAmount, map[string]any{
		"guess":  guess,
		"secret": secret,
		"won":    won,
	})

	return &GuessResult{
		Guess:      guess,
		Secret:     secret,
		Won:        won,
		WinAmount:  winAmount,
		NewBalance: newBalance,
	}, nil
}

// History returns the caller's most recent settled plays, newest first.
func (s *GameService) History(userID string, limit int) ([]models.GameEvent, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	var events []models.GameEvent
	if err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error; err != nil {
		log.Printf("DB Error fetching history for %s: %v", userID, err)
		return nil, fmt.Errorf("%w: fetching history", ErrPersistence)
	}
	return events, nil
}

// recordEvent appends the audit record for a settled play. Audit is
// fire-and-forget: a write failure is logged and swallowed, never rolled
// back into the settlement.
func (s *GameService) recordEvent(userID string, game models.GameType, bet, win int64, payload map[string]any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[Games] Failed to encode %s payload for %s: %v", game, userID, err)
		return
	}
	event := models.GameEvent{
		ID:        uuid.NewString(),
		UserID:    userID,
		Game:      game,
		BetAmount: bet,
		WinAmount: win,
		Payload:   string(raw),
	}
	if err := s.DB.Create(&event).Error; err != nil {
		log.Printf("[Games] Failed to record %s event for %s: %v", game, userID, err)
	}
}
