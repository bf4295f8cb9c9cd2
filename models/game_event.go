// models/game_event.go
package models

import (
	"time"
)

// GameType identifies which wagering game produced an event.
type GameType string

const (
	GameRoulette GameType = "roulette"
	GameGuess    GameType = "guess"
)

// GameEvent is the append-only audit record of a settled play. Payload holds
// the game-specific outcome as JSON text. Events are never updated or
// deleted, and a failed event write never rolls back the settlement it
// describes.
type GameEvent struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	Game      GameType  `gorm:"size:20;not null" json:"game"`
	BetAmount int64     `gorm:"not null" json:"bet_amount"`
	WinAmount int64     `gorm:"not null" json:"win_amount"`
	Payload   string    `gorm:"type:text" json:"payload"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
