package models

import (
	"time"
)

// User is a chat participant's coin wallet, keyed by the opaque handle the
// messaging transport gives us (phone-like ID). Rows are created lazily on
// first reference with the configured starting balance and are never deleted.
// Balance is only ever mutated through BalanceService.
type User struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	PhoneID string `gorm:"uniqueIndex;not null" json:"phone_id"`
	Balance int64  `gorm:"not null;default:0" json:"balance"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
