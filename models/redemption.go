// models/redemption.go
package models

import (
	"time"
)

// Redemption records that a user consumed a code. The composite unique index
// on (user_id, code) is the invariant that makes double redemption
// impossible: the insert either lands exactly once or aborts the whole
// redemption transaction, credit included. Rows are immutable.
type Redemption struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string    `gorm:"uniqueIndex:idx_redemptions_user_code;not null" json:"user_id"`
	Code          string    `gorm:"uniqueIndex:idx_redemptions_user_code;size:50;not null" json:"code"`
	CoinsReceived int64     `gorm:"not null" json:"coins_received"`
	RedeemedAt    time.Time `gorm:"autoCreateTime" json:"redeemed_at"`
}
