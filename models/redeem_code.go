// models/redeem_code.go
package models

import (
	"time"
)

// RedeemCode is a one-time-per-user coin voucher created by an allow-listed
// issuer. A code becomes logically inert once expired or deactivated; apart
// from the Active flag it is never mutated after creation.
type RedeemCode struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Code      string    `gorm:"uniqueIndex;size:50;not null" json:"code"`
	Label     string    `gorm:"size:100" json:"label,omitempty"` // sanitized display tag, optional
	CoinValue int64     `gorm:"not null" json:"coin_value"`
	IssuedBy  string    `gorm:"index;not null" json:"issued_by"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Active    bool      `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expired reports whether the code is past its expiration at the given time.
func (r *RedeemCode) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
