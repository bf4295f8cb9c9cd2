// services/balance_service.go
package services

import (
	"errors"
	"fmt"
	"log"

	"coin-wager-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BalanceService is the only path through which user balances are read or
// mutated. All writes go through ApplyDelta, a single atomic server-side
// UPDATE — callers never compute a new balance and write it back, so
// concurrent deltas for the same user cannot lose updates.
type BalanceService struct {
	DB  *gorm.DB
	Cfg *Config
}

func NewBalanceService(db *gorm.DB, cfg *Config) *BalanceService {
	return &BalanceService{DB: db, Cfg: cfg}
}

// EnsureUser loads the wallet row for the handle, creating it with the
// starting balance on first reference. Safe under concurrent first
// references: a duplicate-key race falls back to reloading the winner's row.
func (s *BalanceService) EnsureUser(userID string) (*models.User, error) {
	var u models.User
	err := s.DB.Where("phone_id = ?", userID).First(&u).Error
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("DB Error loading user %s: %v", userID, err)
		return nil, fmt.Errorf("%w: loading user", ErrPersistence)
	}

	u = models.User{ID: uuid.NewString(), PhoneID: userID, Balance: s.Cfg.StartingBalance}
	if err := s.DB.Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the creation race; the row exists now.
			if err := s.DB.Where("phone_id = ?", userID).First(&u).Error; err != nil {
				log.Printf("DB Error reloading user %s after create race: %v", userID, err)
				return nil, fmt.Errorf("%w: loading user", ErrPersistence)
			}
			return &u, nil
		}
		log.Printf("DB Error creating user %s: %v", userID, err)
		return nil, fmt.Errorf("%w: creating user", ErrPersistence)
	}
	return &u, nil
}

// GetBalance returns the user's current balance, creating the wallet lazily.
func (s *BalanceService) GetBalance(userID string) (int64, error) {
	u, err := s.EnsureUser(userID)
	if err != nil {
		return 0, err
	}
	return u.Balance, nil
}

// ApplyDelta applies a signed coin delta atomically and returns the new
// balance. A negative delta that would push the balance below zero fails
// with ErrInsufficientBalance and changes nothing.
func (s *BalanceService) ApplyDelta(userID string, delta int64) (int64, error) {
	if _, err := s.EnsureUser(userID); err != nil {
		return 0, err
	}

	var newBalance int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		n, err := s.ApplyDeltaTx(tx, userID, delta)
		newBalance = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// ApplyDeltaTx is ApplyDelta inside a caller-owned transaction, so
// settlement and redemption can make the credit part of their own atomic
// unit. The guard is in the UPDATE itself: zero rows affected means the
// delta would have gone negative (the wallet row must already exist).
func (s *BalanceService) ApplyDeltaTx(tx *gorm.DB, userID string, delta int64) (int64, error) {
	res := tx.Model(&models.User{}).
		Where("phone_id = ? AND balance + ? >= 0", userID, delta).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		log.Printf("DB Error applying delta %d for %s: %v", delta, userID, res.Error)
		return 0, fmt.Errorf("%w: applying delta", ErrPersistence)
	}
	if res.RowsAffected == 0 {
		return 0, ErrInsufficientBalance
	}

	var u models.User
	if err := tx.Where("phone_id = ?", userID).First(&u).Error; err != nil {
		log.Printf("DB Error reading balance for %s: %v", userID, err)
		return 0, fmt.Errorf("%w: reading balance", ErrPersistence)
	}
	return u.Balance, nil
}
