// services/redemption_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"coin-wager-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,50}$`)

// RedeemResult is the settled outcome of a successful claim.
type RedeemResult struct {
	Code       string `json:"code"`
	Coins      int64  `json:"coins"`
	NewBalance int64  `json:"new_balance"`
}

// RedemptionService issues and consumes redeem codes. Consumption is
// exactly-once per (user, code): the redemption insert and the balance
// credit share one transaction, and the composite unique index turns a
// concurrent double claim into a rollback.
type RedemptionService struct {
	DB       *gorm.DB
	Balances *BalanceService
	Filter   *ThreatFilter
	Limiter  *RateLimiter
	Cfg      *Config
}

func NewRedemptionService(db *gorm.DB, balances *BalanceService, filter *ThreatFilter, limiter *RateLimiter, cfg *Config) *RedemptionService {
	return &RedemptionService{DB: db, Balances: balances, Filter: filter, Limiter: limiter, Cfg: cfg}
}

// Issue creates a redeem code. Only allow-listed issuers may call it; the
// optional label is sanitized and slugified before persistence.
func (s *RedemptionService) Issue(issuerID, code, label string, coins int64, hours int) (*models.RedeemCode, error) {
	if !s.Cfg.IsIssuer(issuerID) {
		return nil, fmt.Errorf("%w: not authorized to create codes", ErrValidation)
	}
	if err := s.Filter.Inspect(code); err != nil {
		return nil, err
	}
	if !codePattern.MatchString(code) {
		return nil, fmt.Errorf("%w: code must be 1-50 letters, digits, _ or -", ErrValidation)
	}
	if coins <= 0 {
		return nil, fmt.Errorf("%w: coin value must be positive", ErrValidation)
	}
	if hours <= 0 {
		return nil, fmt.Errorf("%w: expiry hours must be positive", ErrValidation)
	}

	rc := models.RedeemCode{
		ID:        uuid.NewString(),
		Code:      code,
		Label:     slug.Make(s.Filter.Sanitize(label)),
		CoinValue: coins,
		IssuedBy:  issuerID,
		ExpiresAt: time.Now().Add(time.Duration(hours) * time.Hour),
		Active:    true,
	}
	if err := s.DB.Create(&rc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateCode
		}
		log.Printf("DB Error creating code %s: %v", code, err)
		return nil, fmt.Errorf("%w: creating code", ErrPersistence)
	}
	return &rc, nil
}

// Redeem consumes a code for the calling user. Lookup failures, inactive
// codes and expired codes are refused before any write. The critical unit —
// insert the Redemption row, credit the balance — runs in one transaction:
// of N concurrent claims for the same (user, code), exactly one commits and
// the rest roll back with ErrDuplicateRedemption, credit included.
func (s *RedemptionService) Redeem(userID, code string) (*RedeemResult, error) {
	if err := s.Limiter.CheckAndRecord(userID, "claim", s.Cfg.ClaimMaxAttempts, s.Cfg.ClaimWindow); err != nil {
		return nil, err
	}
	if !codePattern.MatchString(code) {
		return nil, fmt.Errorf("%w: malformed code", ErrValidation)
	}
	if _, err := s.Balances.EnsureUser(userID); err != nil {
		return nil, err
	}

	var rc models.RedeemCode
	if err := s.DB.Where("code = ? AND active = ?", code, true).First(&rc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		log.Printf("DB Error looking up code %s: %v", code, err)
		return nil, fmt.Errorf("%w: looking up code", ErrPersistence)
	}
	if rc.Expired(time.Now()) {
		return nil, ErrCodeExpired
	}

	var newBalance int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		redemption := models.Redemption{
			ID:            uuid.NewString(),
			UserID:        userID,
			Code:          rc.Code,
			CoinsReceived: rc.CoinValue,
		}
		if err := tx.Create(&redemption).Error; err != nil {
			return err
		}
		n, err := s.Balances.ApplyDeltaTx(tx, userID, rc.CoinValue)
		if err != nil {
			return err
		}
		newBalance = n
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateRedemption
		}
		if errors.Is(err, ErrPersistence) {
			return nil, err
		}
		log.Printf("DB Error redeeming code %s for %s: %v", code, userID, err)
		return nil, fmt.Errorf("%w: redeeming code", ErrPersistence)
	}

	return &RedeemResult{Code: rc.Code, Coins: rc.CoinValue, NewBalance: newBalance}, nil
}

// DeactivateExpired flips the active flag off for codes past their
// expiration. Housekeeping only — Redeem checks expiry itself either way.
func (s *RedemptionService) DeactivateExpired(now time.Time) (int64, error) {
	res := s.DB.Model(&models.RedeemCode{}).
		Where("active = ? AND expires_at < ?", true, now).
		Update("active", false)
	if res.Error != nil {
		return 0, fmt.Errorf("%w: deactivating expired codes", ErrPersistence)
	}
	return res.RowsAffected, nil
}
