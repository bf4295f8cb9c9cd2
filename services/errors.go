// services/errors.go
package services

import "errors"

// Expected business outcomes are modeled as sentinel errors and matched with
// errors.Is at the handler boundary. Only ErrPersistence represents an
// unexpected storage fault; everything else is a normal, recoverable result
// of handling untrusted input. Internal detail (query text, matched pattern)
// is logged where the error originates and never attached to the reply.
var (
	ErrValidation          = errors.New("validation failed")
	ErrThreatDetected      = errors.New("message rejected")
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrCodeNotFound        = errors.New("code not found")
	ErrCodeExpired         = errors.New("code expired")
	ErrDuplicateCode       = errors.New("code already exists")
	ErrDuplicateRedemption = errors.New("code already redeemed")
	ErrPersistence         = errors.New("storage failure")
)
