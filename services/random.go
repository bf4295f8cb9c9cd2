// services/random.go
package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// RandomSource is what the games need from an entropy source. Satisfied by
// SecureRandomSource; tests substitute a scripted implementation.
type RandomSource interface {
	UniformInt(min, max int) (int, error)
	BinaryChoice() (bool, error)
}

// SecureRandomSource draws outcomes from crypto/rand. rand.Int already
// rejection-samples internally, so ranged draws carry no modulo bias.
type SecureRandomSource struct{}

// UniformInt returns a uniform integer in [min, max] inclusive.
func (SecureRandomSource) UniformInt(min, max int) (int, error) {
	if max < min {
		return 0, fmt.Errorf("%w: invalid range [%d, %d]", ErrValidation, min, max)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max-min)+1))
	if err != nil {
		return 0, fmt.Errorf("reading entropy: %w", err)
	}
	return min + int(n.Int64()), nil
}

// BinaryChoice returns true or false with probability 1/2 each.
func (SecureRandomSource) BinaryChoice() (bool, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(2))
	if err != nil {
		return false, fmt.Errorf("reading entropy: %w", err)
	}
	return n.Int64() == 1, nil
}
