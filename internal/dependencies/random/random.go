package random

import (
	"crypto/rand"
	"math/big"
)

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Int63n returns a uniform random int64 in [0, n)
	Int63n(n int64) int64
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Int63n returns a cryptographically random int64 in [0, n)
func (r *CryptoRandom) Int63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	result, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		// Should never happen with crypto/rand
		return 0
	}
	return result.Int64()
}
