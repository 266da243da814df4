package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// OTP defines the contract for one-time password generation.
type OTP interface {
	// Generate creates a new random code.
	Generate() (string, error)
}

// Numeric implements OTP using uniformly random decimal codes.
type Numeric struct {
	digits int
	max    *big.Int
}

// NewNumeric constructs a Numeric generator producing codes of the given
// length. Lengths outside 4..10 fall back to 6 digits.
func NewNumeric(digits int) *Numeric {
	if digits < 4 || digits > 10 {
		digits = 6
	}

	max := big.NewInt(10)
	max.Exp(max, big.NewInt(int64(digits)), nil)

	return &Numeric{digits: digits, max: max}
}

// Generate returns a zero-padded random decimal code, e.g. "048213".
func (o *Numeric) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, o.max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", o.digits, n), nil
}
