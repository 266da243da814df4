package hash

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

const saltedHMACSaltSize = 16

// SaltedHMAC implements the Hash interface using HMAC-SHA256 keyed with a
// random per-value salt. The output format is "<salt_hex>:<digest_hex>", so
// the stored hash carries everything needed to verify later.
type SaltedHMAC struct{}

// NewSaltedHMAC creates a new salted HMAC-SHA256 hasher.
func NewSaltedHMAC() *SaltedHMAC {
	return &SaltedHMAC{}
}

// Hash generates a fresh salt and returns "<salt_hex>:<digest_hex>".
func (s *SaltedHMAC) Hash(str string) ([]byte, error) {
	salt := make([]byte, saltedHMACSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	saltHex := hex.EncodeToString(salt)

	return []byte(saltHex + ":" + s.digest(saltHex, str)), nil
}

// Verify checks whether the plaintext string matches the given hash. A
// malformed hash never matches.
func (s *SaltedHMAC) Verify(hashed, str string) bool {
	saltHex, digestHex, ok := strings.Cut(hashed, ":")
	if !ok || saltHex == "" || digestHex == "" {
		return false
	}

	expected := s.digest(saltHex, str)

	return subtle.ConstantTimeCompare([]byte(digestHex), []byte(expected)) == 1
}

func (s *SaltedHMAC) digest(saltHex, str string) string {
	h := hmac.New(sha256.New, []byte(saltHex))
	h.Write([]byte(str))

	return hex.EncodeToString(h.Sum(nil))
}
