package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fixedUUID struct{ id string }

func (g fixedUUID) Generate() string { return g.id }

func testSecret() []byte {
	return []byte(strings.Repeat("s", 64))
}

func newTestSymmetric(t *testing.T, now time.Time) *Symmetric {
	t.Helper()

	s, err := NewHS512(Config{
		Secret:     testSecret(),
		Issuer:     "enrollkit",
		Audiences:  []string{"registration"},
		TTLMinutes: 5 * time.Minute,
		Clock:      fixedClock{now: now},
		UUID:       fixedUUID{id: "0199b5a1-0000-7000-8000-000000000001"},
	})
	if err != nil {
		t.Fatalf("NewHS512 returned error: %v", err)
	}

	return s
}

func TestNewHS512RejectsShortSecret(t *testing.T) {
	_, err := NewHS512(Config{Secret: []byte("too short")})
	if !errors.Is(err, ErrSigningKeyTooShort) {
		t.Fatalf("error = %v, want ErrSigningKeyTooShort", err)
	}
}

func TestSymmetricGenerateVerifyRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	s := newTestSymmetric(t, now)

	token, err := s.Generate("user@example.com", "0199b5a1-aaaa-7000-8000-000000000002")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	claims, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.Subject != "user@example.com" {
		t.Errorf("subject = %q, want contact", claims.Subject)
	}
	if claims.Type != TypeVerification {
		t.Errorf("type = %q, want %q", claims.Type, TypeVerification)
	}
	if claims.SessionID != "0199b5a1-aaaa-7000-8000-000000000002" {
		t.Errorf("session id = %q, want the minting session", claims.SessionID)
	}
	if got := claims.ExpiresAt.Time; !got.Equal(now.Add(5 * time.Minute)) {
		t.Errorf("expires at = %v, want issue time + 5m", got)
	}
}

func TestSymmetricVerifyExpired(t *testing.T) {
	issued := time.Now().Add(-10 * time.Minute)
	s := newTestSymmetric(t, issued)

	token, err := s.Generate("user@example.com", "sid")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if _, err := s.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("error = %v, want ErrTokenExpired", err)
	}
}

func TestSymmetricVerifyTampered(t *testing.T) {
	s := newTestSymmetric(t, time.Now())

	token, err := s.Generate("user@example.com", "sid")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	parts := strings.Split(token, ".")
	parts[2] = strings.Repeat("A", len(parts[2]))

	if _, err := s.Verify(strings.Join(parts, ".")); err == nil {
		t.Fatal("Verify accepted a token with a forged signature")
	}
}

func TestSymmetricVerifyForeignAlgorithm(t *testing.T) {
	now := time.Now()
	s := newTestSymmetric(t, now)

	token, err := libJWT.NewWithClaims(libJWT.SigningMethodHS256, Claims{
		RegisteredClaims: libJWT.RegisteredClaims{
			Subject:   "user@example.com",
			Issuer:    "enrollkit",
			Audience:  []string{"registration"},
			IssuedAt:  libJWT.NewNumericDate(now),
			ExpiresAt: libJWT.NewNumericDate(now.Add(5 * time.Minute)),
		},
		Type:      TypeVerification,
		SessionID: "sid",
	}).SignedString(testSecret())
	if err != nil {
		t.Fatalf("SignedString returned error: %v", err)
	}

	if _, err := s.Verify(token); err == nil {
		t.Fatal("Verify accepted an HS256-signed token")
	}
}

func TestSymmetricVerifyWrongSecret(t *testing.T) {
	now := time.Now()
	s := newTestSymmetric(t, now)

	other, err := NewHS512(Config{
		Secret:     []byte(strings.Repeat("x", 64)),
		Issuer:     "enrollkit",
		Audiences:  []string{"registration"},
		TTLMinutes: 5 * time.Minute,
		Clock:      fixedClock{now: now},
		UUID:       fixedUUID{id: "id"},
	})
	if err != nil {
		t.Fatalf("NewHS512 returned error: %v", err)
	}

	token, err := other.Generate("user@example.com", "sid")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if _, err := s.Verify(token); err == nil {
		t.Fatal("Verify accepted a token signed with a different secret")
	}
}
