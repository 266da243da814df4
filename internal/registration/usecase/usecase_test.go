package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/enrollkit/enrollkit/internal/pkg/config"
	"github.com/enrollkit/enrollkit/internal/pkg/goerror"
	"github.com/enrollkit/enrollkit/internal/pkg/hash"
	"github.com/enrollkit/enrollkit/internal/pkg/instrument"
	"github.com/enrollkit/enrollkit/internal/pkg/jwt"
	"github.com/enrollkit/enrollkit/internal/pkg/otp"
	"github.com/enrollkit/enrollkit/internal/pkg/validator"
	"github.com/enrollkit/enrollkit/internal/registration/entity"
)

const testConfigYAML = `
modules:
  registration:
    otp_ttl_minutes: 5
    expose_code: true
`

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type seqUUID struct {
	mu sync.Mutex
	n  int
}

func (s *seqUUID) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", s.n)
}

type memStore struct {
	mu       sync.Mutex
	sessions map[string]*entity.OTPSession
	now      func() time.Time

	createErr  error
	consumeErr error
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{sessions: map[string]*entity.OTPSession{}, now: now}
}

func (m *memStore) GetActiveOTPSessionByID(_ context.Context, id string) (*entity.OTPSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || !s.ExpiresAt.After(m.now()) || s.ConsumedAt != nil {
		return nil, goerror.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) CreateOTPSessionExclusive(_ context.Context, in entity.CreateOTPSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, s := range m.sessions {
		if s.Contact == in.Contact && s.ExpiresAt.After(m.now()) && s.ConsumedAt == nil {
			return goerror.ErrConflict
		}
	}
	m.sessions[in.ID] = &entity.OTPSession{
		ID:        in.ID,
		Channel:   in.Channel,
		Contact:   in.Contact,
		CodeHash:  in.CodeHash,
		CreatedAt: in.CreatedAt,
		ExpiresAt: in.ExpiresAt,
	}
	return nil
}

func (m *memStore) ConsumeOTPSession(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.consumeErr != nil {
		return m.consumeErr
	}
	s, ok := m.sessions[id]
	if !ok || s.ConsumedAt != nil || !s.ExpiresAt.After(at) {
		return goerror.ErrNotFound
	}
	s.ConsumedAt = &at
	return nil
}

type memPublisher struct {
	mu     sync.Mutex
	events []OTPIssuedEvent
	err    error
}

func (m *memPublisher) PublishOTPIssued(_ context.Context, msg OTPIssuedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, msg)
	return nil
}

type testEnv struct {
	uc    *Usecase
	store *memStore
	pub   *memPublisher
	clock *fixedClock
	jwt   jwt.JWT
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clk := &fixedClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	store := newMemStore(func() time.Time { return clk.now })
	pub := &memPublisher{}

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfigYAML))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}

	uuid := &seqUUID{}
	signer, err := jwt.NewHS512(jwt.Config{
		Secret:     []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"),
		Issuer:     "enrollkit-test",
		Audiences:  []string{"enrollkit"},
		TTLMinutes: 5 * time.Minute,
		Clock:      clk,
		UUID:       uuid,
	})
	if err != nil {
		t.Fatalf("NewHS512() error = %v", err)
	}

	uc := New(Dependency{
		RepoDB:        store,
		RepoMessaging: pub,
		Validator:     v10,
		Config:        cfg,
		Hasher:        hash.NewSaltedHMAC(),
		OTP:           otp.NewNumeric(6),
		UUID:          uuid,
		Clock:         clk,
		JWT:           signer,
		Instrument:    instrument.NewNoop(),
	})

	return &testEnv{uc: uc, store: store, pub: pub, clock: clk, jwt: signer}
}

func TestOTPRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a session and publishes the code", func(t *testing.T) {
		env := newTestEnv(t)

		out, err := env.uc.OTPRequest(ctx, OTPRequestInput{Channel: "email", Contact: "User@Example.COM"})
		if err != nil {
			t.Fatalf("OTPRequest() error = %v", err)
		}
		if out.SessionID == "" {
			t.Fatal("OTPRequest() returned empty session id")
		}
		if out.Contact != "user@example.com" {
			t.Errorf("contact = %q, want normalized lowercase", out.Contact)
		}
		if len(out.Code) != 6 {
			t.Errorf("code = %q, want 6 digits", out.Code)
		}

		stored := env.store.sessions[out.SessionID]
		if stored == nil {
			t.Fatal("session was not persisted")
		}
		if stored.CodeHash == out.Code {
			t.Error("plaintext code was stored instead of a digest")
		}
		if !hash.NewSaltedHMAC().Verify(stored.CodeHash, out.Code) {
			t.Error("stored digest does not match issued code")
		}
		if want := env.clock.now.Add(5 * time.Minute); !stored.ExpiresAt.Equal(want) {
			t.Errorf("expiresAt = %v, want %v", stored.ExpiresAt, want)
		}

		if len(env.pub.events) != 1 {
			t.Fatalf("published events = %d, want 1", len(env.pub.events))
		}
		ev := env.pub.events[0]
		if ev.SessionID != out.SessionID || ev.Contact != "user@example.com" || ev.Code != out.Code {
			t.Errorf("published event = %+v, mismatch with issued session", ev)
		}
	})

	t.Run("second request for same contact conflicts", func(t *testing.T) {
		env := newTestEnv(t)

		if _, err := env.uc.OTPRequest(ctx, OTPRequestInput{Channel: "email", Contact: "a@b.com"}); err != nil {
			t.Fatalf("first OTPRequest() error = %v", err)
		}

		_, err := env.uc.OTPRequest(ctx, OTPRequestInput{Channel: "email", Contact: "a@b.com"})
		var ge *goerror.Error
		if !errors.As(err, &ge) || ge.Code() != goerror.CodeConflict {
			t.Fatalf("second OTPRequest() error = %v, want conflict", err)
		}
		if len(env.store.sessions) != 1 {
			t.Errorf("sessions = %d, want 1 (no second row)", len(env.store.sessions))
		}
	})

	t.Run("allows a new request once the previous session expired", func(t *testing.T) {
		env := newTestEnv(t)

		if _, err := env.uc.OTPRequest(ctx, OTPRequestInput{Channel: "phone", Contact: "+628123456789"}); err != nil {
			t.Fatalf("first OTPRequest() error = %v", err)
		}

		env.clock.now = env.clock.now.Add(6 * time.Minute)

		if _, err := env.uc.OTPRequest(ctx, OTPRequestInput{Channel: "phone", Contact: "+628123456789"}); err != nil {
			t.Fatalf("OTPRequest() after expiry error = %v", err)
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		env := newTestEnv(t)

		tests := []struct {
			name string
			in   OTPRequestInput
		}{
			{"empty channel", OTPRequestInput{Contact: "a@b.com"}},
			{"unknown channel", OTPRequestInput{Channel: "carrier-pigeon", Contact: "a@b.com"}},
			{"empty contact", OTPRequestInput{Channel: "email"}},
			{"malformed email", OTPRequestInput{Channel: "email", Contact: "not-an-email"}},
			{"malformed phone", OTPRequestInput{Channel: "phone", Contact: "abc"}},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				if _, err := env.uc.OTPRequest(ctx, tc.in); err == nil {
					t.Errorf("OTPRequest(%+v) error = nil, want validation error", tc.in)
				}
			})
		}
		if len(env.store.sessions) != 0 {
			t.Errorf("sessions = %d, want 0 after rejected inputs", len(env.store.sessions))
		}
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		env := newTestEnv(t)
		env.pub.err = errors.New("broker down")

		out, err := env.uc.OTPRequest(ctx, OTPRequestInput{Channel: "email", Contact: "a@b.com"})
		if err != nil {
			t.Fatalf("OTPRequest() error = %v", err)
		}
		if out.SessionID == "" {
			t.Error("expected a session despite the publish failure")
		}
	})

	t.Run("store failure surfaces as server error", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.createErr = errors.New("connection reset")

		_, err := env.uc.OTPRequest(ctx, OTPRequestInput{Channel: "email", Contact: "a@b.com"})
		var ge *goerror.Error
		if !errors.As(err, &ge) || ge.Code() != goerror.CodeInternal {
			t.Fatalf("OTPRequest() error = %v, want internal", err)
		}
	})
}

func TestOTPVerify(t *testing.T) {
	ctx := context.Background()

	issue := func(t *testing.T, env *testEnv, contact string) (sessionID, code string) {
		t.Helper()
		out, err := env.uc.OTPRequest(ctx, OTPRequestInput{Channel: "email", Contact: contact})
		if err != nil {
			t.Fatalf("OTPRequest() error = %v", err)
		}
		return out.SessionID, out.Code
	}

	t.Run("correct code yields a ticket bound to contact and session", func(t *testing.T) {
		env := newTestEnv(t)
		sid, code := issue(t, env, "a@b.com")

		out, err := env.uc.OTPVerify(ctx, OTPVerifyInput{SessionID: sid, Code: code})
		if err != nil {
			t.Fatalf("OTPVerify() error = %v", err)
		}
		if out.Contact != "a@b.com" {
			t.Errorf("contact = %q, want a@b.com", out.Contact)
		}

		claims, err := env.jwt.Verify(out.VerificationTicket)
		if err != nil {
			t.Fatalf("Verify(ticket) error = %v", err)
		}
		if claims.Subject != "a@b.com" {
			t.Errorf("ticket subject = %q, want a@b.com", claims.Subject)
		}
		if claims.SessionID != sid {
			t.Errorf("ticket sid = %q, want %q", claims.SessionID, sid)
		}
		if claims.Type != jwt.TypeVerification {
			t.Errorf("ticket type = %q, want %q", claims.Type, jwt.TypeVerification)
		}
	})

	t.Run("wrong code is rejected and session stays usable", func(t *testing.T) {
		env := newTestEnv(t)
		sid, code := issue(t, env, "a@b.com")

		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		if _, err := env.uc.OTPVerify(ctx, OTPVerifyInput{SessionID: sid, Code: wrong}); err == nil {
			t.Fatal("OTPVerify() with wrong code succeeded")
		}

		if _, err := env.uc.OTPVerify(ctx, OTPVerifyInput{SessionID: sid, Code: code}); err != nil {
			t.Fatalf("OTPVerify() retry with correct code error = %v", err)
		}
	})

	t.Run("session is single use", func(t *testing.T) {
		env := newTestEnv(t)
		sid, code := issue(t, env, "a@b.com")

		if _, err := env.uc.OTPVerify(ctx, OTPVerifyInput{SessionID: sid, Code: code}); err != nil {
			t.Fatalf("first OTPVerify() error = %v", err)
		}

		_, err := env.uc.OTPVerify(ctx, OTPVerifyInput{SessionID: sid, Code: code})
		var ge *goerror.Error
		if !errors.As(err, &ge) || ge.Code() != goerror.CodeUnauthorized {
			t.Fatalf("second OTPVerify() error = %v, want unauthorized", err)
		}
	})

	t.Run("expired session behaves like a missing one", func(t *testing.T) {
		env := newTestEnv(t)
		sid, code := issue(t, env, "a@b.com")

		env.clock.now = env.clock.now.Add(6 * time.Minute)

		_, err := env.uc.OTPVerify(ctx, OTPVerifyInput{SessionID: sid, Code: code})
		var ge *goerror.Error
		if !errors.As(err, &ge) || ge.Code() != goerror.CodeUnauthorized {
			t.Fatalf("OTPVerify() after expiry error = %v, want unauthorized", err)
		}
	})

	t.Run("unknown session id is rejected", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.OTPVerify(ctx, OTPVerifyInput{
			SessionID: "11111111-1111-4111-8111-111111111111",
			Code:      "123456",
		})
		var ge *goerror.Error
		if !errors.As(err, &ge) || ge.Code() != goerror.CodeUnauthorized {
			t.Fatalf("OTPVerify() error = %v, want unauthorized", err)
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		env := newTestEnv(t)

		tests := []struct {
			name string
			in   OTPVerifyInput
		}{
			{"empty session id", OTPVerifyInput{Code: "123456"}},
			{"not a uuid", OTPVerifyInput{SessionID: "abc", Code: "123456"}},
			{"short code", OTPVerifyInput{SessionID: "11111111-1111-4111-8111-111111111111", Code: "123"}},
			{"alpha code", OTPVerifyInput{SessionID: "11111111-1111-4111-8111-111111111111", Code: "12a456"}},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				if _, err := env.uc.OTPVerify(ctx, tc.in); err == nil {
					t.Errorf("OTPVerify(%+v) error = nil, want validation error", tc.in)
				}
			})
		}
	})
}
