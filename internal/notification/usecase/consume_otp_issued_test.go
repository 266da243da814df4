package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/enrollkit/enrollkit/internal/notification/entity"
	"github.com/enrollkit/enrollkit/internal/pkg/config"
	"github.com/enrollkit/enrollkit/internal/pkg/instrument"
	"github.com/enrollkit/enrollkit/internal/pkg/mail"
	"github.com/enrollkit/enrollkit/internal/pkg/validator"
)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type seqID struct{ n int64 }

func (s *seqID) Generate() int64 {
	s.n++
	return s.n
}

type fakeRepoDB struct {
	created []entity.CreateDeliveryLog
	updated []entity.UpdateDeliveryLog

	createErr error
}

func (f *fakeRepoDB) CreateDeliveryLog(_ context.Context, data entity.CreateDeliveryLog) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, data)
	return nil
}

func (f *fakeRepoDB) UpdateDeliveryLogStatus(_ context.Context, u entity.UpdateDeliveryLog) error {
	f.updated = append(f.updated, u)
	return nil
}

type fakeMail struct {
	sent []mail.Message
	err  error
}

func (f *fakeMail) Send(_ context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func newTestUsecase(t *testing.T) (*Usecase, *fakeRepoDB, *fakeMail, *fixedClock) {
	t.Helper()

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	cfg, err := config.NewViperFromBytes("yaml", []byte("modules:\n  notification:\n    retry_backlog_minutes: 2\n"))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}

	repo := &fakeRepoDB{}
	mailer := &fakeMail{}
	clk := &fixedClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}

	uc := NewNotification(Dependency{
		RepoDB:     repo,
		RepoMail:   mailer,
		Config:     cfg,
		UID:        &seqID{},
		Clock:      clk,
		Validator:  v10,
		Instrument: instrument.NewNoop(),
	})

	return uc, repo, mailer, clk
}

func validInput(clk *fixedClock) ConsumeOTPIssuedInput {
	return ConsumeOTPIssuedInput{
		SessionID: "11111111-1111-4111-8111-111111111111",
		Channel:   "email",
		Contact:   "a@b.com",
		Code:      "123456",
		ExpiresAt: clk.now.Add(5 * time.Minute),
	}
}

func TestConsumeOTPIssued(t *testing.T) {
	ctx := context.Background()

	t.Run("email delivery logs queued then sent", func(t *testing.T) {
		uc, repo, mailer, clk := newTestUsecase(t)

		if err := uc.ConsumeOTPIssued(ctx, validInput(clk)); err != nil {
			t.Fatalf("ConsumeOTPIssued() error = %v", err)
		}

		if len(repo.created) != 1 {
			t.Fatalf("created logs = %d, want 1", len(repo.created))
		}
		created := repo.created[0]
		if created.Channel != entity.ChannelEmail || created.Recipient != "a@b.com" || created.Status != entity.DeliveryStatusQueued {
			t.Errorf("created log = %+v", created)
		}

		if len(mailer.sent) != 1 {
			t.Fatalf("sent mails = %d, want 1", len(mailer.sent))
		}
		msg := mailer.sent[0]
		if msg.To[0] != "a@b.com" {
			t.Errorf("mail to = %v", msg.To)
		}
		if !strings.Contains(msg.HTMLBody, "123456") {
			t.Errorf("mail body does not contain the code: %q", msg.HTMLBody)
		}
		if !strings.Contains(msg.HTMLBody, "5 minutes") {
			t.Errorf("mail body does not mention the expiry: %q", msg.HTMLBody)
		}

		if len(repo.updated) != 1 || repo.updated[0].Status != entity.DeliveryStatusSent {
			t.Errorf("updates = %+v, want one sent", repo.updated)
		}
	})

	t.Run("email failure marks log failed with retry schedule", func(t *testing.T) {
		uc, repo, mailer, clk := newTestUsecase(t)
		mailer.err = errors.New("connection refused")

		if err := uc.ConsumeOTPIssued(ctx, validInput(clk)); err == nil {
			t.Fatal("ConsumeOTPIssued() error = nil, want delivery error")
		}

		if len(repo.updated) != 1 {
			t.Fatalf("updates = %d, want 1", len(repo.updated))
		}
		up := repo.updated[0]
		if up.Status != entity.DeliveryStatusFailed {
			t.Errorf("status = %v, want failed", up.Status)
		}
		if up.NextRetryAt == nil {
			t.Fatal("next retry not scheduled")
		}
		if want := clk.now.Add(2 * time.Minute); !up.NextRetryAt.Equal(want) {
			t.Errorf("nextRetryAt = %v, want %v", up.NextRetryAt, want)
		}
	})

	t.Run("phone channel uses the sms stub", func(t *testing.T) {
		uc, repo, mailer, clk := newTestUsecase(t)

		in := validInput(clk)
		in.Channel = "phone"
		in.Contact = "+628123456789"

		if err := uc.ConsumeOTPIssued(ctx, in); err != nil {
			t.Fatalf("ConsumeOTPIssued() error = %v", err)
		}

		if len(mailer.sent) != 0 {
			t.Errorf("sent mails = %d, want 0", len(mailer.sent))
		}
		if repo.created[0].Channel != entity.ChannelSMS {
			t.Errorf("channel = %v, want sms", repo.created[0].Channel)
		}
		if len(repo.updated) != 1 || repo.updated[0].Status != entity.DeliveryStatusSent {
			t.Errorf("updates = %+v, want one sent", repo.updated)
		}
	})

	t.Run("invalid payload is dropped without delivery", func(t *testing.T) {
		uc, repo, mailer, clk := newTestUsecase(t)

		in := validInput(clk)
		in.Code = "12"

		if err := uc.ConsumeOTPIssued(ctx, in); err != nil {
			t.Fatalf("ConsumeOTPIssued() error = %v, want nil for dropped payload", err)
		}
		if len(repo.created) != 0 || len(mailer.sent) != 0 {
			t.Errorf("dropped payload still produced work: logs=%d mails=%d", len(repo.created), len(mailer.sent))
		}
	})

	t.Run("store failure is returned for redelivery", func(t *testing.T) {
		uc, repo, _, clk := newTestUsecase(t)
		repo.createErr = errors.New("db down")

		if err := uc.ConsumeOTPIssued(ctx, validInput(clk)); err == nil {
			t.Fatal("ConsumeOTPIssued() error = nil, want store error")
		}
	})
}
