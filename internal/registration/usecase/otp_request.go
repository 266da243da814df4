package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/enrollkit/enrollkit/internal/pkg/goerror"
	"github.com/enrollkit/enrollkit/internal/registration/entity"
)

type OTPRequestInput struct {
	Channel string `validate:"required,oneof=email phone"`
	Contact string `validate:"required,max=254,otpcontact"`
}

type OTPRequestOutput struct {
	SessionID string
	Channel   entity.Channel
	Contact   string
	Code      string
}

// OTPRequest issues a fresh one-time code for a contact. At most one
// non-expired session may exist per contact; the conflict check and the
// insert happen in a single transaction on the store side.
func (s *Usecase) OTPRequest(ctx context.Context, in OTPRequestInput) (*OTPRequestOutput, error) {
	ctx, span := s.startSpan(ctx, "OTPRequest")
	defer span.End()

	in.Channel = strings.TrimSpace(strings.ToLower(in.Channel))
	in.Contact = strings.TrimSpace(in.Contact)
	if entity.ChannelFromString(in.Channel) == entity.ChannelEmail {
		in.Contact = strings.ToLower(in.Contact)
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	code, err := s.otp.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	codeHash, err := s.hasher.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	session := entity.CreateOTPSession{
		ID:        s.uuid.Generate(),
		Channel:   entity.ChannelFromString(in.Channel),
		Contact:   in.Contact,
		CodeHash:  string(codeHash),
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.GetMinute("modules.registration.otp_ttl_minutes")),
	}

	if err := s.repoDB.CreateOTPSessionExclusive(ctx, session); err != nil {
		if errors.Is(err, goerror.ErrConflict) {
			return nil, goerror.NewBusiness("An OTP is already outstanding for this contact", goerror.CodeConflict)
		}
		slog.ErrorContext(ctx, "failed to repo create otp session", "contact", in.Contact, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoMessaging.PublishOTPIssued(ctx, OTPIssuedEvent{
		SessionID: session.ID,
		Channel:   session.Channel,
		Contact:   session.Contact,
		Code:      code,
		ExpiresAt: session.ExpiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp issued", "session_id", session.ID, "error", err)
	}

	out := &OTPRequestOutput{
		SessionID: session.ID,
		Channel:   session.Channel,
		Contact:   session.Contact,
	}
	if s.cfg.GetBool("modules.registration.expose_code") {
		out.Code = code
	}

	return out, nil
}
