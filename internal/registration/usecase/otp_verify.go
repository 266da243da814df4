package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/enrollkit/enrollkit/internal/pkg/goerror"
)

type OTPVerifyInput struct {
	SessionID string `validate:"required,uuid"`
	Code      string `validate:"required,otpcode"`
}

type OTPVerifyOutput struct {
	Contact            string
	VerificationTicket string
}

// OTPVerify checks a submitted code against the stored digest and, on
// match, consumes the session and issues a signed verification ticket.
// Wrong id, expired session, consumed session and wrong code all yield
// the same outcome so callers cannot enumerate outstanding sessions.
func (s *Usecase) OTPVerify(ctx context.Context, in OTPVerifyInput) (*OTPVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "OTPVerify")
	defer span.End()

	in.SessionID = strings.TrimSpace(in.SessionID)
	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	session, err := s.repoDB.GetActiveOTPSessionByID(ctx, in.SessionID)
	if err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness("OTP session not found or expired", goerror.CodeUnauthorized)
		}
		slog.ErrorContext(ctx, "failed to repo get otp session", "session_id", in.SessionID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.hasher.Verify(session.CodeHash, in.Code) {
		return nil, goerror.NewBusiness("OTP code is incorrect", goerror.CodeUnauthorized)
	}

	if err := s.repoDB.ConsumeOTPSession(ctx, session.ID, s.clock.Now()); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			// Lost the race against a concurrent verify of the same session.
			return nil, goerror.NewBusiness("OTP session not found or expired", goerror.CodeUnauthorized)
		}
		slog.ErrorContext(ctx, "failed to repo consume otp session", "session_id", session.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	ticket, err := s.jwt.Generate(session.Contact, session.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate verification ticket", "session_id", session.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &OTPVerifyOutput{
		Contact:            session.Contact,
		VerificationTicket: ticket,
	}, nil
}
