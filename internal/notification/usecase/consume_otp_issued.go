package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/enrollkit/enrollkit/internal/notification/entity"
	"github.com/enrollkit/enrollkit/internal/pkg/mail"
	"github.com/enrollkit/enrollkit/internal/pkg/valueobject"
)

type ConsumeOTPIssuedInput struct {
	SessionID string `validate:"required,uuid"`
	Channel   string `validate:"required,oneof=email phone"`
	Contact   string `validate:"required,otpcontact"`
	Code      string `validate:"required,otpcode"`
	ExpiresAt time.Time
}

const otpEmailSubject = "Your verification code"

const otpEmailBody = `<p>Hello,</p>
<p>Your verification code is <strong>{{.code}}</strong>.</p>
<p>It expires in {{.ttl_minutes}} minutes. If you did not request it, ignore this email.</p>`

// ConsumeOTPIssued delivers a freshly issued code over the requested channel
// and keeps a delivery log per attempt. Malformed payloads are dropped, not
// requeued, since they will never become parseable.
func (s *Usecase) ConsumeOTPIssued(ctx context.Context, in ConsumeOTPIssuedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeOTPIssued")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	dl := entity.CreateDeliveryLog{
		ID:        s.uid.Generate(),
		SessionID: in.SessionID,
		Channel:   entity.ChannelFromString(in.Channel),
		Recipient: in.Contact,
		Status:    entity.DeliveryStatusQueued,
	}
	if err := s.repoDB.CreateDeliveryLog(ctx, dl); err != nil {
		slog.ErrorContext(ctx, "failed to repo create delivery log", "session_id", in.SessionID, "error", err)
		return err
	}

	switch dl.Channel {
	case entity.ChannelEmail:
		return s.deliverEmail(ctx, dl, in)
	default:
		return s.deliverSMS(ctx, dl, in)
	}
}

func (s *Usecase) deliverEmail(ctx context.Context, dl entity.CreateDeliveryLog, in ConsumeOTPIssuedInput) error {
	ttl := in.ExpiresAt.Sub(s.clock.Now())
	body, err := s.renderTemplate("otp_email", otpEmailBody, map[string]any{
		"code":        in.Code,
		"ttl_minutes": int(ttl.Minutes()),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to render otp email body", "session_id", in.SessionID, "error", err)
		s.markFailed(ctx, dl.ID, err, nil)
		return nil
	}

	if err := s.repoMail.Send(ctx, s.buildMessage(in.Contact, body)); err != nil {
		slog.ErrorContext(ctx, "failed to send otp email", "log_id", dl.ID, "session_id", in.SessionID, "error", err)
		nextRetry := s.clock.Now().Add(s.cfg.GetMinute("modules.notification.retry_backlog_minutes"))
		s.markFailed(ctx, dl.ID, err, &nextRetry)
		return err
	}

	s.markSent(ctx, dl.ID, valueobject.JSONMap{})
	return nil
}

// deliverSMS stands in for a real SMS provider integration. The code is
// logged so local setups can complete the flow without a provider account.
func (s *Usecase) deliverSMS(ctx context.Context, dl entity.CreateDeliveryLog, in ConsumeOTPIssuedInput) error {
	slog.InfoContext(ctx, "sms delivery stub", "log_id", dl.ID, "contact", in.Contact, "code", in.Code)

	s.markSent(ctx, dl.ID, valueobject.JSONMap{"provider": "stub"})
	return nil
}

func (s *Usecase) buildMessage(to, body string) mail.Message {
	return mail.Message{
		To:       []string{to},
		Subject:  otpEmailSubject,
		HTMLBody: body,
	}
}

func (s *Usecase) markSent(ctx context.Context, logID int64, resp valueobject.JSONMap) {
	up := entity.UpdateDeliveryLog{
		ID:               logID,
		Status:           entity.DeliveryStatusSent,
		ProviderResponse: resp,
	}
	if err := s.repoDB.UpdateDeliveryLogStatus(ctx, up); err != nil {
		slog.ErrorContext(ctx, "failed to repo update delivery log status sent", "log_id", logID, "error", err)
	}
}

func (s *Usecase) markFailed(ctx context.Context, logID int64, cause error, nextRetry *time.Time) {
	up := entity.UpdateDeliveryLog{
		ID:               logID,
		Status:           entity.DeliveryStatusFailed,
		ProviderResponse: valueobject.JSONMap{"error": cause.Error()},
		NextRetryAt:      nextRetry,
	}
	if err := s.repoDB.UpdateDeliveryLogStatus(ctx, up); err != nil {
		slog.ErrorContext(ctx, "failed to repo update delivery log status failed", "log_id", logID, "error", err)
	}
}
