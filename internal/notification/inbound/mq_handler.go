package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/enrollkit/enrollkit/internal/notification/usecase"
	"github.com/enrollkit/enrollkit/internal/pkg/instrument"
	"github.com/enrollkit/enrollkit/internal/pkg/messaging"
	"github.com/enrollkit/enrollkit/internal/pkg/uid"
	"github.com/enrollkit/enrollkit/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) OTPIssuedNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "OTPIssuedNotification")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: otp issued notification", "session_id", jsonField(body, "session_id"))

	var payload event.OTPIssuedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp issued notification", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeOTPIssued(ctx, usecase.ConsumeOTPIssuedInput{
		SessionID: payload.SessionID,
		Channel:   payload.Channel,
		Contact:   payload.Contact,
		Code:      payload.Code,
		ExpiresAt: payload.ExpiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume otp issued", "session_id", payload.SessionID, "error", err)
		return err
	}

	return nil
}

// jsonField pulls one string field out of a raw body for logging without
// logging the whole payload, which carries the plaintext code.
func jsonField(body []byte, key string) string {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
