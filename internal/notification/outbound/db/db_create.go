package db

import (
	"context"

	"github.com/enrollkit/enrollkit/internal/notification/entity"
)

func (s *DB) CreateDeliveryLog(ctx context.Context, data entity.CreateDeliveryLog) (err error) {
	ctx, span := s.startSpan(ctx, "CreateDeliveryLog")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO notification_delivery_logs (id, session_id, channel, recipient, status)
		VALUES ($1, $2, $3, $4, $5)`,
		data.ID, data.SessionID, int16(data.Channel), data.Recipient, int16(data.Status))
	return s.mapError(err)
}
