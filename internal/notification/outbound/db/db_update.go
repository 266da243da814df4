package db

import (
	"context"

	"github.com/enrollkit/enrollkit/internal/notification/entity"
	"github.com/enrollkit/enrollkit/internal/pkg/goerror"
	"github.com/jackc/pgx/v5/pgtype"
)

func (s *DB) UpdateDeliveryLogStatus(ctx context.Context, u entity.UpdateDeliveryLog) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateDeliveryLogStatus")
	defer func() { s.endSpan(span, err) }()

	var next pgtype.Timestamptz
	if u.NextRetryAt != nil {
		next = pgtype.Timestamptz{Time: *u.NextRetryAt, Valid: true}
	}

	tag, err := s.conn.Exec(ctx, `
		UPDATE notification_delivery_logs
		SET status = $2, provider_response = $3, next_retry_at = $4, updated_at = now()
		WHERE id = $1`,
		u.ID, int16(u.Status), u.ProviderResponse, next)
	if err != nil {
		return s.mapError(err)
	}

	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}
