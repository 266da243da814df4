package db

import (
	"context"
	"time"

	"github.com/enrollkit/enrollkit/internal/pkg/goerror"
)

// ConsumeOTPSession marks a session used. The guard in the WHERE clause makes
// it first-writer-wins: a second concurrent verify matches zero rows and gets
// goerror.ErrNotFound.
func (s *DB) ConsumeOTPSession(ctx context.Context, id string, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "ConsumeOTPSession")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE registration_otp_sessions
		SET consumed_at = $2
		WHERE id = $1 AND consumed_at IS NULL AND expires_at > $2`, id, at)
	if err != nil {
		return s.mapError(err)
	}

	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}
