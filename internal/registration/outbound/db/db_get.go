package db

import (
	"context"
	"time"

	"github.com/enrollkit/enrollkit/internal/registration/entity"
)

const otpSessionColumns = `id, channel, contact, code_hash, created_at, expires_at, consumed_at`

func scanOTPSession(row interface{ Scan(dest ...any) error }) (*entity.OTPSession, error) {
	var (
		out        entity.OTPSession
		channel    int16
		consumedAt *time.Time
	)
	err := row.Scan(&out.ID, &channel, &out.Contact, &out.CodeHash, &out.CreatedAt, &out.ExpiresAt, &consumedAt)
	if err != nil {
		return nil, err
	}
	out.Channel = entity.Channel(channel)
	out.ConsumedAt = consumedAt
	return &out, nil
}

func (s *DB) GetActiveOTPSessionByContact(ctx context.Context, contact string) (out *entity.OTPSession, err error) {
	ctx, span := s.startSpan(ctx, "GetActiveOTPSessionByContact")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx, `
		SELECT `+otpSessionColumns+`
		FROM registration_otp_sessions
		WHERE contact = $1 AND expires_at > now() AND consumed_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`, contact)

	out, err = scanOTPSession(row)
	if err != nil {
		return nil, s.mapError(err)
	}
	return out, nil
}

func (s *DB) GetActiveOTPSessionByID(ctx context.Context, id string) (out *entity.OTPSession, err error) {
	ctx, span := s.startSpan(ctx, "GetActiveOTPSessionByID")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx, `
		SELECT `+otpSessionColumns+`
		FROM registration_otp_sessions
		WHERE id = $1 AND expires_at > now() AND consumed_at IS NULL`, id)

	out, err = scanOTPSession(row)
	if err != nil {
		return nil, s.mapError(err)
	}
	return out, nil
}
