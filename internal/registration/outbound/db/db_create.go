package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/enrollkit/enrollkit/internal/pkg/goerror"
	"github.com/enrollkit/enrollkit/internal/registration/entity"
	"github.com/jackc/pgx/v5"
)

// CreateOTPSessionExclusive inserts a session only when the contact has no
// other live one. The check and the insert run in one transaction behind a
// per-contact advisory lock, so two concurrent requests for the same contact
// serialize and the loser gets goerror.ErrConflict.
func (s *DB) CreateOTPSessionExclusive(ctx context.Context, in entity.CreateOTPSession) (err error) {
	ctx, span := s.startSpan(ctx, "CreateOTPSessionExclusive")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, in.Contact); err != nil {
		return s.mapError(err)
	}

	var exists bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM registration_otp_sessions
			WHERE contact = $1 AND expires_at > $2 AND consumed_at IS NULL
		)`, in.Contact, in.CreatedAt).Scan(&exists)
	if err != nil {
		return s.mapError(err)
	}
	if exists {
		return goerror.ErrConflict
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO registration_otp_sessions (id, channel, contact, code_hash, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		in.ID, int16(in.Channel), in.Contact, in.CodeHash, in.CreatedAt, in.ExpiresAt)
	if err != nil {
		return s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}
