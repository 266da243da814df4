package inbound

import (
	"context"

	"github.com/enrollkit/enrollkit/internal/notification/usecase"
)

type uc interface {
	ConsumeOTPIssued(ctx context.Context, in usecase.ConsumeOTPIssuedInput) error
}
