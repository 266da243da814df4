package inbound

import (
	"context"

	"github.com/enrollkit/enrollkit/internal/pkg/router"
	"github.com/enrollkit/enrollkit/internal/registration/usecase"
)

type uc interface {
	OTPRequest(ctx context.Context, in usecase.OTPRequestInput) (*usecase.OTPRequestOutput, error)
	OTPVerify(ctx context.Context, in usecase.OTPVerifyInput) (*usecase.OTPVerifyOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Contact verification
	r.POST("/api/v1/registration/otp/request", end.OTPRequest)
	r.POST("/api/v1/registration/otp/verify", end.OTPVerify)
}
