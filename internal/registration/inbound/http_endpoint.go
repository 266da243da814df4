package inbound

import (
	"log/slog"

	"github.com/enrollkit/enrollkit/internal/pkg/router"
	"github.com/enrollkit/enrollkit/internal/registration/usecase"
)

// HTTPEndpoint exposes HTTP handlers for the registration OTP workflow.
// Every failure maps to the same generic payload; details stay in the logs.
type HTTPEndpoint struct {
	uc uc
}

// OTPRequest issues a one-time code for the submitted contact.
func (h *HTTPEndpoint) OTPRequest(r *router.Request) (any, error) {
	var req OTPRequestRequest
	if err := r.DecodeBody(&req); err != nil {
		slog.WarnContext(r.Context(), "rejected otp request body", "error", err)
		return failureResponse{Message: "Failed to send OTP"}, nil
	}

	resp, err := h.uc.OTPRequest(r.Context(), usecase.OTPRequestInput{
		Channel: req.OTPChannel,
		Contact: req.OTPContact,
	})
	if err != nil {
		slog.WarnContext(r.Context(), "otp request rejected", "error", err)
		return failureResponse{Message: "Failed to send OTP"}, nil
	}

	return OTPRequestResponse{
		Success:      true,
		OTPSessionID: resp.SessionID,
		OTP:          resp.Code,
	}, nil
}

// OTPVerify checks a submitted code and returns a verification ticket.
func (h *HTTPEndpoint) OTPVerify(r *router.Request) (any, error) {
	var req OTPVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		slog.WarnContext(r.Context(), "rejected otp verify body", "error", err)
		return failureResponse{Message: "Failed to verify OTP"}, nil
	}

	resp, err := h.uc.OTPVerify(r.Context(), usecase.OTPVerifyInput{
		SessionID: req.OTPSessionID,
		Code:      req.OTP,
	})
	if err != nil {
		slog.WarnContext(r.Context(), "otp verify rejected", "error", err)
		return failureResponse{Message: "Failed to verify OTP"}, nil
	}

	return OTPVerifyResponse{
		Success:            true,
		Message:            "OTP verified.",
		VerificationTicket: resp.VerificationTicket,
	}, nil
}
