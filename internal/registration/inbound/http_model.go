package inbound

import "net/http"

type OTPRequestRequest struct {
	OTPChannel string `json:"otpChannel"`
	OTPContact string `json:"otpContact"`
}

type OTPRequestResponse struct {
	Success      bool   `json:"success"`
	OTPSessionID string `json:"otpSessionId"`
	// OTP carries the plaintext code only when demo exposure is enabled;
	// normal deployments deliver it out-of-band and leave this empty.
	OTP string `json:"otp,omitempty"`
}

type OTPVerifyRequest struct {
	OTP          string `json:"otp"`
	OTPSessionID string `json:"otpSessionId"`
}

type OTPVerifyResponse struct {
	Success            bool   `json:"success"`
	Message            string `json:"message"`
	VerificationTicket string `json:"verificationTicket"`
}

// failureResponse is the uniform failure payload for both OTP endpoints. The
// message stays generic regardless of the cause so callers cannot probe which
// contacts have a pending code.
type failureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (failureResponse) StatusCode() int {
	return http.StatusInternalServerError
}
