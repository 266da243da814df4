package event

import "time"

const OTPIssuedDestination string = "registration_otp_issued"
const OTPIssuedDestinationConsumerNotification string = "registration_otp_issued_notification"

type OTPIssuedMessage struct {
	SessionID string    `json:"session_id"`
	Channel   string    `json:"channel"`
	Contact   string    `json:"contact"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}
