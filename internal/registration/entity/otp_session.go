package entity

import "time"

// OTPSession is one outstanding OTP challenge for one contact. The code
// itself is never stored, only its salted digest.
type OTPSession struct {
	ID         string
	Channel    Channel
	Contact    string
	CodeHash   string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	ConsumedAt *time.Time
}

func (s OTPSession) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

func (s OTPSession) IsConsumed() bool {
	return s.ConsumedAt != nil
}

type CreateOTPSession struct {
	ID        string
	Channel   Channel
	Contact   string
	CodeHash  string
	CreatedAt time.Time
	ExpiresAt time.Time
}
