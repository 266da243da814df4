package validator

import "testing"

type otpRequestForm struct {
	Channel string `validate:"required,oneof=email phone"`
	Contact string `validate:"required,otpcontact"`
}

type otpVerifyForm struct {
	Code      string `validate:"required,otpcode"`
	SessionID string `validate:"required,uuid"`
}

func newTestValidator(t *testing.T) *V10Validator {
	t.Helper()

	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator returned error: %v", err)
	}
	return v
}

func TestValidateContactByChannel(t *testing.T) {
	v := newTestValidator(t)

	if err := v.Validate(otpRequestForm{Channel: "email", Contact: "user@example.com"}); err != nil {
		t.Errorf("valid email rejected: %v", err)
	}
	if err := v.Validate(otpRequestForm{Channel: "phone", Contact: "+6281234567890"}); err != nil {
		t.Errorf("valid phone rejected: %v", err)
	}
	if err := v.Validate(otpRequestForm{Channel: "email", Contact: "not-an-email"}); err == nil {
		t.Error("malformed email accepted")
	}
	if err := v.Validate(otpRequestForm{Channel: "phone", Contact: "0-800-BANANA"}); err == nil {
		t.Error("malformed phone accepted")
	}
	if err := v.Validate(otpRequestForm{Channel: "carrier_pigeon", Contact: "x"}); err == nil {
		t.Error("unknown channel accepted")
	}
}

func TestValidateOtpCode(t *testing.T) {
	v := newTestValidator(t)

	sid := "0199b5a1-0000-7000-8000-000000000001"

	if err := v.Validate(otpVerifyForm{Code: "004213", SessionID: sid}); err != nil {
		t.Errorf("valid code rejected: %v", err)
	}
	for _, code := range []string{"12345", "1234567", "12345a", "......", ""} {
		if err := v.Validate(otpVerifyForm{Code: code, SessionID: sid}); err == nil {
			t.Errorf("code %q accepted", code)
		}
	}
	if err := v.Validate(otpVerifyForm{Code: "004213", SessionID: "not-a-uuid"}); err == nil {
		t.Error("malformed session id accepted")
	}
}

func TestValidateErrorFieldKeys(t *testing.T) {
	v := newTestValidator(t)

	err := v.Validate(otpVerifyForm{})
	if err == nil {
		t.Fatal("empty form accepted")
	}

	verr, ok := err.(V10ValidationError)
	if !ok {
		t.Fatalf("error type = %T, want V10ValidationError", err)
	}
	if _, ok := verr.Values()["session_id"]; !ok {
		t.Errorf("field keys = %v, want snake_case session_id", verr.Values())
	}
}
