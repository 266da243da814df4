package inbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/enrollkit/enrollkit/internal/pkg/config"
	"github.com/enrollkit/enrollkit/internal/pkg/goerror"
	"github.com/enrollkit/enrollkit/internal/pkg/instrument"
	"github.com/enrollkit/enrollkit/internal/pkg/router"
	"github.com/enrollkit/enrollkit/internal/pkg/uid"
	"github.com/enrollkit/enrollkit/internal/registration/usecase"
)

type fakeUC struct {
	requestOut *usecase.OTPRequestOutput
	requestErr error
	verifyOut  *usecase.OTPVerifyOutput
	verifyErr  error

	lastRequest usecase.OTPRequestInput
	lastVerify  usecase.OTPVerifyInput
}

func (f *fakeUC) OTPRequest(_ context.Context, in usecase.OTPRequestInput) (*usecase.OTPRequestOutput, error) {
	f.lastRequest = in
	return f.requestOut, f.requestErr
}

func (f *fakeUC) OTPVerify(_ context.Context, in usecase.OTPVerifyInput) (*usecase.OTPVerifyOutput, error) {
	f.lastVerify = in
	return f.verifyOut, f.verifyErr
}

func newTestRouter(t *testing.T, uc uc) *router.Router {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte("app:\n  maintenance: false\n"))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}

	r := router.NewRouter(router.Config{
		Config:     cfg,
		UUID:       uid.NewUUID(),
		Instrument: instrument.NewNoop(),
	})
	RegisterHTTPEndpoint(r, uc)
	return r
}

func do(t *testing.T, r http.Handler, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("response is not JSON: %v, body = %s", err, rec.Body.String())
	}
	return rec, got
}

func TestOTPRequestEndpoint(t *testing.T) {
	t.Run("success returns session id and code", func(t *testing.T) {
		uc := &fakeUC{requestOut: &usecase.OTPRequestOutput{
			SessionID: "11111111-1111-4111-8111-111111111111",
			Code:      "123456",
		}}
		r := newTestRouter(t, uc)

		rec, got := do(t, r, "/api/v1/registration/otp/request",
			`{"otpChannel":"email","otpContact":"a@b.com"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got["success"] != true {
			t.Errorf("success = %v, want true", got["success"])
		}
		if got["otpSessionId"] != "11111111-1111-4111-8111-111111111111" {
			t.Errorf("otpSessionId = %v", got["otpSessionId"])
		}
		if got["otp"] != "123456" {
			t.Errorf("otp = %v, want 123456", got["otp"])
		}
		if uc.lastRequest.Channel != "email" || uc.lastRequest.Contact != "a@b.com" {
			t.Errorf("usecase input = %+v", uc.lastRequest)
		}
	})

	t.Run("code is omitted when not exposed", func(t *testing.T) {
		uc := &fakeUC{requestOut: &usecase.OTPRequestOutput{
			SessionID: "11111111-1111-4111-8111-111111111111",
		}}
		r := newTestRouter(t, uc)

		_, got := do(t, r, "/api/v1/registration/otp/request",
			`{"otpChannel":"email","otpContact":"a@b.com"}`)

		if _, ok := got["otp"]; ok {
			t.Errorf("otp key present in response: %v", got)
		}
	})

	t.Run("usecase failure maps to generic 500", func(t *testing.T) {
		uc := &fakeUC{requestErr: goerror.NewBusiness("outstanding", goerror.CodeConflict)}
		r := newTestRouter(t, uc)

		rec, got := do(t, r, "/api/v1/registration/otp/request",
			`{"otpChannel":"email","otpContact":"a@b.com"}`)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		if got["success"] != false || got["message"] != "Failed to send OTP" {
			t.Errorf("body = %v, want generic failure", got)
		}
	})

	t.Run("malformed body maps to generic 500", func(t *testing.T) {
		r := newTestRouter(t, &fakeUC{})

		rec, got := do(t, r, "/api/v1/registration/otp/request", `{"otpChannel":`)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		if got["message"] != "Failed to send OTP" {
			t.Errorf("message = %v", got["message"])
		}
	})
}

func TestOTPVerifyEndpoint(t *testing.T) {
	t.Run("success returns ticket", func(t *testing.T) {
		uc := &fakeUC{verifyOut: &usecase.OTPVerifyOutput{
			Contact:            "a@b.com",
			VerificationTicket: "signed-ticket",
		}}
		r := newTestRouter(t, uc)

		rec, got := do(t, r, "/api/v1/registration/otp/verify",
			`{"otp":"123456","otpSessionId":"11111111-1111-4111-8111-111111111111"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got["success"] != true || got["message"] != "OTP verified." {
			t.Errorf("body = %v", got)
		}
		if got["verificationTicket"] != "signed-ticket" {
			t.Errorf("verificationTicket = %v", got["verificationTicket"])
		}
		if uc.lastVerify.SessionID != "11111111-1111-4111-8111-111111111111" || uc.lastVerify.Code != "123456" {
			t.Errorf("usecase input = %+v", uc.lastVerify)
		}
	})

	t.Run("any failure maps to generic 500", func(t *testing.T) {
		uc := &fakeUC{verifyErr: goerror.NewBusiness("bad code", goerror.CodeUnauthorized)}
		r := newTestRouter(t, uc)

		rec, got := do(t, r, "/api/v1/registration/otp/verify",
			`{"otp":"000000","otpSessionId":"11111111-1111-4111-8111-111111111111"}`)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		if got["success"] != false || got["message"] != "Failed to verify OTP" {
			t.Errorf("body = %v, want generic failure", got)
		}
	})
}
