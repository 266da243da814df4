package otp

import "testing"

func TestNumericGenerateLengthAndCharset(t *testing.T) {
	gen := NewNumeric(6)

	for range 200 {
		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q has length %d, want 6", code, len(code))
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("code %q contains non-digit %q", code, c)
			}
		}
	}
}

func TestNumericDigitsFallback(t *testing.T) {
	for _, digits := range []int{0, 1, 3, 11, -5} {
		gen := NewNumeric(digits)
		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if len(code) != 6 {
			t.Errorf("NewNumeric(%d) produced length %d, want fallback 6", digits, len(code))
		}
	}
}

func TestNumericEightDigits(t *testing.T) {
	gen := NewNumeric(8)

	code, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(code) != 8 {
		t.Errorf("code %q has length %d, want 8", code, len(code))
	}
}
