package hash

import (
	"strings"
	"testing"
)

func TestSaltedHMACHashFormat(t *testing.T) {
	h := NewSaltedHMAC()

	out, err := h.Hash("482913")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	saltHex, digestHex, ok := strings.Cut(string(out), ":")
	if !ok {
		t.Fatalf("hash %q is not in salt:digest form", out)
	}
	if len(saltHex) != saltedHMACSaltSize*2 {
		t.Errorf("salt length = %d, want %d hex chars", len(saltHex), saltedHMACSaltSize*2)
	}
	if len(digestHex) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(digestHex))
	}
}

func TestSaltedHMACVerify(t *testing.T) {
	h := NewSaltedHMAC()

	out, err := h.Hash("000123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if !h.Verify(string(out), "000123") {
		t.Error("Verify rejected the original plaintext")
	}
	if h.Verify(string(out), "000124") {
		t.Error("Verify accepted a different plaintext")
	}
}

func TestSaltedHMACHashIsSalted(t *testing.T) {
	h := NewSaltedHMAC()

	first, err := h.Hash("555555")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	second, err := h.Hash("555555")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if string(first) == string(second) {
		t.Error("two hashes of the same value are identical, salt is not applied")
	}
}

func TestSaltedHMACVerifyMalformed(t *testing.T) {
	h := NewSaltedHMAC()

	for _, hashed := range []string{"", "nodivider", ":", "abc:", ":def"} {
		if h.Verify(hashed, "123456") {
			t.Errorf("Verify accepted malformed hash %q", hashed)
		}
	}
}
