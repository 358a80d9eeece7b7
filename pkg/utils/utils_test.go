package utils

import (
	"regexp"
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if !CheckPassword("s3cret-pass", string(hash)) {
		t.Fatal("correct password rejected")
	}
	if CheckPassword("wrong", string(hash)) {
		t.Fatal("wrong password accepted")
	}
}

func TestGenerateOTP(t *testing.T) {
	re := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 50; i++ {
		code, err := GenerateOTP()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if !re.MatchString(code) {
			t.Fatalf("code %q is not six digits", code)
		}
	}
}

func TestOTPMatches(t *testing.T) {
	if !OTPMatches("123456", "123456") {
		t.Fatal("equal codes must match")
	}
	if !OTPMatches("123456", " 123456 ") {
		t.Fatal("surrounding whitespace is ignored")
	}
	if OTPMatches("123456", "123457") || OTPMatches("123456", "12345") {
		t.Fatal("different codes must not match")
	}
}

func TestGenerateOrderNumber(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	re := regexp.MustCompile(`^ORD1700000000000[0-9A-F]{6}$`)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n, err := GenerateOrderNumber(now)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if !re.MatchString(n) {
			t.Fatalf("unexpected order number %q", n)
		}
		seen[n] = true
	}
	if len(seen) < 95 {
		t.Fatalf("too many collisions: %d unique of 100", len(seen))
	}
}
