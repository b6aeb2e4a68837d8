package internal

import "testing"

func TestNewOTPLengthAndCharset(t *testing.T) {
	for digits := 6; digits <= 10; digits++ {
		otp, err := NewOTP(digits)
		if err != nil {
			t.Fatalf("NewOTP(%d) failed: %v", digits, err)
		}
		if len(otp) != digits {
			t.Fatalf("NewOTP(%d) returned %d characters", digits, len(otp))
		}
		for _, c := range otp {
			if c < '0' || c > '9' {
				t.Fatalf("NewOTP(%d) returned non-digit %q", digits, c)
			}
		}
	}
}

func TestNewOTPRejectsOutOfRangeWidths(t *testing.T) {
	for _, digits := range []int{0, 5, 11} {
		if _, err := NewOTP(digits); err == nil {
			t.Fatalf("NewOTP(%d) must fail", digits)
		}
	}
}

func TestHashCodeBytesIsDeterministic(t *testing.T) {
	a := HashCodeBytes([]byte("123456"))
	b := HashCodeBytes([]byte("123456"))
	c := HashCodeBytes([]byte("123457"))

	if a != b {
		t.Fatal("same input must produce the same digest")
	}
	if a == c {
		t.Fatal("different inputs must produce different digests")
	}
}
