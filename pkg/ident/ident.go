package ident

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// =====================================================
// CLOCK
// =====================================================

// Clock abstracts time so services can be tested against a frozen "now".
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// =====================================================
// IDS
// =====================================================

// NewID returns a fresh random UUID.
func NewID() uuid.UUID {
	return uuid.New()
}

// =====================================================
// OTP
// =====================================================

// GenerateOTP returns a 4-digit one-time passcode drawn uniformly
// from [1000, 9999]. The customer shares it with the provider on site.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()+1000), nil
}

// =====================================================
// PAYMENT REFERENCES
// =====================================================

// MockIntentRef returns a mock payment-intent reference used when no
// real payment provider is configured.
func MockIntentRef() string {
	return "pi_mock_" + randomHex(12)
}

// FeeIntentRef returns the reference for a cancellation-fee intent.
func FeeIntentRef() string {
	return "pi_fee_" + randomHex(12)
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process has no entropy source;
		// fall back to a time-derived suffix rather than panic.
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)[:n]
}
