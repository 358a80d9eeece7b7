package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const OTPLength = 6

// GenerateOTP returns a uniformly random 6-digit numeric code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}

func OTPMatches(expected, submitted string) bool {
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(submitted))) == 1
}

// GenerateOrderNumber returns "ORD" followed by the unix millisecond time
// and six random hex characters.
func GenerateOrderNumber(now time.Time) (string, error) {
	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}

	return fmt.Sprintf("ORD%d%s", now.UnixMilli(), strings.ToUpper(hex.EncodeToString(suffix))), nil
}
