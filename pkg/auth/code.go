package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// GenerateCode returns a random numeric code of exactly digits digits,
// drawn uniformly from [10^(digits-1), 10^digits-1], so it never starts
// with a zero.
func GenerateCode(digits int) (string, error) {
	if digits < 1 || digits > 18 {
		return "", fmt.Errorf("code length %d out of range", digits)
	}
	low := int64(1)
	for i := 1; i < digits; i++ {
		low *= 10
	}
	n, err := rand.Int(rand.Reader, big.NewInt(9*low))
	if err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return strconv.FormatInt(low+n.Int64(), 10), nil
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims and lower-cases an address for use as a lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email has a local part, an @ and a dotted domain.
func ValidEmail(email string) bool {
	return emailRe.MatchString(email)
}
