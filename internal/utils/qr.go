package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const busQRPrefix = "BUSQR-"

var busQRPattern = regexp.MustCompile(`BUSQR-([a-zA-Z0-9]+)-`)

// ParseBusQR extracts the registration number from a BUSQR-<reg>-<ts> token.
// The result is upper-cased; lookups against buses are case-insensitive.
func ParseBusQR(token string) (string, bool) {
	m := busQRPattern.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}

// NewBusQRToken issues the token embedded in a bus's boarding QR code.
func NewBusQRToken(regNumber string, now time.Time) string {
	return fmt.Sprintf("%s%s-%d", busQRPrefix, strings.ToLower(strings.TrimSpace(regNumber)), now.UnixMilli())
}

var regNumberPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ValidRegNumber reports whether reg can be embedded in a bus QR token.
func ValidRegNumber(reg string) bool {
	return regNumberPattern.MatchString(reg)
}
