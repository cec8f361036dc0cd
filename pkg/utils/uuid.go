package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID returns a random (v4) UUID string.
func GenerateUUID() string {
	return uuid.NewString()
}

// IsUUID reports whether s parses as a UUID in canonical form.
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// ShortFingerprint abbreviates a 0x-prefixed fingerprint for display:
// 0xbc44737c…823d4fc9.
func ShortFingerprint(fp string) string {
	hex := strings.TrimPrefix(fp, "0x")
	if len(hex) <= 16 {
		return fp
	}
	return fp[:len(fp)-len(hex)] + hex[:8] + "…" + hex[len(hex)-8:]
}
