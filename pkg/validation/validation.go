package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// StreamCodeRegex validates broadcast stream code format
	StreamCodeRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ValidateStreamCode validates the externally issued broadcast identifier.
// Codes are opaque, but the REST surface rejects values that cannot have
// been issued to keep path handling unambiguous.
func ValidateStreamCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("stream code is required")
	}
	if len(code) > 100 {
		return fmt.Errorf("stream code is too long (max 100 characters)")
	}
	if !StreamCodeRegex.MatchString(code) {
		return fmt.Errorf("stream code may only contain letters, digits, '-' and '_'")
	}
	return nil
}
