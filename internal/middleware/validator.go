package middleware

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/admitlens/admitlens/internal/domain/profile"
)

// Input validation and sanitization utilities

// maxEssayChars caps a single essay; anything longer is almost certainly a
// paste error and would blow up analyzer token counts.
const maxEssayChars = 40000

const maxListEntries = 100

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}

	// Allow alphanumeric, dash, underscore (max 64 chars)
	pattern := `^[a-zA-Z0-9_-]{1,64}$`
	matched, _ := regexp.MatchString(pattern, tenant)
	if !matched {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}

	return nil
}

// ValidateProfileID validates profile ID format
func ValidateProfileID(id string) error {
	if id == "" {
		return fmt.Errorf("profile ID cannot be empty")
	}

	pattern := `^[a-zA-Z0-9_-]{1,64}$`
	matched, _ := regexp.MatchString(pattern, id)
	if !matched {
		return fmt.Errorf("invalid profile ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}

	return nil
}

// ValidateInstitutionID validates institution ID format
func ValidateInstitutionID(id string) error {
	if id == "" {
		return fmt.Errorf("institution ID cannot be empty")
	}

	pattern := `^[a-zA-Z0-9_-]{1,64}$`
	matched, _ := regexp.MatchString(pattern, id)
	if !matched {
		return fmt.Errorf("invalid institution ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}

	return nil
}

// ValidateProfile rejects payloads that are structurally implausible before
// any fingerprinting happens. Content quality is the analyzer's job; this
// only guards sizes and obvious nonsense.
func ValidateProfile(p profile.Profile) error {
	if p.Academics.GPA < 0 {
		return fmt.Errorf("gpa cannot be negative")
	}
	if p.Academics.GPAScale < 0 {
		return fmt.Errorf("gpa scale cannot be negative")
	}
	if len(p.Extracurriculars) > maxListEntries {
		return fmt.Errorf("too many extracurriculars (max %d)", maxListEntries)
	}
	if len(p.Awards) > maxListEntries {
		return fmt.Errorf("too many awards (max %d)", maxListEntries)
	}
	if len(p.Essays) > maxListEntries {
		return fmt.Errorf("too many essays (max %d)", maxListEntries)
	}
	for i, e := range p.Essays {
		if len(e.Content) > maxEssayChars {
			return fmt.Errorf("essay %d too long (max %d chars)", i, maxEssayChars)
		}
	}
	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
