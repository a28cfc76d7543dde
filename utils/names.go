package utils

import "strings"

// DisplayName builds a human-readable name from user detail fields, falling
// back to the email local part.
func DisplayName(first, last *string, email string) string {
	var parts []string
	if first != nil && strings.TrimSpace(*first) != "" {
		parts = append(parts, strings.TrimSpace(*first))
	}
	if last != nil && strings.TrimSpace(*last) != "" {
		parts = append(parts, strings.TrimSpace(*last))
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	if email != "" {
		return email
	}
	return "Unknown"
}
