package utils

import "strings"

const upiDomain = "hissabbook"

// UpiFromPhone derives a UPI id from a phone number, e.g. "9876543210@hissabbook".
// Returns "" when the phone carries no digits.
func UpiFromPhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return ""
	}
	return digits.String() + "@" + upiDomain
}

// UpiFromBusinessName derives a master wallet UPI id from a business name.
func UpiFromBusinessName(name string) string {
	var slug strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			slug.WriteRune(r)
		}
	}
	s := slug.String()
	if s == "" {
		return ""
	}
	if len(s) > 20 {
		s = s[:20]
	}
	return s + "@" + upiDomain
}
