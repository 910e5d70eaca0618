package validators

import (
	"errors"
	"strings"
)

var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone reduces a guest phone to the bare 10-digit national number.
// Accepts "+91 98765 43210", "09876543210", "9876543210" and the like.
func NormalizePhone(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	s := digits.String()
	switch {
	case len(s) == 12 && strings.HasPrefix(s, "91"):
		s = s[2:]
	case len(s) == 11 && strings.HasPrefix(s, "0"):
		s = s[1:]
	}

	if len(s) != 10 {
		return "", ErrInvalidPhone
	}
	return s, nil
}
