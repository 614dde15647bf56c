package library

import "strings"

// idWidth is the fixed width of track identifiers.
const idWidth = 2

// NormalizeID trims whitespace and left-pads a raw token with zeros to the
// fixed identifier width, so "7" and "07" name the same track.
func NormalizeID(raw string) string {
	id := strings.TrimSpace(raw)
	for len(id) < idWidth {
		id = "0" + id
	}
	return id
}

// IsDigits reports whether s is non-empty and consists only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
