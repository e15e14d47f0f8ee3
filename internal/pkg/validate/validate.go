package validate

import "strings"

// Required reports whether a listing field carries non-whitespace content.
func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}
