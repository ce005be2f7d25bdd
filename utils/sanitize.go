package utils

import "github.com/microcosm-cc/bluemonday"

// Form fields here are plain text, so everything markup-like is stripped.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize removes HTML from user supplied text before persistence.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
