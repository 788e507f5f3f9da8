// Package envutil reads typed settings from environment variables.
// Unset, blank or unparsable values fall back to the caller's default.
package envutil

import (
	"os"
	"strconv"
	"strings"
)

// String returns the trimmed value of key, or fallback when it is blank.
func String(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// Bool parses key case-insensitively. Accepts everything strconv.ParseBool
// does plus yes/no.
func Bool(key string, fallback bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "":
		return fallback
	case "yes":
		return true
	case "no":
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// Float parses key as a float64.
func Float(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
