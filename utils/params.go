package utils

import (
	"math"
	"strconv"
	"strings"
)

// ToInt parses a positive integer query param. Anything non-numeric or
// non-positive falls back.
func ToInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// ToFloat parses an optional numeric query param. Missing or unparsable
// values yield nil.
func ToFloat(value string) *float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
