// Package utils holds small parsing helpers shared by the HTTP layer and the
// services: query-string integers and case-folded name search.
package utils

import (
	"strconv"
	"strings"
)

// AtoiDefault parses s (surrounding spaces ignored) and falls back to def
// when it is empty or not an integer.
func AtoiDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// PageSize reads a page-size parameter. Missing, malformed and non-positive
// values give def; anything above maxSize is clamped.
func PageSize(s string, def, maxSize int) int {
	n := AtoiDefault(s, def)
	switch {
	case n < 1:
		return def
	case n > maxSize:
		return maxSize
	}
	return n
}
