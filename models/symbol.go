package models

import (
	"regexp"
	"strings"
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9./:-]{1,20}$`)

// NormalizeSymbol trims and upper-cases a ticker
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidSymbol reports whether s looks like a normalized ticker such as
// "AMZN", "BRK.B" or "EUR/USD"
func ValidSymbol(s string) bool {
	return symbolPattern.MatchString(s)
}
