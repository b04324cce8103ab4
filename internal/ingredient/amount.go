package ingredient

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var leadingNumber = regexp.MustCompile(`^\s*[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseAmount splits a free-text quantity like "200g" or "1.5 kg" into a magnitude and a unit.
// Tokens without a leading number count as one unit ("a pinch" -> 1).
func ParseAmount(token string) (float64, string) {
	return parseMagnitude(token), parseUnit(token)
}

func parseMagnitude(token string) float64 {
	match := leadingNumber.FindString(token)
	if match == "" {
		return 1
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(match), 64)
	if err != nil {
		// Exponent overflow and similar; treat like any other unparseable amount.
		return 1
	}
	return v
}

func parseUnit(token string) string {
	unit := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, token)
	return strings.TrimSpace(unit)
}

// FormatAmount renders a running total the way it is stored on shopping list rows.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
