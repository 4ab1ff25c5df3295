// Package price normalizes the free-text price labels the scraper stores
// ("от 3500 ₽", "3 500₽") into integers usable for sorting and totals.
package price

import "strconv"

// Extract returns the numeric part of a price label: every non-digit rune is
// dropped and the remaining digit run is parsed as a whole number. It is total:
// labels with no digits, or digit runs too long for int64, yield 0.
func Extract(label string) int64 {
	digits := make([]byte, 0, len(label))
	for _, r := range label {
		if r >= '0' && r <= '9' {
			digits = append(digits, byte(r))
		}
	}
	if len(digits) == 0 {
		return 0
	}

	v, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
