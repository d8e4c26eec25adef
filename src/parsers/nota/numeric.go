// backend/src/parsers/nota/numeric.go
package nota

import (
	"fmt"
	"strconv"
	"strings"
)

// Settlement notes state numbers in Brazilian formatting: "." as the
// thousands separator and "," as the decimal separator ("1.234,56").

// parseBrazilianDecimal converts a Brazilian-formatted numeric string to a
// float64.
func parseBrazilianDecimal(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.Trim(cleaned, "\"")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return 0, fmt.Errorf("empty numeric string")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid brazilian decimal %q: %w", s, err)
	}
	return v, nil
}

// parseBrazilianInt converts a thousand-separated integer string ("1.000")
// to an int. Decimal parts are rejected: quantities are whole numbers.
func parseBrazilianInt(s string) (int, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	if strings.Contains(cleaned, ",") {
		return 0, fmt.Errorf("quantity %q has a decimal part", s)
	}
	v, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	return v, nil
}
