// backend/src/utils/date_utils.go
package utils

import (
	"fmt"
	"time"
)

// Brazilian brokerage notes state dates as DD/MM/YYYY; the API and the
// database use ISO (YYYY-MM-DD) once normalized.
const (
	BrazilianDateLayout = "02/01/2006"
	ISODateLayout       = "2006-01-02"
)

// NormalizeBrazilianDate converts a DD/MM/YYYY date string to ISO form.
// Strings already in ISO form are returned unchanged.
func NormalizeBrazilianDate(s string) (string, error) {
	if t, err := time.Parse(ISODateLayout, s); err == nil {
		return t.Format(ISODateLayout), nil
	}
	t, err := time.Parse(BrazilianDateLayout, s)
	if err != nil {
		return "", fmt.Errorf("unrecognized date format %q: %w", s, err)
	}
	return t.Format(ISODateLayout), nil
}

// ReferenceMonth returns the "January 2006"-style reference month for an ISO date.
func ReferenceMonth(isoDate string) string {
	t, err := time.Parse(ISODateLayout, isoDate)
	if err != nil {
		return ""
	}
	return t.Format("January 2006")
}
