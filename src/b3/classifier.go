// backend/src/b3/classifier.go
package b3

import (
	"regexp"
	"strings"

	"github.com/username/notafolio/backend/src/models"
)

// Shape patterns for B3 exchange codes. Matching is always done on the
// normalized (uppercase, trimmed) full code.
var (
	reitFundPattern = regexp.MustCompile(`^[A-Z]{4}11$`)
	optionPattern   = regexp.MustCompile(`^[A-Z]{4,5}[A-Z0-9][0-9]{1,3}$`)
	futurePattern   = regexp.MustCompile(`^(WIN|WDO|IND)[FGHJKMNQUVXZ][0-9]{1,2}$`)
	stockPattern    = regexp.MustCompile(`^[A-Z]{4}[34]$`)
)

// etfAllowList holds the exchange-traded funds whose codes end in 11 and would
// otherwise match the FII pattern. Checked before the general FII rule; that
// ordering decides the tax treatment of these funds.
var etfAllowList = map[string]bool{
	"BOVA11": true,
	"IVVB11": true,
	"SMAL11": true,
	"HASH11": true,
	"ECOO11": true,
	"BBSD11": true,
	"XINA11": true,
}

// Classify maps an asset code to its instrument type. It is total: any input
// yields a value, defaulting to InstrumentUnknown.
func Classify(code string) models.InstrumentType {
	c := Normalize(code)

	switch {
	case reitFundPattern.MatchString(c) && !etfAllowList[c]:
		return models.InstrumentREITFund
	case etfAllowList[c]:
		return models.InstrumentETF
	// Futures codes like WINF20 also fit the option-series shape, so the
	// futures roots are carved out of the option branch.
	case optionPattern.MatchString(c) && !futurePattern.MatchString(c):
		return models.InstrumentOption
	case futurePattern.MatchString(c):
		return models.InstrumentFuture
	case stockPattern.MatchString(c):
		return models.InstrumentStock
	default:
		return models.InstrumentUnknown
	}
}

// Normalize uppercases and trims an asset code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
