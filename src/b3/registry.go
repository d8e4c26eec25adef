// backend/src/b3/registry.go
package b3

import (
	"sort"

	"strings"

	"github.com/username/notafolio/backend/src/logger"
)

// catalogCodes lists the tradable B3 codes the application recognizes.
// Static configuration data, loaded once at init; in production this would be
// refreshed from an exchange listing feed.
var catalogCodes = []string{
	"ABEV3", "ALPA4", "AMER3", "ASAI3", "AZUL4", "B3SA3", "BBAS3", "BBDC3", "BBDC4", "BBSE3",
	"BEEF3", "BPAC11", "BRAP4", "BRFS3", "BRKM5", "BRML3", "CASH3", "CCRO3", "CIEL3", "CMIG4",
	"CMIN3", "COGN3", "CPFE3", "CPLE6", "CRFB3", "CSAN3", "CSNA3", "CVCB3", "CYRE3", "DXCO3",
	"EGIE3", "ELET3", "ELET6", "EMBR3", "ENBR3", "ENEV3", "ENGI11", "EQTL3", "EZTC3", "FLRY3",
	"GGBR4", "GOAU4", "GOLL4", "HAPV3", "HYPE3", "IGTI11", "IRBR3", "ITSA4", "ITUB4", "JBSS3",
	"JHSF3", "KLBN11", "LCAM3", "LWSA3", "MGLU3", "MRFG3", "MRVE3", "MULT3", "NTCO3", "PCAR3",
	"PETR3", "PETR4", "PETZ3", "POSI3", "PRIO3", "QUAL3", "RADL3", "RAIL3", "RAIZ4", "RDOR3",
	"RENT3", "RRRP3", "SANB11", "SBSP3", "SLCE3", "SMTO3", "SOMA3", "SUZB3", "TAEE11", "TIMS3",
	"TOTS3", "UGPA3", "USIM5", "VALE3", "VBBR3", "VIIA3", "VIVT3", "WEGE3", "YDUQ3",
	// ETFs share the exchange namespace with FIIs.
	"BOVA11", "IVVB11", "SMAL11", "HASH11", "ECOO11", "BBSD11", "XINA11",
}

// aliasMap corrects common misspellings and company names found in noisy
// note text to the proper exchange ticker. Keys are normalized.
var aliasMap = map[string]string{
	"PETROBRAS":       "PETR4",
	"VALE DO RIO":     "VALE3",
	"ITAU":            "ITUB4",
	"ITAU UNIBANCO":   "ITUB4",
	"BRADESCO":        "BBDC4",
	"AMBEV":           "ABEV3",
	"BANCO DO BRASIL": "BBAS3",
	"MAGAZINE LUIZA":  "MGLU3",
	"MAGALU":          "MGLU3",
	"WEG":             "WEGE3",
	"GERDAU":          "GGBR4",
	"SUZANO":          "SUZB3",
	"EMBRAER":         "EMBR3",
	"LOCALIZA":        "RENT3",
	"SANTANDER":       "SANB11",
	"KLABIN":          "KLBN11",
	"JBS":             "JBSS3",
}

var (
	catalog       map[string]bool
	sortedCatalog []string
)

func init() {
	catalog = make(map[string]bool, len(catalogCodes))
	for _, code := range catalogCodes {
		catalog[code] = true
	}
	sortedCatalog = append(sortedCatalog, catalogCodes...)
	sort.Strings(sortedCatalog)
}

// Exists reports whether a code is in the static catalog, or is an
// option series whose 4-character root is catalogued. Options are not
// individually listed, but their underlying must be.
func Exists(code string) bool {
	c := Normalize(code)
	if catalog[c] {
		return true
	}
	if optionPattern.MatchString(c) && !futurePattern.MatchString(c) {
		root := c[:4]
		for _, listed := range sortedCatalog {
			if strings.HasPrefix(listed, root) {
				return true
			}
		}
	}
	return false
}

// Correct normalizes a code and maps misspellings and company names to the
// proper ticker. It never fails: at worst the normalized input is returned
// unchanged so downstream code can treat it as uncatalogued.
func Correct(code string) string {
	c := Normalize(code)
	if c == "" {
		return c
	}
	if Exists(c) {
		return c
	}

	// Exact alias hit.
	if ticker, ok := aliasMap[c]; ok {
		return ticker
	}

	// Substring match against alias keys, longest key first so the most
	// specific name wins.
	aliasKeys := make([]string, 0, len(aliasMap))
	for key := range aliasMap {
		aliasKeys = append(aliasKeys, key)
	}
	sort.Slice(aliasKeys, func(i, j int) bool {
		if len(aliasKeys[i]) != len(aliasKeys[j]) {
			return len(aliasKeys[i]) > len(aliasKeys[j])
		}
		return aliasKeys[i] < aliasKeys[j]
	})
	for _, key := range aliasKeys {
		if strings.Contains(c, key) || strings.Contains(key, c) {
			return aliasMap[key]
		}
	}

	// Last resort: match the first 4 characters against the catalog.
	if len(c) >= 4 {
		prefix := c[:4]
		for _, listed := range sortedCatalog {
			if strings.HasPrefix(listed, prefix) {
				return listed
			}
		}
	}

	if logger.L != nil {
		logger.L.Warn("Could not correct asset code, returning normalized input", "code", c)
	}
	return c
}

// CatalogCodes returns a copy of the full catalog.
func CatalogCodes() []string {
	out := make([]string, len(sortedCatalog))
	copy(out, sortedCatalog)
	return out
}
