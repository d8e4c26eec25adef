// backend/src/services/quote_service.go
package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/notafolio/backend/src/b3"
	"github.com/username/notafolio/backend/src/config"
	"github.com/username/notafolio/backend/src/logger"
	"github.com/username/notafolio/backend/src/models"
	"golang.org/x/net/publicsuffix"
)

// --- API Response Structs ---

type quoteAPIResponse struct {
	Results []struct {
		Symbol                     string  `json:"symbol"`
		RegularMarketPrice         float64 `json:"regularMarketPrice"`
		RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
		RegularMarketTime          string  `json:"regularMarketTime"`
	} `json:"results"`
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// --- Service Implementation ---

type quoteServiceImpl struct {
	httpClient http.Client
	quoteCache *cache.Cache
	mu         sync.Mutex
}

func NewQuoteService(quoteCache *cache.Cache) QuoteService {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}

	client := http.Client{
		Jar:     jar,
		Timeout: config.Cfg.QuoteHTTPTimeout,
	}

	return &quoteServiceImpl{
		httpClient: client,
		quoteCache: quoteCache,
	}
}

// GetQuotes fetches current quotes for the given instrument codes. Codes not
// present in the known-instrument catalog are silently excluded; codes whose
// quote cannot be fetched are simply absent from the result, so callers fall
// back to the average cost.
func (s *quoteServiceImpl) GetQuotes(codes []string) (map[string]models.Quote, error) {
	results := make(map[string]models.Quote)

	var toFetch []string
	for _, code := range codes {
		normalized := b3.Normalize(code)
		if !b3.Exists(normalized) {
			continue
		}
		if cached, found := s.quoteCache.Get(fmt.Sprintf(ckQuotePrefix, normalized)); found {
			results[normalized] = cached.(models.Quote)
			continue
		}
		toFetch = append(toFetch, normalized)
	}
	if len(toFetch) == 0 {
		return results, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fetched, err := s.fetchQuotes(toFetch)
	if err != nil {
		return results, err
	}
	for code, quote := range fetched {
		s.quoteCache.Set(fmt.Sprintf(ckQuotePrefix, code), quote, config.Cfg.QuoteCacheTTL)
		results[code] = quote
	}
	return results, nil
}

func (s *quoteServiceImpl) fetchQuotes(codes []string) (map[string]models.Quote, error) {
	quoteURL := fmt.Sprintf("%s/quote/%s", strings.TrimSuffix(config.Cfg.QuoteAPIBaseURL, "/"),
		url.PathEscape(strings.Join(codes, ",")))

	req, err := http.NewRequest("GET", quoteURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if config.Cfg.QuoteAPIToken != "" {
		req.Header.Set("Authorization", "Bearer "+config.Cfg.QuoteAPIToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call quote API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote API returned non-OK status %d", resp.StatusCode)
	}

	var data quoteAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode quote API response: %w", err)
	}
	if data.Error {
		return nil, fmt.Errorf("quote API returned an error: %s", data.Message)
	}

	quotes := make(map[string]models.Quote, len(data.Results))
	now := time.Now().UTC().Format(time.RFC3339)
	for _, result := range data.Results {
		if result.Symbol == "" || result.RegularMarketPrice == 0 {
			continue
		}
		asOf := result.RegularMarketTime
		if asOf == "" {
			asOf = now
		}
		code := strings.ToUpper(result.Symbol)
		quotes[code] = models.Quote{
			AssetCode:     code,
			Price:         result.RegularMarketPrice,
			ChangePercent: result.RegularMarketChangePercent,
			AsOf:          asOf,
		}
	}
	logger.L.Debug("Quotes fetched", "requested", len(codes), "returned", len(quotes))
	return quotes, nil
}
