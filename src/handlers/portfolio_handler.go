// backend/src/handlers/portfolio_handler.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/username/notafolio/backend/src/logger"
	"github.com/username/notafolio/backend/src/models"
	"github.com/username/notafolio/backend/src/services"
	"github.com/username/notafolio/backend/src/utils"
)

type PortfolioHandler struct {
	noteService  services.NoteService
	quoteService services.QuoteService
}

func NewPortfolioHandler(noteService services.NoteService, quoteService services.QuoteService) *PortfolioHandler {
	return &PortfolioHandler{
		noteService:  noteService,
		quoteService: quoteService,
	}
}

// HandleGetPortfolio returns the current positions enriched with market
// quotes. Positions whose quote is unavailable fall back to the average cost.
func (h *PortfolioHandler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	positions, err := h.noteService.GetPortfolioWithQuotes()
	if err != nil {
		ctxLogger.Error("Error computing portfolio", "error", err)
		utils.SendJSONError(w, "failed to compute portfolio", http.StatusInternalServerError)
		return
	}
	if positions == nil {
		positions = []models.PositionWithQuote{}
	}
	utils.SendJSON(w, positions, http.StatusOK)
}

// HandleGetQuotes returns quotes for the comma-separated 'codes' query
// parameter. Unknown codes are silently excluded.
func (h *PortfolioHandler) HandleGetQuotes(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	codesParam := strings.TrimSpace(r.URL.Query().Get("codes"))
	if codesParam == "" {
		utils.SendJSONError(w, "the 'codes' query parameter is required", http.StatusBadRequest)
		return
	}

	var codes []string
	for _, code := range strings.Split(codesParam, ",") {
		if code = strings.TrimSpace(code); code != "" {
			codes = append(codes, code)
		}
	}

	quotes, err := h.quoteService.GetQuotes(codes)
	if err != nil {
		ctxLogger.Error("Error fetching quotes", "codes", codesParam, "error", err)
		utils.SendJSONError(w, "failed to fetch quotes", http.StatusBadGateway)
		return
	}
	utils.SendJSON(w, quotes, http.StatusOK)
}
