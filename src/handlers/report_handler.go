// backend/src/handlers/report_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/username/notafolio/backend/src/logger"
	"github.com/username/notafolio/backend/src/services"
	"github.com/username/notafolio/backend/src/utils"
)

type ReportHandler struct {
	noteService services.NoteService
}

func NewReportHandler(service services.NoteService) *ReportHandler {
	return &ReportHandler{
		noteService: service,
	}
}

// HandleGetTaxSummary returns the tax liability snapshot recomputed from the
// full operation history.
func (h *ReportHandler) HandleGetTaxSummary(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	summary, err := h.noteService.GetTaxSummary()
	if err != nil {
		ctxLogger.Error("Error computing tax summary", "error", err)
		utils.SendJSONError(w, "failed to compute tax summary", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, summary, http.StatusOK)
}

// HandleGetReport serves the full derived snapshot with ETag support, so the
// frontend can poll cheaply between uploads.
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	report, err := h.noteService.GetReport()
	if err != nil {
		ctxLogger.Error("Error building report", "error", err)
		utils.SendJSONError(w, "failed to build report", http.StatusInternalServerError)
		return
	}

	currentETag, etagErr := utils.GenerateETag(report)
	if etagErr != nil {
		ctxLogger.Error("Failed to generate ETag for report", "error", etagErr)
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		for _, clientETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(clientETag) == quotedETag {
				ctxLogger.Debug("ETag match for report", "etag", currentETag)
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	utils.SendJSON(w, report, http.StatusOK)
}
