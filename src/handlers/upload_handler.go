// backend/src/handlers/upload_handler.go
package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/username/notafolio/backend/src/config"
	"github.com/username/notafolio/backend/src/logger"
	"github.com/username/notafolio/backend/src/security/validation"
	"github.com/username/notafolio/backend/src/services"
	"github.com/username/notafolio/backend/src/utils"
)

type UploadHandler struct {
	noteService services.NoteService
}

func NewUploadHandler(service services.NoteService) *UploadHandler {
	return &UploadHandler{
		noteService: service,
	}
}

// HandleUpload ingests one settlement-note text. The multipart form carries
// the extracted text in the 'file' field plus optional 'method' ("text" or
// "ocr") and 'broker' fields.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		ctxLogger.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("failed to parse upload or file too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		ctxLogger.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "failed to retrieve file from request; ensure the 'file' field is used", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		ctxLogger.Warn("Uploaded file header reports size too large", "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("file too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	if clientContentType := fileHeader.Header.Get("Content-Type"); clientContentType != "" {
		if err := validation.ValidateClientContentType(clientContentType); err != nil {
			ctxLogger.Warn("Invalid client-declared file type", "contentType", clientContentType, "error", err)
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if _, err := validation.ValidateFileContentByMagicBytes(file); err != nil {
		ctxLogger.Warn("Server-side file content validation failed", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rawText, err := io.ReadAll(io.LimitReader(file, config.Cfg.MaxUploadSizeBytes))
	if err != nil {
		ctxLogger.Error("Failed to read uploaded file", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, "failed to read uploaded file", http.StatusInternalServerError)
		return
	}

	ctxLogger.Info("Processing upload request", "filename", fileHeader.Filename, "size", fileHeader.Size)

	result, err := h.noteService.IngestNote(string(rawText), fileHeader.Filename, r.FormValue("method"), r.FormValue("broker"))
	switch {
	case errors.Is(err, services.ErrExtractionEmpty):
		ctxLogger.Warn("Extraction produced no operations", "filename", fileHeader.Filename)
		if result != nil {
			utils.SendJSON(w, result, http.StatusUnprocessableEntity)
			return
		}
		utils.SendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	case errors.Is(err, services.ErrDuplicateNote):
		ctxLogger.Warn("Duplicate note rejected", "filename", fileHeader.Filename)
		utils.SendJSONError(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		ctxLogger.Error("Note ingestion failed", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, "failed to process note", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, result, http.StatusOK)
}
