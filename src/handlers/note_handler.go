// backend/src/handlers/note_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/username/notafolio/backend/src/logger"
	"github.com/username/notafolio/backend/src/models"
	"github.com/username/notafolio/backend/src/services"
	"github.com/username/notafolio/backend/src/utils"
)

type NoteHandler struct {
	noteService services.NoteService
}

func NewNoteHandler(service services.NoteService) *NoteHandler {
	return &NoteHandler{
		noteService: service,
	}
}

func (h *NoteHandler) HandleListNotes(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	notes, err := h.noteService.ListNotes()
	if err != nil {
		ctxLogger.Error("Error listing notes", "error", err)
		utils.SendJSONError(w, "failed to list notes", http.StatusInternalServerError)
		return
	}
	if notes == nil {
		notes = []models.SettlementNote{}
	}
	utils.SendJSON(w, notes, http.StatusOK)
}

func (h *NoteHandler) HandleGetNote(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())
	noteID := chi.URLParam(r, "noteID")

	note, err := h.noteService.GetNote(noteID)
	switch {
	case errors.Is(err, services.ErrNoteNotFound):
		utils.SendJSONError(w, "note not found", http.StatusNotFound)
		return
	case err != nil:
		ctxLogger.Error("Error retrieving note", "noteID", noteID, "error", err)
		utils.SendJSONError(w, "failed to retrieve note", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, note, http.StatusOK)
}

// HandleDeleteAllNotes wipes the entire note history and every aggregate
// derived from it.
func (h *NoteHandler) HandleDeleteAllNotes(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	if err := h.noteService.DeleteAllNotes(); err != nil {
		ctxLogger.Error("Error deleting note history", "error", err)
		utils.SendJSONError(w, "failed to delete note history", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]string{"status": "deleted"}, http.StatusOK)
}
