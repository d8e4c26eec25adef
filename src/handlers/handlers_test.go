// backend/src/handlers/handlers_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/notafolio/backend/src/config"
	"github.com/username/notafolio/backend/src/logger"
	"github.com/username/notafolio/backend/src/models"
	"github.com/username/notafolio/backend/src/services"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	config.Cfg = &config.AppConfig{MaxUploadSizeBytes: 5 * 1024 * 1024}
	os.Exit(m.Run())
}

// stubNoteService returns canned values for every NoteService method.
type stubNoteService struct {
	ingestResult *services.IngestResult
	ingestErr    error
	notes        []models.SettlementNote
	note         *models.SettlementNote
	noteErr      error
	report       *services.Report
	reportErr    error
	tax          *services.TaxSummary
	positions    []models.PositionWithQuote
	listErr      error
}

func (s *stubNoteService) IngestNote(rawText, filename, declaredMethod, broker string) (*services.IngestResult, error) {
	return s.ingestResult, s.ingestErr
}
func (s *stubNoteService) ListNotes() ([]models.SettlementNote, error) { return s.notes, s.listErr }
func (s *stubNoteService) GetNote(noteID string) (*models.SettlementNote, error) {
	return s.note, s.noteErr
}
func (s *stubNoteService) DeleteAllNotes() error { return nil }
func (s *stubNoteService) GetPortfolio() ([]models.PortfolioPosition, error) {
	return nil, nil
}
func (s *stubNoteService) GetPortfolioWithQuotes() ([]models.PositionWithQuote, error) {
	return s.positions, nil
}
func (s *stubNoteService) GetTaxSummary() (*services.TaxSummary, error) { return s.tax, nil }
func (s *stubNoteService) GetReport() (*services.Report, error)         { return s.report, s.reportErr }
func (s *stubNoteService) InvalidateCache()                             {}

type stubQuoteService struct {
	quotes map[string]models.Quote
	err    error
}

func (s *stubQuoteService) GetQuotes(codes []string) (map[string]models.Quote, error) {
	return s.quotes, s.err
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	// CreateFormFile would declare application/octet-stream, which the
	// handler rejects; uploads carry extracted text.
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", "text/plain")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHandleUpload(t *testing.T) {
	t.Run("successful ingestion", func(t *testing.T) {
		service := &stubNoteService{
			ingestResult: &services.IngestResult{
				Note:    &models.SettlementNote{NoteID: "nota-1"},
				Summary: models.ExtractionSummary{Success: true, TotalOperations: 2},
			},
		}
		handler := NewUploadHandler(service)

		body, contentType := multipartBody(t, "file", "nota-1.txt", "NOTA DE CORRETAGEM\nC PETR4 100 10,00 1.000,00\n")
		req := httptest.NewRequest("POST", "/api/notes/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		handler.HandleUpload(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var result services.IngestResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, "nota-1", result.Note.NoteID)
	})

	t.Run("empty extraction returns 422 with summary", func(t *testing.T) {
		service := &stubNoteService{
			ingestResult: &services.IngestResult{Summary: models.ExtractionSummary{Method: models.MethodOCR}},
			ingestErr:    services.ErrExtractionEmpty,
		}
		handler := NewUploadHandler(service)

		body, contentType := multipartBody(t, "file", "vazia.txt", "texto sem operações")
		req := httptest.NewRequest("POST", "/api/notes/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		handler.HandleUpload(rec, req)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var result services.IngestResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.False(t, result.Summary.Success)
	})

	t.Run("duplicate note returns 409", func(t *testing.T) {
		service := &stubNoteService{ingestErr: services.ErrDuplicateNote}
		handler := NewUploadHandler(service)

		body, contentType := multipartBody(t, "file", "nota-1.txt", "NOTA DE CORRETAGEM")
		req := httptest.NewRequest("POST", "/api/notes/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		handler.HandleUpload(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing file field returns 400", func(t *testing.T) {
		handler := NewUploadHandler(&stubNoteService{})

		body, contentType := multipartBody(t, "wrongfield", "nota.txt", "conteúdo")
		req := httptest.NewRequest("POST", "/api/notes/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		handler.HandleUpload(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("binary upload rejected", func(t *testing.T) {
		handler := NewUploadHandler(&stubNoteService{})

		body, contentType := multipartBody(t, "file", "nota.pdf", "%PDF\x00\x01binário")
		req := httptest.NewRequest("POST", "/api/notes/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		handler.HandleUpload(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleListNotes(t *testing.T) {
	t.Run("empty history yields empty array", func(t *testing.T) {
		handler := NewNoteHandler(&stubNoteService{})
		req := httptest.NewRequest("GET", "/api/notes", nil)
		rec := httptest.NewRecorder()

		handler.HandleListNotes(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("service failure yields 500", func(t *testing.T) {
		handler := NewNoteHandler(&stubNoteService{listErr: errors.New("boom")})
		req := httptest.NewRequest("GET", "/api/notes", nil)
		rec := httptest.NewRecorder()

		handler.HandleListNotes(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandleGetNote(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		handler := NewNoteHandler(&stubNoteService{note: &models.SettlementNote{NoteID: "nota-1"}})

		router := chi.NewRouter()
		router.Get("/api/notes/{noteID}", handler.HandleGetNote)

		req := httptest.NewRequest("GET", "/api/notes/nota-1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var note models.SettlementNote
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &note))
		assert.Equal(t, "nota-1", note.NoteID)
	})

	t.Run("not found", func(t *testing.T) {
		handler := NewNoteHandler(&stubNoteService{noteErr: services.ErrNoteNotFound})

		router := chi.NewRouter()
		router.Get("/api/notes/{noteID}", handler.HandleGetNote)

		req := httptest.NewRequest("GET", "/api/notes/missing", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleGetQuotes(t *testing.T) {
	t.Run("missing codes parameter", func(t *testing.T) {
		handler := NewPortfolioHandler(&stubNoteService{}, &stubQuoteService{})
		req := httptest.NewRequest("GET", "/api/quotes", nil)
		rec := httptest.NewRecorder()

		handler.HandleGetQuotes(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("quotes returned", func(t *testing.T) {
		quote := models.Quote{AssetCode: "PETR4", Price: 38.20}
		handler := NewPortfolioHandler(&stubNoteService{}, &stubQuoteService{
			quotes: map[string]models.Quote{"PETR4": quote},
		})
		req := httptest.NewRequest("GET", "/api/quotes?codes=PETR4,ZZZZ3", nil)
		rec := httptest.NewRecorder()

		handler.HandleGetQuotes(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var quotes map[string]models.Quote
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quotes))
		require.Len(t, quotes, 1)
		assert.Equal(t, 38.20, quotes["PETR4"].Price)
	})
}

func TestHandleGetReportETag(t *testing.T) {
	report := &services.Report{GeneratedAt: "2024-06-01T00:00:00Z"}
	handler := NewReportHandler(&stubNoteService{report: report})

	first := httptest.NewRecorder()
	handler.HandleGetReport(first, httptest.NewRequest("GET", "/api/report", nil))

	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	second := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/report", nil)
	req.Header.Set("If-None-Match", etag)
	handler.HandleGetReport(second, req)

	assert.Equal(t, http.StatusNotModified, second.Code)
	assert.Empty(t, second.Body.String())
}
