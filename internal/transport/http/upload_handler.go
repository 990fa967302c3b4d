package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/mtorres1190/MATT-Report/internal/errors"
	"github.com/mtorres1190/MATT-Report/internal/middleware"
	"github.com/mtorres1190/MATT-Report/internal/services"
)

// defaultMaxUploadBytes bounds an uploaded extract when the server
// config leaves the limit unset. The largest observed portal export is
// well under 10MB; 50MB leaves room.
const defaultMaxUploadBytes = 50 << 20

// UploadHandler handles sales extract uploads and their lifecycle.
type UploadHandler struct {
	service      *services.ReportService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	maxBytes     int64
}

// NewUploadHandler creates an upload handler. maxBytes caps the request
// body on uploads; a non-positive value falls back to the default.
func NewUploadHandler(service *services.ReportService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxBytes int64) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	return &UploadHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "upload_handler")),
		errorHandler: errorHandler,
		maxBytes:     maxBytes,
	}
}

// Routes returns the upload routes.
func (h *UploadHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Upload)
	r.Get("/", h.List)
	r.Route("/{uploadID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
		r.Get("/download", h.Download)
	})

	return r
}

// Upload handles POST /api/uploads. The extract arrives as the "file"
// part of a multipart form.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		middleware.UploadsProcessedTotal.WithLabelValues("rejected").Inc()
		h.errorHandler.HandleError(w, r, apierrors.NewValidationError("expected a multipart form with a \"file\" part"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.UploadsProcessedTotal.WithLabelValues("rejected").Inc()
		h.errorHandler.HandleError(w, r, apierrors.NewValidationError("missing \"file\" part"))
		return
	}
	defer file.Close()

	meta, err := h.service.ProcessUpload(r.Context(), file, header.Filename)
	if err != nil {
		middleware.UploadsProcessedTotal.WithLabelValues("failed").Inc()
		h.errorHandler.HandleError(w, r, err)
		return
	}

	middleware.UploadsProcessedTotal.WithLabelValues("ok").Inc()
	middleware.EnrichedRowsTotal.Add(float64(meta.Rows))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, meta)
}

// List handles GET /api/uploads.
func (h *UploadHandler) List(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"uploads": h.service.ListUploads(r.Context()),
	})
}

// Get handles GET /api/uploads/{uploadID}.
func (h *UploadHandler) Get(w http.ResponseWriter, r *http.Request) {
	meta, err := h.service.GetUpload(r.Context(), chi.URLParam(r, "uploadID"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, meta)
}

// Delete handles DELETE /api/uploads/{uploadID}.
func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUpload(r.Context(), chi.URLParam(r, "uploadID")); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// Download handles GET /api/uploads/{uploadID}/download, streaming the
// enriched table as CSV. The shared filter parameters apply.
func (h *UploadHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uploadID")
	filter, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	path, err := h.service.ExportCSV(r.Context(), id, filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("matt_enriched_%s.csv", id)))
	http.ServeFile(w, r, path)
}
