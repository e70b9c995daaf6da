package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/albumpress/albumpress/internal/export"
	"github.com/albumpress/albumpress/internal/render"
	"github.com/albumpress/albumpress/internal/web/middleware"
)

// ExportHandler handles PDF export endpoints.
type ExportHandler struct {
	manager *export.Manager
	maxAge  time.Duration
}

// NewExportHandler creates a new export handler.
func NewExportHandler(m *export.Manager, maxAge time.Duration) *ExportHandler {
	return &ExportHandler{manager: m, maxAge: maxAge}
}

type createExportRequest struct {
	AlbumID string         `json:"album_id"`
	PageIDs []string       `json:"page_ids,omitempty"`
	Options *exportOptions `json:"options,omitempty"`
}

// exportOptions mirrors render.PDFOptions with pointer fields where the zero
// value is a meaningful choice, so an omitted field keeps its default while an
// explicit false or zero is honored.
type exportOptions struct {
	Format            render.Format      `json:"format"`
	Orientation       render.Orientation `json:"orientation"`
	Quality           int                `json:"quality"`
	IncludeBackground *bool              `json:"include_background"`
	Margins           *render.Margins    `json:"margins"`
}

func (o *exportOptions) toPDFOptions() render.PDFOptions {
	opts := render.DefaultOptions()
	if o == nil {
		return opts
	}
	if o.Format != "" {
		opts.Format = o.Format
	}
	if o.Orientation != "" {
		opts.Orientation = o.Orientation
	}
	if o.Quality > 0 {
		opts.Quality = o.Quality
	}
	if o.IncludeBackground != nil {
		opts.IncludeBackground = *o.IncludeBackground
	}
	if o.Margins != nil {
		opts.Margins = *o.Margins
	}
	return opts
}

// Create starts a new export task and returns it immediately. Progress is
// polled through Get.
func (h *ExportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	opts := req.Options.toPDFOptions()
	userID := middleware.UserIDFromContext(r.Context())
	task, err := h.manager.CreateTask(req.AlbumID, userID, req.PageIDs, opts)
	if err != nil {
		if errors.Is(err, export.ErrValidation) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create export task")
		return
	}
	respondJSON(w, http.StatusAccepted, task)
}

// List returns the caller's export tasks, newest first.
func (h *ExportHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{"tasks": h.manager.TasksForUser(userID)})
}

// Get returns one export task.
func (h *ExportHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	task, ok := h.manager.Task(chi.URLParam(r, "id"))
	if !ok || task.UserID != userID {
		respondError(w, http.StatusNotFound, "export task not found")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// Download streams the finished PDF. Anything but a completed, owned task
// with its file still on disk is a 404.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	path, filename, err := h.manager.Download(chi.URLParam(r, "id"), userID)
	if err != nil {
		respondError(w, http.StatusNotFound, "export task not found")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	http.ServeFile(w, r, path)
}

// Cancel aborts a pending or processing export task.
func (h *ExportHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	err := h.manager.Cancel(chi.URLParam(r, "id"), userID)
	switch {
	case errors.Is(err, export.ErrTaskNotFound):
		respondError(w, http.StatusNotFound, "export task not found")
	case errors.Is(err, export.ErrNotCancellable):
		respondError(w, http.StatusConflict, "export task is not cancellable")
	case err != nil:
		respondError(w, http.StatusInternalServerError, "failed to cancel export task")
	default:
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

type cleanupRequest struct {
	MaxAgeHours float64 `json:"max_age_hours"`
}

// Cleanup triggers an immediate sweep of expired tasks and artifacts. The
// request body may carry a max_age_hours override; an empty body sweeps with
// the configured retention.
func (h *ExportHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	maxAge := h.maxAge
	var req cleanupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.MaxAgeHours > 0 {
		maxAge = time.Duration(req.MaxAgeHours * float64(time.Hour))
	}
	removed := h.manager.CleanupExpired(maxAge)
	respondJSON(w, http.StatusOK, map[string]int{"removed": removed})
}
