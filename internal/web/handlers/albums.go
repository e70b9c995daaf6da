package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/albumpress/albumpress/internal/album"
	"github.com/albumpress/albumpress/internal/store"
	"github.com/albumpress/albumpress/internal/web/middleware"
)

// AlbumsHandler handles album and page CRUD endpoints.
type AlbumsHandler struct {
	store store.AlbumStore
}

// NewAlbumsHandler creates a new albums handler.
func NewAlbumsHandler(s store.AlbumStore) *AlbumsHandler {
	return &AlbumsHandler{store: s}
}

type albumRequest struct {
	Name         string   `json:"name"`
	CanvasSizeID string   `json:"canvas_size_id"`
	ThemeID      string   `json:"theme_id"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
}

// List returns the caller's albums.
func (h *AlbumsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	albums, err := h.store.ListAlbums(r.Context(), userID)
	if err != nil {
		logrus.WithError(err).Error("failed to list albums")
		respondError(w, http.StatusInternalServerError, "failed to list albums")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"albums": albums})
}

// Create creates a new album. Missing canvas size or theme ids fall back to
// the defaults.
func (h *AlbumsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req albumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "album name is required")
		return
	}
	if req.CanvasSizeID == "" {
		req.CanvasSizeID = album.DefaultCanvasSizeID
	}
	if req.ThemeID == "" {
		req.ThemeID = album.DefaultThemeID
	}

	a := &album.Album{
		UserID:       middleware.UserIDFromContext(r.Context()),
		Name:         req.Name,
		CanvasSizeID: req.CanvasSizeID,
		ThemeID:      req.ThemeID,
		Category:     req.Category,
		Tags:         req.Tags,
	}
	if err := h.store.CreateAlbum(r.Context(), a); err != nil {
		logrus.WithError(err).Error("failed to create album")
		respondError(w, http.StatusInternalServerError, "failed to create album")
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

// Get returns one album.
func (h *AlbumsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	a, err := h.store.GetAlbum(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		respondStoreError(w, err, "failed to load album")
		return
	}
	respondJSON(w, http.StatusOK, a)
}

// Update replaces an album's editable fields.
func (h *AlbumsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	a, err := h.store.GetAlbum(r.Context(), id, userID)
	if err != nil {
		respondStoreError(w, err, "failed to load album")
		return
	}

	var req albumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Name != "" {
		a.Name = req.Name
	}
	if req.CanvasSizeID != "" {
		a.CanvasSizeID = req.CanvasSizeID
	}
	if req.ThemeID != "" {
		a.ThemeID = req.ThemeID
	}
	if req.Category != "" {
		a.Category = req.Category
	}
	if req.Tags != nil {
		a.Tags = req.Tags
	}

	if err := h.store.UpdateAlbum(r.Context(), a); err != nil {
		respondStoreError(w, err, "failed to update album")
		return
	}
	respondJSON(w, http.StatusOK, a)
}

// Delete removes an album and all its pages.
func (h *AlbumsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if err := h.store.DeleteAlbum(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		respondStoreError(w, err, "failed to delete album")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ListPages returns an album's pages in print order.
func (h *AlbumsHandler) ListPages(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	pages, err := h.store.GetPages(r.Context(), chi.URLParam(r, "id"), userID, nil)
	if err != nil {
		respondStoreError(w, err, "failed to list pages")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"pages": pages})
}

type pageRequest struct {
	Order           int             `json:"order"`
	BackgroundColor string          `json:"background_color"`
	BackgroundImage string          `json:"background_image"`
	Elements        []album.Element `json:"elements"`
}

// CreatePage adds a page to an album. Order zero appends at the end.
func (h *AlbumsHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	p := &album.Page{
		AlbumID:         chi.URLParam(r, "id"),
		Order:           req.Order,
		BackgroundColor: req.BackgroundColor,
		BackgroundImage: req.BackgroundImage,
		Elements:        req.Elements,
	}
	userID := middleware.UserIDFromContext(r.Context())
	if err := h.store.CreatePage(r.Context(), userID, p); err != nil {
		respondStoreError(w, err, "failed to create page")
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// GetPage returns one page.
func (h *AlbumsHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	p, err := h.store.GetPage(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		respondStoreError(w, err, "failed to load page")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// UpdatePage replaces a page's content.
func (h *AlbumsHandler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	p, err := h.store.GetPage(r.Context(), id, userID)
	if err != nil {
		respondStoreError(w, err, "failed to load page")
		return
	}

	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Order > 0 {
		p.Order = req.Order
	}
	p.BackgroundColor = req.BackgroundColor
	p.BackgroundImage = req.BackgroundImage
	if req.Elements != nil {
		p.Elements = req.Elements
	}

	if err := h.store.UpdatePage(r.Context(), userID, p); err != nil {
		respondStoreError(w, err, "failed to update page")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// DeletePage removes a page.
func (h *AlbumsHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if err := h.store.DeletePage(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		respondStoreError(w, err, "failed to delete page")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type reorderRequest struct {
	PageIDs []string `json:"page_ids"`
}

// ReorderPages rewrites the print order of an album's pages.
func (h *AlbumsHandler) ReorderPages(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(req.PageIDs) == 0 {
		respondError(w, http.StatusBadRequest, "page_ids is required")
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	if err := h.store.ReorderPages(r.Context(), chi.URLParam(r, "id"), userID, req.PageIDs); err != nil {
		respondStoreError(w, err, "failed to reorder pages")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// respondStoreError maps store errors to HTTP responses.
func respondStoreError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	logrus.WithError(err).Error(message)
	respondError(w, http.StatusInternalServerError, message)
}
