package handlers

import (
	"net/http"

	"github.com/albumpress/albumpress/internal/album"
)

// CanvasSizes returns the supported print canvas sizes.
func CanvasSizes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"canvas_sizes": album.CanvasSizes()})
}

// Themes returns the built-in album themes.
func Themes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"themes": album.Themes()})
}
