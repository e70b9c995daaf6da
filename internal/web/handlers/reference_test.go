package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/albumpress/albumpress/internal/album"
)

func TestCanvasSizes(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/canvas-sizes", nil)
	rec := httptest.NewRecorder()
	CanvasSizes(rec, req)

	assertStatusCode(t, rec, http.StatusOK)
	var resp struct {
		CanvasSizes []album.CanvasSize `json:"canvas_sizes"`
	}
	parseJSONResponse(t, rec, &resp)
	if len(resp.CanvasSizes) == 0 {
		t.Error("expected built-in canvas sizes")
	}
}

func TestThemes(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/themes", nil)
	rec := httptest.NewRecorder()
	Themes(rec, req)

	assertStatusCode(t, rec, http.StatusOK)
	var resp struct {
		Themes []album.Theme `json:"themes"`
	}
	parseJSONResponse(t, rec, &resp)
	if len(resp.Themes) == 0 {
		t.Error("expected built-in themes")
	}
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	HealthCheck(rec, req)

	assertStatusCode(t, rec, http.StatusOK)
	var resp map[string]string
	parseJSONResponse(t, rec, &resp)
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got '%s'", resp["status"])
	}
}
