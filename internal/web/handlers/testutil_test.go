package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/albumpress/albumpress/internal/album"
	"github.com/albumpress/albumpress/internal/store"
	"github.com/albumpress/albumpress/internal/store/memory"
	"github.com/albumpress/albumpress/internal/web/middleware"
)

const testUserID = "tester"

// newTestStore creates an in-memory store for handler tests.
func newTestStore() store.AlbumStore {
	return memory.NewAlbumStore()
}

// seedTestAlbum inserts an album with two pages and returns it.
func seedTestAlbum(t *testing.T, s store.AlbumStore) *album.Album {
	t.Helper()
	a := &album.Album{
		UserID:       testUserID,
		Name:         "Holiday 2025",
		CanvasSizeID: album.DefaultCanvasSizeID,
		ThemeID:      album.DefaultThemeID,
	}
	if err := s.CreateAlbum(context.Background(), a); err != nil {
		t.Fatalf("seeding album: %v", err)
	}
	for i := 0; i < 2; i++ {
		p := &album.Page{AlbumID: a.ID}
		if err := s.CreatePage(context.Background(), testUserID, p); err != nil {
			t.Fatalf("seeding page: %v", err)
		}
	}
	return a
}

// authedRequest creates a request carrying a session for testUserID.
func authedRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	session := &middleware.Session{
		ID:        "test-session",
		UserID:    testUserID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	return req.WithContext(middleware.SetSessionInContext(req.Context(), session))
}

// requestWithChiParams creates a request with chi URL parameters.
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type.
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code.
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message.
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
