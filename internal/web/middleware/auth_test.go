package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	sm := NewSessionManager("test-secret", time.Hour)
	t.Cleanup(sm.Stop)
	return sm
}

func TestRequireAuth_NoSession(t *testing.T) {
	sm := newTestManager(t)

	handler := RequireAuth(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a session")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/albums", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuth_BearerToken(t *testing.T) {
	sm := newTestManager(t)
	session, err := sm.CreateSession("user-1")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	var gotUser string
	handler := RequireAuth(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/albums", nil)
	req.Header.Set("Authorization", "Bearer "+session.ID)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUser != "user-1" {
		t.Errorf("expected user id in context, got '%s'", gotUser)
	}
}

func TestRequireAuth_SignedCookie(t *testing.T) {
	sm := newTestManager(t)
	session, _ := sm.CreateSession("user-1")

	rec := httptest.NewRecorder()
	sm.SetSessionCookie(rec, session)
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}

	handler := RequireAuth(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/albums", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with signed cookie, got %d", rec.Code)
	}
}

func TestRequireAuth_TamperedCookie(t *testing.T) {
	sm := newTestManager(t)
	session, _ := sm.CreateSession("user-1")

	handler := RequireAuth(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run with a forged signature")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/albums", nil)
	req.AddCookie(&http.Cookie{Name: "albumpress_session", Value: session.ID + ".forged-signature"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for tampered cookie, got %d", rec.Code)
	}
}

func TestGetSession_Expired(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Millisecond)
	defer sm.Stop()

	session, _ := sm.CreateSession("user-1")
	time.Sleep(5 * time.Millisecond)

	if got := sm.GetSession(session.ID); got != nil {
		t.Error("expired session must behave as missing")
	}
}

func TestDeleteSession(t *testing.T) {
	sm := newTestManager(t)
	session, _ := sm.CreateSession("user-1")

	sm.DeleteSession(session.ID)
	if got := sm.GetSession(session.ID); got != nil {
		t.Error("deleted session must be gone")
	}
}
