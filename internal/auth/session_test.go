package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/sessions"

	"github.com/sakif/urban-reports/internal/model"
)

// newTestSessionManager uses a CookieStore so no filesystem is involved.
// The SessionManager code path is identical for all gorilla stores.
func newTestSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	store := sessions.NewCookieStore([]byte("test-secret-at-least-16-chars!!"))
	return NewSessionManager(store, time.Hour)
}

// establishSession logs user in on a throwaway request and returns the
// cookies the browser would hold afterwards.
func establishSession(t *testing.T, m *SessionManager, user *model.User) []*http.Cookie {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	w := httptest.NewRecorder()

	if err := m.Establish(w, r, user); err != nil {
		t.Fatalf("Establish() error = %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("Establish() set no cookie")
	}
	return cookies
}

func requestWithCookies(cookies []*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/auth/check", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

func TestSession_EstablishAndCurrent(t *testing.T) {
	m := newTestSessionManager(t)
	user := &model.User{ID: "u-1", Name: "Maria", Email: "maria@example.com"}

	cookies := establishSession(t, m, user)

	identity, ok := m.Current(requestWithCookies(cookies))
	if !ok {
		t.Fatal("Current() found no session after Establish()")
	}
	if identity.UserID != "u-1" || identity.Name != "Maria" || identity.Email != "maria@example.com" {
		t.Errorf("Current() = %+v, want the established identity", identity)
	}
}

func TestSession_CurrentWithoutCookie(t *testing.T) {
	m := newTestSessionManager(t)

	if _, ok := m.Current(httptest.NewRequest(http.MethodGet, "/", nil)); ok {
		t.Error("Current() should report no session for a bare request")
	}
}

func TestSession_CurrentWithTamperedCookie(t *testing.T) {
	m := newTestSessionManager(t)
	user := &model.User{ID: "u-1", Name: "Maria", Email: "maria@example.com"}

	cookies := establishSession(t, m, user)
	cookies[0].Value = cookies[0].Value + "tampered"

	if _, ok := m.Current(requestWithCookies(cookies)); ok {
		t.Error("Current() accepted a cookie with a broken signature")
	}
}

func TestSession_Destroy(t *testing.T) {
	m := newTestSessionManager(t)
	user := &model.User{ID: "u-1", Name: "Maria", Email: "maria@example.com"}

	cookies := establishSession(t, m, user)

	r := requestWithCookies(cookies)
	w := httptest.NewRecorder()
	if err := m.Destroy(w, r); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}

	// The replacement cookie must be expired.
	out := w.Result().Cookies()
	if len(out) == 0 {
		t.Fatal("Destroy() set no cookie")
	}
	if out[0].MaxAge != -1 {
		t.Errorf("Destroy() cookie MaxAge = %d, want -1", out[0].MaxAge)
	}
}

func TestSession_DestroyWithoutSessionIsIdempotent(t *testing.T) {
	m := newTestSessionManager(t)

	w := httptest.NewRecorder()
	if err := m.Destroy(w, httptest.NewRequest(http.MethodPost, "/logout", nil)); err != nil {
		t.Errorf("Destroy() without a session should succeed, got %v", err)
	}
}

func TestSession_UpdateName(t *testing.T) {
	m := newTestSessionManager(t)
	user := &model.User{ID: "u-1", Name: "Maria", Email: "maria@example.com"}

	cookies := establishSession(t, m, user)

	r := requestWithCookies(cookies)
	w := httptest.NewRecorder()
	if err := m.UpdateName(w, r, "Maria Silva"); err != nil {
		t.Fatalf("UpdateName() error = %v", err)
	}

	identity, ok := m.Current(requestWithCookies(w.Result().Cookies()))
	if !ok {
		t.Fatal("Current() found no session after UpdateName()")
	}
	if identity.Name != "Maria Silva" {
		t.Errorf("Name = %q, want %q", identity.Name, "Maria Silva")
	}
	if identity.UserID != "u-1" {
		t.Errorf("UserID changed to %q", identity.UserID)
	}
}

func TestNewFilesystemSessionManager_ShortSecret(t *testing.T) {
	_, err := NewFilesystemSessionManager(t.TempDir(), "short", time.Hour)
	if err == nil {
		t.Error("NewFilesystemSessionManager() should reject secrets shorter than 16 chars")
	}
}
