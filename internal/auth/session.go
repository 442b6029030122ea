package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"github.com/sakif/urban-reports/internal/model"
)

// sessionName is the cookie name. The cookie itself carries only a signed,
// opaque session ID; the identity lives server-side in the session store.
const sessionName = "session"

// Session value keys. gorilla/sessions serializes values with gob, so we
// stick to plain strings — no type registration needed.
const (
	sessionKeyUserID = "user_id"
	sessionKeyName   = "name"
	sessionKeyEmail  = "email"
)

// Identity is the authenticated identity cached in a session.
// It is a snapshot taken at login (or profile update) — reading it never
// touches the database.
type Identity struct {
	UserID string
	Name   string
	Email  string
}

// SessionManager establishes, reads, and destroys cookie-referenced
// server-side sessions.
type SessionManager struct {
	store  sessions.Store
	maxAge time.Duration
}

// NewSessionManager wraps an existing gorilla session store. Tests use this
// with a CookieStore; production wiring goes through NewFilesystemSessionManager.
func NewSessionManager(store sessions.Store, maxAge time.Duration) *SessionManager {
	return &SessionManager{store: store, maxAge: maxAge}
}

// NewFilesystemSessionManager creates a SessionManager backed by
// gorilla's FilesystemStore: session state is written to files under dir and
// the browser only holds an HMAC-signed session ID.
//
// The secret signs the cookie. Anything shorter than 16 bytes is rejected —
// a short secret makes the signature brute-forceable.
func NewFilesystemSessionManager(dir, secret string, maxAge time.Duration) (*SessionManager, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("auth: session secret must be at least 16 characters")
	}

	store := sessions.NewFilesystemStore(dir, []byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true, // JavaScript cannot read the cookie (XSS protection)
		SameSite: http.SameSiteLaxMode,
	}

	return &SessionManager{store: store, maxAge: maxAge}, nil
}

// Establish starts a session for the given user and sets the cookie on w.
// Any prior session on the request is overwritten.
func (m *SessionManager) Establish(w http.ResponseWriter, r *http.Request, user *model.User) error {
	// Get returns a fresh session when the cookie is absent or fails to
	// decode; a decode error here just means "start over".
	sess, _ := m.store.Get(r, sessionName)

	sess.Values[sessionKeyUserID] = user.ID
	sess.Values[sessionKeyName] = user.Name
	sess.Values[sessionKeyEmail] = user.Email
	sess.Options.MaxAge = int(m.maxAge.Seconds())
	sess.Options.Path = "/"
	sess.Options.HttpOnly = true
	sess.Options.SameSite = http.SameSiteLaxMode

	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("auth: saving session: %w", err)
	}
	return nil
}

// UpdateName refreshes the cached display name after a profile update, so
// subsequent session checks reflect the new name without a re-login.
// No-op if the request has no valid session.
func (m *SessionManager) UpdateName(w http.ResponseWriter, r *http.Request, name string) error {
	sess, err := m.store.Get(r, sessionName)
	if err != nil || sess.IsNew {
		return nil
	}

	sess.Values[sessionKeyName] = name
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("auth: updating session name: %w", err)
	}
	return nil
}

// Destroy ends the session and tells the browser to drop the cookie.
// Idempotent: destroying an absent session is not an error.
func (m *SessionManager) Destroy(w http.ResponseWriter, r *http.Request) error {
	sess, err := m.store.Get(r, sessionName)
	if err != nil {
		// Undecodable cookie — clear it anyway.
		sess, _ = m.store.New(r, sessionName)
	}

	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1 // delete the cookie and the server-side record

	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("auth: destroying session: %w", err)
	}
	return nil
}

// Current returns the identity attached to the request's session, if any.
// It reads only the session store — never the database.
func (m *SessionManager) Current(r *http.Request) (*Identity, bool) {
	sess, err := m.store.Get(r, sessionName)
	if err != nil || sess.IsNew {
		return nil, false
	}

	userID, _ := sess.Values[sessionKeyUserID].(string)
	if userID == "" {
		return nil, false
	}

	name, _ := sess.Values[sessionKeyName].(string)
	email, _ := sess.Values[sessionKeyEmail].(string)

	return &Identity{UserID: userID, Name: name, Email: email}, true
}
