package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/urban-reports/internal/auth"
	"github.com/sakif/urban-reports/internal/model"
	"github.com/sakif/urban-reports/internal/service"
)

// AuthHandler owns registration, login/logout, session check, public profile
// lookup, and profile update.
type AuthHandler struct {
	svc      *service.AuthService
	sessions *auth.SessionManager
	logger   *slog.Logger
}

func NewAuthHandler(svc *service.AuthService, sessions *auth.SessionManager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:      svc,
		sessions: sessions,
		logger:   logger,
	}
}

// userResponse wraps the public user projection in the response envelope.
type userResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	User    model.PublicUser `json:"user"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /cadastro
// Body: multipart/form-data (name, email, password, optional photo) or JSON
// {name, email, password}.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if isMultipart(r) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
		if err := r.ParseMultipartForm(maxRequestSize); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Success: false, Error: "validation_error", Message: "invalid multipart body",
			})
			return
		}
		name := r.FormValue("name")
		email := r.FormValue("email")
		password := r.FormValue("password")

		blob, err := parsePhoto(r)
		if err != nil {
			writeError(w, err)
			return
		}

		user, err := h.svc.Register(r.Context(), name, email, password, blob)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, userResponse{
			Success: true, Message: "user registered", User: user.Public(),
		})
		return
	}

	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Warn("invalid register JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Success: false, Error: "validation_error", Message: "invalid JSON body",
		})
		return
	}

	user, err := h.svc.Register(r.Context(), body.Name, body.Email, body.Password, nil)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{
		Success: true, Message: "user registered", User: user.Public(),
	})
}

// HandleLogin verifies credentials and establishes a session.
//
// HTTP: POST /login
// Body: JSON {email, password}.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Warn("invalid login JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Success: false, Error: "validation_error", Message: "invalid JSON body",
		})
		return
	}

	user, err := h.svc.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.sessions.Establish(w, r, user); err != nil {
		h.logger.Error("establishing session failed",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		Success: true, Message: "logged in", User: user.Public(),
	})
}

// HandleLogout destroys the session and clears the cookie. Idempotent:
// logging out without a session still succeeds.
//
// HTTP: POST /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(w, r); err != nil {
		h.logger.Error("destroying session failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{true, "logged out"})
}

// authCheckResponse answers "who am I?" for the frontend on page load.
type authCheckResponse struct {
	Success       bool         `json:"success"`
	Message       string       `json:"message"`
	Authenticated bool         `json:"authenticated"`
	User          *sessionUser `json:"user,omitempty"`
}

// sessionUser is the identity snapshot held in the session — no photo, no
// timestamps, and crucially no database read.
type sessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// HandleAuthCheck reports the session state. Runs behind OptionalAuth, so an
// anonymous request is a 200 with authenticated=false, never a 401.
//
// HTTP: GET /auth/check
func (h *AuthHandler) HandleAuthCheck(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, authCheckResponse{
			Success: true, Message: "not authenticated", Authenticated: false,
		})
		return
	}

	writeJSON(w, http.StatusOK, authCheckResponse{
		Success:       true,
		Message:       "authenticated",
		Authenticated: true,
		User: &sessionUser{
			ID:    identity.UserID,
			Name:  identity.Name,
			Email: identity.Email,
		},
	})
}

// HandleGetUser returns a user's public projection.
//
// HTTP: GET /usuario/{id}
func (h *AuthHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		Success: true, Message: "user found", User: user.Public(),
	})
}

// HandleUpdateProfile updates the display name and/or profile photo of the
// authenticated user, then refreshes the name cached in the session.
//
// HTTP: PUT /perfil (RequireAuth)
// Body: multipart/form-data (optional name, optional photo) or JSON {name}.
func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		// RequireAuth guarantees this never happens; defensive 401 anyway.
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Success: false, Error: "unauthorized", Message: "authentication required",
		})
		return
	}

	var (
		name string
		user *model.User
		err  error
	)

	if isMultipart(r) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
		if err := r.ParseMultipartForm(maxRequestSize); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Success: false, Error: "validation_error", Message: "invalid multipart body",
			})
			return
		}
		name = r.FormValue("name")

		blob, perr := parsePhoto(r)
		if perr != nil {
			writeError(w, perr)
			return
		}
		user, err = h.svc.UpdateProfile(r.Context(), identity.UserID, name, blob)
	} else {
		var body struct {
			Name string `json:"name"`
		}
		if derr := json.NewDecoder(r.Body).Decode(&body); derr != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Success: false, Error: "validation_error", Message: "invalid JSON body",
			})
			return
		}
		user, err = h.svc.UpdateProfile(r.Context(), identity.UserID, body.Name, nil)
	}

	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.sessions.UpdateName(w, r, user.Name); err != nil {
		h.logger.Warn("refreshing session name failed",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
	}

	writeJSON(w, http.StatusOK, userResponse{
		Success: true, Message: "profile updated", User: user.Public(),
	})
}
