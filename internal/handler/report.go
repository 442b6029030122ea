package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/urban-reports/internal/auth"
	"github.com/sakif/urban-reports/internal/model"
	"github.com/sakif/urban-reports/internal/service"
)

// ReportHandler owns report listing, submission, and photo removal.
type ReportHandler struct {
	svc    *service.ReportService
	logger *slog.Logger
}

func NewReportHandler(svc *service.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, logger: logger}
}

// HandleList returns every report, newest first, with the submitter's public
// name and photo. Public route — no session required.
//
// HTTP: GET /problemas
func (h *ReportHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	reports, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool           `json:"success"`
		Message string         `json:"message"`
		Reports []model.Report `json:"reports"`
	}{true, "reports listed", reports})
}

// createReportResponse returns the new report's id and photo reference.
type createReportResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	ID       string `json:"id"`
	PhotoURL string `json:"photoUrl"`
}

// HandleCreate submits a new report owned by the session user.
//
// HTTP: POST /problemas (RequireAuth)
// Body: multipart/form-data — type, description, date, latitude, longitude,
// category, optional photo.
func (h *ReportHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Success: false, Error: "unauthorized", Message: "authentication required",
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
	if err := r.ParseMultipartForm(maxRequestSize); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Success: false, Error: "validation_error", Message: "invalid multipart body",
		})
		return
	}

	blob, err := parsePhoto(r)
	if err != nil {
		writeError(w, err)
		return
	}

	input := service.ReportInput{
		Type:        r.FormValue("type"),
		Description: r.FormValue("description"),
		Date:        r.FormValue("date"),
		Latitude:    r.FormValue("latitude"),
		Longitude:   r.FormValue("longitude"),
		Category:    r.FormValue("category"),
	}

	report, err := h.svc.Submit(r.Context(), identity.UserID, input, blob)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createReportResponse{
		Success:  true,
		Message:  "report submitted",
		ID:       report.ID,
		PhotoURL: report.PhotoURL,
	})
}

// HandleRemovePhoto clears a report's photo (administrative operation).
//
// HTTP: DELETE /problemas/{id}/foto (RequireAuth)
func (h *ReportHandler) HandleRemovePhoto(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemovePhoto(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{true, "photo removed"})
}
