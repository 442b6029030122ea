package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sakif/urban-reports/internal/apperror"
	"github.com/sakif/urban-reports/internal/model"
	"github.com/sakif/urban-reports/internal/repository"
	"github.com/sakif/urban-reports/internal/storage"
)

// ReportInput carries the raw submission fields. Latitude and Longitude
// arrive as strings because the endpoint is multipart/form-data; parsing and
// range checks live here so every caller gets the same rules.
type ReportInput struct {
	Type        string
	Description string
	Date        string
	Latitude    string
	Longitude   string
	Category    string
}

// ReportService handles report submission, listing, and photo removal.
type ReportService struct {
	reports repository.ReportRepository
	blobs   storage.Storage
	logger  *slog.Logger
}

func NewReportService(reports repository.ReportRepository, blobs storage.Storage, logger *slog.Logger) *ReportService {
	return &ReportService{
		reports: reports,
		blobs:   blobs,
		logger:  logger,
	}
}

// Submit validates and persists a new report owned by userID.
//
// Validation runs before anything is written, so a rejected submission
// leaves no row and no file. When a photo is present it is stored first; if
// the row insert then fails, the blob is deleted before the error surfaces
// (compensating cleanup — there is no transaction across file and row).
func (s *ReportService) Submit(ctx context.Context, userID string, in ReportInput, photo *storage.Blob) (*model.Report, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("authentication required")
	}

	report := &model.Report{
		Type:        strings.TrimSpace(in.Type),
		Description: strings.TrimSpace(in.Description),
		Date:        strings.TrimSpace(in.Date),
		Category:    strings.TrimSpace(in.Category),
		UserID:      userID,
	}

	switch {
	case report.Type == "":
		return nil, apperror.ValidationFailed("type", "type is required")
	case report.Description == "":
		return nil, apperror.ValidationFailed("description", "description is required")
	case report.Date == "":
		return nil, apperror.ValidationFailed("date", "date is required")
	case report.Category == "":
		return nil, apperror.ValidationFailed("category", "category is required")
	}

	var err error
	report.Latitude, err = parseCoordinate(in.Latitude, "latitude", -90, 90)
	if err != nil {
		return nil, err
	}
	report.Longitude, err = parseCoordinate(in.Longitude, "longitude", -180, 180)
	if err != nil {
		return nil, err
	}

	if photo != nil {
		if err := validatePhoto(photo); err != nil {
			return nil, err
		}
		ref, err := s.blobs.Save(ctx, *photo)
		if err != nil {
			s.logger.Error("report photo upload failed", slog.String("error", err.Error()))
			return nil, apperror.UploadFailed("could not store the report photo")
		}
		report.PhotoURL = ref
	}

	if err := s.reports.Create(ctx, report); err != nil {
		if report.PhotoURL != "" {
			if delErr := s.blobs.Delete(ctx, report.PhotoURL); delErr != nil {
				s.logger.Warn("orphaned photo cleanup failed",
					slog.String("ref", report.PhotoURL),
					slog.String("error", delErr.Error()),
				)
			}
		}
		return nil, fmt.Errorf("service/report: creating report: %w", err)
	}

	s.logger.Info("report submitted",
		slog.String("reportID", report.ID),
		slog.String("userID", userID),
		slog.String("category", report.Category),
	)

	return report, nil
}

// List returns all reports, newest first, with owner name/photo joined in.
func (s *ReportService) List(ctx context.Context) ([]model.Report, error) {
	reports, err := s.reports.List(ctx)
	if err != nil {
		s.logger.Error("failed to list reports", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/report: listing reports: %w", err)
	}
	return reports, nil
}

// RemovePhoto deletes a report's photo from blob storage and clears the
// photo column. The blob removal is best-effort: if the remote host refuses
// the delete we still clear the column, and if the column update fails there
// is no way to restore the already-deleted blob.
func (s *ReportService) RemovePhoto(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "report ID is required")
	}

	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if report.PhotoURL != "" {
		if err := s.blobs.Delete(ctx, report.PhotoURL); err != nil {
			s.logger.Warn("report photo blob removal failed",
				slog.String("reportID", id),
				slog.String("ref", report.PhotoURL),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.reports.ClearPhoto(ctx, id); err != nil {
		return err
	}

	s.logger.Info("report photo removed", slog.String("reportID", id))
	return nil
}

// parseCoordinate parses a decimal coordinate and enforces its valid range.
func parseCoordinate(raw, field string, min, max float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperror.ValidationFailed(field, field+" is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperror.ValidationFailed(field, field+" must be a decimal number")
	}
	if v < min || v > max {
		return 0, apperror.ValidationFailed(field,
			fmt.Sprintf("%s must be between %g and %g", field, min, max))
	}
	return v, nil
}
