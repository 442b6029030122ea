package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/urban-reports/internal/apperror"
	"github.com/sakif/urban-reports/internal/model"
	"github.com/sakif/urban-reports/internal/repository"
)

// ReportRepo implements repository.ReportRepository on the shared DB handle.
type ReportRepo struct {
	db *DB
}

// Compile-time check that *ReportRepo implements repository.ReportRepository.
var _ repository.ReportRepository = (*ReportRepo)(nil)

func NewReportRepo(db *DB) *ReportRepo {
	return &ReportRepo{db: db}
}

// Create inserts a new report row, generating its ID and creation timestamp.
func (repo *ReportRepo) Create(ctx context.Context, report *model.Report) error {
	report.ID = xid.New().String()
	report.CreatedAt = time.Now()

	_, err := repo.db.conn.ExecContext(ctx,
		`INSERT INTO reports (id, type, description, date, latitude, longitude, category, photo_url, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.Type,
		report.Description,
		report.Date,
		report.Latitude,
		report.Longitude,
		report.Category,
		report.PhotoURL,
		report.UserID,
		report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting report: %w", err)
	}

	return nil
}

// List returns every report, newest first, joined with the submitter's
// public name and photo.
//
// The secondary sort on id keeps the order deterministic when two reports
// share a creation timestamp: xid values are themselves time-ordered, so the
// newest-first contract holds even within the same clock tick.
//
// There is deliberately no LIMIT — the unbounded result set is an accepted
// scope limitation of this service.
func (repo *ReportRepo) List(ctx context.Context) ([]model.Report, error) {
	rows, err := repo.db.conn.QueryContext(ctx,
		`SELECT r.id, r.type, r.description, r.date, r.latitude, r.longitude,
		        r.category, r.photo_url, r.user_id, r.created_at,
		        u.name, u.photo_url
		 FROM reports r
		 JOIN users u ON u.id = r.user_id
		 ORDER BY r.created_at DESC, r.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing reports: %w", err)
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		var r model.Report
		if err := rows.Scan(
			&r.ID, &r.Type, &r.Description, &r.Date, &r.Latitude, &r.Longitude,
			&r.Category, &r.PhotoURL, &r.UserID, &r.CreatedAt,
			&r.OwnerName, &r.OwnerPhotoURL,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning report row: %w", err)
		}
		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating reports: %w", err)
	}

	if reports == nil {
		reports = []model.Report{}
	}
	return reports, nil
}

// GetByID retrieves a single report (without the owner join).
func (repo *ReportRepo) GetByID(ctx context.Context, id string) (*model.Report, error) {
	var r model.Report

	err := repo.db.conn.QueryRowContext(ctx,
		`SELECT id, type, description, date, latitude, longitude, category, photo_url, user_id, created_at
		 FROM reports WHERE id = ?`,
		id,
	).Scan(
		&r.ID, &r.Type, &r.Description, &r.Date, &r.Latitude, &r.Longitude,
		&r.Category, &r.PhotoURL, &r.UserID, &r.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("report", id)
		}
		return nil, fmt.Errorf("sqlite: getting report %s: %w", id, err)
	}

	return &r, nil
}

// ClearPhoto empties the photo column of a report.
// RowsAffected distinguishes "cleared" from "no such report".
func (repo *ReportRepo) ClearPhoto(ctx context.Context, id string) error {
	result, err := repo.db.conn.ExecContext(ctx,
		`UPDATE reports SET photo_url = '' WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: clearing report photo %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("report", id)
	}

	return nil
}
