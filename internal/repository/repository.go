// Package repository declares the persistence interfaces the service layer
// depends on. The sqlite subpackage is the production implementation; tests
// substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/urban-reports/internal/model"
)

type UserRepository interface {
	// Create inserts a new user. Returns apperror.ErrConflict if the email
	// is already registered (UNIQUE constraint on users.email).
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail returns apperror.ErrNotFound for an unknown email. Callers
	// implementing login must NOT surface that distinction to clients.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateProfile persists a changed display name and/or photo reference.
	UpdateProfile(ctx context.Context, user *model.User) error
}

type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	// List returns every report, newest first, with the submitting user's
	// public name and photo joined in.
	List(ctx context.Context) ([]model.Report, error)
	GetByID(ctx context.Context, id string) (*model.Report, error)
	// ClearPhoto empties the photo column of a report. Returns
	// apperror.ErrNotFound if the report does not exist.
	ClearPhoto(ctx context.Context, id string) error
}
