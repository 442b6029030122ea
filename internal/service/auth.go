// Package service contains the business logic layer.
//
// Services accept primitives and domain structs — never *http.Request — and
// return domain errors from internal/apperror. The handler layer owns all
// HTTP concerns (cookies, status codes, multipart parsing); the repository
// layer owns all SQL. Each service receives its dependencies as interfaces,
// so tests substitute in-memory fakes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/urban-reports/internal/apperror"
	"github.com/sakif/urban-reports/internal/auth"
	"github.com/sakif/urban-reports/internal/model"
	"github.com/sakif/urban-reports/internal/repository"
	"github.com/sakif/urban-reports/internal/storage"
)

// genericLoginMessage is returned for BOTH an unknown email and a wrong
// password. Keeping the two failure modes indistinguishable is a deliberate
// enumeration-resistance contract — do not "improve" it.
const genericLoginMessage = "email or password incorrect"

// AuthService handles registration, login, and profile updates.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	blobs     storage.Storage
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	blobs storage.Storage,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		blobs:     blobs,
		logger:    logger,
	}
}

// Register creates a new account. photo is optional (nil = none).
//
// Order of operations matters: the photo is persisted before the row, and if
// the row insert then fails the stored blob is deleted. There is no
// transaction spanning file and row — the compensating delete is the only
// guarantee, and it means a failed registration leaves neither.
func (s *AuthService) Register(ctx context.Context, name, email, password string, photo *storage.Blob) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	// Fast-path duplicate check. The UNIQUE constraint remains the source of
	// truth: a concurrent registration can slip past this check, in which
	// case the INSERT below returns the same Conflict error.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("email is already registered")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking email: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	var photoRef string
	if photo != nil {
		if err := validatePhoto(photo); err != nil {
			return nil, err
		}
		photoRef, err = s.blobs.Save(ctx, *photo)
		if err != nil {
			s.logger.Error("profile photo upload failed", slog.String("error", err.Error()))
			return nil, apperror.UploadFailed("could not store the profile photo")
		}
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		PhotoURL:     photoRef,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The photo is already on disk/remote; remove it so a failed
		// registration leaves nothing behind.
		if photoRef != "" {
			if delErr := s.blobs.Delete(ctx, photoRef); delErr != nil {
				s.logger.Warn("orphaned photo cleanup failed",
					slog.String("ref", photoRef),
					slog.String("error", delErr.Error()),
				)
			}
		}
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login verifies credentials and returns the matching user.
// Unknown email and wrong password produce the identical error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized(genericLoginMessage)
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized(genericLoginMessage)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return user, nil
}

// GetUserByID returns the user for a public profile lookup.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.users.GetByID(ctx, id)
}

// UpdateProfile changes the display name and/or profile photo. Both are
// optional; an empty name means "keep the current one". A replaced photo's
// old blob is deleted best-effort after the row update succeeds.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, name string, photo *storage.Blob) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		user.Name = name
	}

	var newRef, oldRef string
	if photo != nil {
		if err := validatePhoto(photo); err != nil {
			return nil, err
		}
		newRef, err = s.blobs.Save(ctx, *photo)
		if err != nil {
			s.logger.Error("profile photo upload failed", slog.String("error", err.Error()))
			return nil, apperror.UploadFailed("could not store the profile photo")
		}
		oldRef = user.PhotoURL
		user.PhotoURL = newRef
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if newRef != "" {
			if delErr := s.blobs.Delete(ctx, newRef); delErr != nil {
				s.logger.Warn("orphaned photo cleanup failed",
					slog.String("ref", newRef),
					slog.String("error", delErr.Error()),
				)
			}
		}
		return nil, fmt.Errorf("service/auth: updating profile: %w", err)
	}

	if oldRef != "" && oldRef != newRef {
		if err := s.blobs.Delete(ctx, oldRef); err != nil {
			s.logger.Warn("superseded photo cleanup failed",
				slog.String("ref", oldRef),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("profile updated", slog.String("userID", user.ID))

	return user, nil
}
