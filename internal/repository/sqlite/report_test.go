package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/urban-reports/internal/apperror"
	"github.com/sakif/urban-reports/internal/model"
)

// newTestRepos returns user and report repositories over one fresh in-memory
// database.
func newTestRepos(t *testing.T) (*UserRepo, *ReportRepo) {
	t.Helper()
	db := newTestDB(t)
	return NewUserRepo(db), NewReportRepo(db)
}

// createTestReport creates a report owned by userID and fails the test on
// error.
func createTestReport(t *testing.T, reports *ReportRepo, userID, description string) *model.Report {
	t.Helper()
	report := &model.Report{
		Type:        "buraco",
		Description: description,
		Date:        "2026-08-23",
		Latitude:    -22.9068,
		Longitude:   -43.1729,
		Category:    "via publica",
		UserID:      userID,
	}
	if err := reports.Create(context.Background(), report); err != nil {
		t.Fatalf("failed to create test report: %v", err)
	}
	return report
}

func TestReportCreate(t *testing.T) {
	users, reports := newTestRepos(t)
	user := createTestUser(t, users, "Maria", "maria@example.com")

	report := &model.Report{
		Type:        "iluminacao",
		Description: "broken streetlight on the corner",
		Date:        "2026-08-23",
		Latitude:    -22.9,
		Longitude:   -43.2,
		Category:    "iluminacao publica",
		PhotoURL:    "/uploads/photo.jpg",
		UserID:      user.ID,
	}

	if err := reports.Create(context.Background(), report); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if report.ID == "" {
		t.Error("Create() did not set report.ID")
	}
	if report.CreatedAt.IsZero() {
		t.Error("Create() did not set report.CreatedAt")
	}
}

func TestReportCreate_UnknownUser(t *testing.T) {
	_, reports := newTestRepos(t)

	report := &model.Report{
		Type:        "buraco",
		Description: "pothole",
		Date:        "2026-08-23",
		Latitude:    -22.9,
		Longitude:   -43.2,
		Category:    "via publica",
		UserID:      "no-such-user",
	}
	// foreign_keys=ON makes the dangling owner an insert error.
	if err := reports.Create(context.Background(), report); err == nil {
		t.Error("Create() should fail for a nonexistent owner")
	}
}

func TestReportList_NewestFirst(t *testing.T) {
	users, reports := newTestRepos(t)
	user := createTestUser(t, users, "Maria", "maria@example.com")

	r1 := createTestReport(t, reports, user.ID, "first report")
	r2 := createTestReport(t, reports, user.ID, "second report")
	r3 := createTestReport(t, reports, user.ID, "third report")

	listed, err := reports.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(listed) != 3 {
		t.Fatalf("List() returned %d reports, want 3", len(listed))
	}
	// Newest first. The inserts may share a timestamp, but xid IDs are
	// time-ordered so the secondary sort keeps submission order.
	if listed[0].ID != r3.ID || listed[1].ID != r2.ID || listed[2].ID != r1.ID {
		t.Errorf("List() order = [%s %s %s], want newest first [%s %s %s]",
			listed[0].ID, listed[1].ID, listed[2].ID, r3.ID, r2.ID, r1.ID)
	}
}

func TestReportList_JoinsOwner(t *testing.T) {
	users, reports := newTestRepos(t)
	user := createTestUser(t, users, "Maria", "maria@example.com")
	user.PhotoURL = "/uploads/avatar.png"
	if err := users.UpdateProfile(context.Background(), user); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	createTestReport(t, reports, user.ID, "pothole near the school")

	listed, err := reports.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("List() returned %d reports, want 1", len(listed))
	}
	if listed[0].OwnerName != "Maria" {
		t.Errorf("OwnerName = %q, want %q", listed[0].OwnerName, "Maria")
	}
	if listed[0].OwnerPhotoURL != "/uploads/avatar.png" {
		t.Errorf("OwnerPhotoURL = %q", listed[0].OwnerPhotoURL)
	}
}

func TestReportList_Empty(t *testing.T) {
	_, reports := newTestRepos(t)

	listed, err := reports.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if listed == nil {
		t.Error("List() should return an empty slice, not nil (serializes as [])")
	}
	if len(listed) != 0 {
		t.Errorf("List() returned %d reports, want 0", len(listed))
	}
}

func TestReportGetByID_NotFound(t *testing.T) {
	_, reports := newTestRepos(t)

	_, err := reports.GetByID(context.Background(), "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestReportClearPhoto(t *testing.T) {
	users, reports := newTestRepos(t)
	user := createTestUser(t, users, "Maria", "maria@example.com")

	plain := createTestReport(t, reports, user.ID, "without photo")
	withPhoto := &model.Report{
		Type: "buraco", Description: "photo report", Date: "2026-08-23",
		Latitude: -22.9, Longitude: -43.2, Category: "via publica",
		PhotoURL: "/uploads/p.jpg", UserID: user.ID,
	}
	if err := reports.Create(context.Background(), withPhoto); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := reports.ClearPhoto(context.Background(), withPhoto.ID); err != nil {
		t.Fatalf("ClearPhoto() error = %v", err)
	}

	found, err := reports.GetByID(context.Background(), withPhoto.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.PhotoURL != "" {
		t.Errorf("PhotoURL = %q after ClearPhoto, want empty", found.PhotoURL)
	}

	// Other rows are untouched.
	other, err := reports.GetByID(context.Background(), plain.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if other.Description != "without photo" {
		t.Error("ClearPhoto() mutated an unrelated row")
	}
}

func TestReportClearPhoto_NotFound(t *testing.T) {
	_, reports := newTestRepos(t)

	err := reports.ClearPhoto(context.Background(), "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("ClearPhoto() error = %v, want ErrNotFound", err)
	}
}
