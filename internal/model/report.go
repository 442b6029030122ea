package model

import "time"

// Report is a citizen-submitted record describing an urban problem at a
// geographic point (a pothole, broken streetlight, illegal dumping, ...).
//
// All fields except PhotoURL are mandatory at creation. Reports are immutable
// once created, with a single exception: the photo reference can be cleared
// by the administrative photo-removal operation.
//
// OwnerName and OwnerPhotoURL are not columns of the reports table — they are
// filled in by the listing query's join against users and are zero-valued
// everywhere else.
type Report struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Date        string    `json:"date"` // as submitted, e.g. "2026-08-23"
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Category    string    `json:"category"`
	PhotoURL    string    `json:"photoUrl"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`

	OwnerName     string `json:"ownerName,omitempty"`
	OwnerPhotoURL string `json:"ownerPhotoUrl,omitempty"`
}
