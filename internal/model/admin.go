// Package model defines the domain models.
package model

import "time"

// Testimonial is a user quote shown on the public landing page after admin
// approval.
type Testimonial struct {
	ID        string
	UserID    string
	Body      string // sanitized
	Approved  bool
	CreatedAt time.Time
}

// Flag is a user report against a listing, handled by admins.
type Flag struct {
	ID         string
	ListingID  string
	ReporterID string
	Reason     string
	Status     FlagStatus
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

// FlagStatus is the moderation state of a flag.
type FlagStatus string

const (
	// FlagStatusOpen awaits admin review.
	FlagStatusOpen FlagStatus = "open"
	// FlagStatusResolved was handled by an admin.
	FlagStatusResolved FlagStatus = "resolved"
	// FlagStatusDismissed was rejected by an admin.
	FlagStatusDismissed FlagStatus = "dismissed"
)

// AdminLog records a moderation action for the admin audit trail.
type AdminLog struct {
	ID        string
	AdminID   string
	Action    string
	TargetID  string
	Detail    string
	CreatedAt time.Time
}
