// Package model defines the domain models.
package model

import "time"

// Booking represents a student's request to book a listing.
type Booking struct {
	ID        string
	ListingID string
	StudentID string
	OwnerID   string
	Status    BookingStatus
	Message   string
	MoveInAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookingStatus is the workflow state of a booking request.
type BookingStatus string

const (
	// BookingStatusPending awaits the owner's decision.
	BookingStatusPending BookingStatus = "pending"
	// BookingStatusApproved was accepted by the owner.
	BookingStatusApproved BookingStatus = "approved"
	// BookingStatusRejected was declined by the owner.
	BookingStatusRejected BookingStatus = "rejected"
	// BookingStatusCancelled was withdrawn by the student.
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Review represents a student's rating of a listing.
type Review struct {
	ID        string
	ListingID string
	StudentID string
	Rating    int    // 1..5
	Comment   string // sanitized
	CreatedAt time.Time
}
