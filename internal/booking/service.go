// Package booking implements the booking request workflow.
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nabil/meshbari/internal/model"
	"github.com/nabil/meshbari/internal/repository"
	"github.com/nabil/meshbari/internal/security"
)

// Service handles booking creation and the owner/student decisions.
type Service struct {
	bookings  repository.BookingRepository
	listings  repository.ListingRepository
	sanitizer security.ContentSanitizerService
}

// NewService creates a booking service.
func NewService(bookings repository.BookingRepository, listings repository.ListingRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{bookings: bookings, listings: listings, sanitizer: sanitizer}
}

// Input is the booking request payload.
type Input struct {
	ListingID string
	Message   string
	MoveInAt  *time.Time
}

// Create opens a pending booking request. A student can hold at most one
// pending request per listing, and cannot book their own listing.
func (s *Service) Create(ctx context.Context, studentID string, input Input) (*model.Booking, error) {
	listing, err := s.listings.FindByID(ctx, input.ListingID)
	if err != nil {
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}
	if listing == nil {
		return nil, model.NewListingNotFoundError(input.ListingID)
	}
	if listing.OwnerID == studentID {
		return nil, model.NewForbiddenError()
	}

	existing, err := s.bookings.FindPendingByListingAndStudent(ctx, input.ListingID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending booking: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateBookingError()
	}

	now := time.Now()
	booking := &model.Booking{
		ID:        uuid.New().String(),
		ListingID: input.ListingID,
		StudentID: studentID,
		OwnerID:   listing.OwnerID,
		Status:    model.BookingStatusPending,
		Message:   s.sanitizer.Sanitize(input.Message),
		MoveInAt:  input.MoveInAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	slog.Info("booking requested",
		slog.String("booking_id", booking.ID),
		slog.String("listing_id", booking.ListingID),
		slog.String("student_id", studentID),
	)
	return booking, nil
}

// Approve accepts a pending request. Only the listing's owner may decide.
func (s *Service) Approve(ctx context.Context, ownerID, bookingID string) (*model.Booking, error) {
	return s.decide(ctx, ownerID, bookingID, model.BookingStatusApproved)
}

// Reject declines a pending request. Only the listing's owner may decide.
func (s *Service) Reject(ctx context.Context, ownerID, bookingID string) (*model.Booking, error) {
	return s.decide(ctx, ownerID, bookingID, model.BookingStatusRejected)
}

// Cancel withdraws a pending request. Only the requesting student may
// cancel, and only while the request is still pending.
func (s *Service) Cancel(ctx context.Context, studentID, bookingID string) (*model.Booking, error) {
	booking, err := s.pendingBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.StudentID != studentID {
		return nil, model.NewForbiddenError()
	}
	return s.transition(ctx, booking, model.BookingStatusCancelled)
}

// ListForStudent returns the student's booking requests, newest first.
func (s *Service) ListForStudent(ctx context.Context, studentID string) ([]*model.Booking, error) {
	bookings, err := s.bookings.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list student bookings: %w", err)
	}
	return bookings, nil
}

// ListForOwner returns the requests on the owner's listings, newest first.
func (s *Service) ListForOwner(ctx context.Context, ownerID string) ([]*model.Booking, error) {
	bookings, err := s.bookings.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner bookings: %w", err)
	}
	return bookings, nil
}

func (s *Service) decide(ctx context.Context, ownerID, bookingID string, status model.BookingStatus) (*model.Booking, error) {
	booking, err := s.pendingBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID != ownerID {
		return nil, model.NewForbiddenError()
	}
	return s.transition(ctx, booking, status)
}

// pendingBooking loads a booking and verifies it is still pending. Settled
// bookings cannot change state again.
func (s *Service) pendingBooking(ctx context.Context, bookingID string) (*model.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	if booking == nil {
		return nil, model.NewBookingNotFoundError(bookingID)
	}
	if booking.Status != model.BookingStatusPending {
		return nil, model.NewInvalidBookingStateError(booking.Status)
	}
	return booking, nil
}

func (s *Service) transition(ctx context.Context, booking *model.Booking, status model.BookingStatus) (*model.Booking, error) {
	if err := s.bookings.UpdateStatus(ctx, booking.ID, status); err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	booking.Status = status
	booking.UpdatedAt = time.Now()

	slog.Info("booking status changed",
		slog.String("booking_id", booking.ID),
		slog.String("status", string(status)),
	)
	return booking, nil
}
