// Package repository defines the persistence interfaces.
package repository

import (
	"context"
	"time"

	"github.com/nabil/meshbari/internal/model"
)

// UserRepository persists user accounts.
type UserRepository interface {
	// FindByID fetches the user with the given ID. Returns nil when not found.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail fetches the user with the given email. Returns nil when
	// not found.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create inserts a new user.
	Create(ctx context.Context, user *model.User) error

	// List returns users ordered by creation time, newest first.
	List(ctx context.Context, limit, offset int) ([]*model.User, error)

	// SetBanned updates a user's banned flag.
	SetBanned(ctx context.Context, id string, banned bool) error
}

// SessionRepository persists login sessions.
type SessionRepository interface {
	// Create inserts a session.
	Create(ctx context.Context, session *model.Session) error
	// FindByID fetches the session with the given ID. Expired or missing
	// sessions yield nil.
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID deletes the session with the given ID.
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID deletes all sessions of a user.
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired removes sessions past their expiry and returns the
	// number removed.
	DeleteExpired(ctx context.Context) (int64, error)
}

// ListingFilter narrows a listing query at the SQL level. Zero values mean
// no constraint. The in-memory query engine re-applies the full filter spec
// over whatever superset this returns.
type ListingFilter struct {
	City     string
	Type     string
	MinRent  int
	MaxRent  int
	HasMin   bool
	HasMax   bool
	Verified bool
}

// ListingRepository persists listings.
type ListingRepository interface {
	// FindByID fetches the listing with the given ID. Returns nil when not
	// found.
	FindByID(ctx context.Context, id string) (*model.Listing, error)

	// ListAll returns every listing, newest first. Source of the search
	// snapshot.
	ListAll(ctx context.Context) ([]model.Listing, error)

	// ListFiltered returns listings matching the SQL-level filter, newest
	// first.
	ListFiltered(ctx context.Context, f ListingFilter) ([]model.Listing, error)

	// ListByOwner returns an owner's listings, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]model.Listing, error)

	// ListFeatured returns featured listings, newest first.
	ListFeatured(ctx context.Context, limit int) ([]model.Listing, error)

	// Create inserts a listing.
	Create(ctx context.Context, listing *model.Listing) error

	// Update overwrites a listing's owner-editable fields.
	Update(ctx context.Context, listing *model.Listing) error

	// Delete removes a listing.
	Delete(ctx context.Context, id string) error

	// IncrementViews adds one to the listing's view count.
	IncrementViews(ctx context.Context, id string) error

	// SetVerified updates the verified flag.
	SetVerified(ctx context.Context, id string, verified bool) error

	// SetFeatured updates the featured flag.
	SetFeatured(ctx context.Context, id string, featured bool) error
}

// BookingRepository persists booking requests.
type BookingRepository interface {
	// FindByID fetches the booking with the given ID. Returns nil when not
	// found.
	FindByID(ctx context.Context, id string) (*model.Booking, error)

	// FindPendingByListingAndStudent returns the student's pending booking
	// for a listing, or nil.
	FindPendingByListingAndStudent(ctx context.Context, listingID, studentID string) (*model.Booking, error)

	// Create inserts a booking.
	Create(ctx context.Context, booking *model.Booking) error

	// ListByStudent returns a student's bookings, newest first.
	ListByStudent(ctx context.Context, studentID string) ([]*model.Booking, error)

	// ListByOwner returns the bookings on an owner's listings, newest
	// first.
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Booking, error)

	// UpdateStatus sets a booking's status.
	UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error
}

// ReviewRepository persists reviews and maintains the listing rating
// aggregate.
type ReviewRepository interface {
	// FindByListingAndStudent returns the student's review of a listing,
	// or nil.
	FindByListingAndStudent(ctx context.Context, listingID, studentID string) (*model.Review, error)

	// CreateAndRecalc inserts a review and recomputes the listing's
	// average_rating and review_count in the same transaction.
	CreateAndRecalc(ctx context.Context, review *model.Review) error

	// ListByListing returns a listing's reviews, newest first.
	ListByListing(ctx context.Context, listingID string) ([]*model.Review, error)
}

// TestimonialRepository persists landing-page testimonials.
type TestimonialRepository interface {
	// Create inserts a testimonial (unapproved).
	Create(ctx context.Context, testimonial *model.Testimonial) error
	// ListApproved returns approved testimonials, newest first.
	ListApproved(ctx context.Context) ([]*model.Testimonial, error)
	// ListAll returns all testimonials, newest first.
	ListAll(ctx context.Context) ([]*model.Testimonial, error)
	// SetApproved updates a testimonial's approved flag.
	SetApproved(ctx context.Context, id string, approved bool) error
	// Delete removes a testimonial.
	Delete(ctx context.Context, id string) error
}

// FlagRepository persists listing reports.
type FlagRepository interface {
	// FindByID fetches the flag with the given ID. Returns nil when not
	// found.
	FindByID(ctx context.Context, id string) (*model.Flag, error)
	// Create inserts a flag with status open.
	Create(ctx context.Context, flag *model.Flag) error
	// ListByStatus returns flags of the given status, oldest first so the
	// queue is worked in order.
	ListByStatus(ctx context.Context, status model.FlagStatus) ([]*model.Flag, error)
	// Resolve sets the flag's final status and resolution time.
	Resolve(ctx context.Context, id string, status model.FlagStatus, resolvedAt time.Time) error
	// DeleteResolvedBefore removes non-open flags resolved before cutoff
	// and returns the number removed.
	DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AdminLogRepository persists the admin action audit trail.
type AdminLogRepository interface {
	// Create inserts an audit entry.
	Create(ctx context.Context, entry *model.AdminLog) error
	// ListRecent returns the most recent entries, newest first.
	ListRecent(ctx context.Context, limit int) ([]*model.AdminLog, error)
}
