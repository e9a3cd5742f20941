package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nabil/meshbari/internal/model"
)

// PostgresBookingRepo is the PostgreSQL booking repository.
type PostgresBookingRepo struct {
	db *sql.DB
}

// NewPostgresBookingRepo builds a PostgresBookingRepo.
func NewPostgresBookingRepo(db *sql.DB) *PostgresBookingRepo {
	return &PostgresBookingRepo{db: db}
}

const bookingColumns = `id, listing_id, student_id, owner_id, status, message, move_in_at, created_at, updated_at`

func scanBooking(scan func(dest ...any) error) (*model.Booking, error) {
	b := &model.Booking{}
	err := scan(
		&b.ID, &b.ListingID, &b.StudentID, &b.OwnerID,
		&b.Status, &b.Message, &b.MoveInAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// FindByID fetches the booking with the given ID. Returns nil when not
// found.
func (r *PostgresBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id,
	).Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return b, nil
}

// FindPendingByListingAndStudent returns the student's pending booking for
// a listing, or nil.
func (r *PostgresBookingRepo) FindPendingByListingAndStudent(ctx context.Context, listingID, studentID string) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE listing_id = $1 AND student_id = $2 AND status = 'pending'`,
		listingID, studentID,
	).Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending booking: %w", err)
	}
	return b, nil
}

// Create inserts a booking.
func (r *PostgresBookingRepo) Create(ctx context.Context, b *model.Booking) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bookings (id, listing_id, student_id, owner_id, status, message, move_in_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		b.ID, b.ListingID, b.StudentID, b.OwnerID,
		b.Status, b.Message, b.MoveInAt, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *PostgresBookingRepo) listBookings(ctx context.Context, query string, arg any) ([]*model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		b := &model.Booking{}
		if err := rows.Scan(
			&b.ID, &b.ListingID, &b.StudentID, &b.OwnerID,
			&b.Status, &b.Message, &b.MoveInAt, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}

// ListByStudent returns a student's bookings, newest first.
func (r *PostgresBookingRepo) ListByStudent(ctx context.Context, studentID string) ([]*model.Booking, error) {
	return r.listBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE student_id = $1 ORDER BY created_at DESC`,
		studentID)
}

// ListByOwner returns the bookings on an owner's listings, newest first.
func (r *PostgresBookingRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Booking, error) {
	return r.listBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE owner_id = $1 ORDER BY created_at DESC`,
		ownerID)
}

// UpdateStatus sets a booking's status.
func (r *PostgresBookingRepo) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("booking not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ BookingRepository = (*PostgresBookingRepo)(nil)
