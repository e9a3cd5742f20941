package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/nabil/meshbari/internal/model"
)

// PostgresListingRepo is the PostgreSQL listing repository.
type PostgresListingRepo struct {
	db *sql.DB
}

// NewPostgresListingRepo builds a PostgresListingRepo.
func NewPostgresListingRepo(db *sql.DB) *PostgresListingRepo {
	return &PostgresListingRepo{db: db}
}

const listingColumns = `id, owner_id, title, address, city, type, gender_allowed,
	rent, rooms, capacity, furnishing, description, photo_url,
	verified, featured, average_rating, review_count, views,
	created_at, updated_at`

func scanListing(scan func(dest ...any) error) (model.Listing, error) {
	var l model.Listing
	err := scan(
		&l.ID, &l.OwnerID, &l.Title, &l.Address, &l.City, &l.Type, &l.GenderAllowed,
		&l.Rent, &l.Rooms, &l.Capacity, &l.Furnishing, &l.Description, &l.PhotoURL,
		&l.Verified, &l.Featured, &l.AverageRating, &l.ReviewCount, &l.Views,
		&l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

func (r *PostgresListingRepo) queryListings(ctx context.Context, query string, args ...any) ([]model.Listing, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		l, err := scanListing(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listings: %w", err)
	}
	return listings, nil
}

// FindByID fetches the listing with the given ID. Returns nil when not
// found.
func (r *PostgresListingRepo) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	l, err := scanListing(r.db.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = $1`, id,
	).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}
	return &l, nil
}

// ListAll returns every listing, newest first.
func (r *PostgresListingRepo) ListAll(ctx context.Context) ([]model.Listing, error) {
	return r.queryListings(ctx,
		`SELECT `+listingColumns+` FROM listings ORDER BY created_at DESC`)
}

// ListFiltered returns listings matching the SQL-level filter, newest
// first. The in-memory engine re-applies the full spec over this superset.
func (r *PostgresListingRepo) ListFiltered(ctx context.Context, f ListingFilter) ([]model.Listing, error) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, cond+"$"+strconv.Itoa(len(args)))
	}

	if f.City != "" {
		add("city = ", f.City)
	}
	if f.Type != "" {
		add("type = ", f.Type)
	}
	if f.HasMin {
		add("rent >= ", f.MinRent)
	}
	if f.HasMax {
		add("rent <= ", f.MaxRent)
	}
	if f.Verified {
		conds = append(conds, "verified = TRUE")
	}

	query := `SELECT ` + listingColumns + ` FROM listings`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	return r.queryListings(ctx, query, args...)
}

// ListByOwner returns an owner's listings, newest first.
func (r *PostgresListingRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	return r.queryListings(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE owner_id = $1 ORDER BY created_at DESC`,
		ownerID)
}

// ListFeatured returns featured listings, newest first.
func (r *PostgresListingRepo) ListFeatured(ctx context.Context, limit int) ([]model.Listing, error) {
	return r.queryListings(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE featured = TRUE ORDER BY created_at DESC LIMIT $1`,
		limit)
}

// Create inserts a listing.
func (r *PostgresListingRepo) Create(ctx context.Context, l *model.Listing) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO listings (id, owner_id, title, address, city, type, gender_allowed,
		 rent, rooms, capacity, furnishing, description, photo_url,
		 verified, featured, average_rating, review_count, views, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		l.ID, l.OwnerID, l.Title, l.Address, l.City, l.Type, l.GenderAllowed,
		l.Rent, l.Rooms, l.Capacity, l.Furnishing, l.Description, l.PhotoURL,
		l.Verified, l.Featured, l.AverageRating, l.ReviewCount, l.Views,
		l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	return nil
}

// Update overwrites a listing's owner-editable fields. Moderation flags and
// aggregates are managed by their own methods.
func (r *PostgresListingRepo) Update(ctx context.Context, l *model.Listing) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE listings SET title = $2, address = $3, city = $4, type = $5,
		 gender_allowed = $6, rent = $7, rooms = $8, capacity = $9,
		 furnishing = $10, description = $11, photo_url = $12, updated_at = $13
		 WHERE id = $1`,
		l.ID, l.Title, l.Address, l.City, l.Type,
		l.GenderAllowed, l.Rent, l.Rooms, l.Capacity,
		l.Furnishing, l.Description, l.PhotoURL, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("listing not found: %s", l.ID)
	}
	return nil
}

// Delete removes a listing.
func (r *PostgresListingRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("listing not found: %s", id)
	}
	return nil
}

// IncrementViews adds one to the listing's view count.
func (r *PostgresListingRepo) IncrementViews(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE listings SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

// SetVerified updates the verified flag.
func (r *PostgresListingRepo) SetVerified(ctx context.Context, id string, verified bool) error {
	return r.setFlag(ctx, id, "verified", verified)
}

// SetFeatured updates the featured flag.
func (r *PostgresListingRepo) SetFeatured(ctx context.Context, id string, featured bool) error {
	return r.setFlag(ctx, id, "featured", featured)
}

func (r *PostgresListingRepo) setFlag(ctx context.Context, id, column string, value bool) error {
	// column is one of the two fixed names above, never user input.
	result, err := r.db.ExecContext(ctx,
		`UPDATE listings SET `+column+` = $2, updated_at = NOW() WHERE id = $1`,
		id, value,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s flag: %w", column, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("listing not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ ListingRepository = (*PostgresListingRepo)(nil)
