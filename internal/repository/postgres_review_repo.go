package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nabil/meshbari/internal/model"
)

// PostgresReviewRepo is the PostgreSQL review repository.
type PostgresReviewRepo struct {
	db *sql.DB
}

// NewPostgresReviewRepo builds a PostgresReviewRepo.
func NewPostgresReviewRepo(db *sql.DB) *PostgresReviewRepo {
	return &PostgresReviewRepo{db: db}
}

// FindByListingAndStudent returns the student's review of a listing, or
// nil.
func (r *PostgresReviewRepo) FindByListingAndStudent(ctx context.Context, listingID, studentID string) (*model.Review, error) {
	review := &model.Review{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, listing_id, student_id, rating, comment, created_at
		 FROM reviews WHERE listing_id = $1 AND student_id = $2`,
		listingID, studentID,
	).Scan(&review.ID, &review.ListingID, &review.StudentID, &review.Rating, &review.Comment, &review.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return review, nil
}

// CreateAndRecalc inserts a review and recomputes the listing's
// average_rating and review_count in the same transaction, so the aggregate
// can never drift from the review rows.
func (r *PostgresReviewRepo) CreateAndRecalc(ctx context.Context, review *model.Review) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO reviews (id, listing_id, student_id, rating, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		review.ID, review.ListingID, review.StudentID,
		review.Rating, review.Comment, review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE listings SET
		   average_rating = (SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE listing_id = $1),
		   review_count   = (SELECT COUNT(*) FROM reviews WHERE listing_id = $1),
		   updated_at     = NOW()
		 WHERE id = $1`,
		review.ListingID,
	)
	if err != nil {
		return fmt.Errorf("failed to recalc rating aggregate: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListByListing returns a listing's reviews, newest first.
func (r *PostgresReviewRepo) ListByListing(ctx context.Context, listingID string) ([]*model.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, listing_id, student_id, rating, comment, created_at
		 FROM reviews WHERE listing_id = $1 ORDER BY created_at DESC`,
		listingID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*model.Review
	for rows.Next() {
		review := &model.Review{}
		if err := rows.Scan(
			&review.ID, &review.ListingID, &review.StudentID,
			&review.Rating, &review.Comment, &review.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}
	return reviews, nil
}

// compile-time interface check
var _ ReviewRepository = (*PostgresReviewRepo)(nil)
