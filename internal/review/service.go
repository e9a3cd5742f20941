// Package review implements listing reviews and the rating aggregate.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nabil/meshbari/internal/model"
	"github.com/nabil/meshbari/internal/repository"
	"github.com/nabil/meshbari/internal/security"
)

// Service handles posting and listing reviews.
type Service struct {
	reviews   repository.ReviewRepository
	listings  repository.ListingRepository
	sanitizer security.ContentSanitizerService
}

// NewService creates a review service.
func NewService(reviews repository.ReviewRepository, listings repository.ListingRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{reviews: reviews, listings: listings, sanitizer: sanitizer}
}

// Input is the review payload.
type Input struct {
	ListingID string
	Rating    int
	Comment   string
}

// Create posts a review. One review per student per listing; the listing's
// average rating and review count are updated in the same transaction as
// the insert.
func (s *Service) Create(ctx context.Context, studentID string, input Input) (*model.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, model.NewInvalidRatingError(input.Rating)
	}

	listing, err := s.listings.FindByID(ctx, input.ListingID)
	if err != nil {
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}
	if listing == nil {
		return nil, model.NewListingNotFoundError(input.ListingID)
	}

	existing, err := s.reviews.FindByListingAndStudent(ctx, input.ListingID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateReviewError()
	}

	review := &model.Review{
		ID:        uuid.New().String(),
		ListingID: input.ListingID,
		StudentID: studentID,
		Rating:    input.Rating,
		Comment:   strings.TrimSpace(s.sanitizer.Sanitize(input.Comment)),
		CreatedAt: time.Now(),
	}
	if err := s.reviews.CreateAndRecalc(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	slog.Info("review posted",
		slog.String("review_id", review.ID),
		slog.String("listing_id", review.ListingID),
		slog.Int("rating", review.Rating),
	)
	return review, nil
}

// ListForListing returns a listing's reviews, newest first.
func (s *Service) ListForListing(ctx context.Context, listingID string) ([]*model.Review, error) {
	reviews, err := s.reviews.ListByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}
