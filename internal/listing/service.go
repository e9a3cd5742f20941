// Package listing implements listing management and search.
package listing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nabil/meshbari/internal/model"
	"github.com/nabil/meshbari/internal/query"
	"github.com/nabil/meshbari/internal/repository"
	"github.com/nabil/meshbari/internal/security"
)

// DefaultPageSize is the number of listings per search result page.
const DefaultPageSize = 9

// Service handles listing CRUD and search.
type Service struct {
	listings  repository.ListingRepository
	sanitizer security.ContentSanitizerService
	urlGuard  security.URLGuardService
}

// NewService creates a listing service.
func NewService(listings repository.ListingRepository, sanitizer security.ContentSanitizerService, urlGuard security.URLGuardService) *Service {
	return &Service{listings: listings, sanitizer: sanitizer, urlGuard: urlGuard}
}

// Input is the owner-editable part of a listing.
type Input struct {
	Title         string
	Address       string
	City          string
	Type          string
	GenderAllowed string
	Rent          int
	Rooms         int
	Capacity      int
	Furnishing    string
	Description   string
	PhotoURL      string
}

// Create validates and stores a new listing for the given owner. The
// description is sanitized and the photo URL must pass the URL guard.
func (s *Service) Create(ctx context.Context, ownerID string, input Input) (*model.Listing, error) {
	l, err := s.buildListing(ownerID, input)
	if err != nil {
		return nil, err
	}

	l.ID = uuid.New().String()
	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now

	if err := s.listings.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	slog.Info("listing created",
		slog.String("listing_id", l.ID),
		slog.String("owner_id", ownerID),
	)
	return l, nil
}

// Update overwrites the owner-editable fields of a listing. Only the owner
// may update; verified/featured flags and aggregates are untouched.
func (s *Service) Update(ctx context.Context, ownerID, listingID string, input Input) (*model.Listing, error) {
	existing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}
	if existing == nil {
		return nil, model.NewListingNotFoundError(listingID)
	}
	if existing.OwnerID != ownerID {
		return nil, model.NewForbiddenError()
	}

	updated, err := s.buildListing(ownerID, input)
	if err != nil {
		return nil, err
	}

	updated.ID = existing.ID
	updated.Verified = existing.Verified
	updated.Featured = existing.Featured
	updated.AverageRating = existing.AverageRating
	updated.ReviewCount = existing.ReviewCount
	updated.Views = existing.Views
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()

	if err := s.listings.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}
	return updated, nil
}

// Delete removes a listing. Owners may delete their own listings; admins may
// delete any.
func (s *Service) Delete(ctx context.Context, userID string, role model.Role, listingID string) error {
	existing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return fmt.Errorf("failed to find listing: %w", err)
	}
	if existing == nil {
		return model.NewListingNotFoundError(listingID)
	}
	if role != model.RoleAdmin && existing.OwnerID != userID {
		return model.NewForbiddenError()
	}

	if err := s.listings.Delete(ctx, listingID); err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}

	slog.Info("listing deleted",
		slog.String("listing_id", listingID),
		slog.String("deleted_by", userID),
	)
	return nil
}

// Get returns a listing detail and counts the view. A failed view increment
// is logged but does not fail the request.
func (s *Service) Get(ctx context.Context, listingID string) (*model.Listing, error) {
	l, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}
	if l == nil {
		return nil, model.NewListingNotFoundError(listingID)
	}

	if err := s.listings.IncrementViews(ctx, listingID); err != nil {
		slog.Error("failed to increment views",
			slog.String("listing_id", listingID),
			slog.String("error", err.Error()),
		)
	} else {
		l.Views++
	}
	return l, nil
}

// ListByOwner returns an owner's listings, newest first.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	listings, err := s.listings.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner listings: %w", err)
	}
	return listings, nil
}

// ListFeatured returns up to limit featured listings for the landing page.
func (s *Service) ListFeatured(ctx context.Context, limit int) ([]model.Listing, error) {
	listings, err := s.listings.ListFeatured(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list featured listings: %w", err)
	}
	return listings, nil
}

// Search fetches a candidate superset from the database and runs the query
// engine over it. The SQL filter only narrows on the cheap indexed columns;
// the engine re-applies the full spec so the two layers cannot disagree.
func (s *Service) Search(ctx context.Context, spec query.FilterSpec, page, pageSize int) (query.Page, error) {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	candidates, err := s.listings.ListFiltered(ctx, sqlFilter(spec))
	if err != nil {
		return query.Page{}, fmt.Errorf("failed to query listings: %w", err)
	}
	return query.Search(candidates, spec, page, pageSize), nil
}

// GetMany returns the listings with the given IDs, in input order. Unknown
// IDs are skipped so a shared comparison link survives listing removal.
func (s *Service) GetMany(ctx context.Context, ids []string) ([]model.Listing, error) {
	out := make([]model.Listing, 0, len(ids))
	for _, id := range ids {
		l, err := s.listings.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to find listing: %w", err)
		}
		if l == nil {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

// buildListing validates the input and assembles a listing value without
// identity or timestamps.
func (s *Service) buildListing(ownerID string, input Input) (*model.Listing, error) {
	title := strings.TrimSpace(input.Title)
	city := strings.TrimSpace(input.City)

	if title == "" {
		return nil, model.NewInvalidListingError("title is required")
	}
	if city == "" {
		return nil, model.NewInvalidListingError("city is required")
	}
	if input.Rent <= 0 {
		return nil, model.NewInvalidListingError("rent must be a positive amount")
	}
	if input.Capacity < 1 {
		return nil, model.NewInvalidListingError("capacity must be at least 1")
	}

	t := model.ListingType(input.Type)
	if t != model.ListingTypeMess && t != model.ListingTypeHostel {
		return nil, model.NewInvalidListingError(fmt.Sprintf("unknown type: %s", input.Type))
	}

	gender := model.Gender(input.GenderAllowed)
	if gender != model.GenderMale && gender != model.GenderFemale && gender != model.GenderBoth {
		return nil, model.NewInvalidListingError(fmt.Sprintf("unknown gender restriction: %s", input.GenderAllowed))
	}

	photoURL := strings.TrimSpace(input.PhotoURL)
	if photoURL != "" {
		if err := s.urlGuard.ValidateURL(photoURL); err != nil {
			slog.Warn("photo URL rejected",
				slog.String("owner_id", ownerID),
				slog.String("error", err.Error()),
			)
			return nil, model.NewInvalidPhotoURLError()
		}
	}

	return &model.Listing{
		OwnerID:       ownerID,
		Title:         title,
		Address:       strings.TrimSpace(input.Address),
		City:          city,
		Type:          t,
		GenderAllowed: gender,
		Rent:          input.Rent,
		Rooms:         input.Rooms,
		Capacity:      input.Capacity,
		Furnishing:    strings.TrimSpace(input.Furnishing),
		Description:   s.sanitizer.Sanitize(input.Description),
		PhotoURL:      photoURL,
	}, nil
}

// sqlFilter maps the spec onto the indexed columns the repository can
// narrow on. Malformed rent bounds are treated as absent, matching the
// engine's own parsing.
func sqlFilter(spec query.FilterSpec) repository.ListingFilter {
	f := repository.ListingFilter{
		City:     spec.City,
		Type:     spec.Type,
		Verified: spec.Verified,
	}
	if v, err := strconv.Atoi(strings.TrimSpace(spec.MinRent)); err == nil && v >= 0 {
		f.MinRent = v
		f.HasMin = true
	}
	if v, err := strconv.Atoi(strings.TrimSpace(spec.MaxRent)); err == nil && v >= 0 {
		f.MaxRent = v
		f.HasMax = true
	}
	return f
}
