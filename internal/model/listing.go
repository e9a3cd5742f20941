// Package model defines the domain models.
package model

import "time"

// Listing represents a rentable housing unit (mess or hostel) surfaced to
// students. Numeric aggregate fields (AverageRating, ReviewCount, Views) are
// maintained by the service layer; the query engine only reads them.
type Listing struct {
	ID            string
	OwnerID       string
	Title         string
	Address       string
	City          string
	Type          ListingType
	GenderAllowed Gender
	Rent          int
	Rooms         int
	Capacity      int
	Furnishing    string
	Description   string // sanitized HTML
	PhotoURL      string
	Verified      bool
	Featured      bool
	AverageRating float64
	ReviewCount   int
	Views         int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ListingType is the kind of housing unit.
type ListingType string

const (
	// ListingTypeMess is a shared mess unit.
	ListingTypeMess ListingType = "mess"
	// ListingTypeHostel is a hostel unit.
	ListingTypeHostel ListingType = "hostel"
)

// Gender restricts who a listing accepts.
type Gender string

const (
	// GenderMale accepts male tenants only.
	GenderMale Gender = "male"
	// GenderFemale accepts female tenants only.
	GenderFemale Gender = "female"
	// GenderBoth accepts any tenant. A "both" listing passes every gender
	// filter.
	GenderBoth Gender = "both"
)

// SortKey selects the ordering of a listing result set.
type SortKey string

const (
	// SortNewest orders by creation time, newest first. Default, and the
	// fallback for unrecognized keys.
	SortNewest SortKey = "newest"
	// SortPriceLow orders by rent ascending.
	SortPriceLow SortKey = "price-low"
	// SortPriceHigh orders by rent descending.
	SortPriceHigh SortKey = "price-high"
	// SortRating orders by average rating descending.
	SortRating SortKey = "rating"
	// SortPopular orders by view count descending.
	SortPopular SortKey = "popular"
)
