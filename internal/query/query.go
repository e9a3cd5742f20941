// Package query implements the listing query engine: deterministic
// filtering, sorting and pagination over an in-memory listing collection,
// plus the bounded comparison set. All operations are pure and never mutate
// their input slice.
package query

import (
	"sort"
	"strconv"
	"strings"

	"github.com/nabil/meshbari/internal/model"
)

// FilterSpec is the set of user-chosen constraints and sort order. It is
// built fresh from request parameters on every search; an empty field means
// no constraint. MinRent and MaxRent carry the raw input string so that
// malformed numbers can be skipped instead of rejected.
type FilterSpec struct {
	MinRent  string
	MaxRent  string
	City     string
	Gender   string
	Type     string
	Verified bool
	Query    string
	Sort     model.SortKey
}

// IsZero reports whether the spec applies no constraints and the default
// sort order.
func (s FilterSpec) IsZero() bool {
	return s.MinRent == "" && s.MaxRent == "" && s.City == "" &&
		s.Gender == "" && s.Type == "" && !s.Verified &&
		strings.TrimSpace(s.Query) == "" &&
		(s.Sort == "" || s.Sort == model.SortNewest)
}

// Filter returns the listings that satisfy every constraint of spec.
// Predicates are AND-combined. A malformed rent bound is treated as absent.
// A listing with GenderAllowed "both" passes any gender constraint. The
// free-text query matches case-insensitively against title, address and
// city; a listing passes if any of the three contains the query.
func Filter(listings []model.Listing, spec FilterSpec) []model.Listing {
	minRent, hasMin := parseRent(spec.MinRent)
	maxRent, hasMax := parseRent(spec.MaxRent)
	text := strings.ToLower(strings.TrimSpace(spec.Query))

	out := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if hasMin && l.Rent < minRent {
			continue
		}
		if hasMax && l.Rent > maxRent {
			continue
		}
		if spec.City != "" && l.City != spec.City {
			continue
		}
		if spec.Gender != "" && l.GenderAllowed != model.GenderBoth && string(l.GenderAllowed) != spec.Gender {
			continue
		}
		if spec.Type != "" && string(l.Type) != spec.Type {
			continue
		}
		if spec.Verified && !l.Verified {
			continue
		}
		if text != "" && !matchesText(l, text) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// parseRent parses a rent bound. The second return value is false when the
// input is empty or not a number, meaning the constraint is absent.
func parseRent(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// matchesText reports whether the lowercased query occurs in the listing's
// title, address or city.
func matchesText(l model.Listing, query string) bool {
	return strings.Contains(strings.ToLower(l.Title), query) ||
		strings.Contains(strings.ToLower(l.Address), query) ||
		strings.Contains(strings.ToLower(l.City), query)
}

// Sort returns a sorted copy of listings. The sort is stable: listings with
// an equal key keep their relative input order. Unrecognized keys fall back
// to newest-first.
func Sort(listings []model.Listing, key model.SortKey) []model.Listing {
	out := make([]model.Listing, len(listings))
	copy(out, listings)

	var less func(a, b model.Listing) bool
	switch key {
	case model.SortPriceLow:
		less = func(a, b model.Listing) bool { return a.Rent < b.Rent }
	case model.SortPriceHigh:
		less = func(a, b model.Listing) bool { return a.Rent > b.Rent }
	case model.SortRating:
		less = func(a, b model.Listing) bool { return a.AverageRating > b.AverageRating }
	case model.SortPopular:
		less = func(a, b model.Listing) bool { return a.Views > b.Views }
	default: // SortNewest and anything unrecognized
		less = func(a, b model.Listing) bool { return a.CreatedAt.After(b.CreatedAt) }
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Page is one page of a sorted result set.
type Page struct {
	Items        []model.Listing
	TotalMatched int
	TotalPages   int
	Page         int
}

// Paginate slices sorted into the requested page. TotalPages is at least 1
// even for an empty result set. A page below 1 is treated as page 1; a page
// beyond the last yields an empty Items slice.
func Paginate(sorted []model.Listing, page, pageSize int) Page {
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 1 {
		page = 1
	}

	totalPages := (len(sorted) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * pageSize
	if start > len(sorted) {
		start = len(sorted)
	}
	end := start + pageSize
	if end > len(sorted) {
		end = len(sorted)
	}

	return Page{
		Items:        sorted[start:end],
		TotalMatched: len(sorted),
		TotalPages:   totalPages,
		Page:         page,
	}
}

// Search applies Filter, Sort and Paginate in one step.
func Search(listings []model.Listing, spec FilterSpec, page, pageSize int) Page {
	filtered := Filter(listings, spec)
	sorted := Sort(filtered, spec.Sort)
	return Paginate(sorted, page, pageSize)
}
