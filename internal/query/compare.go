package query

import (
	"strconv"

	"github.com/nabil/meshbari/internal/model"
)

// ComparisonLimit is the maximum number of listings in a comparison set.
const ComparisonLimit = 3

// ComparisonSet is a bounded set of listing IDs selected for side-by-side
// comparison. Insertion order is preserved for display; membership is
// unique.
type ComparisonSet struct {
	ids []string
}

// NewComparisonSet returns a set seeded with ids. Duplicates are collapsed
// and ids beyond the limit are dropped.
func NewComparisonSet(ids ...string) *ComparisonSet {
	s := &ComparisonSet{}
	for _, id := range ids {
		if len(s.ids) == ComparisonLimit {
			break
		}
		if !s.Contains(id) {
			s.ids = append(s.ids, id)
		}
	}
	return s
}

// Toggle removes id if present, otherwise appends it. Adding beyond the
// limit leaves the set unchanged and returns a comparison-limit error; the
// caller surfaces it as a notice, not a failure.
func (s *ComparisonSet) Toggle(id string) error {
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return nil
		}
	}
	if len(s.ids) >= ComparisonLimit {
		return model.NewComparisonLimitError(ComparisonLimit)
	}
	s.ids = append(s.ids, id)
	return nil
}

// Contains reports whether id is in the set.
func (s *ComparisonSet) Contains(id string) bool {
	for _, existing := range s.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// IDs returns the member ids in insertion order.
func (s *ComparisonSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of members.
func (s *ComparisonSet) Len() int {
	return len(s.ids)
}

// Clear empties the set.
func (s *ComparisonSet) Clear() {
	s.ids = nil
}

// ComparisonRow is one feature row of the side-by-side comparison table.
// IsDifferent marks rows whose values differ between the compared listings;
// it is informational only and never affects ordering or filtering.
type ComparisonRow struct {
	Key         string
	Label       string
	Values      []string
	IsDifferent bool
}

// comparisonFeature renders one feature of a listing as a display string.
type comparisonFeature struct {
	key    string
	label  string
	render func(l model.Listing) string
}

// comparisonFeatures is the fixed, ordered feature list of the comparison
// table.
var comparisonFeatures = []comparisonFeature{
	{"rent", "Rent", func(l model.Listing) string { return strconv.Itoa(l.Rent) }},
	{"city", "City", func(l model.Listing) string { return l.City }},
	{"type", "Type", func(l model.Listing) string { return string(l.Type) }},
	{"rooms", "Rooms", func(l model.Listing) string { return strconv.Itoa(l.Rooms) }},
	{"capacity", "Capacity", func(l model.Listing) string { return strconv.Itoa(l.Capacity) }},
	{"gender", "Gender", func(l model.Listing) string { return string(l.GenderAllowed) }},
	{"furnishing", "Furnishing", func(l model.Listing) string { return l.Furnishing }},
	{"verified", "Verified", func(l model.Listing) string { return yesNo(l.Verified) }},
	{"rating", "Rating", func(l model.Listing) string { return strconv.FormatFloat(l.AverageRating, 'f', 1, 64) }},
	{"reviewCount", "Reviews", func(l model.Listing) string { return strconv.Itoa(l.ReviewCount) }},
	{"views", "Views", func(l model.Listing) string { return strconv.Itoa(l.Views) }},
	{"featured", "Featured", func(l model.Listing) string { return yesNo(l.Featured) }},
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// BuildComparisonRows produces one row per feature for the given listings,
// in the fixed feature order. A row is marked different when the compared
// listings render more than one distinct value for it.
func BuildComparisonRows(listings []model.Listing) []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(comparisonFeatures))
	for _, f := range comparisonFeatures {
		values := make([]string, len(listings))
		distinct := make(map[string]struct{}, len(listings))
		for i, l := range listings {
			values[i] = f.render(l)
			distinct[values[i]] = struct{}{}
		}
		rows = append(rows, ComparisonRow{
			Key:         f.key,
			Label:       f.label,
			Values:      values,
			IsDifferent: len(distinct) > 1,
		})
	}
	return rows
}
