package query

import (
	"testing"
	"time"

	"github.com/nabil/meshbari/internal/model"
)

func sampleListings() []model.Listing {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return []model.Listing{
		{
			ID: "l1", Title: "Green Mess", Address: "12 Mirpur Road", City: "Dhaka",
			Type: model.ListingTypeMess, GenderAllowed: model.GenderMale,
			Rent: 5000, Views: 40, AverageRating: 4.0, Verified: true,
			CreatedAt: base,
		},
		{
			ID: "l2", Title: "Lake View Hostel", Address: "3 Dhanmondi", City: "Dhaka",
			Type: model.ListingTypeHostel, GenderAllowed: model.GenderBoth,
			Rent: 9000, Views: 120, AverageRating: 4.5, Verified: false,
			CreatedAt: base.Add(24 * time.Hour),
		},
		{
			ID: "l3", Title: "Shapla Hostel", Address: "7 Zindabazar", City: "Sylhet",
			Type: model.ListingTypeHostel, GenderAllowed: model.GenderFemale,
			Rent: 7000, Views: 80, AverageRating: 3.5, Verified: true,
			CreatedAt: base.Add(48 * time.Hour),
		},
	}
}

func ids(listings []model.Listing) []string {
	out := make([]string, len(listings))
	for i, l := range listings {
		out[i] = l.ID
	}
	return out
}

func wantIDs(t *testing.T, got []model.Listing, want ...string) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("ids = %v, want %v", gotIDs, want)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("ids = %v, want %v", gotIDs, want)
		}
	}
}

func TestFilter_NoConstraints_ReturnsAll(t *testing.T) {
	got := Filter(sampleListings(), FilterSpec{})
	wantIDs(t, got, "l1", "l2", "l3")
}

func TestFilter_RentBounds(t *testing.T) {
	listings := sampleListings()

	got := Filter(listings, FilterSpec{MinRent: "6000"})
	wantIDs(t, got, "l2", "l3")

	got = Filter(listings, FilterSpec{MaxRent: "7000"})
	wantIDs(t, got, "l1", "l3")

	// Bounds are inclusive.
	got = Filter(listings, FilterSpec{MinRent: "5000", MaxRent: "5000"})
	wantIDs(t, got, "l1")
}

func TestFilter_MalformedRentBound_TreatedAsAbsent(t *testing.T) {
	got := Filter(sampleListings(), FilterSpec{MinRent: "cheap", MaxRent: "  "})
	wantIDs(t, got, "l1", "l2", "l3")
}

// A listing open to both genders passes every gender filter.
func TestFilter_GenderBothAlwaysPasses(t *testing.T) {
	listings := sampleListings()

	got := Filter(listings, FilterSpec{Gender: "male"})
	wantIDs(t, got, "l1", "l2")

	got = Filter(listings, FilterSpec{Gender: "female"})
	wantIDs(t, got, "l2", "l3")
}

func TestFilter_CityTypeVerified(t *testing.T) {
	listings := sampleListings()

	got := Filter(listings, FilterSpec{City: "Sylhet"})
	wantIDs(t, got, "l3")

	got = Filter(listings, FilterSpec{Type: "hostel"})
	wantIDs(t, got, "l2", "l3")

	got = Filter(listings, FilterSpec{Verified: true})
	wantIDs(t, got, "l1", "l3")
}

func TestFilter_FreeText_MatchesAnyOfTitleAddressCity(t *testing.T) {
	listings := sampleListings()

	// Case-insensitive title match.
	got := Filter(listings, FilterSpec{Query: "lake view"})
	wantIDs(t, got, "l2")

	// Address match.
	got = Filter(listings, FilterSpec{Query: "zindabazar"})
	wantIDs(t, got, "l3")

	// City match; surrounding whitespace is trimmed.
	got = Filter(listings, FilterSpec{Query: "  DHAKA "})
	wantIDs(t, got, "l1", "l2")

	// Whitespace-only query is no constraint.
	got = Filter(listings, FilterSpec{Query: "   "})
	wantIDs(t, got, "l1", "l2", "l3")
}

// Adding a constraint never grows the result set.
func TestFilter_Monotonicity(t *testing.T) {
	listings := sampleListings()
	specs := []FilterSpec{
		{},
		{City: "Dhaka"},
		{City: "Dhaka", Gender: "male"},
		{City: "Dhaka", Gender: "male", MinRent: "6000"},
		{City: "Dhaka", Gender: "male", MinRent: "6000", Verified: true},
	}

	prev := len(listings) + 1
	for _, spec := range specs {
		got := Filter(listings, spec)
		if len(got) > prev {
			t.Fatalf("filter with spec %+v grew result to %d (previous %d)", spec, len(got), prev)
		}
		byID := make(map[string]bool, len(listings))
		for _, l := range listings {
			byID[l.ID] = true
		}
		for _, l := range got {
			if !byID[l.ID] {
				t.Fatalf("filter produced listing %q not in the input", l.ID)
			}
		}
		prev = len(got)
	}
}

func TestSort_Orders(t *testing.T) {
	listings := sampleListings()

	wantIDs(t, Sort(listings, model.SortPriceLow), "l1", "l3", "l2")
	wantIDs(t, Sort(listings, model.SortPriceHigh), "l2", "l3", "l1")
	wantIDs(t, Sort(listings, model.SortRating), "l2", "l1", "l3")
	wantIDs(t, Sort(listings, model.SortPopular), "l2", "l3", "l1")
	wantIDs(t, Sort(listings, model.SortNewest), "l3", "l2", "l1")

	// Unrecognized keys fall back to newest.
	wantIDs(t, Sort(listings, model.SortKey("price-lowest")), "l3", "l2", "l1")
}

// Listings with an equal sort key keep their input order, for every mode.
func TestSort_Stability(t *testing.T) {
	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tied := []model.Listing{
		{ID: "a", Rent: 6000, Views: 10, AverageRating: 4.0, CreatedAt: created},
		{ID: "b", Rent: 6000, Views: 10, AverageRating: 4.0, CreatedAt: created},
		{ID: "c", Rent: 6000, Views: 10, AverageRating: 4.0, CreatedAt: created},
	}

	for _, key := range []model.SortKey{
		model.SortNewest, model.SortPriceLow, model.SortPriceHigh,
		model.SortRating, model.SortPopular,
	} {
		wantIDs(t, Sort(tied, key), "a", "b", "c")
	}
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	listings := sampleListings()
	Sort(listings, model.SortPriceHigh)
	wantIDs(t, listings, "l1", "l2", "l3")
}

func TestPaginate_EmptyResultHasOnePage(t *testing.T) {
	page := Paginate(nil, 1, 10)
	if page.TotalPages != 1 {
		t.Errorf("TotalPages = %d, want 1", page.TotalPages)
	}
	if len(page.Items) != 0 {
		t.Errorf("Items = %v, want empty", page.Items)
	}
	if page.TotalMatched != 0 {
		t.Errorf("TotalMatched = %d, want 0", page.TotalMatched)
	}
}

// Concatenating all pages reproduces the input with no gaps or duplicates.
func TestPaginate_Coverage(t *testing.T) {
	listings := make([]model.Listing, 7)
	for i := range listings {
		listings[i] = model.Listing{ID: string(rune('a' + i))}
	}

	first := Paginate(listings, 1, 3)
	if first.TotalPages != 3 {
		t.Fatalf("TotalPages = %d, want 3", first.TotalPages)
	}

	var all []model.Listing
	for p := 1; p <= first.TotalPages; p++ {
		all = append(all, Paginate(listings, p, 3).Items...)
	}
	wantIDs(t, all, "a", "b", "c", "d", "e", "f", "g")
}

func TestPaginate_OutOfRange(t *testing.T) {
	listings := sampleListings()

	// Below 1 is treated as page 1.
	page := Paginate(listings, 0, 2)
	wantIDs(t, page.Items, "l1", "l2")

	// Beyond the last page yields an empty slice, not an error.
	page = Paginate(listings, 99, 2)
	if len(page.Items) != 0 {
		t.Errorf("Items = %v, want empty", page.Items)
	}
	if page.TotalPages != 2 {
		t.Errorf("TotalPages = %d, want 2", page.TotalPages)
	}
}

// End-to-end example: Dhaka + male + price-low keeps the male and the "both"
// listing, ordered by rent ascending.
func TestSearch_EndToEnd(t *testing.T) {
	result := Search(sampleListings(), FilterSpec{
		City:   "Dhaka",
		Gender: "male",
		Sort:   model.SortPriceLow,
	}, 1, 10)

	wantIDs(t, result.Items, "l1", "l2")
	if result.TotalMatched != 2 {
		t.Errorf("TotalMatched = %d, want 2", result.TotalMatched)
	}
	if result.Items[0].Rent != 5000 || result.Items[1].Rent != 9000 {
		t.Errorf("rents = [%d %d], want [5000 9000]", result.Items[0].Rent, result.Items[1].Rent)
	}
}

func TestFilterSpec_IsZero(t *testing.T) {
	if !(FilterSpec{}).IsZero() {
		t.Error("empty spec should be zero")
	}
	if !(FilterSpec{Query: "  ", Sort: model.SortNewest}).IsZero() {
		t.Error("whitespace query with default sort should be zero")
	}
	if (FilterSpec{City: "Dhaka"}).IsZero() {
		t.Error("spec with a city constraint should not be zero")
	}
}
