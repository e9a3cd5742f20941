package query

import (
	"errors"
	"testing"

	"github.com/nabil/meshbari/internal/model"
)

func TestComparisonSet_ToggleAddsAndRemoves(t *testing.T) {
	s := NewComparisonSet()

	if err := s.Toggle("l1"); err != nil {
		t.Fatalf("Toggle(l1) returned error: %v", err)
	}
	if err := s.Toggle("l2"); err != nil {
		t.Fatalf("Toggle(l2) returned error: %v", err)
	}
	if !s.Contains("l1") || !s.Contains("l2") {
		t.Fatalf("set = %v, want [l1 l2]", s.IDs())
	}

	// Toggling a member removes it.
	if err := s.Toggle("l1"); err != nil {
		t.Fatalf("Toggle(l1) removal returned error: %v", err)
	}
	if s.Contains("l1") || s.Len() != 1 {
		t.Fatalf("set = %v, want [l2]", s.IDs())
	}
}

func TestComparisonSet_RejectsFourthMember(t *testing.T) {
	s := NewComparisonSet("l1", "l2", "l3")

	err := s.Toggle("l4")
	if err == nil {
		t.Fatal("expected comparison limit error")
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeComparisonLimit {
		t.Fatalf("err = %v, want COMPARISON_LIMIT", err)
	}

	// The set is unchanged: no eviction, no admission.
	if s.Len() != 3 || s.Contains("l4") {
		t.Fatalf("set = %v, want [l1 l2 l3]", s.IDs())
	}

	// A member can still be removed after the rejection.
	if err := s.Toggle("l2"); err != nil {
		t.Fatalf("Toggle(l2) returned error: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
}

// The bound holds after every call of an arbitrary toggle sequence, and
// toggling a present id always shrinks the set by exactly one.
func TestComparisonSet_BoundInvariant(t *testing.T) {
	s := NewComparisonSet()
	sequence := []string{"a", "b", "a", "c", "d", "e", "d", "b", "f", "c", "a"}

	for _, id := range sequence {
		before := s.Len()
		present := s.Contains(id)
		err := s.Toggle(id)

		if s.Len() > ComparisonLimit {
			t.Fatalf("set exceeded limit after Toggle(%q): %v", id, s.IDs())
		}
		if present {
			if err != nil {
				t.Fatalf("Toggle(%q) removal returned error: %v", id, err)
			}
			if s.Len() != before-1 {
				t.Fatalf("removal of %q changed size %d -> %d, want %d", id, before, s.Len(), before-1)
			}
		}
	}
}

func TestNewComparisonSet_CollapsesDuplicatesAndCaps(t *testing.T) {
	s := NewComparisonSet("l1", "l1", "l2", "l3", "l4")
	got := s.IDs()
	if len(got) != 3 || got[0] != "l1" || got[1] != "l2" || got[2] != "l3" {
		t.Fatalf("ids = %v, want [l1 l2 l3]", got)
	}
}

func TestBuildComparisonRows_MarksDifferingRows(t *testing.T) {
	listings := []model.Listing{
		{ID: "l1", City: "Dhaka", Rent: 5000, Type: model.ListingTypeMess},
		{ID: "l2", City: "Dhaka", Rent: 9000, Type: model.ListingTypeMess},
	}

	rows := BuildComparisonRows(listings)

	byKey := make(map[string]ComparisonRow, len(rows))
	for _, row := range rows {
		byKey[row.Key] = row
	}

	if !byKey["rent"].IsDifferent {
		t.Error("rent row should be marked different")
	}
	if byKey["city"].IsDifferent {
		t.Error("city row should not be marked different")
	}
	if byKey["rent"].Values[0] != "5000" || byKey["rent"].Values[1] != "9000" {
		t.Errorf("rent values = %v, want [5000 9000]", byKey["rent"].Values)
	}
}

// Rows come out in the fixed feature order regardless of input.
func TestBuildComparisonRows_FixedOrder(t *testing.T) {
	rows := BuildComparisonRows([]model.Listing{{ID: "l1"}})

	want := []string{
		"rent", "city", "type", "rooms", "capacity", "gender",
		"furnishing", "verified", "rating", "reviewCount", "views", "featured",
	}
	if len(rows) != len(want) {
		t.Fatalf("row count = %d, want %d", len(rows), len(want))
	}
	for i, key := range want {
		if rows[i].Key != key {
			t.Errorf("rows[%d].Key = %q, want %q", i, rows[i].Key, key)
		}
	}
}
