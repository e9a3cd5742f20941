package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nabil/meshbari/internal/model"
	"github.com/nabil/meshbari/internal/repository"
)

// --- mocks ---

type mockBookingRepo struct {
	findByIDFn      func(ctx context.Context, id string) (*model.Booking, error)
	findPendingFn   func(ctx context.Context, listingID, studentID string) (*model.Booking, error)
	createFn        func(ctx context.Context, booking *model.Booking) error
	listByStudentFn func(ctx context.Context, studentID string) ([]*model.Booking, error)
	listByOwnerFn   func(ctx context.Context, ownerID string) ([]*model.Booking, error)
	updateStatusFn  func(ctx context.Context, id string, status model.BookingStatus) error
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockBookingRepo) FindPendingByListingAndStudent(ctx context.Context, listingID, studentID string) (*model.Booking, error) {
	if m.findPendingFn != nil {
		return m.findPendingFn(ctx, listingID, studentID)
	}
	return nil, nil
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFn != nil {
		return m.createFn(ctx, booking)
	}
	return nil
}

func (m *mockBookingRepo) ListByStudent(ctx context.Context, studentID string) ([]*model.Booking, error) {
	if m.listByStudentFn != nil {
		return m.listByStudentFn(ctx, studentID)
	}
	return nil, nil
}

func (m *mockBookingRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Booking, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil
}

var _ repository.BookingRepository = (*mockBookingRepo)(nil)

type stubListingFinder struct {
	listing *model.Listing
}

func (s *stubListingFinder) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	return s.listing, nil
}

func (s *stubListingFinder) ListAll(ctx context.Context) ([]model.Listing, error) { return nil, nil }
func (s *stubListingFinder) ListFiltered(ctx context.Context, f repository.ListingFilter) ([]model.Listing, error) {
	return nil, nil
}
func (s *stubListingFinder) ListByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	return nil, nil
}
func (s *stubListingFinder) ListFeatured(ctx context.Context, limit int) ([]model.Listing, error) {
	return nil, nil
}
func (s *stubListingFinder) Create(ctx context.Context, listing *model.Listing) error { return nil }
func (s *stubListingFinder) Update(ctx context.Context, listing *model.Listing) error { return nil }
func (s *stubListingFinder) Delete(ctx context.Context, id string) error              { return nil }
func (s *stubListingFinder) IncrementViews(ctx context.Context, id string) error      { return nil }
func (s *stubListingFinder) SetVerified(ctx context.Context, id string, v bool) error { return nil }
func (s *stubListingFinder) SetFeatured(ctx context.Context, id string, f bool) error { return nil }

var _ repository.ListingRepository = (*stubListingFinder)(nil)

type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(rawHTML string) string { return rawHTML }

func newTestService(bookings *mockBookingRepo, listing *model.Listing) *Service {
	return NewService(bookings, &stubListingFinder{listing: listing}, passthroughSanitizer{})
}

func bookableListing() *model.Listing {
	return &model.Listing{ID: "l1", OwnerID: "owner-1", Title: "Sunny mess", City: "Dhaka"}
}

func pendingBooking() *model.Booking {
	return &model.Booking{
		ID:        "b1",
		ListingID: "l1",
		StudentID: "student-1",
		OwnerID:   "owner-1",
		Status:    model.BookingStatusPending,
	}
}

// --- Create ---

func TestCreate_Success(t *testing.T) {
	var created *model.Booking
	bookings := &mockBookingRepo{
		createFn: func(ctx context.Context, booking *model.Booking) error {
			created = booking
			return nil
		},
	}
	svc := newTestService(bookings, bookableListing())

	b, err := svc.Create(context.Background(), "student-1", Input{ListingID: "l1", Message: "hello"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created == nil {
		t.Fatal("booking was not persisted")
	}
	if b.Status != model.BookingStatusPending {
		t.Errorf("status = %q, want pending", b.Status)
	}
	if b.OwnerID != "owner-1" {
		t.Errorf("owner = %q, want owner-1 (denormalized from listing)", b.OwnerID)
	}
}

func TestCreate_ListingNotFound(t *testing.T) {
	svc := newTestService(&mockBookingRepo{}, nil)

	_, err := svc.Create(context.Background(), "student-1", Input{ListingID: "missing"})
	assertAPIErrorCode(t, err, model.ErrCodeListingNotFound)
}

func TestCreate_OwnBookingForbidden(t *testing.T) {
	svc := newTestService(&mockBookingRepo{}, bookableListing())

	_, err := svc.Create(context.Background(), "owner-1", Input{ListingID: "l1"})
	assertAPIErrorCode(t, err, model.ErrCodeForbidden)
}

func TestCreate_DuplicatePending(t *testing.T) {
	bookings := &mockBookingRepo{
		findPendingFn: func(ctx context.Context, listingID, studentID string) (*model.Booking, error) {
			return pendingBooking(), nil
		},
	}
	svc := newTestService(bookings, bookableListing())

	_, err := svc.Create(context.Background(), "student-1", Input{ListingID: "l1"})
	assertAPIErrorCode(t, err, model.ErrCodeDuplicateBooking)
}

// --- decisions ---

func TestApprove_Success(t *testing.T) {
	var gotStatus model.BookingStatus
	bookings := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			return pendingBooking(), nil
		},
		updateStatusFn: func(ctx context.Context, id string, status model.BookingStatus) error {
			gotStatus = status
			return nil
		},
	}
	svc := newTestService(bookings, bookableListing())

	b, err := svc.Approve(context.Background(), "owner-1", "b1")
	if err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}
	if gotStatus != model.BookingStatusApproved || b.Status != model.BookingStatusApproved {
		t.Errorf("status = %q/%q, want approved", gotStatus, b.Status)
	}
}

func TestApprove_ForeignOwnerForbidden(t *testing.T) {
	bookings := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			return pendingBooking(), nil
		},
	}
	svc := newTestService(bookings, bookableListing())

	_, err := svc.Approve(context.Background(), "owner-2", "b1")
	assertAPIErrorCode(t, err, model.ErrCodeForbidden)
}

func TestReject_Success(t *testing.T) {
	var gotStatus model.BookingStatus
	bookings := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			return pendingBooking(), nil
		},
		updateStatusFn: func(ctx context.Context, id string, status model.BookingStatus) error {
			gotStatus = status
			return nil
		},
	}
	svc := newTestService(bookings, bookableListing())

	if _, err := svc.Reject(context.Background(), "owner-1", "b1"); err != nil {
		t.Fatalf("Reject returned error: %v", err)
	}
	if gotStatus != model.BookingStatusRejected {
		t.Errorf("status = %q, want rejected", gotStatus)
	}
}

// A settled booking cannot change state again, whichever way it settled.
func TestDecide_SettledBookingRejected(t *testing.T) {
	for _, settled := range []model.BookingStatus{
		model.BookingStatusApproved,
		model.BookingStatusRejected,
		model.BookingStatusCancelled,
	} {
		t.Run(string(settled), func(t *testing.T) {
			b := pendingBooking()
			b.Status = settled
			bookings := &mockBookingRepo{
				findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
					return b, nil
				},
			}
			svc := newTestService(bookings, bookableListing())

			_, err := svc.Approve(context.Background(), "owner-1", "b1")
			assertAPIErrorCode(t, err, model.ErrCodeInvalidBookingState)
		})
	}
}

func TestCancel_StudentOnly(t *testing.T) {
	bookings := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			return pendingBooking(), nil
		},
	}
	svc := newTestService(bookings, bookableListing())

	if _, err := svc.Cancel(context.Background(), "student-1", "b1"); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}

	_, err := svc.Cancel(context.Background(), "student-2", "b1")
	assertAPIErrorCode(t, err, model.ErrCodeForbidden)
}

func TestCancel_NotFound(t *testing.T) {
	svc := newTestService(&mockBookingRepo{}, bookableListing())

	_, err := svc.Cancel(context.Background(), "student-1", "missing")
	assertAPIErrorCode(t, err, model.ErrCodeBookingNotFound)
}

func TestListForOwner_PassesThroughError(t *testing.T) {
	bookings := &mockBookingRepo{
		listByOwnerFn: func(ctx context.Context, ownerID string) ([]*model.Booking, error) {
			return nil, fmt.Errorf("connection refused")
		},
	}
	svc := newTestService(bookings, bookableListing())

	if _, err := svc.ListForOwner(context.Background(), "owner-1"); err == nil {
		t.Fatal("expected error from failing repository")
	}
}

func assertAPIErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is not an APIError: %v", err)
	}
	if apiErr.Code != code {
		t.Errorf("error code = %q, want %q", apiErr.Code, code)
	}
}
