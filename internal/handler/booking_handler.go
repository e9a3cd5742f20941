package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nabil/meshbari/internal/booking"
	"github.com/nabil/meshbari/internal/metrics"
	"github.com/nabil/meshbari/internal/middleware"
	"github.com/nabil/meshbari/internal/model"
)

// BookingServiceInterface is the service surface the booking handler needs.
type BookingServiceInterface interface {
	Create(ctx context.Context, studentID string, input booking.Input) (*model.Booking, error)
	Approve(ctx context.Context, ownerID, bookingID string) (*model.Booking, error)
	Reject(ctx context.Context, ownerID, bookingID string) (*model.Booking, error)
	Cancel(ctx context.Context, studentID, bookingID string) (*model.Booking, error)
	ListForStudent(ctx context.Context, studentID string) ([]*model.Booking, error)
	ListForOwner(ctx context.Context, ownerID string) ([]*model.Booking, error)
}

// BookingHandler serves the booking request workflow.
type BookingHandler struct {
	service   BookingServiceInterface
	collector metrics.MetricsCollector
}

// NewBookingHandler creates a BookingHandler. collector may be nil.
func NewBookingHandler(service BookingServiceInterface, collector metrics.MetricsCollector) *BookingHandler {
	return &BookingHandler{service: service, collector: collector}
}

type createBookingRequest struct {
	ListingID string `json:"listingId"`
	Message   string `json:"message"`
	MoveInAt  string `json:"moveInAt"` // RFC 3339, optional
}

type bookingResponse struct {
	ID        string `json:"id"`
	ListingID string `json:"listingId"`
	StudentID string `json:"studentId"`
	OwnerID   string `json:"ownerId"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	MoveInAt  string `json:"moveInAt,omitempty"`
	CreatedAt string `json:"createdAt"`
}

func toBookingResponse(b *model.Booking) bookingResponse {
	resp := bookingResponse{
		ID:        b.ID,
		ListingID: b.ListingID,
		StudentID: b.StudentID,
		OwnerID:   b.OwnerID,
		Status:    string(b.Status),
		Message:   b.Message,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
	if b.MoveInAt != nil {
		resp.MoveInAt = b.MoveInAt.Format(time.RFC3339)
	}
	return resp
}

func toBookingResponses(bookings []*model.Booking) []bookingResponse {
	out := make([]bookingResponse, len(bookings))
	for i, b := range bookings {
		out[i] = toBookingResponse(b)
	}
	return out
}

// Create opens a booking request for the authenticated student.
// POST /api/bookings
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	auth, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	input := booking.Input{ListingID: req.ListingID, Message: req.Message}
	if req.MoveInAt != "" {
		t, err := time.Parse(time.RFC3339, req.MoveInAt)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("moveInAt must be an RFC 3339 timestamp"))
			return
		}
		input.MoveInAt = &t
	}

	b, err := h.service.Create(r.Context(), auth.UserID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if h.collector != nil {
		h.collector.RecordBookingRequested()
	}
	writeJSON(w, http.StatusCreated, toBookingResponse(b))
}

// Approve accepts a pending request on the owner's listing.
// POST /api/bookings/{id}/approve
func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Approve)
}

// Reject declines a pending request on the owner's listing.
// POST /api/bookings/{id}/reject
func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Reject)
}

// Cancel withdraws the student's own pending request.
// POST /api/bookings/{id}/cancel
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Cancel)
}

func (h *BookingHandler) decide(w http.ResponseWriter, r *http.Request, op func(context.Context, string, string) (*model.Booking, error)) {
	auth, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	b, err := op(r.Context(), auth.UserID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if h.collector != nil {
		h.collector.RecordBookingDecision(string(b.Status))
	}
	writeJSON(w, http.StatusOK, toBookingResponse(b))
}

// ListMine returns the authenticated student's booking requests.
// GET /api/bookings
func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListForStudent)
}

// ListReceived returns the requests on the authenticated owner's listings.
// GET /api/owner/bookings
func (h *BookingHandler) ListReceived(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListForOwner)
}

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request, op func(context.Context, string) ([]*model.Booking, error)) {
	auth, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	bookings, err := op(r.Context(), auth.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponses(bookings))
}
