package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nabil/meshbari/internal/middleware"
	"github.com/nabil/meshbari/internal/model"
)

// DashboardHandler serves the role dashboard pages. Each page aggregates
// the data its frontend view needs in one response; the gate in front of
// the route guarantees the role already matches.
type DashboardHandler struct {
	listings ListingServiceInterface
	bookings BookingServiceInterface
	admin    AdminServiceInterface
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(listings ListingServiceInterface, bookings BookingServiceInterface, admin AdminServiceInterface) *DashboardHandler {
	return &DashboardHandler{listings: listings, bookings: bookings, admin: admin}
}

type studentDashboardResponse struct {
	Dashboard string            `json:"dashboard"`
	Tab       string            `json:"tab,omitempty"`
	Bookings  []bookingResponse `json:"bookings"`
}

// Student serves the student dashboard and its tabs.
// GET /dashboard/student, GET /dashboard/student/{tab}
func (h *DashboardHandler) Student(w http.ResponseWriter, r *http.Request) {
	auth, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	bookings, err := h.bookings.ListForStudent(r.Context(), auth.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, studentDashboardResponse{
		Dashboard: "student",
		Tab:       chi.URLParam(r, "tab"),
		Bookings:  toBookingResponses(bookings),
	})
}

type ownerDashboardResponse struct {
	Dashboard string            `json:"dashboard"`
	Tab       string            `json:"tab,omitempty"`
	Listings  []listingResponse `json:"listings"`
	Requests  []bookingResponse `json:"requests"`
}

// Owner serves the owner dashboard and its tabs.
// GET /dashboard/owner, GET /dashboard/owner/{tab}
func (h *DashboardHandler) Owner(w http.ResponseWriter, r *http.Request) {
	auth, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	listings, err := h.listings.ListByOwner(r.Context(), auth.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	requests, err := h.bookings.ListForOwner(r.Context(), auth.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ownerDashboardResponse{
		Dashboard: "owner",
		Tab:       chi.URLParam(r, "tab"),
		Listings:  toListingResponses(listings),
		Requests:  toBookingResponses(requests),
	})
}

// OwnerCreateListing serves the listing creation page shell. The form
// posts to the owner listings API.
// GET /dashboard/owner/create-listing
func (h *DashboardHandler) OwnerCreateListing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"dashboard": "owner",
		"page":      "create-listing",
	})
}

type adminDashboardResponse struct {
	Dashboard    string                `json:"dashboard"`
	Tab          string                `json:"tab,omitempty"`
	OpenFlags    []flagResponse        `json:"openFlags"`
	Testimonials []testimonialResponse `json:"testimonials"`
}

// Admin serves the admin dashboard and its tabs (overview, users,
// listings, featured, testimonials, flags, logs).
// GET /dashboard/admin, GET /dashboard/admin/{tab}
func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	flags, err := h.admin.ListOpenFlags(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	testimonials, err := h.admin.ListTestimonials(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	flagResponses := make([]flagResponse, len(flags))
	for i, f := range flags {
		flagResponses[i] = toFlagResponse(f)
	}

	writeJSON(w, http.StatusOK, adminDashboardResponse{
		Dashboard:    "admin",
		Tab:          chi.URLParam(r, "tab"),
		OpenFlags:    flagResponses,
		Testimonials: toTestimonialResponses(testimonials),
	})
}

// OwnerEditListing serves the edit form page for one of the owner's
// listings. The form itself submits to the owner listings API, which
// enforces ownership.
// GET /dashboard/owner/edit-listing/{id}
func (h *DashboardHandler) OwnerEditListing(w http.ResponseWriter, r *http.Request) {
	l, err := h.listings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"dashboard": "owner",
		"page":      "edit-listing",
		"listing":   toListingResponse(*l),
	})
}

// Profile serves the profile page for any authenticated user.
// GET /profile, GET /profile/modern
func (h *DashboardHandler) Profile(w http.ResponseWriter, r *http.Request) {
	auth, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"page":   "profile",
		"userId": auth.UserID,
		"role":   string(auth.Role),
	})
}
