package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nabil/meshbari/internal/middleware"
	"github.com/nabil/meshbari/internal/model"
	"github.com/nabil/meshbari/internal/review"
)

// ReviewServiceInterface is the service surface the review handler needs.
type ReviewServiceInterface interface {
	Create(ctx context.Context, studentID string, input review.Input) (*model.Review, error)
	ListForListing(ctx context.Context, listingID string) ([]*model.Review, error)
}

// ReviewHandler serves listing reviews.
type ReviewHandler struct {
	service ReviewServiceInterface
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(service ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{service: service}
}

type createReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type reviewResponse struct {
	ID        string `json:"id"`
	ListingID string `json:"listingId"`
	StudentID string `json:"studentId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"createdAt"`
}

func toReviewResponse(r *model.Review) reviewResponse {
	return reviewResponse{
		ID:        r.ID,
		ListingID: r.ListingID,
		StudentID: r.StudentID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}

// Create posts a review of a listing by the authenticated student.
// POST /api/listings/{id}/reviews
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	auth, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	created, err := h.service.Create(r.Context(), auth.UserID, review.Input{
		ListingID: chi.URLParam(r, "id"),
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReviewResponse(created))
}

// List returns a listing's reviews, newest first.
// GET /api/listings/{id}/reviews
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.ListForListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]reviewResponse, len(reviews))
	for i, rv := range reviews {
		out[i] = toReviewResponse(rv)
	}
	writeJSON(w, http.StatusOK, out)
}
