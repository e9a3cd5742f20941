package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nabil/meshbari/internal/listing"
	"github.com/nabil/meshbari/internal/metrics"
	"github.com/nabil/meshbari/internal/middleware"
	"github.com/nabil/meshbari/internal/model"
	"github.com/nabil/meshbari/internal/query"
)

// ListingServiceInterface is the service surface the listing handler needs.
type ListingServiceInterface interface {
	Create(ctx context.Context, ownerID string, input listing.Input) (*model.Listing, error)
	Update(ctx context.Context, ownerID, listingID string, input listing.Input) (*model.Listing, error)
	Delete(ctx context.Context, userID string, role model.Role, listingID string) error
	Get(ctx context.Context, listingID string) (*model.Listing, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Listing, error)
	ListFeatured(ctx context.Context, limit int) ([]model.Listing, error)
	GetMany(ctx context.Context, ids []string) ([]model.Listing, error)
}

// SearcherInterface runs guarded searches.
type SearcherInterface interface {
	Search(ctx context.Context, spec query.FilterSpec, page, pageSize int) (listing.Result, error)
}

// ListingHandler serves listing search, detail, comparison and owner CRUD.
type ListingHandler struct {
	service   ListingServiceInterface
	searcher  SearcherInterface
	collector metrics.MetricsCollector
	pageSize  int
}

// NewListingHandler creates a ListingHandler. collector may be nil; a
// pageSize below 1 falls back to listing.DefaultPageSize.
func NewListingHandler(service ListingServiceInterface, searcher SearcherInterface, collector metrics.MetricsCollector, pageSize int) *ListingHandler {
	if pageSize < 1 {
		pageSize = listing.DefaultPageSize
	}
	return &ListingHandler{service: service, searcher: searcher, collector: collector, pageSize: pageSize}
}

type listingRequest struct {
	Title         string `json:"title"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Type          string `json:"type"`
	GenderAllowed string `json:"genderAllowed"`
	Rent          int    `json:"rent"`
	Rooms         int    `json:"rooms"`
	Capacity      int    `json:"capacity"`
	Furnishing    string `json:"furnishing"`
	Description   string `json:"description"`
	PhotoURL      string `json:"photoUrl"`
}

func (req listingRequest) toInput() listing.Input {
	return listing.Input{
		Title:         req.Title,
		Address:       req.Address,
		City:          req.City,
		Type:          req.Type,
		GenderAllowed: req.GenderAllowed,
		Rent:          req.Rent,
		Rooms:         req.Rooms,
		Capacity:      req.Capacity,
		Furnishing:    req.Furnishing,
		Description:   req.Description,
		PhotoURL:      req.PhotoURL,
	}
}

type listingResponse struct {
	ID            string  `json:"id"`
	OwnerID       string  `json:"ownerId"`
	Title         string  `json:"title"`
	Address       string  `json:"address"`
	City          string  `json:"city"`
	Type          string  `json:"type"`
	GenderAllowed string  `json:"genderAllowed"`
	Rent          int     `json:"rent"`
	Rooms         int     `json:"rooms"`
	Capacity      int     `json:"capacity"`
	Furnishing    string  `json:"furnishing"`
	Description   string  `json:"description"`
	PhotoURL      string  `json:"photoUrl"`
	Verified      bool    `json:"verified"`
	Featured      bool    `json:"featured"`
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
	Views         int     `json:"views"`
	CreatedAt     string  `json:"createdAt"`
}

func toListingResponse(l model.Listing) listingResponse {
	return listingResponse{
		ID:            l.ID,
		OwnerID:       l.OwnerID,
		Title:         l.Title,
		Address:       l.Address,
		City:          l.City,
		Type:          string(l.Type),
		GenderAllowed: string(l.GenderAllowed),
		Rent:          l.Rent,
		Rooms:         l.Rooms,
		Capacity:      l.Capacity,
		Furnishing:    l.Furnishing,
		Description:   l.Description,
		PhotoURL:      l.PhotoURL,
		Verified:      l.Verified,
		Featured:      l.Featured,
		AverageRating: l.AverageRating,
		ReviewCount:   l.ReviewCount,
		Views:         l.Views,
		CreatedAt:     l.CreatedAt.Format(time.RFC3339),
	}
}

func toListingResponses(listings []model.Listing) []listingResponse {
	out := make([]listingResponse, len(listings))
	for i, l := range listings {
		out[i] = toListingResponse(l)
	}
	return out
}

type searchResponse struct {
	Items        []listingResponse `json:"items"`
	TotalMatched int               `json:"totalMatched"`
	TotalPages   int               `json:"totalPages"`
	Page         int               `json:"page"`

	// Superseded marks a response overtaken by a newer search; the
	// caller must discard it.
	Superseded bool `json:"superseded"`
}

// Search runs a filtered, sorted, paginated listing search.
// GET /api/listings
func (h *ListingHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	spec := query.FilterSpec{
		MinRent:  q.Get("minRent"),
		MaxRent:  q.Get("maxRent"),
		City:     q.Get("city"),
		Gender:   q.Get("gender"),
		Type:     q.Get("type"),
		Verified: q.Get("verified") == "true",
		Query:    q.Get("q"),
		Sort:     model.SortKey(q.Get("sort")),
	}

	page := 1
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		page = v
	}

	start := time.Now()
	result, err := h.searcher.Search(r.Context(), spec, page, h.pageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if h.collector != nil {
		h.collector.RecordSearchLatency(time.Since(start))
		if result.Superseded {
			h.collector.RecordSearchSuperseded()
		} else {
			h.collector.RecordSearch(result.Page.TotalMatched)
		}
	}

	if result.Superseded {
		writeJSON(w, http.StatusOK, searchResponse{Items: []listingResponse{}, Superseded: true})
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Items:        toListingResponses(result.Page.Items),
		TotalMatched: result.Page.TotalMatched,
		TotalPages:   result.Page.TotalPages,
		Page:         result.Page.Page,
	})
}

// Get returns a listing detail and counts the view.
// GET /api/listings/{id}
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponse(*l))
}

// Featured returns the landing-page feature strip.
// GET /api/listings/featured
func (h *ListingHandler) Featured(w http.ResponseWriter, r *http.Request) {
	listings, err := h.service.ListFeatured(r.Context(), 6)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponses(listings))
}

type comparisonRowResponse struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	Values      []string `json:"values"`
	IsDifferent bool     `json:"isDifferent"`
}

type compareResponse struct {
	Listings []listingResponse       `json:"listings"`
	Rows     []comparisonRowResponse `json:"rows"`
}

// Compare rebuilds a comparison table from a shared ids link.
// GET /api/compare?ids=a,b,c
//
// The set semantics are forgiving: duplicates collapse, anything past the
// limit is dropped, and removed listings are skipped, so an old link still
// renders whatever is left.
func (h *ListingHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	set := query.NewComparisonSet(ids...)
	listings, err := h.service.GetMany(r.Context(), set.IDs())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	rows := query.BuildComparisonRows(listings)
	rowResponses := make([]comparisonRowResponse, len(rows))
	for i, row := range rows {
		rowResponses[i] = comparisonRowResponse{
			Key:         row.Key,
			Label:       row.Label,
			Values:      row.Values,
			IsDifferent: row.IsDifferent,
		}
	}

	writeJSON(w, http.StatusOK, compareResponse{
		Listings: toListingResponses(listings),
		Rows:     rowResponses,
	})
}

// Create stores a new listing for the authenticated owner.
// POST /api/owner/listings
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	auth, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	l, err := h.service.Create(r.Context(), auth.UserID, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toListingResponse(*l))
}

// Update overwrites an owner's listing.
// PUT /api/owner/listings/{id}
func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	auth, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	l, err := h.service.Update(r.Context(), auth.UserID, chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponse(*l))
}

// Delete removes a listing (owner's own, or any for admins).
// DELETE /api/owner/listings/{id}
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	auth, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.Delete(r.Context(), auth.UserID, auth.Role, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMine returns the authenticated owner's listings.
// GET /api/owner/listings
func (h *ListingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	auth, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	listings, err := h.service.ListByOwner(r.Context(), auth.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponses(listings))
}
