package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nabil/meshbari/internal/middleware"
	"github.com/nabil/meshbari/internal/model"
)

// AdminServiceInterface is the service surface the admin handler needs.
type AdminServiceInterface interface {
	ListUsers(ctx context.Context, limit, offset int) ([]*model.User, error)
	SetUserBanned(ctx context.Context, adminID, userID string, banned bool) error
	SetListingVerified(ctx context.Context, adminID, listingID string, verified bool) error
	SetListingFeatured(ctx context.Context, adminID, listingID string, featured bool) error
	SubmitTestimonial(ctx context.Context, userID, body string) (*model.Testimonial, error)
	ListTestimonials(ctx context.Context) ([]*model.Testimonial, error)
	ListApprovedTestimonials(ctx context.Context) ([]*model.Testimonial, error)
	SetTestimonialApproved(ctx context.Context, adminID, testimonialID string, approved bool) error
	DeleteTestimonial(ctx context.Context, adminID, testimonialID string) error
	FlagListing(ctx context.Context, reporterID, listingID, reason string) (*model.Flag, error)
	ListOpenFlags(ctx context.Context) ([]*model.Flag, error)
	ResolveFlag(ctx context.Context, adminID, flagID string, dismiss bool) error
	RecentLogs(ctx context.Context, limit int) ([]*model.AdminLog, error)
}

// AdminHandler serves moderation endpoints plus the public testimonial and
// flag submission endpoints.
type AdminHandler struct {
	service AdminServiceInterface
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(service AdminServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

type adminUserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Banned    bool   `json:"banned"`
	CreatedAt string `json:"createdAt"`
}

type testimonialResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Body      string `json:"body"`
	Approved  bool   `json:"approved"`
	CreatedAt string `json:"createdAt"`
}

func toTestimonialResponse(t *model.Testimonial) testimonialResponse {
	return testimonialResponse{
		ID:        t.ID,
		UserID:    t.UserID,
		Body:      t.Body,
		Approved:  t.Approved,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}

func toTestimonialResponses(testimonials []*model.Testimonial) []testimonialResponse {
	out := make([]testimonialResponse, len(testimonials))
	for i, t := range testimonials {
		out[i] = toTestimonialResponse(t)
	}
	return out
}

type flagResponse struct {
	ID         string `json:"id"`
	ListingID  string `json:"listingId"`
	ReporterID string `json:"reporterId"`
	Reason     string `json:"reason"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
}

func toFlagResponse(f *model.Flag) flagResponse {
	return flagResponse{
		ID:         f.ID,
		ListingID:  f.ListingID,
		ReporterID: f.ReporterID,
		Reason:     f.Reason,
		Status:     string(f.Status),
		CreatedAt:  f.CreatedAt.Format(time.RFC3339),
	}
}

// ListUsers returns a page of accounts for the admin dashboard.
// GET /api/admin/users?limit=&offset=
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	users, err := h.service.ListUsers(r.Context(), limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]adminUserResponse, len(users))
	for i, u := range users {
		out[i] = adminUserResponse{
			ID:        u.ID,
			Email:     u.Email,
			Name:      u.Name,
			Role:      string(u.Role),
			Banned:    u.Banned,
			CreatedAt: u.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type setFlagRequest struct {
	Value bool `json:"value"`
}

// SetUserBanned bans or unbans an account.
// PUT /api/admin/users/{id}/banned
func (h *AdminHandler) SetUserBanned(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.service.SetUserBanned)
}

// SetListingVerified toggles a listing's verified badge.
// PUT /api/admin/listings/{id}/verified
func (h *AdminHandler) SetListingVerified(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.service.SetListingVerified)
}

// SetListingFeatured toggles a listing's feature slot.
// PUT /api/admin/listings/{id}/featured
func (h *AdminHandler) SetListingFeatured(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.service.SetListingFeatured)
}

func (h *AdminHandler) setFlag(w http.ResponseWriter, r *http.Request, op func(context.Context, string, string, bool) error) {
	auth, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req setFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	if err := op(r.Context(), auth.UserID, chi.URLParam(r, "id"), req.Value); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type submitTestimonialRequest struct {
	Body string `json:"body"`
}

// SubmitTestimonial files a quote for admin review. Any authenticated user.
// POST /api/testimonials
func (h *AdminHandler) SubmitTestimonial(w http.ResponseWriter, r *http.Request) {
	auth, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req submitTestimonialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	t, err := h.service.SubmitTestimonial(r.Context(), auth.UserID, req.Body)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTestimonialResponse(t))
}

// ListApprovedTestimonials returns the public landing-page quotes.
// GET /api/testimonials
func (h *AdminHandler) ListApprovedTestimonials(w http.ResponseWriter, r *http.Request) {
	testimonials, err := h.service.ListApprovedTestimonials(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTestimonialResponses(testimonials))
}

// ListTestimonials returns the full review queue for admins.
// GET /api/admin/testimonials
func (h *AdminHandler) ListTestimonials(w http.ResponseWriter, r *http.Request) {
	testimonials, err := h.service.ListTestimonials(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTestimonialResponses(testimonials))
}

// SetTestimonialApproved publishes or unpublishes a testimonial.
// PUT /api/admin/testimonials/{id}/approved
func (h *AdminHandler) SetTestimonialApproved(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.service.SetTestimonialApproved)
}

// DeleteTestimonial removes a testimonial.
// DELETE /api/admin/testimonials/{id}
func (h *AdminHandler) DeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	auth, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.DeleteTestimonial(r.Context(), auth.UserID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type flagListingRequest struct {
	Reason string `json:"reason"`
}

// FlagListing files a report against a listing. Any authenticated user.
// POST /api/listings/{id}/flags
func (h *AdminHandler) FlagListing(w http.ResponseWriter, r *http.Request) {
	auth, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req flagListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	f, err := h.service.FlagListing(r.Context(), auth.UserID, chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFlagResponse(f))
}

// ListOpenFlags returns the moderation queue, oldest first.
// GET /api/admin/flags
func (h *AdminHandler) ListOpenFlags(w http.ResponseWriter, r *http.Request) {
	flags, err := h.service.ListOpenFlags(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]flagResponse, len(flags))
	for i, f := range flags {
		out[i] = toFlagResponse(f)
	}
	writeJSON(w, http.StatusOK, out)
}

type resolveFlagRequest struct {
	Dismiss bool `json:"dismiss"`
}

// ResolveFlag closes a flag as resolved or dismissed.
// POST /api/admin/flags/{id}/resolve
func (h *AdminHandler) ResolveFlag(w http.ResponseWriter, r *http.Request) {
	auth, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req resolveFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	if err := h.service.ResolveFlag(r.Context(), auth.UserID, chi.URLParam(r, "id"), req.Dismiss); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type adminLogResponse struct {
	ID        string `json:"id"`
	AdminID   string `json:"adminId"`
	Action    string `json:"action"`
	TargetID  string `json:"targetId"`
	Detail    string `json:"detail"`
	CreatedAt string `json:"createdAt"`
}

// RecentLogs returns the latest audit entries.
// GET /api/admin/logs?limit=
func (h *AdminHandler) RecentLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	logs, err := h.service.RecentLogs(r.Context(), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]adminLogResponse, len(logs))
	for i, entry := range logs {
		out[i] = adminLogResponse{
			ID:        entry.ID,
			AdminID:   entry.AdminID,
			Action:    entry.Action,
			TargetID:  entry.TargetID,
			Detail:    entry.Detail,
			CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, out)
}
