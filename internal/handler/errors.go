// Package handler implements the HTTP API handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nabil/meshbari/internal/model"
)

// apiErrorResponse is the unified error response body.
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// writeAPIErrorResponse writes an APIError in the unified format.
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError maps a service-layer error onto an HTTP response.
// Anything that is not an APIError is treated as an internal error: details
// go to the log, the caller gets a generic message.
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "An internal error occurred.",
		Category: "system",
		Action:   "Please wait a moment and try again.",
	})
}

// mapAPIErrorToHTTPStatus maps an APIError code to an HTTP status code.
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized, model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden, model.ErrCodeUserBanned:
		return http.StatusForbidden
	case model.ErrCodeEmailTaken, model.ErrCodeDuplicateBooking, model.ErrCodeDuplicateReview:
		return http.StatusConflict
	case model.ErrCodeListingNotFound, model.ErrCodeBookingNotFound,
		model.ErrCodeUserNotFound, model.ErrCodeFlagNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidRole, model.ErrCodeInvalidListing, model.ErrCodeValidation,
		model.ErrCodeInvalidPhotoURL, model.ErrCodeInvalidRating:
		return http.StatusBadRequest
	case model.ErrCodeComparisonLimit, model.ErrCodeInvalidBookingState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeInvalidBody answers a request whose JSON body failed to parse.
func writeInvalidBody(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "Could not parse the request body.",
		Category: "validation",
		Action:   "Send a valid JSON body.",
	})
}
