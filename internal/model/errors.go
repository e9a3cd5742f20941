// Package model defines the domain models.
package model

import "fmt"

// APIError is the unified error format. It carries the category shown in the
// UI and a suggested user action.
type APIError struct {
	Code     string // machine-readable error code
	Message  string // human-readable message
	Category string // category: auth, validation, listing, booking, system
	Action   string // suggested user action
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Predefined error codes.
const (
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken          = "EMAIL_TAKEN"
	ErrCodeInvalidRole         = "INVALID_ROLE"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeUserBanned          = "USER_BANNED"
	ErrCodeListingNotFound     = "LISTING_NOT_FOUND"
	ErrCodeInvalidListing      = "INVALID_LISTING"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeInvalidPhotoURL     = "INVALID_PHOTO_URL"
	ErrCodeComparisonLimit     = "COMPARISON_LIMIT"
	ErrCodeBookingNotFound     = "BOOKING_NOT_FOUND"
	ErrCodeDuplicateBooking    = "DUPLICATE_BOOKING"
	ErrCodeInvalidBookingState = "INVALID_BOOKING_STATE"
	ErrCodeDuplicateReview     = "DUPLICATE_REVIEW"
	ErrCodeInvalidRating       = "INVALID_RATING"
	ErrCodeFlagNotFound        = "FLAG_NOT_FOUND"
)

// NewUnauthorizedError reports a request without a valid session.
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Authentication is required.",
		Category: "auth",
		Action:   "Log in and try again.",
	}
}

// NewForbiddenError reports a session whose role may not perform the action.
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "You do not have permission to perform this action.",
		Category: "auth",
		Action:   "Switch to an account with the required role.",
	}
}

// NewInvalidCredentialsError reports a failed login attempt. The message is
// the same for unknown email and wrong password.
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Email or password is incorrect.",
		Category: "auth",
		Action:   "Check your email and password and try again.",
	}
}

// NewEmailTakenError reports a registration with an email already in use.
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "An account with this email already exists.",
		Category: "validation",
		Action:   "Log in instead, or use a different email address.",
	}
}

// NewInvalidRoleError reports a registration with an unknown role.
func NewInvalidRoleError(role string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRole,
		Message:  fmt.Sprintf("Unknown role: %s", role),
		Category: "validation",
		Action:   "Choose either student or owner.",
	}
}

// NewUserNotFoundError reports a missing user.
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found.",
		Category: "auth",
		Action:   "Log in again.",
	}
}

// NewUserBannedError reports a login attempt by a banned account.
func NewUserBannedError() *APIError {
	return &APIError{
		Code:     ErrCodeUserBanned,
		Message:  "This account has been suspended.",
		Category: "auth",
		Action:   "Contact support if you believe this is a mistake.",
	}
}

// NewValidationError reports request input that failed validation.
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  reason,
		Category: "validation",
		Action:   "Fix the highlighted fields and submit again.",
	}
}

// NewListingNotFoundError reports a missing listing.
func NewListingNotFoundError(listingID string) *APIError {
	return &APIError{
		Code:     ErrCodeListingNotFound,
		Message:  fmt.Sprintf("Listing not found: %s", listingID),
		Category: "listing",
		Action:   "Check the listing ID, it may have been removed.",
	}
}

// NewInvalidListingError reports listing input that failed validation.
func NewInvalidListingError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidListing,
		Message:  fmt.Sprintf("Invalid listing: %s", reason),
		Category: "validation",
		Action:   "Fix the highlighted fields and submit again.",
	}
}

// NewInvalidPhotoURLError reports a photo URL blocked by the URL guard.
func NewInvalidPhotoURLError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPhotoURL,
		Message:  "The photo URL was rejected by the security policy.",
		Category: "validation",
		Action:   "Use a public https URL for listing photos. Private or local network addresses are not allowed.",
	}
}

// NewComparisonLimitError reports an attempt to compare more than the allowed
// number of listings. The operation is a no-op, not a failure of state.
func NewComparisonLimitError(limit int) *APIError {
	return &APIError{
		Code:     ErrCodeComparisonLimit,
		Message:  fmt.Sprintf("You can compare at most %d listings at a time.", limit),
		Category: "listing",
		Action:   "Remove a listing from the comparison before adding another.",
	}
}

// NewBookingNotFoundError reports a missing booking.
func NewBookingNotFoundError(bookingID string) *APIError {
	return &APIError{
		Code:     ErrCodeBookingNotFound,
		Message:  fmt.Sprintf("Booking not found: %s", bookingID),
		Category: "booking",
		Action:   "Check the booking ID.",
	}
}

// NewDuplicateBookingError reports a second pending request for the same
// listing by the same student.
func NewDuplicateBookingError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateBooking,
		Message:  "You already have a pending request for this listing.",
		Category: "booking",
		Action:   "Wait for the owner's decision or cancel the existing request.",
	}
}

// NewInvalidBookingStateError reports a state transition a booking does not
// allow, such as approving an already cancelled request.
func NewInvalidBookingStateError(status BookingStatus) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidBookingState,
		Message:  fmt.Sprintf("The booking is %s and cannot be changed.", status),
		Category: "booking",
		Action:   "Refresh the page to see the current booking status.",
	}
}

// NewDuplicateReviewError reports a second review of the same listing by the
// same student.
func NewDuplicateReviewError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateReview,
		Message:  "You have already reviewed this listing.",
		Category: "validation",
		Action:   "Edit your existing review instead.",
	}
}

// NewInvalidRatingError reports a rating outside the 1 to 5 range.
func NewInvalidRatingError(rating int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRating,
		Message:  fmt.Sprintf("Invalid rating: %d", rating),
		Category: "validation",
		Action:   "Choose a rating between 1 and 5.",
	}
}

// NewFlagNotFoundError reports a missing flag.
func NewFlagNotFoundError(flagID string) *APIError {
	return &APIError{
		Code:     ErrCodeFlagNotFound,
		Message:  fmt.Sprintf("Flag not found: %s", flagID),
		Category: "system",
		Action:   "Check the flag ID.",
	}
}
