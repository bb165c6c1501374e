package domain

import "errors"

// Admission and review errors. Every error maps to a stable machine
// code via ErrorCode so the API layer never leaks ad hoc strings.
var (
	ErrInvalidInput                = errors.New("invalid input data")
	ErrInvalidTimeFormat           = errors.New("time label cannot be parsed")
	ErrInvalidDate                 = errors.New("date is out of calendar range")
	ErrPastScheduledTime           = errors.New("scheduled time is in the past")
	ErrBranchUnavailable           = errors.New("branch does not accept bookings")
	ErrNoEligibleSubscription      = errors.New("no eligible subscription for this branch")
	ErrSubscriptionExhausted       = errors.New("subscription has no remaining visits")
	ErrInsufficientCredits         = errors.New("wallet balance is below the visit cost")
	ErrResourceConflict            = errors.New("payment resource changed concurrently")
	ErrBookingNotFound             = errors.New("booking not found")
	ErrBranchNotFound              = errors.New("branch not found")
	ErrWalletNotFound              = errors.New("wallet not found")
	ErrBookingNotEligibleForReview = errors.New("booking is not eligible for review")
	ErrReviewAlreadyExists         = errors.New("booking already has a review")

	// ErrSubscriptionLookupUnavailable is returned only when the caller
	// explicitly asked to pay with a subscription and the store could not
	// be read. It is never folded into ErrNoEligibleSubscription.
	ErrSubscriptionLookupUnavailable = errors.New("subscription lookup unavailable")
)

// ErrorCode returns the stable code for a known domain error, or
// "INTERNAL" for anything else.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, ErrInvalidTimeFormat):
		return "INVALID_TIME_FORMAT"
	case errors.Is(err, ErrInvalidDate):
		return "INVALID_DATE"
	case errors.Is(err, ErrPastScheduledTime):
		return "PAST_SCHEDULED_TIME"
	case errors.Is(err, ErrBranchUnavailable):
		return "BRANCH_UNAVAILABLE"
	case errors.Is(err, ErrNoEligibleSubscription):
		return "NO_ELIGIBLE_SUBSCRIPTION"
	case errors.Is(err, ErrSubscriptionExhausted):
		return "SUBSCRIPTION_EXHAUSTED"
	case errors.Is(err, ErrInsufficientCredits):
		return "INSUFFICIENT_CREDITS"
	case errors.Is(err, ErrResourceConflict):
		return "RESOURCE_CONFLICT"
	case errors.Is(err, ErrBookingNotFound):
		return "BOOKING_NOT_FOUND"
	case errors.Is(err, ErrBranchNotFound):
		return "BRANCH_NOT_FOUND"
	case errors.Is(err, ErrWalletNotFound):
		return "WALLET_NOT_FOUND"
	case errors.Is(err, ErrBookingNotEligibleForReview):
		return "BOOKING_NOT_ELIGIBLE_FOR_REVIEW"
	case errors.Is(err, ErrReviewAlreadyExists):
		return "REVIEW_ALREADY_EXISTS"
	case errors.Is(err, ErrSubscriptionLookupUnavailable):
		return "SUBSCRIPTION_LOOKUP_UNAVAILABLE"
	default:
		return "INTERNAL"
	}
}
