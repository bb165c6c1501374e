package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMode string

const (
	PaymentModeSubscription PaymentMode = "SUBSCRIPTION"
	PaymentModeSingleCredit PaymentMode = "SINGLE_CREDIT"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusNoShow    BookingStatus = "NO_SHOW"
)

// Booking is one reserved visit. Exactly one of SubscriptionID and
// CreditsCost is set, matching PaymentMode.
type Booking struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	BranchID       int64
	ScheduledAt    time.Time
	PaymentMode    PaymentMode
	SubscriptionID *uuid.UUID
	CreditsCost    *int64
	Status         BookingStatus
	HasReview      bool
	IdempotencyKey string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Review struct {
	ID        uuid.UUID
	BookingID uuid.UUID
	UserID    uuid.UUID
	Rating    int
	Comment   string
	CreatedAt time.Time
}
