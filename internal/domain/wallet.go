package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds the user's credit balance. Debited only by the booking
// allocator, credited only by the external top-up flow.
type Wallet struct {
	UserID         uuid.UUID
	BalanceCredits int64
	UpdatedAt      time.Time
}
